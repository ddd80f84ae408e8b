package validate

import (
	"strings"
	"time"

	"github.com/reelhouse/reelhouse/internal/languages"
)

type ProfileInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
	Gender    string `json:"gender"`
	Language  string `json:"language"`
	Location  string `json:"location"`
	Bio       string `json:"bio"`
}

func Profile(in ProfileInput) (ProfileInput, Fields) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)

	fields := Fields{}
	fields.add("email", Email(in.Email))
	if in.FirstName == "" {
		fields.add("firstName", "first name is required")
	}
	fields.add("phone", Phone(in.Phone))
	if in.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", in.BirthDate); err != nil {
			fields.add("birthDate", "birth date must be YYYY-MM-DD")
		}
	}
	if in.Language != "" && !languages.IsSupported(in.Language) {
		fields.add("language", "unsupported language")
	}
	fields.add("bio", checkLen(in.Bio, MaxBioLength, "bio"))
	return in, fields
}
