package validate

import "strings"

type SignupProfile struct {
	StateRegion        string `json:"stateRegion"`
	Country            string `json:"country"`
	UtilizationPurpose string `json:"utilizationPurpose"`
}

type SignupInput struct {
	Email       string        `json:"email"`
	Password    string        `json:"password"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	AcceptTerms bool          `json:"acceptTerms"`
	Profile     SignupProfile `json:"profile"`
}

// Signup validates a signup payload and returns the normalized value. The
// second return is empty when the input is accepted.
func Signup(in SignupInput) (SignupInput, Fields) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Profile.StateRegion = strings.TrimSpace(in.Profile.StateRegion)
	in.Profile.Country = strings.TrimSpace(in.Profile.Country)
	in.Profile.UtilizationPurpose = strings.TrimSpace(in.Profile.UtilizationPurpose)

	fields := Fields{}
	fields.add("email", Email(in.Email))
	fields.add("password", Password(in.Password))
	if in.FirstName == "" {
		fields.add("firstName", "first name is required")
	}
	if !in.AcceptTerms {
		fields.add("acceptTerms", "you must accept the terms of use")
	}
	if in.Profile.StateRegion == "" {
		fields.add("profile.stateRegion", "state or region is required")
	}
	if in.Profile.Country == "" {
		fields.add("profile.country", "country is required")
	}
	if in.Profile.UtilizationPurpose == "" {
		fields.add("profile.utilizationPurpose", "utilization purpose is required")
	}
	return in, fields
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func SignIn(in SignInInput) (SignInInput, Fields) {
	in.Email = strings.TrimSpace(in.Email)

	fields := Fields{}
	fields.add("email", Email(in.Email))
	if in.Password == "" {
		fields.add("password", "password is required")
	}
	return in, fields
}

type ResetPasswordInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword applies the signup strength rule and requires both entries to
// match; a mismatch is attached to the confirm field, not the password field.
func ResetPassword(in ResetPasswordInput) (ResetPasswordInput, Fields) {
	fields := Fields{}
	fields.add("password", Password(in.Password))
	if in.ConfirmPassword != in.Password {
		fields.add("confirmPassword", "passwords do not match")
	}
	return in, fields
}
