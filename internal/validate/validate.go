package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field length and range limits shared by every form.
const (
	MinPasswordLength     = 8
	MaxPasswordLength     = 72
	MaxCommentLength      = 500
	MinFeedbackTextLength = 250
	MaxTitleLength        = 200
	MaxDescriptionLength  = 2000
	MaxBioLength          = 1000
	MinRating             = 1
	MaxRating             = 5
)

// PasswordSymbols is the accepted special-character set for passwords.
const PasswordSymbols = "!@#$%^&*()"

// Duration strings are H{1,3}:MM with MM below 60, e.g. "1:05" or "123:59".
var durationPattern = regexp.MustCompile(`^\d{1,3}:[0-5]\d$`)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,18}[0-9]$`)

// Fields maps a field path to a human-readable violation message. Schemas
// return an empty Fields value when the input is accepted.
type Fields map[string]string

func (f Fields) add(field, message string) {
	if message != "" {
		f[field] = message
	}
}

// OK reports whether no violations were recorded.
func (f Fields) OK() bool { return len(f) == 0 }

// checkLen counts runes, not bytes; limits are user-facing character counts.
func checkLen(value string, max int, field string) string {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

// Email returns a message when s is not a well-formed address.
func Email(s string) string {
	if s == "" {
		return "email is required"
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return "invalid email address"
	}
	return ""
}

// Password enforces the strength rule: at least MinPasswordLength characters
// containing an uppercase letter, a lowercase letter, a digit, and one of
// PasswordSymbols. The returned message names the first missing class.
func Password(s string) string {
	if len(s) < MinPasswordLength {
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if len(s) > MaxPasswordLength {
		return fmt.Sprintf("password must be at most %d characters", MaxPasswordLength)
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	switch {
	case !upper:
		return "password must contain an uppercase letter"
	case !lower:
		return "password must contain a lowercase letter"
	case !digit:
		return "password must contain a digit"
	case !symbol:
		return "password must contain one of " + PasswordSymbols
	}
	return ""
}

// AbsoluteURL returns a message when s is not an absolute http(s) URL.
func AbsoluteURL(s, field string) string {
	if s == "" {
		return field + " is required"
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return field + " must be a valid URL"
	}
	return ""
}

// Duration returns a message when s does not match the H{1,3}:MM pattern.
func Duration(s string) string {
	if !durationPattern.MatchString(s) {
		return "duration must look like H:MM, e.g. 1:45"
	}
	return ""
}

// Phone accepts an empty value; profile phone numbers are optional.
func Phone(s string) string {
	if s == "" {
		return ""
	}
	if !phonePattern.MatchString(s) {
		return "invalid phone number"
	}
	return ""
}

func rating(n int, field string) string {
	if n < MinRating || n > MaxRating {
		return fmt.Sprintf("%s rating must be between %d and %d", field, MinRating, MaxRating)
	}
	return ""
}
