// Package validate holds the field level validation rules for user
// registration and catalog mutation. Violations are collected into a
// field-keyed map so a single response can list every problem instead
// of stopping at the first one.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// FieldErrors maps a field name to the list of messages describing why
// it was rejected.
type FieldErrors map[string][]string

// Add records a violation for the given field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Any reports whether at least one violation was recorded.
func (fe FieldErrors) Any() bool { return len(fe) > 0 }

var (
	// mobileRe accepts an optional country code followed by 9 to 14 digits.
	mobileRe = regexp.MustCompile(`^(\+?[1-9]\d{0,3})?\d{9,14}$`)
	// emailRe is a pragmatic address check, not a full RFC parser.
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Registration checks name, email, mobile number and password for a
// new account. All rules run regardless of earlier failures.
func Registration(name, email, mobile, password string) FieldErrors {
	fe := FieldErrors{}
	if n := len(strings.TrimSpace(name)); n < 3 {
		fe.Add("name", "must be at least 3 characters")
	} else if n > 100 {
		fe.Add("name", "must be at most 100 characters")
	}
	if !emailRe.MatchString(email) {
		fe.Add("email", "is not a valid email address")
	}
	if !mobileRe.MatchString(mobile) {
		fe.Add("mobile_number", "is not a valid mobile number")
	}
	if msg := passwordPolicy(password); msg != "" {
		fe.Add("password", msg)
	}
	return fe
}

// passwordPolicy returns an empty string when the password satisfies
// the strength requirements, otherwise the message to report.
func passwordPolicy(pw string) string {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if len(pw) < 8 || !upper || !lower || !digit || !special {
		return "must include at least one uppercase letter, one lowercase letter, one digit, one special character, and have a minimum of 8 characters"
	}
	return ""
}

// MovieInput carries the mutable movie fields as received from the
// client, before persistence.
type MovieInput struct {
	Title       string
	Genre       string
	ReleaseYear int
	Rating      *float64
	Director    string
	Duration    int
	Description string
	PosterURL   *string
	BannerURL   *string
}

// Movie validates a catalog item for create and update. Release years
// start strictly after 1880 (the dawn of film) and never exceed the
// current calendar year.
func Movie(in MovieInput) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		fe.Add("title", "is required")
	}
	if strings.TrimSpace(in.Genre) == "" {
		fe.Add("genre", "is required")
	}
	if strings.TrimSpace(in.Director) == "" {
		fe.Add("director", "is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		fe.Add("description", "is required")
	} else if len(in.Description) > 1000 {
		fe.Add("description", "must be at most 1000 characters")
	}
	year := time.Now().Year()
	if in.ReleaseYear <= 1880 || in.ReleaseYear > year {
		fe.Add("release_year", fmt.Sprintf("must be greater than 1880 and at most %d", year))
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 10) {
		fe.Add("rating", "must be between 0 and 10")
	}
	if in.Duration <= 0 {
		fe.Add("duration", "must be greater than 0")
	}
	if in.PosterURL != nil && !imageOK(*in.PosterURL) {
		fe.Add("poster", "must be a JPEG or PNG image")
	}
	if in.BannerURL != nil && !imageOK(*in.BannerURL) {
		fe.Add("banner", "must be a JPEG or PNG image")
	}
	return fe
}

// imageOK gates attachments to JPEG or PNG by extension.
func imageOK(url string) bool {
	u := strings.ToLower(url)
	return strings.HasSuffix(u, ".jpg") || strings.HasSuffix(u, ".jpeg") || strings.HasSuffix(u, ".png")
}
