package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)

// AuthMode selects which auth form is being validated.
type AuthMode string

const (
	ModeLogin  AuthMode = "login"
	ModeSignup AuthMode = "signup"
)

// AuthForm is the auth form input validated before any network call.
type AuthForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
}

// ValidateAuthForm checks an auth form and returns the first problem as a
// user-facing message, or "" when the form is valid.
func ValidateAuthForm(mode AuthMode, form AuthForm) string {
	if strings.TrimSpace(form.Email) == "" {
		return "Email is required."
	}
	if !emailRegex.MatchString(strings.TrimSpace(form.Email)) {
		return "Please enter a valid email address."
	}
	if strings.TrimSpace(form.Password) == "" {
		return "Password is required."
	}

	if mode == ModeSignup {
		if strings.TrimSpace(form.FullName) == "" {
			return "Full name is required."
		}
		if len(form.Password) < 6 {
			return "Password must be at least 6 characters."
		}
		if form.ConfirmPassword != form.Password {
			return "Passwords do not match."
		}
	}

	return ""
}

// NormalizeEmail trims and lowercases an email before it reaches the
// auth service.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
