package service

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	digitPattern  = regexp.MustCompile(`\d`)
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	symbolPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidationError names the first input constraint a registration failed.
// It is caught before anything touches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func ValidateRegistration(name, email, password string) error {
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	if utf8.RuneCountInString(name) > 255 {
		return &ValidationError{Field: "name", Reason: "must be at most 255 characters"}
	}

	if utf8.RuneCountInString(email) > 255 {
		return &ValidationError{Field: "email", Reason: "must be at most 255 characters"}
	}

	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}

	return validatePassword(password)
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)

	if n < 8 || n > 40 {
		return &ValidationError{Field: "password", Reason: "must be between 8 and 40 characters"}
	}

	if !digitPattern.MatchString(password) {
		return &ValidationError{Field: "password", Reason: "must contain at least one digit"}
	}

	if !upperPattern.MatchString(password) {
		return &ValidationError{Field: "password", Reason: "must contain at least one uppercase letter"}
	}

	if !symbolPattern.MatchString(password) {
		return &ValidationError{Field: "password", Reason: "must contain at least one special character"}
	}

	return nil
}
