// Package validation checks request shape before it reaches the services.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 50
	MaxEmailLength    = 50
	MinPasswordLength = 8
	MaxPasswordLength = 20
	// MaxPasswordBytes is the most input bcrypt accepts.
	MaxPasswordBytes = 72
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Errors is a list of field errors. An empty list means the input is valid.
type Errors []FieldError

// Fields returns the names of the invalid fields.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Field)
	}
	return out
}

// Message joins all field messages.
func (e Errors) Message() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.String())
	}
	return strings.Join(parts, "; ")
}

// Register validates a registration request.
func Register(username, email, password string) Errors {
	var errs Errors
	errs = append(errs, checkUsername(username)...)
	errs = append(errs, checkEmail("email", email)...)
	errs = append(errs, checkPassword("password", password)...)
	return errs
}

// Login validates a login request. Only presence is checked so that a
// malformed password still gets the ordinary wrong-credentials answer.
func Login(username, password string) Errors {
	var errs Errors
	if username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "must not be empty"})
	}
	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "must not be empty"})
	}
	return errs
}

// Token validates a refresh or verification token argument.
func Token(field, value string) Errors {
	if strings.TrimSpace(value) == "" {
		return Errors{{Field: field, Message: "must not be empty"}}
	}
	return nil
}

// Username validates a username that names an existing account.
func Username(username string) Errors {
	return checkUsername(username)
}

// ProfileUpdate validates optional profile changes.
func ProfileUpdate(email, password *string) Errors {
	var errs Errors
	if email != nil {
		errs = append(errs, checkEmail("email", *email)...)
	}
	if password != nil {
		errs = append(errs, checkPassword("password", *password)...)
	}
	return errs
}

func checkUsername(username string) Errors {
	switch {
	case strings.TrimSpace(username) == "":
		return Errors{{Field: "username", Message: "must not be empty"}}
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return Errors{{Field: "username", Message: fmt.Sprintf("must be at most %d characters", MaxUsernameLength)}}
	}
	return nil
}

func checkEmail(field, email string) Errors {
	if email == "" {
		return Errors{{Field: field, Message: "must not be empty"}}
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return Errors{{Field: field, Message: fmt.Sprintf("must be at most %d characters", MaxEmailLength)}}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return Errors{{Field: field, Message: "must be a valid email address"}}
	}
	return nil
}

func checkPassword(field, password string) Errors {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return Errors{{Field: field, Message: fmt.Sprintf("must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)}}
	}
	if len(password) > MaxPasswordBytes {
		return Errors{{Field: field, Message: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)}}
	}
	return nil
}
