package user

import (
	"errors"
	"fmt"
)

// The first three match the backend's wire text.
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrAccountNotFound    = errors.New("Account not found")
	ErrWrongPassword      = errors.New("Password is incorrect")
	ErrTermsNotAccepted   = errors.New("You must agree to the terms and conditions.")
	ErrNoToken            = errors.New("backend issued no token")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidImage       = errors.New("profile picture must be a data URI")
)

// RejectedError is a login or signup the backend turned down with its
// own message.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// InputError lists the form fields that failed validation.
type InputError struct {
	Fields []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid fields: %v", e.Fields)
}
