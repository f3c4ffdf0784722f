package user

import (
	"regexp"
	"strings"
)

type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username,omitempty"`
	Phone          string `json:"phone,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// DisplayName is what greetings address the user by.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Session is a successful login or signup.
type Session struct {
	User    User   `json:"user"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupInput struct {
	Username   string `json:"username" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Phone      string `json:"phone" validate:"omitempty,e164|numeric"`
	Dob        string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	AgreeTerms bool   `json:"agreeTerms"`
}

func (in LoginInput) normalized() LoginInput {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return in
}

func (in SignupInput) normalized() SignupInput {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Phone = strings.ReplaceAll(strings.TrimSpace(in.Phone), " ", "")
	in.Dob = strings.TrimSpace(in.Dob)
	return in
}

type Strength string

const (
	Weak   Strength = "Weak"
	Medium Strength = "Medium"
	Strong Strength = "Strong"
)

var (
	hasDigit = regexp.MustCompile(`[0-9]`)
	hasUpper = regexp.MustCompile(`[A-Z]`)
)

// PasswordStrength grades a password for the signup form.
func PasswordStrength(pw string) Strength {
	switch {
	case len(pw) < 6:
		return Weak
	case len(pw) >= 8 && hasDigit.MatchString(pw) && hasUpper.MatchString(pw):
		return Strong
	default:
		return Medium
	}
}
