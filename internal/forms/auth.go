package forms

import (
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ReservedUsernames collide with top-level routes.
var ReservedUsernames = map[string]bool{
	"auth":    true,
	"group":   true,
	"new":     true,
	"follow":  true,
	"delete":  true,
	"404":     true,
	"500":     true,
	"media":   true,
	"metrics": true,
	"static":  true,
	"healthz": true,
}

type SignupForm struct {
	Username  string
	FirstName string
	LastName  string
	Password1 string
	Password2 string
	Errors    Errors
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

func ParseSignupForm(r *http.Request) (*SignupForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &SignupForm{
		Username:  strings.TrimSpace(formValue(r, "username")),
		FirstName: strings.TrimSpace(formValue(r, "first_name")),
		LastName:  strings.TrimSpace(formValue(r, "last_name")),
		Password1: formValue(r, "password1"),
		Password2: formValue(r, "password2"),
		Errors:    Errors{},
	}, nil
}

func (f *SignupForm) Valid() bool {
	if msg := ValidateUsername(f.Username); msg != "" {
		f.Errors.Add("username", msg)
	}
	if utf8.RuneCountInString(f.FirstName) > MaxUsernameLength {
		f.Errors.Add("first_name", "Ensure this value has at most 150 characters.")
	}
	if utf8.RuneCountInString(f.LastName) > MaxUsernameLength {
		f.Errors.Add("last_name", "Ensure this value has at most 150 characters.")
	}

	required(f.Errors, "password1", f.Password1)
	required(f.Errors, "password2", f.Password2)
	if f.Errors.Has("password1") || f.Errors.Has("password2") {
		return false
	}
	if f.Password1 != f.Password2 {
		f.Errors.Add("password2", "The two password fields didn't match.")
		return false
	}
	if msg := ValidatePassword(f.Password1, f.Username); msg != "" {
		f.Errors.Add("password2", msg)
	}
	return !f.Errors.Any()
}

// ValidateUsername returns the error message for a bad username, or "".
func ValidateUsername(username string) string {
	switch {
	case username == "":
		return msgRequired
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return "Ensure this value has at most 150 characters."
	case !usernamePattern.MatchString(username):
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case ReservedUsernames[strings.ToLower(username)]:
		return "This username is reserved."
	}
	return ""
}

// ValidatePassword returns the error message for a weak password, or "".
func ValidatePassword(password, username string) string {
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return "This password is too short. It must contain at least 8 characters."
	case strings.Trim(password, "0123456789") == "":
		return "This password is entirely numeric."
	case username != "" && strings.EqualFold(password, username):
		return "The password is too similar to the username."
	}
	return ""
}

type LoginForm struct {
	Username string
	Password string
	Next     string
	Errors   Errors
}

func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: next, Errors: Errors{}}
}

func ParseLoginForm(r *http.Request) (*LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &LoginForm{
		Username: strings.TrimSpace(formValue(r, "username")),
		Password: formValue(r, "password"),
		Next:     formValue(r, "next"),
		Errors:   Errors{},
	}, nil
}

func (f *LoginForm) Valid() bool {
	required(f.Errors, "username", f.Username)
	required(f.Errors, "password", f.Password)
	return !f.Errors.Any()
}
