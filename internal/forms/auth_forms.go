package forms

import (
	"strings"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/internal/security"
)

const MsgPasswordMismatch = "The two password fields didn't match."

// LoginForm is the username/password form.
type LoginForm struct {
	Username string
	Password string
	Next     string

	Errors map[string]string
}

// Validate only checks presence; credentials are verified by the auth service.
func (f *LoginForm) Validate() bool {
	f.Errors = map[string]string{}
	f.Username = strings.TrimSpace(f.Username)
	if f.Username == "" {
		f.Errors["username"] = MsgRequired
	}
	if f.Password == "" {
		f.Errors["password"] = MsgRequired
	}
	return len(f.Errors) == 0
}

// SignupForm registers a new account.
type SignupForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password1 string
	Password2 string

	Errors map[string]string
}

func (f *SignupForm) Validate(v *security.ValidationService) bool {
	f.Errors = map[string]string{}

	f.FirstName = v.SanitizeString(f.FirstName)
	f.LastName = v.SanitizeString(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	if err := v.ValidateUsername(f.Username); err != nil {
		f.Errors["username"] = err.Error()
	}
	if err := v.ValidateEmail(f.Email); err != nil {
		f.Errors["email"] = err.Error()
	}
	if err := v.ValidatePassword(f.Password1); err != nil {
		f.Errors["password1"] = err.Error()
	}
	if f.Password1 != f.Password2 {
		f.Errors["password2"] = MsgPasswordMismatch
	}
	return len(f.Errors) == 0
}

// User builds the account to create. The password is hashed by the auth service.
func (f *SignupForm) User() *models.User {
	return &models.User{
		Username:  f.Username,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
	}
}
