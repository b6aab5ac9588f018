package models

import (
	"strings"
	"unicode"

	"github.com/asaskevich/govalidator"

	"rngenius/pkg/domain"
	dErrors "rngenius/pkg/domain-errors"
)

const specialChars = "!@?#$%^&*"

// User is an account that can own generators and participate in them.
// PasswordHash and RefreshTokenHash are bcrypt digests, plaintext secrets
// never reach a store.
type User struct {
	ID               domain.UserID
	FirstName        string
	LastName         string
	Email            string
	PasswordHash     string
	RefreshTokenHash string
}

func (u *User) Validate() error {
	if u.FirstName == "" || u.LastName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "user", "First and last name are required")
	}
	if !govalidator.IsEmail(u.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "email", "A valid email is required")
	}
	return nil
}

// ValidatePassword enforces the account password policy: at least 8
// characters with an upper-case letter, a lower-case letter, a digit, and
// one of !@?#$%^&*.
func ValidatePassword(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if len(password) < 8 || !upper || !lower || !digit || !special {
		return dErrors.New(dErrors.CodeInvalidInput, "password",
			"Password must be at least 8 characters and contain an upper-case letter, a lower-case letter, a digit, and a special character")
	}
	return nil
}
