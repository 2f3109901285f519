package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

const (
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen ограничение bcrypt (72 байта)
	MaxPasswordLen = 72
	// MaxNameLen максимальная длина имени и фамилии
	MaxNameLen = 100
)

var (
	upperPattern = regexp.MustCompile(`[A-Z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email must be a valid address")
	}

	return nil
}

// ValidatePassword проверяет требования к паролю:
// минимум 8 символов, хотя бы одна заглавная буква и одна цифра
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	if !upperPattern.MatchString(password) {
		return fmt.Errorf("password needs at least one uppercase letter")
	}

	if !digitPattern.MatchString(password) {
		return fmt.Errorf("password needs at least one number")
	}

	return nil
}

// ValidateName checks a first or last name.
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}

	if len(name) > MaxNameLen {
		return fmt.Errorf("%s must not exceed %d characters", field, MaxNameLen)
	}

	return nil
}
