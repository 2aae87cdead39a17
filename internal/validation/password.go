package validation

import (
	"errors"
)

// ValidatePassword validates password length.
// The minimum of 8 characters is part of the API contract; clients
// re-validate but the server is authoritative.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("Password must be at least 8 characters")
	}

	// Maximum length: 72 bytes (bcrypt limitation)
	// bcrypt silently truncates passwords longer than 72 bytes, which is a security risk
	if len(password) > 72 {
		return errors.New("Password must not exceed 72 characters")
	}

	return nil
}
