package validation

import (
	"errors"
	"strings"
)

var (
	ErrClubNameRequired = errors.New("Club name is required")
	ErrClubNameTooLong  = errors.New("Club name is too long (max 100 characters)")
)

// ValidateClubName validates a club name
func ValidateClubName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return ErrClubNameRequired
	}

	if len(name) > 100 {
		return ErrClubNameTooLong
	}

	return nil
}
