package validation

import (
	"errors"
)

var ErrInvalidRating = errors.New("Rating must be between 1 and 5")

// ValidateRating validates a star rating
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
