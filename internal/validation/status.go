package validation

import (
	"errors"

	"github.com/readcircle/readcircle/internal/model"
)

var ErrInvalidStatus = errors.New("Invalid status")

// ValidateReadingStatus validates a reading status against the three
// enumerated values
func ValidateReadingStatus(status string) error {
	switch status {
	case model.StatusWantToRead, model.StatusReading, model.StatusRead:
		return nil
	}
	return ErrInvalidStatus
}
