package service

import (
	"errors"
	"time"

	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/validation"
)

// UserBookChange is a partial update to a reading-status record. The Set
// flags distinguish a field that was omitted from one explicitly set to
// null (null clears the value).
type UserBookChange struct {
	Status        *string
	Rating        *int
	RatingSet     bool
	Notes         *string
	NotesSet      bool
	StartedAt     *time.Time
	StartedAtSet  bool
	FinishedAt    *time.Time
	FinishedAtSet bool
}

type UserBookService struct {
	userBookRepo repository.UserBookRepository
	bookRepo     repository.BookRepository
}

func NewUserBookService(userBookRepo repository.UserBookRepository, bookRepo repository.BookRepository) *UserBookService {
	return &UserBookService{
		userBookRepo: userBookRepo,
		bookRepo:     bookRepo,
	}
}

// Get returns the user's reading status for a book, or nil when the book
// is untracked.
func (s *UserBookService) Get(userID, bookID string) (*model.UserBook, error) {
	_, err := s.bookRepo.ByID(bookID)
	if err != nil {
		return nil, err
	}

	userBook, err := s.userBookRepo.Get(userID, bookID)
	if errors.Is(err, repository.ErrUserBookNotFound) {
		return nil, nil
	}

	return userBook, err
}

// ByUser returns all of the user's tracked books with book data, most
// recently updated first.
func (s *UserBookService) ByUser(userID string) ([]*model.UserBook, error) {
	return s.userBookRepo.ByUser(userID)
}

// Upsert creates or updates the (user, book) record. Setting status to
// "reading" stamps started_at with the current time, and "read" stamps
// finished_at, but only when the stored row has no value yet and the
// request didn't supply one; an explicit timestamp in the request always
// wins. Repeating the same status write therefore never moves the first
// stamp.
func (s *UserBookService) Upsert(userID, bookID string, change UserBookChange) (*model.UserBook, error) {
	_, err := s.bookRepo.ByID(bookID)
	if err != nil {
		return nil, err
	}

	if change.Status != nil {
		err = validation.ValidateReadingStatus(*change.Status)
		if err != nil {
			return nil, err
		}
	}
	if change.RatingSet && change.Rating != nil {
		err = validation.ValidateRating(*change.Rating)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()

	userBook, err := s.userBookRepo.Get(userID, bookID)
	if errors.Is(err, repository.ErrUserBookNotFound) {
		userBook = &model.UserBook{
			UserID:    userID,
			BookID:    bookID,
			Status:    model.StatusWantToRead,
			CreatedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	if change.Status != nil {
		userBook.Status = *change.Status
	}
	if change.RatingSet {
		userBook.Rating = change.Rating
	}
	if change.NotesSet {
		userBook.Notes = change.Notes
	}
	if change.StartedAtSet {
		userBook.StartedAt = change.StartedAt
	}
	if change.FinishedAtSet {
		userBook.FinishedAt = change.FinishedAt
	}

	// One-way default stamps for status transitions
	if change.Status != nil && !change.StartedAtSet &&
		*change.Status == model.StatusReading && userBook.StartedAt == nil {
		userBook.StartedAt = &now
	}
	if change.Status != nil && !change.FinishedAtSet &&
		*change.Status == model.StatusRead && userBook.FinishedAt == nil {
		userBook.FinishedAt = &now
	}

	userBook.UpdatedAt = now

	err = s.userBookRepo.Upsert(userBook)
	if err != nil {
		return nil, err
	}

	return userBook, nil
}

// Delete removes the record entirely (back to "untracked").
func (s *UserBookService) Delete(userID, bookID string) error {
	_, err := s.bookRepo.ByID(bookID)
	if err != nil {
		return err
	}

	return s.userBookRepo.Delete(userID, bookID)
}
