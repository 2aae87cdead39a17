package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/validation"
)

var (
	ErrContentRequired = errors.New("Review content is required")
	ErrNotReviewAuthor = errors.New("only the author can modify a review")
)

type ReviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, bookRepo repository.BookRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
	}
}

// ByBook returns a book's reviews with author profiles, newest first.
func (s *ReviewService) ByBook(bookID string) ([]*model.Review, error) {
	_, err := s.bookRepo.ByID(bookID)
	if err != nil {
		return nil, err
	}

	return s.reviewRepo.ByBook(bookID)
}

func (s *ReviewService) ByID(id string) (*model.Review, error) {
	return s.reviewRepo.ByID(id)
}

// Create posts a review. One review per user per book: the unique index
// backs the invariant, so a duplicate surfaces as ErrDuplicateReview even
// when two submissions race.
func (s *ReviewService) Create(userID, bookID, content string, rating int) (*model.Review, error) {
	_, err := s.bookRepo.ByID(bookID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}

	err = validation.ValidateRating(rating)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:        uuid.New().String(),
		BookID:    bookID,
		UserID:    userID,
		Content:   content,
		Rating:    rating,
		CreatedAt: time.Now(),
	}

	err = s.reviewRepo.Create(review)
	if err != nil {
		return nil, err
	}

	// Return with the author's public profile joined
	return s.reviewRepo.ByID(review.ID)
}

// Update applies a partial update (content and/or rating). Author only.
func (s *ReviewService) Update(reviewID, userID string, content *string, rating *int) (*model.Review, error) {
	review, err := s.reviewRepo.ByID(reviewID)
	if err != nil {
		return nil, err
	}

	if review.UserID != userID {
		return nil, ErrNotReviewAuthor
	}

	if content != nil {
		trimmed := strings.TrimSpace(*content)
		if trimmed == "" {
			return nil, ErrContentRequired
		}
		review.Content = trimmed
	}
	if rating != nil {
		err = validation.ValidateRating(*rating)
		if err != nil {
			return nil, err
		}
		review.Rating = *rating
	}

	err = s.reviewRepo.Update(review)
	if err != nil {
		return nil, err
	}

	return s.reviewRepo.ByID(reviewID)
}

func (s *ReviewService) Delete(reviewID, userID string) error {
	review, err := s.reviewRepo.ByID(reviewID)
	if err != nil {
		return err
	}

	if review.UserID != userID {
		return ErrNotReviewAuthor
	}

	return s.reviewRepo.Delete(reviewID)
}
