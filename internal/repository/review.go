package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/model"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this book")
)

type ReviewRepository interface {
	Create(review *model.Review) error
	ByID(id string) (*model.Review, error)
	ByBook(bookID string) ([]*model.Review, error)
	ByUser(userID string) ([]*model.Review, error)
	Update(review *model.Review) error
	Delete(id string) error
}

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewWithUser = `
	SELECT r.id, r.book_id, r.user_id, r.content, r.rating, r.created_at,
	       u.id AS "user.id", u.name AS "user.name", u.email AS "user.email", u.image AS "user.image"
	FROM reviews r
	JOIN users u ON u.id = r.user_id
`

// Create relies on the UNIQUE(user_id, book_id) index for the
// one-review-per-user-per-book invariant; a concurrent duplicate submission
// surfaces as ErrDuplicateReview instead of a second row.
func (r *reviewRepository) Create(review *model.Review) error {
	query := `INSERT INTO reviews (id, book_id, user_id, content, rating, created_at) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		review.ID,
		review.BookID,
		review.UserID,
		review.Content,
		review.Rating,
		review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return err
	}

	return nil
}

func (r *reviewRepository) ByID(id string) (*model.Review, error) {
	review := &model.Review{}
	query := reviewWithUser + ` WHERE r.id = $1`

	err := r.db.Get(review, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}

	return review, err
}

func (r *reviewRepository) ByBook(bookID string) ([]*model.Review, error) {
	var reviews []*model.Review
	query := reviewWithUser + ` WHERE r.book_id = $1 ORDER BY r.created_at DESC`

	err := r.db.Select(&reviews, query, bookID)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// ByUser returns the user's reviews joined with their books, newest first.
func (r *reviewRepository) ByUser(userID string) ([]*model.Review, error) {
	var reviews []*model.Review
	query := `SELECT r.id, r.book_id, r.user_id, r.content, r.rating, r.created_at,
	                 b.id AS "book.id", b.title AS "book.title", b.author AS "book.author",
	                 b.description AS "book.description", b.created_at AS "book.created_at"
	          FROM reviews r
	          JOIN books b ON b.id = r.book_id
	          WHERE r.user_id = $1
	          ORDER BY r.created_at DESC`

	err := r.db.Select(&reviews, query, userID)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *reviewRepository) Update(review *model.Review) error {
	query := `UPDATE reviews SET content = $1, rating = $2 WHERE id = $3`

	result, err := r.db.Exec(query, review.Content, review.Rating, review.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) Delete(id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReviewNotFound
	}

	return nil
}
