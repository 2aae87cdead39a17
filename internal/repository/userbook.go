package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/model"
)

var (
	ErrUserBookNotFound = errors.New("reading status not found")
)

type UserBookRepository interface {
	Get(userID, bookID string) (*model.UserBook, error)
	ByUser(userID string) ([]*model.UserBook, error)
	Upsert(userBook *model.UserBook) error
	Delete(userID, bookID string) error
}

type userBookRepository struct {
	db *sqlx.DB
}

func NewUserBookRepository(db *sqlx.DB) UserBookRepository {
	return &userBookRepository{db: db}
}

func (r *userBookRepository) Get(userID, bookID string) (*model.UserBook, error) {
	userBook := &model.UserBook{}
	query := `SELECT * FROM user_books WHERE user_id = $1 AND book_id = $2`

	err := r.db.Get(userBook, query, userID, bookID)
	if err == sql.ErrNoRows {
		return nil, ErrUserBookNotFound
	}

	return userBook, err
}

// ByUser returns the user's tracked books joined with book data, most
// recently updated first.
func (r *userBookRepository) ByUser(userID string) ([]*model.UserBook, error) {
	var userBooks []*model.UserBook
	query := `SELECT ub.user_id, ub.book_id, ub.status, ub.rating, ub.notes,
	                 ub.started_at, ub.finished_at, ub.created_at, ub.updated_at,
	                 b.id AS "book.id", b.title AS "book.title", b.author AS "book.author",
	                 b.description AS "book.description", b.created_at AS "book.created_at"
	          FROM user_books ub
	          JOIN books b ON b.id = ub.book_id
	          WHERE ub.user_id = $1
	          ORDER BY ub.updated_at DESC`

	err := r.db.Select(&userBooks, query, userID)
	if err != nil {
		return nil, err
	}

	return userBooks, nil
}

// Upsert writes the (user, book) row, creating it on first write and
// replacing the tracked fields thereafter. The composite primary key
// guarantees one row per pair; created_at survives updates.
func (r *userBookRepository) Upsert(userBook *model.UserBook) error {
	query := `INSERT INTO user_books (user_id, book_id, status, rating, notes, started_at, finished_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (user_id, book_id) DO UPDATE SET
	              status = excluded.status,
	              rating = excluded.rating,
	              notes = excluded.notes,
	              started_at = excluded.started_at,
	              finished_at = excluded.finished_at,
	              updated_at = excluded.updated_at`

	_, err := r.db.Exec(query,
		userBook.UserID,
		userBook.BookID,
		userBook.Status,
		userBook.Rating,
		userBook.Notes,
		userBook.StartedAt,
		userBook.FinishedAt,
		userBook.CreatedAt,
		userBook.UpdatedAt,
	)
	return err
}

func (r *userBookRepository) Delete(userID, bookID string) error {
	query := `DELETE FROM user_books WHERE user_id = $1 AND book_id = $2`

	result, err := r.db.Exec(query, userID, bookID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserBookNotFound
	}

	return nil
}
