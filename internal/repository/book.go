package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/model"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

type BookRepository interface {
	Create(book *model.Book) error
	ByID(id string) (*model.Book, error)
	All() ([]*model.Book, error)
	Update(book *model.Book) error
	Delete(id string) error
}

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(book *model.Book) error {
	query := `INSERT INTO books (id, title, author, description, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, book.ID, book.Title, book.Author, book.Description, book.CreatedAt)
	return err
}

func (r *bookRepository) ByID(id string) (*model.Book, error) {
	book := &model.Book{}
	query := `SELECT * FROM books WHERE id = $1`

	err := r.db.Get(book, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrBookNotFound
	}

	return book, err
}

func (r *bookRepository) All() ([]*model.Book, error) {
	var books []*model.Book
	query := `SELECT * FROM books ORDER BY created_at DESC`

	err := r.db.Select(&books, query)
	if err != nil {
		return nil, err
	}

	return books, nil
}

func (r *bookRepository) Update(book *model.Book) error {
	query := `UPDATE books SET title = $1, author = $2, description = $3 WHERE id = $4`

	result, err := r.db.Exec(query, book.Title, book.Author, book.Description, book.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookNotFound
	}

	return nil
}

// Delete is idempotent: removing a missing book is not an error.
// Reviews and reading-status rows cascade with the book.
func (r *bookRepository) Delete(id string) error {
	query := `DELETE FROM books WHERE id = $1`

	_, err := r.db.Exec(query, id)
	return err
}
