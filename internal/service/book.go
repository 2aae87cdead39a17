package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
)

var (
	ErrTitleRequired = errors.New("Title is required")
)

type BookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) *BookService {
	return &BookService{
		bookRepo: bookRepo,
	}
}

func (s *BookService) All() ([]*model.Book, error) {
	return s.bookRepo.All()
}

func (s *BookService) ByID(id string) (*model.Book, error) {
	return s.bookRepo.ByID(id)
}

func (s *BookService) Create(title string, author, description *string) (*model.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	book := &model.Book{
		ID:          uuid.New().String(),
		Title:       title,
		Author:      normalizeOptional(author),
		Description: normalizeOptional(description),
		CreatedAt:   time.Now(),
	}

	err := s.bookRepo.Create(book)
	if err != nil {
		return nil, err
	}

	return book, nil
}

func (s *BookService) Update(id, title string, author, description *string) (*model.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	book, err := s.bookRepo.ByID(id)
	if err != nil {
		return nil, err
	}

	book.Title = title
	book.Author = normalizeOptional(author)
	book.Description = normalizeOptional(description)

	err = s.bookRepo.Update(book)
	if err != nil {
		return nil, err
	}

	return book, nil
}

func (s *BookService) Delete(id string) error {
	return s.bookRepo.Delete(id)
}

// normalizeOptional maps empty or whitespace-only strings to nil
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
