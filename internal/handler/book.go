package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/service"
)

type bookHandler struct {
	bookService *service.BookService
}

func NewBookHandler(bookService *service.BookService) *bookHandler {
	return &bookHandler{bookService: bookService}
}

func (h *bookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.All()
	if err != nil {
		slog.Error("failed to list books", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load books")
		return
	}

	respondJSON(w, http.StatusOK, books)
}

func (h *bookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Author      *string `json:"author"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.bookService.Create(req.Title, req.Author, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to create book", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create book")
		return
	}

	respondJSON(w, http.StatusCreated, book)
}

func (h *bookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.bookService.ByID(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		slog.Error("failed to get book", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load book")
		return
	}

	respondJSON(w, http.StatusOK, book)
}

func (h *bookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Author      *string `json:"author"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := h.bookService.Update(r.PathValue("id"), req.Title, req.Author, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrBookNotFound):
			respondError(w, http.StatusNotFound, "Book not found")
		default:
			slog.Error("failed to update book", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to update book")
		}
		return
	}

	respondJSON(w, http.StatusOK, book)
}

// Delete removes a book. Deleting an already-deleted book is a no-op.
func (h *bookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.bookService.Delete(r.PathValue("id"))
	if err != nil {
		slog.Error("failed to delete book", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete book")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
