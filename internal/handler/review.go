package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/readcircle/readcircle/internal/ctxkeys"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/service"
	"github.com/readcircle/readcircle/internal/validation"
)

type reviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *reviewHandler {
	return &reviewHandler{reviewService: reviewService}
}

// ListByBook returns all reviews for a book, newest first.
func (h *reviewHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ByBook(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		slog.Error("failed to list reviews", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load reviews")
		return
	}

	respondJSON(w, http.StatusOK, reviews)
}

func (h *reviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Content string `json:"content"`
		Rating  int    `json:"rating"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviewService.Create(user.ID, r.PathValue("id"), req.Content, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			respondError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, repository.ErrDuplicateReview):
			respondError(w, http.StatusConflict, "You have already reviewed this book")
		case errors.Is(err, service.ErrContentRequired), errors.Is(err, validation.ErrInvalidRating):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to create review", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to create review")
		}
		return
	}

	respondJSON(w, http.StatusCreated, review)
}

func (h *reviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviewService.ByID(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			respondError(w, http.StatusNotFound, "Review not found")
			return
		}
		slog.Error("failed to get review", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load review")
		return
	}

	respondJSON(w, http.StatusOK, review)
}

// Update applies a partial edit; only the author may edit their review.
func (h *reviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Content *string `json:"content"`
		Rating  *int    `json:"rating"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviewService.Update(r.PathValue("id"), user.ID, req.Content, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			respondError(w, http.StatusNotFound, "Review not found")
		case errors.Is(err, service.ErrNotReviewAuthor):
			respondError(w, http.StatusForbidden, "You can only edit your own reviews")
		case errors.Is(err, service.ErrContentRequired), errors.Is(err, validation.ErrInvalidRating):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to update review", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to update review")
		}
		return
	}

	respondJSON(w, http.StatusOK, review)
}

func (h *reviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.reviewService.Delete(r.PathValue("id"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			respondError(w, http.StatusNotFound, "Review not found")
		case errors.Is(err, service.ErrNotReviewAuthor):
			respondError(w, http.StatusForbidden, "You can only delete your own reviews")
		default:
			slog.Error("failed to delete review", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to delete review")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
