package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/readcircle/readcircle/internal/ctxkeys"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/service"
	"github.com/readcircle/readcircle/internal/validation"
)

type userBookHandler struct {
	userBookService *service.UserBookService
}

func NewUserBookHandler(userBookService *service.UserBookService) *userBookHandler {
	return &userBookHandler{userBookService: userBookService}
}

// Get returns the user's reading status for a book. An untracked book is
// a 200 with a null body, not a 404.
func (h *userBookHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	userBook, err := h.userBookService.Get(user.ID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		slog.Error("failed to get reading status", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load reading status")
		return
	}

	respondJSON(w, http.StatusOK, userBook)
}

// List returns all of the user's tracked books with book data.
func (h *userBookHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	userBooks, err := h.userBookService.ByUser(user.ID)
	if err != nil {
		slog.Error("failed to list reading statuses", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load reading statuses")
		return
	}

	respondJSON(w, http.StatusOK, userBooks)
}

// Upsert creates or updates the reading-status record. POST and PUT are
// equivalent.
func (h *userBookHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	change, err := decodeUserBookChange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userBook, err := h.userBookService.Upsert(user.ID, r.PathValue("id"), change)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			respondError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, validation.ErrInvalidStatus), errors.Is(err, validation.ErrInvalidRating):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to save reading status", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to save reading status")
		}
		return
	}

	respondJSON(w, http.StatusOK, userBook)
}

func (h *userBookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userBookService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			respondError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, repository.ErrUserBookNotFound):
			respondError(w, http.StatusNotFound, "Reading status not found")
		default:
			slog.Error("failed to delete reading status", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to delete reading status")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeUserBookChange decodes a partial reading-status update, keeping
// track of which fields were present so a JSON null clears a value while
// an omitted field leaves it alone.
func decodeUserBookChange(r *http.Request) (service.UserBookChange, error) {
	var change service.UserBookChange

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	var fields map[string]json.RawMessage
	err := json.NewDecoder(r.Body).Decode(&fields)
	if err != nil && !errors.Is(err, io.EOF) {
		return change, errors.New("invalid JSON body")
	}

	if raw, ok := fields["status"]; ok {
		if err := json.Unmarshal(raw, &change.Status); err != nil {
			return change, errors.New("invalid status value")
		}
	}
	if raw, ok := fields["rating"]; ok {
		change.RatingSet = true
		if err := json.Unmarshal(raw, &change.Rating); err != nil {
			return change, validation.ErrInvalidRating
		}
	}
	if raw, ok := fields["notes"]; ok {
		change.NotesSet = true
		if err := json.Unmarshal(raw, &change.Notes); err != nil {
			return change, errors.New("invalid notes value")
		}
	}
	if raw, ok := fields["startedAt"]; ok {
		change.StartedAtSet = true
		if err := unmarshalTime(raw, &change.StartedAt); err != nil {
			return change, errors.New("invalid startedAt value")
		}
	}
	if raw, ok := fields["finishedAt"]; ok {
		change.FinishedAtSet = true
		if err := unmarshalTime(raw, &change.FinishedAt); err != nil {
			return change, errors.New("invalid finishedAt value")
		}
	}

	return change, nil
}

func unmarshalTime(raw json.RawMessage, dst **time.Time) error {
	var t *time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return err
	}
	*dst = t
	return nil
}
