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

type clubHandler struct {
	clubService *service.ClubService
}

func NewClubHandler(clubService *service.ClubService) *clubHandler {
	return &clubHandler{clubService: clubService}
}

func (h *clubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.All()
	if err != nil {
		slog.Error("failed to list clubs", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load clubs")
		return
	}

	respondJSON(w, http.StatusOK, clubs)
}

// Create makes a new club with the caller as its admin.
func (h *clubHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	club, err := h.clubService.Create(user.ID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, validation.ErrClubNameRequired) || errors.Is(err, validation.ErrClubNameTooLong) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to create club", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create club")
		return
	}

	respondJSON(w, http.StatusCreated, club)
}

func (h *clubHandler) Get(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubService.ByID(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			respondError(w, http.StatusNotFound, "Club not found")
			return
		}
		slog.Error("failed to get club", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load club")
		return
	}

	respondJSON(w, http.StatusOK, club)
}

func (h *clubHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	club, err := h.clubService.Update(r.PathValue("id"), user.ID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClubNotFound):
			respondError(w, http.StatusNotFound, "Club not found")
		case errors.Is(err, service.ErrNotClubAdmin):
			respondError(w, http.StatusForbidden, "Only club admins can do that")
		case errors.Is(err, validation.ErrClubNameRequired), errors.Is(err, validation.ErrClubNameTooLong):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to update club", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to update club")
		}
		return
	}

	respondJSON(w, http.StatusOK, club)
}

func (h *clubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.clubService.Delete(r.PathValue("id"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClubNotFound):
			respondError(w, http.StatusNotFound, "Club not found")
		case errors.Is(err, service.ErrNotClubAdmin):
			respondError(w, http.StatusForbidden, "Only club admins can do that")
		default:
			slog.Error("failed to delete club", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to delete club")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *clubHandler) Members(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.clubService.Members(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrClubNotFound) {
			respondError(w, http.StatusNotFound, "Club not found")
			return
		}
		slog.Error("failed to list members", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load members")
		return
	}

	respondJSON(w, http.StatusOK, memberships)
}

// AddMember joins a user to the club. With no userId in the body the
// caller joins themselves. New members always get role "member".
func (h *clubHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		UserID *string `json:"userId"`
	}
	if err := decodeJSONOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetUserID := user.ID
	if req.UserID != nil && *req.UserID != "" {
		targetUserID = *req.UserID
	}

	membership, err := h.clubService.AddMember(r.PathValue("id"), targetUserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClubNotFound):
			respondError(w, http.StatusNotFound, "Club not found")
		case errors.Is(err, repository.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, repository.ErrDuplicateMembership):
			respondError(w, http.StatusConflict, "User is already a member")
		default:
			slog.Error("failed to add member", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to add member")
		}
		return
	}

	respondJSON(w, http.StatusCreated, membership)
}

// RemoveMember removes a member. Members may remove themselves; admins may
// remove anyone except the last remaining admin.
func (h *clubHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		UserID *string `json:"userId"`
	}
	if err := decodeJSONOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetUserID := user.ID
	if req.UserID != nil && *req.UserID != "" {
		targetUserID = *req.UserID
	}

	err := h.clubService.RemoveMember(r.PathValue("id"), user.ID, targetUserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClubNotFound):
			respondError(w, http.StatusNotFound, "Club not found")
		case errors.Is(err, service.ErrNotAMember), errors.Is(err, repository.ErrMembershipNotFound):
			respondError(w, http.StatusNotFound, "Membership not found")
		case errors.Is(err, service.ErrLastAdmin):
			respondError(w, http.StatusBadRequest, "Cannot remove the last admin")
		case errors.Is(err, service.ErrNotClubAdmin):
			respondError(w, http.StatusForbidden, "Only club admins can remove other members")
		default:
			slog.Error("failed to remove member", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to remove member")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
