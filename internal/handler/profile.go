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

const maxAvatarUploadBytes = 10 << 20 // 10 MB multipart cap

type profileHandler struct {
	profileService *service.ProfileService
	fileService    *service.FileService
}

func NewProfileHandler(profileService *service.ProfileService, fileService *service.FileService) *profileHandler {
	return &profileHandler{
		profileService: profileService,
		fileService:    fileService,
	}
}

// Get returns the caller's profile with derived reading stats, recent
// reviews, and club memberships.
func (h *profileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	profile, err := h.profileService.Profile(user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to load profile", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UploadAvatar replaces the caller's avatar. Requires configured object
// storage; responds 503 otherwise.
func (h *profileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if !h.fileService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "Avatar uploads are not available")
		return
	}

	err := r.ParseMultipartForm(maxAvatarUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Avatar file is required")
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close uploaded file", "error", closeErr)
		}
	}()

	err = validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	avatar, err := h.fileService.UploadAvatar(user.ID, file, header)
	if err != nil {
		slog.Error("failed to upload avatar", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"image": h.fileService.URL(avatar)})
}

// DeleteAvatar removes the caller's avatar, if any.
func (h *profileHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if !h.fileService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "Avatar uploads are not available")
		return
	}

	err := h.fileService.DeleteAvatar(user.ID)
	if err != nil {
		slog.Error("failed to delete avatar", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to delete avatar")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
