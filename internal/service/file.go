package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/storage"
)

var ErrStorageUnavailable = errors.New("file storage is not configured")

type FileService struct {
	fileRepo    repository.FileRepository
	userService *UserService
	storage     storage.Storage
}

func NewFileService(fileRepo repository.FileRepository, userService *UserService, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo:    fileRepo,
		userService: userService,
		storage:     storage,
	}
}

// Enabled reports whether file uploads are available.
func (s *FileService) Enabled() bool {
	return s.storage != nil
}

// UploadAvatar stores a new avatar for the user, replacing any existing one,
// and updates the user's image URL.
// Note: file validation (type, size, content) should be done by the caller.
func (s *FileService) UploadAvatar(userID string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	// Remove the previous avatar first so orphaned objects don't pile up
	if err := s.DeleteAvatar(userID); err != nil {
		return nil, err
	}

	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	storagePath := filepath.Join("avatars", filename)

	err := s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	fileModel := &model.File{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         model.FileTypeAvatar,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.fileRepo.Create(fileModel)
	if err != nil {
		// If DB insert fails, try to cleanup the uploaded file
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	url := s.URL(fileModel)
	if err := s.userService.SetImage(userID, &url); err != nil {
		return nil, err
	}

	return fileModel, nil
}

// Avatar retrieves the user's current avatar record.
func (s *FileService) Avatar(userID string) (*model.File, error) {
	return s.fileRepo.ByUserAndType(userID, model.FileTypeAvatar)
}

// URL returns the public URL for a file.
func (s *FileService) URL(file *model.File) string {
	if file == nil || s.storage == nil {
		return ""
	}
	return s.storage.URL(file.StoragePath)
}

// DeleteAvatar removes the user's avatar from storage and the database and
// clears the user's image URL. It is a no-op when no avatar exists.
func (s *FileService) DeleteAvatar(userID string) error {
	if s.storage == nil {
		return ErrStorageUnavailable
	}

	file, err := s.Avatar(userID)
	if err != nil {
		if err == repository.ErrFileNotFound {
			return nil
		}
		return err
	}

	// Delete from storage (best effort)
	if delErr := s.storage.Delete(file.StoragePath); delErr != nil {
		slog.Error("failed to delete file from storage", "error", delErr, "path", file.StoragePath)
	}

	if err := s.fileRepo.Delete(file.ID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	return s.userService.SetImage(userID, nil)
}
