package service

import (
	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepo.ByID(id)
}

func (s *UserService) ByEmail(email string) (*model.User, error) {
	return s.userRepo.ByEmail(email)
}

// SetImage updates the user's avatar URL (nil clears it)
func (s *UserService) SetImage(userID string, url *string) error {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return err
	}

	user.Image = url
	return s.userRepo.Update(user)
}
