package service

import (
	"fmt"
	"time"

	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
)

// ProfileStats are derived reading statistics, recomputed on every request.
// AverageRating is formatted to one decimal ("0" when the user has no
// reviews) to match what the client renders directly.
type ProfileStats struct {
	TotalBooks    int    `json:"totalBooks"`
	WantToRead    int    `json:"wantToRead"`
	Reading       int    `json:"reading"`
	Read          int    `json:"read"`
	ReviewsCount  int    `json:"reviewsCount"`
	ClubsCount    int    `json:"clubsCount"`
	AverageRating string `json:"averageRating"`
	BooksThisYear int    `json:"booksThisYear"`
}

type Profile struct {
	User          *model.User         `json:"user"`
	Stats         ProfileStats        `json:"stats"`
	RecentReviews []*model.Review     `json:"recentReviews"`
	Clubs         []*model.Membership `json:"clubs"`
}

type ProfileService struct {
	userRepo       repository.UserRepository
	userBookRepo   repository.UserBookRepository
	reviewRepo     repository.ReviewRepository
	membershipRepo repository.MembershipRepository
	clubRepo       repository.ClubRepository
}

func NewProfileService(
	userRepo repository.UserRepository,
	userBookRepo repository.UserBookRepository,
	reviewRepo repository.ReviewRepository,
	membershipRepo repository.MembershipRepository,
	clubRepo repository.ClubRepository,
) *ProfileService {
	return &ProfileService{
		userRepo:       userRepo,
		userBookRepo:   userBookRepo,
		reviewRepo:     reviewRepo,
		membershipRepo: membershipRepo,
		clubRepo:       clubRepo,
	}
}

// Profile assembles the user's aggregated profile: derived stats, the ten
// most recent reviews (with books), and club memberships (with clubs).
func (s *ProfileService) Profile(userID string) (*Profile, error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return nil, err
	}

	userBooks, err := s.userBookRepo.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user books: %w", err)
	}

	reviews, err := s.reviewRepo.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	memberships, err := s.membershipRepo.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}

	for _, m := range memberships {
		m.Club, err = s.clubRepo.ByID(m.ClubID)
		if err != nil {
			return nil, fmt.Errorf("failed to load club: %w", err)
		}
	}

	recent := reviews
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return &Profile{
		User:          user,
		Stats:         ComputeStats(userBooks, reviews, memberships, time.Now()),
		RecentReviews: recent,
		Clubs:         memberships,
	}, nil
}

// ComputeStats is a pure projection over the user's rows; nothing is
// cached or persisted.
func ComputeStats(userBooks []*model.UserBook, reviews []*model.Review, memberships []*model.Membership, now time.Time) ProfileStats {
	stats := ProfileStats{
		TotalBooks:    len(userBooks),
		ReviewsCount:  len(reviews),
		ClubsCount:    len(memberships),
		AverageRating: "0",
	}

	for _, ub := range userBooks {
		switch ub.Status {
		case model.StatusWantToRead:
			stats.WantToRead++
		case model.StatusReading:
			stats.Reading++
		case model.StatusRead:
			stats.Read++
		}
		if ub.FinishedAt != nil && ub.FinishedAt.Year() == now.Year() {
			stats.BooksThisYear++
		}
	}

	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		stats.AverageRating = fmt.Sprintf("%.1f", float64(sum)/float64(len(reviews)))
	}

	return stats
}
