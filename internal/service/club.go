package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/validation"
)

var (
	ErrNotClubAdmin = errors.New("only admins can modify the club")
	ErrNotAMember   = errors.New("user is not a member")
	ErrLastAdmin    = repository.ErrLastAdmin
)

// RemovalDecision is the outcome of the membership-removal authorization
// check. Reason is set when Allowed is false.
type RemovalDecision struct {
	Allowed bool
	Reason  string
}

const (
	RemovalReasonForbidden  = "forbidden"
	RemovalReasonLastAdmin  = "cannot remove the last admin"
	RemovalReasonNotAMember = "user is not a member"
)

// CanModifyClub reports whether userID holds an admin membership.
// A club with no memberships has no admins and denies everything.
func CanModifyClub(memberships []*model.Membership, userID string) bool {
	for _, m := range memberships {
		if m.UserID == userID && m.IsAdmin() {
			return true
		}
	}
	return false
}

// CanRemoveMember decides whether requesterID may remove targetUserID from
// the club, given the club's full membership list. Pure: no side effects.
//
//   - self-leave is allowed, unless the target is the club's sole admin
//   - an admin may remove any other member
//   - anything else is forbidden
func CanRemoveMember(memberships []*model.Membership, requesterID, targetUserID string) RemovalDecision {
	var target *model.Membership
	admins := 0
	for _, m := range memberships {
		if m.IsAdmin() {
			admins++
		}
		if m.UserID == targetUserID {
			target = m
		}
	}

	if target == nil {
		return RemovalDecision{Reason: RemovalReasonNotAMember}
	}

	if requesterID == targetUserID {
		if target.IsAdmin() && admins == 1 {
			return RemovalDecision{Reason: RemovalReasonLastAdmin}
		}
		return RemovalDecision{Allowed: true}
	}

	if CanModifyClub(memberships, requesterID) {
		return RemovalDecision{Allowed: true}
	}

	return RemovalDecision{Reason: RemovalReasonForbidden}
}

type ClubService struct {
	clubRepo       repository.ClubRepository
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
}

func NewClubService(
	clubRepo repository.ClubRepository,
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
) *ClubService {
	return &ClubService{
		clubRepo:       clubRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
	}
}

// All returns every club with its membership list (members include public
// user fields), newest club first.
func (s *ClubService) All() ([]*model.Club, error) {
	clubs, err := s.clubRepo.All()
	if err != nil {
		return nil, err
	}

	for _, club := range clubs {
		club.Memberships, err = s.membershipRepo.ByClub(club.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load memberships: %w", err)
		}
	}

	return clubs, nil
}

func (s *ClubService) ByID(id string) (*model.Club, error) {
	club, err := s.clubRepo.ByID(id)
	if err != nil {
		return nil, err
	}

	club.Memberships, err = s.membershipRepo.ByClub(club.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}

	return club, nil
}

// Create inserts the club with its creator as admin (atomically, so a club
// never exists without an admin).
func (s *ClubService) Create(creatorID, name string, description *string) (*model.Club, error) {
	err := validation.ValidateClubName(name)
	if err != nil {
		return nil, err
	}

	club := &model.Club{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: normalizeOptional(description),
		CreatedAt:   time.Now(),
	}

	err = s.clubRepo.Create(club, creatorID)
	if err != nil {
		return nil, err
	}

	return s.ByID(club.ID)
}

// Update applies a partial update (name and/or description). Admin only.
func (s *ClubService) Update(clubID, userID string, name, description *string) (*model.Club, error) {
	club, err := s.ByID(clubID)
	if err != nil {
		return nil, err
	}

	if !CanModifyClub(club.Memberships, userID) {
		return nil, ErrNotClubAdmin
	}

	if name != nil {
		err = validation.ValidateClubName(*name)
		if err != nil {
			return nil, err
		}
		club.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		club.Description = normalizeOptional(description)
	}

	err = s.clubRepo.Update(club)
	if err != nil {
		return nil, err
	}

	return s.ByID(clubID)
}

func (s *ClubService) Delete(clubID, userID string) error {
	club, err := s.ByID(clubID)
	if err != nil {
		return err
	}

	if !CanModifyClub(club.Memberships, userID) {
		return ErrNotClubAdmin
	}

	return s.clubRepo.Delete(clubID)
}

func (s *ClubService) Members(clubID string) ([]*model.Membership, error) {
	_, err := s.clubRepo.ByID(clubID)
	if err != nil {
		return nil, err
	}

	return s.membershipRepo.ByClub(clubID)
}

// AddMember joins targetUserID to the club (self-join when target equals
// requester). New members always get role "member"; admin rights are only
// ever granted at club creation.
func (s *ClubService) AddMember(clubID, targetUserID string) (*model.Membership, error) {
	_, err := s.clubRepo.ByID(clubID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.ByID(targetUserID)
	if err != nil {
		return nil, err
	}

	membership := &model.Membership{
		ID:        uuid.New().String(),
		ClubID:    clubID,
		UserID:    targetUserID,
		Role:      model.RoleMember,
		CreatedAt: time.Now(),
	}

	err = s.membershipRepo.Create(membership)
	if err != nil {
		return nil, err
	}

	membership.User = user.Public()
	return membership, nil
}

// RemoveMember removes targetUserID from the club on requesterID's behalf.
// The pure decision runs over the fetched membership list; the repository
// re-verifies the last-admin invariant inside its transaction so concurrent
// removals cannot strip the final admin.
func (s *ClubService) RemoveMember(clubID, requesterID, targetUserID string) error {
	_, err := s.clubRepo.ByID(clubID)
	if err != nil {
		return err
	}

	memberships, err := s.membershipRepo.ByClub(clubID)
	if err != nil {
		return err
	}

	decision := CanRemoveMember(memberships, requesterID, targetUserID)
	if !decision.Allowed {
		switch decision.Reason {
		case RemovalReasonNotAMember:
			return ErrNotAMember
		case RemovalReasonLastAdmin:
			return ErrLastAdmin
		default:
			return ErrNotClubAdmin
		}
	}

	return s.membershipRepo.Remove(clubID, targetUserID)
}
