package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/model"
)

var (
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrDuplicateMembership = errors.New("user is already a member")
	ErrLastAdmin           = errors.New("cannot remove the last admin")
)

type MembershipRepository interface {
	Create(membership *model.Membership) error
	ByClub(clubID string) ([]*model.Membership, error)
	ByUser(userID string) ([]*model.Membership, error)
	Remove(clubID, userID string) error
}

type membershipRepository struct {
	db *sqlx.DB
}

func NewMembershipRepository(db *sqlx.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Create relies on the UNIQUE(club_id, user_id) index for the
// one-membership-per-user-per-club invariant. Two concurrent joins cannot
// both succeed; the loser gets ErrDuplicateMembership.
func (r *membershipRepository) Create(membership *model.Membership) error {
	query := `INSERT INTO memberships (id, club_id, user_id, role, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query,
		membership.ID,
		membership.ClubID,
		membership.UserID,
		membership.Role,
		membership.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMembership
		}
		return err
	}

	return nil
}

func (r *membershipRepository) ByClub(clubID string) ([]*model.Membership, error) {
	var memberships []*model.Membership
	query := `SELECT m.id, m.club_id, m.user_id, m.role, m.created_at,
	                 u.id AS "user.id", u.name AS "user.name", u.email AS "user.email", u.image AS "user.image"
	          FROM memberships m
	          JOIN users u ON u.id = m.user_id
	          WHERE m.club_id = $1
	          ORDER BY m.created_at ASC`

	err := r.db.Select(&memberships, query, clubID)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

func (r *membershipRepository) ByUser(userID string) ([]*model.Membership, error) {
	var memberships []*model.Membership
	query := `SELECT * FROM memberships WHERE user_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&memberships, query, userID)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

// Remove deletes one membership inside a transaction that recounts the club's
// admins first, so the last admin cannot be removed even under concurrent
// requests. Authorization (who may remove whom) is decided by the caller;
// this only upholds the storage invariant.
func (r *membershipRepository) Remove(clubID, userID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	target := &model.Membership{}
	err = tx.Get(target, `SELECT * FROM memberships WHERE club_id = $1 AND user_id = $2`, clubID, userID)
	if err == sql.ErrNoRows {
		return ErrMembershipNotFound
	}
	if err != nil {
		return err
	}

	if target.Role == model.RoleAdmin {
		var admins int
		err = tx.Get(&admins, `SELECT COUNT(*) FROM memberships WHERE club_id = $1 AND role = $2`, clubID, model.RoleAdmin)
		if err != nil {
			return err
		}
		if admins == 1 {
			return ErrLastAdmin
		}
	}

	_, err = tx.Exec(`DELETE FROM memberships WHERE id = $1`, target.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
