package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/model"
)

var (
	ErrClubNotFound = errors.New("club not found")
)

type ClubRepository interface {
	Create(club *model.Club, creatorID string) error
	ByID(id string) (*model.Club, error)
	All() ([]*model.Club, error)
	Update(club *model.Club) error
	Delete(id string) error
}

type clubRepository struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) ClubRepository {
	return &clubRepository{db: db}
}

// Create inserts the club and its creator's admin membership in one
// transaction. A club never exists without at least one admin.
func (r *clubRepository) Create(club *model.Club, creatorID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`INSERT INTO clubs (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		club.ID, club.Name, club.Description, club.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO memberships (id, club_id, user_id, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), club.ID, creatorID, model.RoleAdmin, time.Now())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *clubRepository) ByID(id string) (*model.Club, error) {
	club := &model.Club{}
	query := `SELECT * FROM clubs WHERE id = $1`

	err := r.db.Get(club, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrClubNotFound
	}

	return club, err
}

func (r *clubRepository) All() ([]*model.Club, error) {
	var clubs []*model.Club
	query := `SELECT * FROM clubs ORDER BY created_at DESC`

	err := r.db.Select(&clubs, query)
	if err != nil {
		return nil, err
	}

	return clubs, nil
}

func (r *clubRepository) Update(club *model.Club) error {
	query := `UPDATE clubs SET name = $1, description = $2 WHERE id = $3`

	result, err := r.db.Exec(query, club.Name, club.Description, club.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClubNotFound
	}

	return nil
}

// Delete removes the club; memberships cascade with it.
func (r *clubRepository) Delete(id string) error {
	query := `DELETE FROM clubs WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClubNotFound
	}

	return nil
}
