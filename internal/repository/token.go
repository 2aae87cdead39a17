package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

type TokenRepository interface {
	Create(token *model.VerificationToken) error
	Consume(token string) (*model.VerificationToken, error)
	DeleteByIdentifier(identifier string) error
}

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *model.VerificationToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO verification_tokens (id, identifier, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query,
		token.ID,
		token.Identifier,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// Consume atomically marks a token as used and returns it.
// Only one of two concurrent requests with the same token can succeed;
// the other gets ErrTokenNotFound. Expired tokens never match.
func (r *tokenRepository) Consume(token string) (*model.VerificationToken, error) {
	var t model.VerificationToken
	now := time.Now()

	query := `
		UPDATE verification_tokens
		SET used_at = $1
		WHERE token = $2
		AND used_at IS NULL
		AND expires_at > $3
		RETURNING *
	`

	err := r.db.Get(&t, query, now, token, now)
	if err == sql.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// DeleteByIdentifier invalidates all outstanding reset tokens for an email.
// Called after a successful reset so stale links stop working.
func (r *tokenRepository) DeleteByIdentifier(identifier string) error {
	query := `DELETE FROM verification_tokens WHERE identifier = $1`
	_, err := r.db.Exec(query, identifier)
	return err
}
