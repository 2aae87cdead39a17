package model

import (
	"time"
)

const (
	StatusWantToRead = "want_to_read"
	StatusReading    = "reading"
	StatusRead       = "read"
)

// UserBook is one user's reading-status record for one book.
// There is at most one row per (user, book) pair.
type UserBook struct {
	UserID     string     `db:"user_id" json:"userId"`
	BookID     string     `db:"book_id" json:"bookId"`
	Status     string     `db:"status" json:"status"`
	Rating     *int       `db:"rating" json:"rating"`
	Notes      *string    `db:"notes" json:"notes"`
	StartedAt  *time.Time `db:"started_at" json:"startedAt"`
	FinishedAt *time.Time `db:"finished_at" json:"finishedAt"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`

	// Joined data
	Book *Book `db:"book" json:"book,omitempty"`
}
