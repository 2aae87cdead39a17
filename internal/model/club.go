package model

import (
	"time"
)

type Club struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	// Loaded separately (not in database)
	Memberships []*Membership `db:"-" json:"memberships,omitempty"`
}
