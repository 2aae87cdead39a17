package model

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Membership struct {
	ID        string    `db:"id" json:"id"`
	ClubID    string    `db:"club_id" json:"clubId"`
	UserID    string    `db:"user_id" json:"userId"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Joined data
	User *PublicUser `db:"user" json:"user,omitempty"`
	Club *Club       `db:"-" json:"club,omitempty"`
}

func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
