package model

import (
	"time"
)

// VerificationToken is a single-use, time-limited token for password resets.
// Identifier holds the account email the token was issued for.
type VerificationToken struct {
	ID         string     `db:"id"`
	Identifier string     `db:"identifier"`
	Token      string     `db:"token"`
	ExpiresAt  time.Time  `db:"expires_at"`
	UsedAt     *time.Time `db:"used_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (t *VerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *VerificationToken) IsUsed() bool {
	return t.UsedAt != nil
}

func (t *VerificationToken) IsValid() bool {
	return !t.IsExpired() && !t.IsUsed()
}
