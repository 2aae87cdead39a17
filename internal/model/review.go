package model

import (
	"time"
)

type Review struct {
	ID        string    `db:"id" json:"id"`
	BookID    string    `db:"book_id" json:"bookId"`
	UserID    string    `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"content"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Joined data
	User *PublicUser `db:"user" json:"user,omitempty"`
	Book *Book       `db:"book" json:"book,omitempty"`
}
