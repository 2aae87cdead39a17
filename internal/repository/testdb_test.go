package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/db"
	"github.com/readcircle/readcircle/internal/model"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh in-memory SQLite database with all migrations
// applied. Shared cache keeps the database alive across pooled connections.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

func createTestUser(t *testing.T, repo UserRepository, email string) *model.User {
	t.Helper()

	hash := "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtesth"
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &hash,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(user))
	return user
}

func createTestBook(t *testing.T, repo BookRepository, title string) *model.Book {
	t.Helper()

	book := &model.Book{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(book))
	return book
}

func createTestClub(t *testing.T, repo ClubRepository, name, creatorID string) *model.Club {
	t.Helper()

	club := &model.Club{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(club, creatorID))
	return club
}
