package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/db"
	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/stretchr/testify/require"
)

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

func insertUser(t *testing.T, repo repository.UserRepository, email string) *model.User {
	t.Helper()

	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(user))
	return user
}

func insertBook(t *testing.T, repo repository.BookRepository, title string) *model.Book {
	t.Helper()

	book := &model.Book{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(book))
	return book
}
