package service

import (
	"testing"
	"time"

	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func newUserBookFixture(t *testing.T) (*UserBookService, *model.User, *model.Book) {
	t.Helper()

	database := newTestDB(t)
	userRepo := repository.NewUserRepository(database)
	bookRepo := repository.NewBookRepository(database)
	userBookRepo := repository.NewUserBookRepository(database)

	user := insertUser(t, userRepo, "reader@example.com")
	book := insertBook(t, bookRepo, "Dune")

	return NewUserBookService(userBookRepo, bookRepo), user, book
}

func TestUserBookGetUntracked(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	userBook, err := svc.Get(user.ID, book.ID)
	require.NoError(t, err)
	assert.Nil(t, userBook)
}

func TestUserBookGetUnknownBook(t *testing.T) {
	svc, user, _ := newUserBookFixture(t)

	_, err := svc.Get(user.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrBookNotFound)
}

func TestUserBookUpsertDefaults(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	userBook, err := svc.Upsert(user.ID, book.ID, UserBookChange{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusWantToRead, userBook.Status)
	assert.Nil(t, userBook.StartedAt)
	assert.Nil(t, userBook.FinishedAt)
}

func TestUserBookStartedAtStampedOnce(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	first, err := svc.Upsert(user.ID, book.ID, UserBookChange{Status: strptr(model.StatusReading)})
	require.NoError(t, err)
	require.NotNil(t, first.StartedAt)
	firstStamp := *first.StartedAt

	time.Sleep(50 * time.Millisecond)

	// Repeating the same status write must not move the stamp
	second, err := svc.Upsert(user.ID, book.ID, UserBookChange{Status: strptr(model.StatusReading)})
	require.NoError(t, err)
	require.NotNil(t, second.StartedAt)
	assert.WithinDuration(t, firstStamp, *second.StartedAt, 10*time.Millisecond,
		"startedAt moved from %v to %v", firstStamp, second.StartedAt)
}

func TestUserBookFinishedAtStampedOnce(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	first, err := svc.Upsert(user.ID, book.ID, UserBookChange{Status: strptr(model.StatusRead)})
	require.NoError(t, err)
	require.NotNil(t, first.FinishedAt)
	firstStamp := *first.FinishedAt

	time.Sleep(50 * time.Millisecond)

	second, err := svc.Upsert(user.ID, book.ID, UserBookChange{Status: strptr(model.StatusRead)})
	require.NoError(t, err)
	require.NotNil(t, second.FinishedAt)
	assert.WithinDuration(t, firstStamp, *second.FinishedAt, 10*time.Millisecond)
}

func TestUserBookExplicitTimestampWins(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	explicit := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	userBook, err := svc.Upsert(user.ID, book.ID, UserBookChange{
		Status:       strptr(model.StatusReading),
		StartedAt:    &explicit,
		StartedAtSet: true,
	})
	require.NoError(t, err)
	require.NotNil(t, userBook.StartedAt)
	assert.True(t, userBook.StartedAt.Equal(explicit))

	// An explicit null clears the stamp even while the status stays "reading"
	cleared, err := svc.Upsert(user.ID, book.ID, UserBookChange{
		StartedAt:    nil,
		StartedAtSet: true,
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.StartedAt)
}

func TestUserBookPartialUpdateKeepsOtherFields(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	_, err := svc.Upsert(user.ID, book.ID, UserBookChange{
		Status: strptr(model.StatusRead),
		Rating: intptr(5), RatingSet: true,
		Notes: strptr("Loved it"), NotesSet: true,
	})
	require.NoError(t, err)

	// Updating only the notes leaves status and rating untouched
	updated, err := svc.Upsert(user.ID, book.ID, UserBookChange{
		Notes: strptr("Loved it even more"), NotesSet: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRead, updated.Status)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 5, *updated.Rating)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "Loved it even more", *updated.Notes)
}

func TestUserBookUpsertValidation(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	_, err := svc.Upsert(user.ID, book.ID, UserBookChange{Status: strptr("finished")})
	assert.ErrorIs(t, err, validation.ErrInvalidStatus)

	_, err = svc.Upsert(user.ID, book.ID, UserBookChange{Rating: intptr(6), RatingSet: true})
	assert.ErrorIs(t, err, validation.ErrInvalidRating)
}

func TestUserBookDelete(t *testing.T) {
	svc, user, book := newUserBookFixture(t)

	_, err := svc.Upsert(user.ID, book.ID, UserBookChange{Status: strptr(model.StatusReading)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID, book.ID))

	userBook, err := svc.Get(user.ID, book.ID)
	require.NoError(t, err)
	assert.Nil(t, userBook)

	assert.ErrorIs(t, svc.Delete(user.ID, book.ID), repository.ErrUserBookNotFound)
}
