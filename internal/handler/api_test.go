package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/readcircle/readcircle/internal/app"
	"github.com/readcircle/readcircle/internal/config"
	"github.com/readcircle/readcircle/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer spins up the full HTTP stack against a fresh in-memory
// database: real router, middleware, services, and migrations.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppName:          "readcircle",
		AppEnv:           "development",
		AppURL:           "http://localhost:8090",
		Port:             "8090",
		DBDriver:         "sqlite",
		DBConnection:     fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		ResetTokenExpiry: time.Hour,
		EmailFrom:        "test@example.com",
	}

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Close()
	})

	srv := httptest.NewServer(routes.SetupRoutes(a))
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns an HTTP client with its own cookie jar, representing
// one browser session.
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func request(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}

// register creates an account and leaves the session cookie in the
// client's jar.
func register(t *testing.T, client *http.Client, baseURL, email string) map[string]any {
	t.Helper()

	resp := request(t, client, http.MethodPost, baseURL+"/auth/register", map[string]any{
		"email":    email,
		"password": "super-secret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user map[string]any
	decode(t, resp, &user)
	return user
}

func createBook(t *testing.T, client *http.Client, baseURL, title string) map[string]any {
	t.Helper()

	resp := request(t, client, http.MethodPost, baseURL+"/books", map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var book map[string]any
	decode(t, resp, &book)
	return book
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body map[string]string
	decode(t, resp, &body)
	return body["error"]
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := request(t, client, http.MethodPost, srv.URL+"/auth/register", map[string]any{
		"email": "reader@example.com", "password": "1234567",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Password must be at least 8 characters", errorMessage(t, resp))

	resp = request(t, client, http.MethodPost, srv.URL+"/auth/register", map[string]any{
		"email": "not-an-email", "password": "super-secret",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	user := register(t, client, srv.URL, "reader@example.com")
	assert.Equal(t, "reader@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	resp = request(t, client, http.MethodPost, srv.URL+"/auth/register", map[string]any{
		"email": "reader@example.com", "password": "super-secret",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := request(t, client, http.MethodGet, srv.URL+"/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	register(t, client, srv.URL, "reader@example.com")

	resp = request(t, client, http.MethodGet, srv.URL+"/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]any
	decode(t, resp, &me)
	assert.Equal(t, "reader@example.com", me["email"])

	resp = request(t, client, http.MethodPost, srv.URL+"/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodGet, srv.URL+"/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	register(t, client, srv.URL, "reader@example.com")

	resp := request(t, newClient(t), http.MethodPost, srv.URL+"/auth/login", map[string]any{
		"email": "reader@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, newClient(t), http.MethodPost, srv.URL+"/auth/login", map[string]any{
		"email": "reader@example.com", "password": "super-secret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPasswordResetRequestNeverLeaks(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	// Unknown account gets the same answer as a real one
	resp := request(t, client, http.MethodPost, srv.URL+"/auth/request-reset", map[string]any{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	decode(t, resp, &body)
	assert.True(t, body["ok"])

	resp = request(t, client, http.MethodPost, srv.URL+"/auth/request-reset", map[string]any{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodPost, srv.URL+"/auth/reset", map[string]any{
		"token": "bogus", "password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestBooksCRUD(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := request(t, client, http.MethodPost, srv.URL+"/books", map[string]any{"title": "1984"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	register(t, client, srv.URL, "reader@example.com")

	book := createBook(t, client, srv.URL, "1984")
	bookID := book["id"].(string)

	resp = request(t, client, http.MethodPost, srv.URL+"/books", map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Title is required", errorMessage(t, resp))

	resp = request(t, client, http.MethodGet, srv.URL+"/books/"+bookID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	decode(t, resp, &got)
	assert.Equal(t, "1984", got["title"])

	resp = request(t, client, http.MethodGet, srv.URL+"/books", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	decode(t, resp, &list)
	assert.Len(t, list, 1)

	resp = request(t, client, http.MethodPut, srv.URL+"/books/"+bookID, map[string]any{
		"title": "Nineteen Eighty-Four", "author": "George Orwell",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &got)
	assert.Equal(t, "Nineteen Eighty-Four", got["title"])
	assert.Equal(t, "George Orwell", got["author"])

	resp = request(t, client, http.MethodDelete, srv.URL+"/books/"+bookID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodGet, srv.URL+"/books/"+bookID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// Book deletion is idempotent
	resp = request(t, client, http.MethodDelete, srv.URL+"/books/"+bookID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestReviews(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	bob := newClient(t)

	register(t, alice, srv.URL, "alice@example.com")
	register(t, bob, srv.URL, "bob@example.com")

	book := createBook(t, alice, srv.URL, "Dune")
	bookID := book["id"].(string)

	// Ratings outside 1..5 are rejected
	for _, rating := range []int{0, 6} {
		resp := request(t, bob, http.MethodPost, srv.URL+"/books/"+bookID+"/reviews", map[string]any{
			"content": "Wonderful", "rating": rating,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Rating must be between 1 and 5", errorMessage(t, resp))
	}

	resp := request(t, bob, http.MethodPost, srv.URL+"/books/"+bookID+"/reviews", map[string]any{
		"content": "Wonderful", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var review map[string]any
	decode(t, resp, &review)
	reviewID := review["id"].(string)

	// One review per user per book
	resp = request(t, bob, http.MethodPost, srv.URL+"/books/"+bookID+"/reviews", map[string]any{
		"content": "Still wonderful", "rating": 4,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, alice, http.MethodGet, srv.URL+"/books/"+bookID+"/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reviews []map[string]any
	decode(t, resp, &reviews)
	require.Len(t, reviews, 1)
	author := reviews[0]["user"].(map[string]any)
	assert.Equal(t, "bob@example.com", author["email"])

	// Only the author may edit
	resp = request(t, alice, http.MethodPut, srv.URL+"/reviews/"+reviewID, map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, bob, http.MethodPut, srv.URL+"/reviews/"+reviewID, map[string]any{"rating": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &review)
	assert.Equal(t, float64(3), review["rating"])
	assert.Equal(t, "Wonderful", review["content"])

	resp = request(t, alice, http.MethodDelete, srv.URL+"/reviews/"+reviewID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, bob, http.MethodDelete, srv.URL+"/reviews/"+reviewID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, bob, http.MethodGet, srv.URL+"/reviews/"+reviewID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestReviewsOnMissingBook(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := request(t, client, http.MethodGet, srv.URL+"/books/missing/reviews", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	register(t, client, srv.URL, "reader@example.com")

	resp = request(t, client, http.MethodPost, srv.URL+"/books/missing/reviews", map[string]any{
		"content": "ghost review", "rating": 3,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestReadingStatus(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	register(t, client, srv.URL, "reader@example.com")
	book := createBook(t, client, srv.URL, "Dune")
	bookID := book["id"].(string)

	// Untracked book reads as null, not 404
	resp := request(t, client, http.MethodGet, srv.URL+"/books/"+bookID+"/user-book", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", bodyString(t, resp))

	resp = request(t, client, http.MethodPut, srv.URL+"/books/"+bookID+"/user-book", map[string]any{
		"status": "not-a-status",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodPut, srv.URL+"/books/"+bookID+"/user-book", map[string]any{
		"status": "reading",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first map[string]any
	decode(t, resp, &first)
	require.NotNil(t, first["startedAt"])
	firstStarted, err := time.Parse(time.RFC3339Nano, first["startedAt"].(string))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	// Repeating the write must not move the original stamp
	resp = request(t, client, http.MethodPut, srv.URL+"/books/"+bookID+"/user-book", map[string]any{
		"status": "reading",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var second map[string]any
	decode(t, resp, &second)
	require.NotNil(t, second["startedAt"])
	secondStarted, err := time.Parse(time.RFC3339Nano, second["startedAt"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, firstStarted, secondStarted, 10*time.Millisecond)

	// Partial update keeps the status
	resp = request(t, client, http.MethodPut, srv.URL+"/books/"+bookID+"/user-book", map[string]any{
		"notes": "halfway through",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]any
	decode(t, resp, &updated)
	assert.Equal(t, "reading", updated["status"])
	assert.Equal(t, "halfway through", updated["notes"])

	resp = request(t, client, http.MethodGet, srv.URL+"/user-books", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tracked []map[string]any
	decode(t, resp, &tracked)
	require.Len(t, tracked, 1)
	trackedBook := tracked[0]["book"].(map[string]any)
	assert.Equal(t, "Dune", trackedBook["title"])

	resp = request(t, client, http.MethodDelete, srv.URL+"/books/"+bookID+"/user-book", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodGet, srv.URL+"/books/"+bookID+"/user-book", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", bodyString(t, resp))
}

func TestClubMembershipScenario(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t)
	bob := newClient(t)

	aliceUser := register(t, alice, srv.URL, "alice@example.com")
	bobUser := register(t, bob, srv.URL, "bob@example.com")

	// Alice creates the club and becomes its admin
	resp := request(t, alice, http.MethodPost, srv.URL+"/clubs", map[string]any{"name": "Sci-Fi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var club map[string]any
	decode(t, resp, &club)
	clubID := club["id"].(string)

	memberships := club["memberships"].([]any)
	require.Len(t, memberships, 1)
	creator := memberships[0].(map[string]any)
	assert.Equal(t, aliceUser["id"], creator["userId"])
	assert.Equal(t, "admin", creator["role"])

	// Bob joins himself
	resp = request(t, bob, http.MethodPost, srv.URL+"/clubs/"+clubID+"/members", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var joined map[string]any
	decode(t, resp, &joined)
	assert.Equal(t, "member", joined["role"])

	// Joining twice conflicts
	resp = request(t, bob, http.MethodPost, srv.URL+"/clubs/"+clubID+"/members", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	// A plain member cannot modify the club
	resp = request(t, bob, http.MethodPut, srv.URL+"/clubs/"+clubID, map[string]any{"name": "Bob's Club"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, bob, http.MethodDelete, srv.URL+"/clubs/"+clubID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	// The admin can
	resp = request(t, alice, http.MethodPut, srv.URL+"/clubs/"+clubID, map[string]any{"name": "Science Fiction"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &club)
	assert.Equal(t, "Science Fiction", club["name"])

	// The sole admin cannot leave
	resp = request(t, alice, http.MethodDelete, srv.URL+"/clubs/"+clubID+"/members", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	// Bob cannot remove Alice
	resp = request(t, bob, http.MethodDelete, srv.URL+"/clubs/"+clubID+"/members", map[string]any{
		"userId": aliceUser["id"],
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	// Alice removes Bob
	resp = request(t, alice, http.MethodDelete, srv.URL+"/clubs/"+clubID+"/members", map[string]any{
		"userId": bobUser["id"],
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, alice, http.MethodGet, srv.URL+"/clubs/"+clubID+"/members", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var members []map[string]any
	decode(t, resp, &members)
	assert.Len(t, members, 1)

	// And finally deletes the club
	resp = request(t, alice, http.MethodDelete, srv.URL+"/clubs/"+clubID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, alice, http.MethodGet, srv.URL+"/clubs/"+clubID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestProfile(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := request(t, client, http.MethodGet, srv.URL+"/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	register(t, client, srv.URL, "reader@example.com")

	book := createBook(t, client, srv.URL, "Dune")
	bookID := book["id"].(string)

	resp = request(t, client, http.MethodPut, srv.URL+"/books/"+bookID+"/user-book", map[string]any{
		"status": "read", "rating": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodPost, srv.URL+"/books/"+bookID+"/reviews", map[string]any{
		"content": "A classic.", "rating": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodGet, srv.URL+"/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile map[string]any
	decode(t, resp, &profile)

	user := profile["user"].(map[string]any)
	assert.Equal(t, "reader@example.com", user["email"])

	stats := profile["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["totalBooks"])
	assert.Equal(t, float64(1), stats["read"])
	assert.Equal(t, float64(1), stats["reviewsCount"])
	assert.Equal(t, float64(1), stats["booksThisYear"])
	assert.Equal(t, "4.0", stats["averageRating"])

	reviews := profile["recentReviews"].([]any)
	assert.Len(t, reviews, 1)
}

func TestAvatarUnavailableWithoutStorage(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	register(t, client, srv.URL, "reader@example.com")

	resp := request(t, client, http.MethodPost, srv.URL+"/profile/avatar", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	resp = request(t, client, http.MethodDelete, srv.URL+"/profile/avatar", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()
}
