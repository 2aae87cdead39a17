package routes

import (
	"net/http"

	"github.com/readcircle/readcircle/internal/app"
	"github.com/readcircle/readcircle/internal/handler"
	"github.com/readcircle/readcircle/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	book := handler.NewBookHandler(app.BookService)
	review := handler.NewReviewHandler(app.ReviewService)
	userBook := handler.NewUserBookHandler(app.UserBookService)
	club := handler.NewClubHandler(app.ClubService)
	profile := handler.NewProfileHandler(app.ProfileService, app.FileService)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("POST /auth/request-reset", rateLimiter(auth.RequestReset))
	mux.HandleFunc("POST /auth/reset", rateLimiter(auth.Reset))

	// OAuth
	mux.HandleFunc("GET /auth/google", rateLimiter(auth.GoogleAuth))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /auth/github", rateLimiter(auth.GitHubAuth))
	mux.HandleFunc("GET /auth/github/callback", rateLimiter(auth.GitHubCallback))

	// Books
	mux.HandleFunc("GET /books", book.List)
	mux.HandleFunc("POST /books", middleware.RequireAuth(book.Create))
	mux.HandleFunc("GET /books/{id}", book.Get)
	mux.HandleFunc("PUT /books/{id}", middleware.RequireAuth(book.Update))
	mux.HandleFunc("DELETE /books/{id}", middleware.RequireAuth(book.Delete))

	// Reviews
	mux.HandleFunc("GET /books/{id}/reviews", review.ListByBook)
	mux.HandleFunc("POST /books/{id}/reviews", middleware.RequireAuth(review.Create))
	mux.HandleFunc("GET /reviews/{id}", review.Get)
	mux.HandleFunc("PUT /reviews/{id}", middleware.RequireAuth(review.Update))
	mux.HandleFunc("DELETE /reviews/{id}", middleware.RequireAuth(review.Delete))

	// Reading status
	mux.HandleFunc("GET /books/{id}/user-book", middleware.RequireAuth(userBook.Get))
	mux.HandleFunc("POST /books/{id}/user-book", middleware.RequireAuth(userBook.Upsert))
	mux.HandleFunc("PUT /books/{id}/user-book", middleware.RequireAuth(userBook.Upsert))
	mux.HandleFunc("DELETE /books/{id}/user-book", middleware.RequireAuth(userBook.Delete))
	mux.HandleFunc("GET /user-books", middleware.RequireAuth(userBook.List))

	// Clubs
	mux.HandleFunc("GET /clubs", club.List)
	mux.HandleFunc("POST /clubs", middleware.RequireAuth(club.Create))
	mux.HandleFunc("GET /clubs/{id}", club.Get)
	mux.HandleFunc("PUT /clubs/{id}", middleware.RequireAuth(club.Update))
	mux.HandleFunc("DELETE /clubs/{id}", middleware.RequireAuth(club.Delete))
	mux.HandleFunc("GET /clubs/{id}/members", club.Members)
	mux.HandleFunc("POST /clubs/{id}/members", middleware.RequireAuth(club.AddMember))
	mux.HandleFunc("DELETE /clubs/{id}/members", middleware.RequireAuth(club.RemoveMember))

	// Profile
	mux.HandleFunc("GET /profile", middleware.RequireAuth(profile.Get))
	mux.HandleFunc("POST /profile/avatar", middleware.RequireAuth(profile.UploadAvatar))
	mux.HandleFunc("DELETE /profile/avatar", middleware.RequireAuth(profile.DeleteAvatar))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
	)

	return handler
}
