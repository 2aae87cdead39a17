package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/readcircle/readcircle/internal/config"
	"github.com/readcircle/readcircle/internal/db"
	"github.com/readcircle/readcircle/internal/repository"
	"github.com/readcircle/readcircle/internal/service"
	"github.com/readcircle/readcircle/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	AuthService     *service.AuthService
	UserService     *service.UserService
	BookService     *service.BookService
	ClubService     *service.ClubService
	ReviewService   *service.ReviewService
	UserBookService *service.UserBookService
	ProfileService  *service.ProfileService
	EmailService    *service.EmailService
	FileService     *service.FileService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	bookRepository := repository.NewBookRepository(database)
	clubRepository := repository.NewClubRepository(database)
	membershipRepository := repository.NewMembershipRepository(database)
	reviewRepository := repository.NewReviewRepository(database)
	userBookRepository := repository.NewUserBookRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		tokenRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.ResetTokenExpiry,
	)
	userService := service.NewUserService(userRepository)
	bookService := service.NewBookService(bookRepository)
	clubService := service.NewClubService(clubRepository, membershipRepository, userRepository)
	reviewService := service.NewReviewService(reviewRepository, bookRepository)
	userBookService := service.NewUserBookService(userBookRepository, bookRepository)
	profileService := service.NewProfileService(
		userRepository,
		userBookRepository,
		reviewRepository,
		membershipRepository,
		clubRepository,
	)
	fileService := service.NewFileService(fileRepository, userService, fileStorage)

	return &App{
		Cfg:             cfg,
		DB:              database,
		AuthService:     authService,
		UserService:     userService,
		BookService:     bookService,
		ClubService:     clubService,
		ReviewService:   reviewService,
		UserBookService: userBookService,
		ProfileService:  profileService,
		EmailService:    emailService,
		FileService:     fileService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
