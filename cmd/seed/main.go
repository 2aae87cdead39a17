package main

import (
	"errors"
	"log/slog"

	"github.com/readcircle/readcircle/internal/app"
	"github.com/readcircle/readcircle/internal/config"
	"github.com/readcircle/readcircle/internal/logger"
	"github.com/readcircle/readcircle/internal/model"
	"github.com/readcircle/readcircle/internal/service"
)

// Seeds a development database with a demo account, a few books, and two
// clubs. Safe to run repeatedly.
func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), "")

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := a.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	user := seedUser(a, "demo@readcircle.dev", "demo-password", "Demo Reader")
	seedBooks(a, []seedBook{
		{title: "1984", author: "George Orwell"},
		{title: "To Kill a Mockingbird", author: "Harper Lee"},
		{title: "Dune", author: "Frank Herbert"},
	})
	seedClubs(a, user, []string{"General", "Sci-Fi"})

	slog.Info("seed complete")
}

type seedBook struct {
	title  string
	author string
}

func seedUser(a *app.App, email, password, name string) *model.User {
	existing, err := a.UserService.ByEmail(email)
	if err == nil {
		slog.Info("seed user exists", "email", email)
		return existing
	}

	user, err := a.AuthService.Register(email, password, &name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			existing, lookupErr := a.UserService.ByEmail(email)
			if lookupErr == nil {
				return existing
			}
		}
		slog.Error("failed to seed user", "error", err, "email", email)
		panic(err)
	}

	slog.Info("seeded user", "email", email)
	return user
}

func seedBooks(a *app.App, books []seedBook) {
	existing, err := a.BookService.All()
	if err != nil {
		slog.Error("failed to list books", "error", err)
		panic(err)
	}

	byTitle := map[string]bool{}
	for _, b := range existing {
		byTitle[b.Title] = true
	}

	for _, b := range books {
		if byTitle[b.title] {
			continue
		}
		author := b.author
		_, err := a.BookService.Create(b.title, &author, nil)
		if err != nil {
			slog.Error("failed to seed book", "error", err, "title", b.title)
			panic(err)
		}
		slog.Info("seeded book", "title", b.title)
	}
}

func seedClubs(a *app.App, creator *model.User, names []string) {
	existing, err := a.ClubService.All()
	if err != nil {
		slog.Error("failed to list clubs", "error", err)
		panic(err)
	}

	byName := map[string]bool{}
	for _, c := range existing {
		byName[c.Name] = true
	}

	for _, name := range names {
		if byName[name] {
			continue
		}
		_, err := a.ClubService.Create(creator.ID, name, nil)
		if err != nil {
			slog.Error("failed to seed club", "error", err, "name", name)
			panic(err)
		}
		slog.Info("seeded club", "name", name)
	}
}
