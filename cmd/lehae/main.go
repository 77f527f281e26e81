// Copyright (c) 2026 Lehae. All rights reserved.

// Command lehae is the terminal front end for the Lehae rental marketplace.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the durable state store (file, redis, or memory).
//  4. Wire the transport and resource clients.
//  5. Bootstrap the session from persisted tokens.
//  6. Dispatch the subcommand.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lehae/lehae-go/internal/admin"
	"github.com/lehae/lehae-go/internal/contact"
	"github.com/lehae/lehae-go/internal/favorites"
	"github.com/lehae/lehae-go/internal/listings"
	"github.com/lehae/lehae-go/internal/platform/config"
	"github.com/lehae/lehae-go/internal/platform/constants"
	redisstore "github.com/lehae/lehae-go/internal/platform/redis"
	"github.com/lehae/lehae-go/internal/session"
	"github.com/lehae/lehae-go/internal/tokenstore"
	"github.com/lehae/lehae-go/internal/transport"
)

// app bundles the wired clients for command handlers.
type app struct {
	cfg       *config.Config
	store     tokenstore.Store
	session   *session.Manager
	listings  *listings.Client
	favorites *favorites.Client
	admin     *admin.Client
	contact   *contact.Client
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	// The level is raised once configuration has been parsed.
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "lehae"))
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")
	if cfg.Debug {
		level.Set(slog.LevelDebug)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ── 3. State Store ────────────────────────────────────────────────────
	store, err := openStore(ctx, cfg, log)
	must(log, err, "open state store")

	// ── 4. Client Wiring ──────────────────────────────────────────────────
	api := transport.New(transport.Options{
		BaseURL:      cfg.BaseURL,
		Store:        store,
		Logger:       log,
		Timeout:      cfg.HTTPTimeout,
		RateLimitRPS: cfg.RateLimitRPS,
		OnAuthExpired: func() {
			fmt.Fprintln(os.Stderr, "Your session has expired. Please run 'lehae login'.")
		},
	})

	listingsClient := listings.NewClient(api, log)
	application := &app{
		cfg:       cfg,
		store:     store,
		session:   session.NewManager(api, store, log),
		listings:  listingsClient,
		favorites: favorites.NewClient(api, listingsClient, log),
		admin:     admin.NewClient(api, log),
		contact:   contact.NewClient(api),
	}

	// ── 5. Session Bootstrap ──────────────────────────────────────────────
	must(log, application.session.Bootstrap(ctx), "restore session")

	// ── 6. Dispatch ───────────────────────────────────────────────────────
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := application.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore selects the state backend from configuration.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (tokenstore.Store, error) {
	switch cfg.StateBackend {
	case config.StateBackendMemory:
		return tokenstore.NewMemoryStore(), nil

	case config.StateBackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		return tokenstore.NewRedisStore(client), nil

	default:
		path := cfg.StatePath
		if path == "" {
			var err error
			path, err = tokenstore.DefaultStatePath()
			if err != nil {
				return nil, err
			}
		}
		return tokenstore.NewFileStore(path)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `%s %s — Lehae rental marketplace client

Usage:
  lehae login -u <username> -p <password>
  lehae logout
  lehae whoami
  lehae register -u <username> -e <email> -p <password> -c <confirm> [-landlord]
  lehae properties [-district D] [-area A] [-min N] [-max N] [-status S] [-limit N]
  lehae property <id>
  lehae listings | create | update | delete | upload-image   (landlords)
  lehae favorites | favorite <id> | unfavorite <id>
  lehae admin users | verify <id> | ban <id> | reports
  lehae contact -name N -email E -message M
  lehae lang [code]
`, constants.AppName, constants.AppVersion)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
