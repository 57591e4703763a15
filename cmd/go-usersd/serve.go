package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-users"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *Config) error {
	logger := newLogger("go-usersd")

	db, err := openDatabase(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := users.NewUsersRepository(db)

	tokens := users.NewTokenServiceFromConfig(cfg, newLogger("tokens"))

	tracker := users.NewLoginAttemptTracker(
		users.WithTrackerLimits(cfg.Attempts.Max, cfg.Attempts.TTL, cfg.Attempts.Capacity),
	)

	lockout := users.NewLockoutPolicy(tracker, repo, newLogger("lockout"))
	auth := users.NewAuthenticator(repo, tokens, lockout, newLogger("auth"))

	var mailer users.Mailer
	if cfg.MailNoop {
		mailer = users.NoopMailer{Logger: newLogger("mail")}
	} else {
		mailer = users.NewSMTPMailer(cfg.SMTP, newLogger("mail"))
	}

	images := users.NewDiskImageStore(cfg.Images.Dir, newLogger("images"))

	app := fiber.New(fiber.Config{
		AppName:      "go-usersd",
		ErrorHandler: users.ErrorHandler(newLogger("http")),
	})

	app.Use(users.AuthorizationFilter(tokens, newLogger("authz")))

	ctrl := users.NewUserController(auth, tokens, repo, mailer, images, cfg.BaseURL, newLogger("users"))
	ctrl.RegisterRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", cfg.Addr)
		errCh <- app.Listen(cfg.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func openDatabase(ctx context.Context, path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*users.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}
