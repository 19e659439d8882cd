/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labsight/db"
	"github.com/humaidq/labsight/preview"
	"github.com/humaidq/labsight/routes"
	"github.com/humaidq/labsight/static"
	"github.com/humaidq/labsight/templates"
)

const (
	runtimeEnvVar     = "LABSIGHT_ENV"
	sessionCookieName = "labsight_session"
	pruneInterval     = time.Minute
	shutdownTimeout   = 10 * time.Second
)

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the web server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "port",
			Value: "8080",
			Usage: "the web server port",
		},
		&cli.StringFlag{
			Name:    "database-url",
			Sources: cli.EnvVars("DATABASE_URL"),
			Usage:   "PostgreSQL connection string for the reference catalog and web sessions (optional)",
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Value:   preview.DefaultTTL,
			Sources: cli.EnvVars("PREVIEW_TTL"),
			Usage:   "how long an idle preview is kept before its draft is dropped",
		},
		&cli.StringFlag{
			Name:    "csrf-secret",
			Sources: cli.EnvVars("CSRF_SECRET"),
			Usage:   "secret used to sign CSRF tokens (required outside development)",
		},
		&cli.BoolFlag{
			Name:  "dev",
			Value: false,
			Usage: "enables development mode (templates are read from disk)",
		},
	},
	Action: start,
}

// webConfig is what newWebApp needs to build the handler stack.
type webConfig struct {
	Dev        bool
	CSRFSecret string
	Session    session.Options
}

// parseRuntimeEnv reports whether the runtime environment is development.
// An empty value means production.
func parseRuntimeEnv(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "development", "dev":
		return true, nil
	case "", "production", "prod":
		return false, nil
	}

	return false, errInvalidRuntimeEnv
}

func start(ctx context.Context, cmd *cli.Command) error {
	dev, err := parseRuntimeEnv(os.Getenv(runtimeEnvVar))
	if err != nil {
		return err
	}

	cfg := webConfig{
		Dev:        dev || cmd.Bool("dev"),
		CSRFSecret: cmd.String("csrf-secret"),
		Session: session.Options{
			Cookie: session.CookieOptions{
				Name:     sessionCookieName,
				HTTPOnly: true,
				SameSite: http.SameSiteLaxMode,
			},
		},
	}

	if cfg.CSRFSecret == "" && !cfg.Dev {
		return errCSRFSecretRequired
	}

	if databaseURL := cmd.String("database-url"); databaseURL != "" {
		// The db package reads DATABASE_URL itself.
		if err := os.Setenv("DATABASE_URL", databaseURL); err != nil {
			return fmt.Errorf("failed to set DATABASE_URL: %w", err)
		}

		appLogger.Info("Connecting to database")

		if err := db.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		appLogger.Info("Syncing database schema")

		if err := db.SyncSchema(ctx); err != nil {
			return fmt.Errorf("failed to sync schema: %w", err)
		}

		cfg.Session.Initer = db.PostgresSessionIniter()
		cfg.Session.Config = db.PostgresSessionConfig{}
	} else {
		appLogger.Warn("No database configured, using the built-in reference catalog and in-memory web sessions")
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws := preview.NewWorkspace(preview.Options{TTL: cmd.Duration("session-ttl")})
	go ws.Run(runCtx, pruneInterval)

	f, err := newWebApp(ws, cfg)
	if err != nil {
		return err
	}

	port := cmd.String("port")
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           f,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          requestStdLogger,
	}

	errCh := make(chan error, 1)

	go func() {
		appLogger.Info("Starting web server", "port", port, "dev", cfg.Dev, "session_ttl", cmd.Duration("session-ttl"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server failed: %w", err)
		}

		return nil
	case <-runCtx.Done():
	}

	appLogger.Info("Shutting down web server", "open_previews", ws.Len())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}

	return nil
}

// newWebApp builds the flamego handler stack around the preview routes.
func newWebApp(ws *preview.Workspace, cfg webConfig) (*flamego.Flame, error) {
	templateOpts := template.Options{Directory: "templates"}

	if !cfg.Dev {
		fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded templates: %w", err)
		}

		templateOpts = template.Options{FileSystem: fs}
	}

	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(session.Sessioner(cfg.Session))
	f.Use(routes.RequestLogger)
	f.Use(routes.NoCacheHeaders())
	f.Use(csrf.Csrfer(csrf.Options{Secret: cfg.CSRFSecret}))
	f.Use(template.Templater(templateOpts))
	f.Use(routes.CSRFInjector())
	f.Use(routes.FlashInjector())
	f.Use(flamego.Static(flamego.StaticOptions{
		FileSystem: http.FS(static.Static),
	}))
	f.Use(routes.WorkspaceInjector(ws))

	routes.Mount(f)
	configureEmptyNotFoundHandler(f)

	return f, nil
}

// configureEmptyNotFoundHandler answers unknown paths with a bare 404.
func configureEmptyNotFoundHandler(f *flamego.Flame) {
	f.NotFound(func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNotFound)
	})
}
