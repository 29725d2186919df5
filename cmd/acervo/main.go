package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmoreira/acervo/internal/advisor"
	"github.com/lmoreira/acervo/internal/api"
	"github.com/lmoreira/acervo/internal/db"
	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/snapshot"
	"github.com/lmoreira/acervo/internal/store"
	"github.com/lmoreira/acervo/internal/web"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("acervo", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "acervo.sqlite3", "")
	fs.StringVar(&dbPath, "d", "acervo.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var dataDir string
	fs.StringVar(&dataDir, "data-dir", "", "")

	var geminiModel string
	fs.StringVar(&geminiModel, "model", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: acervo [flags]

Flags:
  -d, -db <path>          SQLite database path (default: acervo.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -data-dir <path>        store snapshots as JSON files in this directory
                          instead of the database
  -model <name>           Gemini model for activity suggestions
                          (default: `+advisor.DefaultModel+`)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment:
  GEMINI_API_KEY          enables the activity suggestion advisor
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Open database. Even with -data-dir the database holds photos,
	// settings and the admin passphrase.
	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	ctx := context.Background()

	// Session secret and admin passphrase (auto-generated on first run).
	sessionSecret, err := store.GetSessionSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get session secret", "error", err)
		os.Exit(1)
	}

	passphrase, err := store.EnsureAdminPassphrase(ctx, database)
	if err != nil {
		slog.Error("failed to ensure admin passphrase", "error", err)
		os.Exit(1)
	}
	if passphrase != "" {
		fmt.Println("Admin passphrase generated:")
		fmt.Printf("  %s\n", passphrase)
		fmt.Println()
		fmt.Println("Save this passphrase — it cannot be recovered.")
		fmt.Println()
	}

	// Snapshot store: SQLite by default, JSON files with -data-dir.
	var snapStore snapshot.Store
	if dataDir != "" {
		snapStore, err = snapshot.NewFileStore(dataDir)
		if err != nil {
			slog.Error("failed to create snapshot directory", "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot store ready", "backend", "file", "dir", dataDir)
	} else {
		snapStore = snapshot.NewSQLiteStore(database)
		slog.Info("snapshot store ready", "backend", "sqlite")
	}

	tracker, err := inventory.New(ctx, snapStore)
	if err != nil {
		slog.Error("failed to load inventory", "error", err)
		os.Exit(1)
	}

	// Activity suggestion advisor, enabled by GEMINI_API_KEY.
	var adv advisor.Advisor = advisor.Disabled{}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		adv, err = advisor.NewGemini(apiKey, geminiModel)
		if err != nil {
			slog.Error("failed to configure advisor", "error", err)
			os.Exit(1)
		}
		slog.Info("suggestion advisor enabled")
	} else {
		slog.Info("suggestion advisor disabled", "reason", "GEMINI_API_KEY not set")
	}

	// Set up routers.
	apiRouter := api.NewRouter(tracker, database, adv, sessionSecret)
	webRouter, err := web.NewRouter(tracker, database, adv, sessionSecret)
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		os.Exit(1)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	handler := api.LoggingMiddleware(mux)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}
