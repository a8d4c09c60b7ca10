// Package server wires configuration into the API server process.
package server

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roomvoice/roomvoice/internal/platform/config"
	"github.com/roomvoice/roomvoice/internal/platform/otel"
	"github.com/roomvoice/roomvoice/internal/platform/timeouts"
	"github.com/roomvoice/roomvoice/internal/server"
	"github.com/roomvoice/roomvoice/internal/sheet"
	"github.com/roomvoice/roomvoice/internal/storage"
	"github.com/roomvoice/roomvoice/internal/storage/memory"
	"github.com/roomvoice/roomvoice/internal/storage/sqlite"
	"github.com/roomvoice/roomvoice/internal/submission"
)

// Storage backend names accepted by -backend / ROOMVOICE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// serverEnv captures startup defaults for the server process.
type serverEnv struct {
	HTTPAddr      string        `env:"ROOMVOICE_HTTP_ADDR"      envDefault:":8080"`
	Backend       string        `env:"ROOMVOICE_BACKEND"        envDefault:"sqlite"`
	DBPath        string        `env:"ROOMVOICE_DB_PATH"`
	SheetPath     string        `env:"ROOMVOICE_SHEET_PATH"`
	Workspace     string        `env:"ROOMVOICE_WORKSPACE"      envDefault:"workspace"`
	AdminPassword string        `env:"ROOMVOICE_ADMIN_PASSWORD"`
	SessionSecret string        `env:"ROOMVOICE_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"ROOMVOICE_SESSION_TTL"    envDefault:"12h"`
}

// Config holds the server command configuration.
type Config struct {
	HTTPAddr      string
	Backend       string
	DBPath        string
	SheetPath     string
	Workspace     string
	AdminPassword string
	SessionSecret string
	SessionTTL    time.Duration
}

// ParseConfig loads environment defaults and then parses flags over them.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var raw serverEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, err
	}
	if raw.DBPath == "" {
		raw.DBPath = filepath.Join("data", "roomvoice.db")
	}

	cfg := Config{
		HTTPAddr:      raw.HTTPAddr,
		Backend:       raw.Backend,
		DBPath:        raw.DBPath,
		SheetPath:     raw.SheetPath,
		Workspace:     raw.Workspace,
		AdminPassword: raw.AdminPassword,
		SessionSecret: raw.SessionSecret,
		SessionTTL:    raw.SessionTTL,
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend (sqlite, memory)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to sqlite database")
	fs.StringVar(&cfg.SheetPath, "sheet-path", cfg.SheetPath, "path to the CSV mirror of submissions (empty disables it)")
	fs.StringVar(&cfg.Workspace, "workspace", cfg.Workspace, "workspace identifier accepted at login")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "admin session lifetime")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run starts the API server and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "roomvoice")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	sink, err := openSheet(cfg.SheetPath)
	if err != nil {
		_ = store.Close()
		return err
	}

	apiServer, err := server.NewServer(server.Config{
		HTTPAddr:      cfg.HTTPAddr,
		Workspace:     cfg.Workspace,
		AdminPassword: cfg.AdminPassword,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
	}, store, sink)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("init server: %w", err)
	}
	defer apiServer.Close()

	if err := apiServer.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// openStore selects the storage backend at startup.
func openStore(cfg Config) (storage.Store, error) {
	switch strings.TrimSpace(cfg.Backend) {
	case BackendMemory:
		return memory.New(), nil
	case BackendSQLite, "":
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// openSheet builds the secondary sink, or nil when no path is configured.
func openSheet(path string) (sheet.Sink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	sink, err := sheet.NewCSVFile(path, submission.RowHeader())
	if err != nil {
		return nil, fmt.Errorf("open sheet sink: %w", err)
	}
	return sink, nil
}
