package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askelund/restdeck/internal/config"
	"github.com/askelund/restdeck/internal/database"
	"github.com/askelund/restdeck/internal/database/repository"
	"github.com/askelund/restdeck/internal/service"
	"github.com/askelund/restdeck/internal/session"
	"github.com/askelund/restdeck/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	// repositories
	reqRepo := repository.NewRequestRepo(db)
	colRepo := repository.NewCollectionRepo(db)
	histRepo := repository.NewHistoryRepo(db)
	sessRepo := repository.NewSessionRepo(db)

	repos := tui.Repos{Requests: reqRepo, Collections: colRepo, History: histRepo}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	runner := &service.RunnerService{History: histRepo, Client: &http.Client{Timeout: timeout}}
	maintenance := &service.MaintenanceService{History: histRepo, Sessions: sessRepo}

	retention := time.Duration(cfg.Session.RetentionDays) * 24 * time.Hour
	if _, err := maintenance.Prune(ctx, retention); err != nil {
		log.Printf("warn: prune failed: %v", err)
	}

	// A broken persisted session must never block launch; restore reports
	// what it had to drop and hands back whatever survived.
	store := session.NewStore(sessRepo)
	reg, err := store.Load(ctx, cfg.Session.Name, tui.NewKinds(ctx, repos))
	if err != nil {
		log.Printf("warn: session restore incomplete: %v", err)
	}

	p := tea.NewProgram(tui.New(ctx, cfg,
		repos,
		tui.Services{Runner: runner, Maintenance: maintenance},
		store, reg,
	), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
