package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Spok95/solar-bom/internal/bom"
	"github.com/Spok95/solar-bom/internal/config"
	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/materials"
	"github.com/Spok95/solar-bom/internal/infra/db"
	"github.com/Spok95/solar-bom/internal/infra/logger"
	"github.com/Spok95/solar-bom/internal/projects"
)

type completedLister interface {
	ListByProject(ctx context.Context, projectID string) ([]completed.Item, error)
}

// backend: откуда CLI берёт данные: YAML-выгрузка или рабочая база.
type backend struct {
	bom       *projects.Service
	completed completedLister
	close     func()
}

func openBackend(ctx context.Context, ledgerPath string) (*backend, error) {
	if ledgerPath != "" {
		l, err := LoadLedger(ledgerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger from %s: %w", ledgerPath, err)
		}
		snap := l.Snapshot()
		return &backend{
			bom:       projects.NewService(snap, snap, cliLogger("dev")),
			completed: l.completed(),
			close:     func() {},
		}, nil
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres.dsn not configured, use --ledger for offline mode")
	}

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return &backend{
		bom:       projects.NewService(bookings.NewRepo(pool), materials.NewRepo(pool), cliLogger(cfg.App.Env)),
		completed: completed.NewRepo(pool),
		close:     pool.Close,
	}, nil
}

func (b *backend) load(ctx context.Context, projectID string) (bom.Split, map[string]bool, error) {
	split, err := b.bom.BOM(ctx, projectID)
	if err != nil {
		return bom.Split{}, nil, err
	}
	items, err := b.completed.ListByProject(ctx, projectID)
	if err != nil {
		return bom.Split{}, nil, fmt.Errorf("list completed: %w", err)
	}
	return split, completed.Set(items), nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/example.yaml"
}

// предупреждения о битых данных идут в stderr, stdout остаётся для вывода команд
func cliLogger(env string) *slog.Logger {
	return logger.NewWithWriter(os.Stderr, env, "solarctl")
}
