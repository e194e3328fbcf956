package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"

	"github.com/Spok95/solar-bom/internal/api"
	"github.com/Spok95/solar-bom/internal/bot"
	"github.com/Spok95/solar-bom/internal/config"
	"github.com/Spok95/solar-bom/internal/dialog"
	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/materials"
	"github.com/Spok95/solar-bom/internal/domain/users"
	"github.com/Spok95/solar-bom/internal/infra/db"
	httpx "github.com/Spok95/solar-bom/internal/infra/http"
	"github.com/Spok95/solar-bom/internal/infra/logger"
	"github.com/Spok95/solar-bom/internal/infra/pubsub"
	"github.com/Spok95/solar-bom/internal/projects"
	"github.com/Spok95/solar-bom/internal/tracker"
	"github.com/Spok95/solar-bom/migrations"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	goose.SetBaseFS(migrations.FS)
	return goose.Up(sqlDB, ".")
}

func main() {
	_ = gotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/example.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env, "solar-server")

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	materialsRepo := materials.NewRepo(pool)
	bookingsRepo := bookings.NewRepo(pool)
	completedRepo := completed.NewRepo(pool)
	bomService := projects.NewService(bookingsRepo, materialsRepo, log)

	hub := tracker.NewHub()
	var pub tracker.Publisher
	if cfg.Redis.Enabled {
		rdb := pubsub.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = rdb.Close() }()

		relay := pubsub.New(rdb, cfg.Redis.Channel, log)
		pub = relay
		go func() {
			// после остановки relay трекер уведомляет только локальных подписчиков
			if err := relay.Run(ctx, hub); err != nil {
				log.Error("redis relay stopped, local notifications only", "err", err)
			}
		}()
		log.Info("redis relay enabled", "addr", cfg.Redis.Addr)
	}
	tr := tracker.New(completedRepo, hub, pub, log)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled,
		api.NewHandler(log, materialsRepo, bookingsRepo, bomService, tr))
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if cfg.Telegram.Enabled {
		startBot(ctx, cfg, log, pool, bomService, tr)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}

func startBot(ctx context.Context, cfg config.Config, log *slog.Logger, pool *pgxpool.Pool,
	bomService *projects.Service, tr *tracker.Tracker) {

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram bot authorized", "username", botAPI.Self.UserName)

	b := bot.New(botAPI, log, users.NewRepo(pool), dialog.NewRepo(pool), bomService, tr)
	go func() {
		if err := b.Run(ctx, cfg.Telegram.Timeout); err != nil && ctx.Err() == nil {
			log.Error("bot stopped", "err", err)
		}
	}()
}
