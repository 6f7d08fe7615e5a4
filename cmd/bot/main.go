package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/limbo/nexotime/internal/bot"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/internal/service"
	"github.com/limbo/nexotime/pkg/cleanup"
	"github.com/limbo/nexotime/pkg/config"
	"github.com/limbo/nexotime/pkg/dedupe"
	"github.com/limbo/nexotime/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pollTimeout = 30

func main() {
	cfg := config.New()
	log := logger.New(cfg.GetString("APP_ENV"))
	cleanup.Register(&cleanup.Job{
		Name: "syncing logger",
		F: func() error {
			_ = log.Sync()
			return nil
		},
	})
	defer cleanup.CleanUp(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := tgbotapi.NewBotAPI(cfg.GetString("BOT_TOKEN"))
	if err != nil {
		log.Error("creating bot api error", zap.Error(err))
		return
	}
	log.Info("authorized on telegram", zap.String("username", api.Self.UserName))

	pool, err := repository.NewPool(ctx, &repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	})
	if err != nil {
		log.Error("connecting to db error", zap.Error(err))
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetString("REDIS_ADDRESS"),
		Password: cfg.GetString("REDIS_PASSWORD"),
		DB:       cfg.GetInt("REDIS_DB", 0),
	})
	cleanup.Register(&cleanup.Job{
		Name: "closing redis client",
		F:    rdb.Close,
	})
	if err = rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, duplicate updates won't be filtered", zap.Error(err))
	}

	habitsRepo := repository.NewHabitsRepo(pool)
	dispatcher := bot.New(&bot.Options{
		Sender:          api,
		Deduper:         dedupe.New(rdb, "telegram", cfg.GetDuration("DEDUPE_TTL", 24*time.Hour), log),
		UserService:     service.NewUserService(repository.NewUsersRepo(pool)),
		LinkService:     service.NewLinkService(repository.NewUsersRepo(pool)),
		LedgerService:   service.NewLedgerService(habitsRepo, repository.NewCompletionsRepo(pool)),
		RoutinesService: service.NewRoutinesService(repository.NewRoutinesRepo(pool)),
		Logger:          log,
		UpdateTimeout:   cfg.GetDuration("REQUEST_TIMEOUT", 10*time.Second),
	})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := api.GetUpdatesChan(u)
	cleanup.Register(&cleanup.Job{
		Name: "stopping telegram polling",
		F: func() error {
			api.StopReceivingUpdates()
			return nil
		},
	})
	log.Info("bot started")
	dispatcher.Run(ctx, updates)
	log.Info("shutting down bot")
}
