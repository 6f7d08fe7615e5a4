// @title NexoTime API
// @description API for habit-tracker app "NexoTime"
// @schemes http
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/limbo/nexotime/internal/api"
	"github.com/limbo/nexotime/internal/repository"
	"github.com/limbo/nexotime/internal/service"
	"github.com/limbo/nexotime/pkg/cleanup"
	"github.com/limbo/nexotime/pkg/config"
	jwtservice "github.com/limbo/nexotime/pkg/jwt_service"
	"github.com/limbo/nexotime/pkg/logger"
	"github.com/limbo/nexotime/pkg/migrate"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func init() {
	service.InitValidator()
}

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

	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	if err := migrate.Up(dbCfg.ConnString(), cfg.GetString("MIGRATIONS_DIR")); err != nil {
		log.Error("migrating db error", zap.Error(err))
		return
	}
	pool, err := repository.NewPool(ctx, &dbCfg)
	if err != nil {
		log.Error("connecting to db error", zap.Error(err))
		return
	}

	habitsRepo := repository.NewHabitsRepo(pool)
	userService := service.NewUserService(repository.NewUsersRepo(pool))
	tokens := jwtservice.New(cfg.GetString("JWT_SECRET"))
	serv := api.New(&api.ServicesList{
		UserService:      userService,
		LinkService:      service.NewLinkService(repository.NewUsersRepo(pool)),
		HabitsService:    service.NewHabitsService(habitsRepo),
		LedgerService:    service.NewLedgerService(habitsRepo, repository.NewCompletionsRepo(pool)),
		RoutinesService:  service.NewRoutinesService(repository.NewRoutinesRepo(pool)),
		RemindersService: service.NewRemindersService(repository.NewRemindersRepo(pool)),
		Resolver:         service.NewBearerResolver(tokens, userService),
		Tokens:           tokens,
		Logger:           log,
		RequestTimeout:   cfg.GetDuration("REQUEST_TIMEOUT", 10*time.Second),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- serv.Run(cfg.GetString("API_ADDRESS"))
	}()
	select {
	case err = <-errCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}
	log.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = serv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
}
