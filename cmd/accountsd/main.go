// Command accountsd runs the user-account backend: HTTP API, Redis-backed
// refresh sessions, sqlite persistence, and the nightly dormancy sweep.
package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/daybreakhq/accounts"
	"github.com/daybreakhq/accounts/social/google"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := accounts.LoadConfig()
	if err != nil {
		return err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if _, err := db.NewCreateTable().
		Model((*accounts.Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	repo := accounts.NewAccountsRepository(db)
	sessions := accounts.NewRedisSessionStore(rdb,
		accounts.WithStoreTimeout(cfg.StoreTimeout),
	)
	tokens := accounts.NewTokenService([]byte(cfg.SigningSecret), cfg.Issuer,
		accounts.WithTokenTTLs(cfg.AccessTTL, cfg.RefreshTTL),
	)
	hasher := accounts.NewBcryptHasher(cfg.BcryptCost)
	states := accounts.NewStateMachine(repo)
	gate := accounts.NewGate(tokens, sessions, repo)

	authFlows := accounts.NewAuthFlows(repo, sessions, tokens, hasher,
		accounts.WithAuthFlowsRefreshTTL(cfg.RefreshTTL),
	)
	accountFlows := accounts.NewAccountFlows(repo, states, hasher)

	opts := []accounts.ControllerOption{}
	if cfg.GoogleEnabled() {
		opts = append(opts, accounts.WithGoogleProvider(google.New(google.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		})))
	}
	controller := accounts.NewController(authFlows, accountFlows, gate, tokens, opts...)

	app := fiber.New(fiber.Config{
		ErrorHandler: accounts.ErrorHandler,
	})
	controller.RegisterRoutes(app)

	sweeper := accounts.NewSweeper(repo,
		accounts.WithSweepInterval(cfg.SweepInterval),
		accounts.WithDormancyMonths(cfg.DormancyMonths),
	)
	go sweeper.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
}
