package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mynote-app/mynote/internal/buildinfo"
	"github.com/mynote-app/mynote/internal/client/cli"
	"github.com/mynote-app/mynote/internal/client/config"
	"github.com/mynote-app/mynote/internal/client/kvstore"
	"github.com/mynote-app/mynote/internal/client/securestore"
	"github.com/mynote-app/mynote/internal/client/services"
	"github.com/mynote-app/mynote/internal/client/session"
	"github.com/mynote-app/mynote/internal/cryptox"
	"github.com/mynote-app/mynote/internal/logging"
	"github.com/mynote-app/mynote/internal/remote/repositories/repomanager"
	"github.com/mynote-app/mynote/internal/throttle"
	redis "github.com/redis/go-redis/v9"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	sessionID := uuid.NewString()
	ctx = logging.ContextWith(ctx, "session_id", sessionID)
	if cfg.UsingDefaultKey() {
		logger.Warn(ctx, "using the built-in encryption secret, set "+config.EncryptionKeyEnv+" for real use")
	}

	localDB, err := kvstore.OpenSQLite(ctx, cfg.LocalStorePath)
	if err != nil {
		return err
	}
	defer localDB.Close()

	sessionStore, closeSession := openSessionStore(ctx, cfg, sessionID, logger)
	defer closeSession()

	store := securestore.New(kvstore.NewSQLiteStore(localDB), sessionStore, cryptox.DeriveKey(cfg.EncryptionKey), logger)
	sessions := session.NewManager(store, logger)

	remoteDB, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer remoteDB.Close()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, remoteDB); err != nil {
		return err
	}

	auth := services.NewAuthenticator(
		remoteDB,
		repos,
		throttle.New(remoteDB, repos.Attempts, logger),
		sessions,
		services.NewBcryptHasher(),
		cfg,
		logger,
	)

	app := cli.NewApp(cli.Deps{
		Config:   cfg,
		Auth:     auth,
		Notes:    services.NewNoteService(remoteDB, repos, logger),
		Sessions: sessions,
		Logger:   logger,
	})
	app.Run(ctx)
	return nil
}

// openSessionStore uses Redis when an address is configured and reachable,
// and process memory otherwise.
func openSessionStore(ctx context.Context, cfg *config.Config, sessionID string, logger logging.Logger) (kvstore.Store, func()) {
	if cfg.RedisAddr == "" {
		return kvstore.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn(ctx, "redis unavailable, keeping the session in memory", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return kvstore.NewMemoryStore(), func() {}
	}

	logger.Debug(ctx, "session scope in redis", "addr", cfg.RedisAddr)
	return kvstore.NewRedisStore(client, sessionID, cfg.SessionTTL), func() {
		if err := client.Close(); err != nil {
			logger.Warn(context.Background(), "closing redis", "error", err)
		}
	}
}
