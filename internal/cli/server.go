package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tietotesti/internal/app"
	"tietotesti/internal/config"
	"tietotesti/internal/infra/memory"
	"tietotesti/internal/infra/postgres"
	redisinfra "tietotesti/internal/infra/redis"
	"tietotesti/internal/infra/sqlite"
	"tietotesti/internal/logging"
	transport "tietotesti/internal/transport/http"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, demo, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "seed a demo teacher and category (memory storage only)")
	return cmd
}

func loadConfig(path string) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// backend is everything behind the use cases: the store, the shared caches
// and the optional Redis connection.
type backend struct {
	store      app.Store
	names      app.CategoryNames
	identities app.IdentityStore
	redis      *redis.Client
}

func (b *backend) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	_ = b.store.Close()
}

func openStore(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (app.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil
	case config.DriverPostgres:
		if err := runMigrations(ctx, cfg, log); err != nil {
			return nil, err
		}
		return postgres.Open(ctx, cfg.Storage.Postgres.URL)
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Storage.SQLite.Path)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func openBackend(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backend, error) {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b := &backend{store: store}
	cacheTTL := config.TTLDuration(cfg.Cache.CategoryTTL, 10*time.Minute)

	if cfg.Redis.Addr == "" {
		b.names = memory.NewCategoryNameCache(store, cacheTTL)
		b.identities = memory.NewIdentityStore()
		return b, nil
	}

	b.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := b.redis.Ping(ctx).Err(); err != nil {
		b.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	b.names = redisinfra.NewCategoryNameCache(b.redis, store, cacheTTL, log)
	b.identities = redisinfra.NewIdentityStore(b.redis)
	return b, nil
}

func newAuthService(cfg config.Config, b *backend, log logrus.FieldLogger) (*app.AuthService, error) {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("auth.jwt_secret not set; using a random secret, logins end on restart")
	}
	return app.NewAuthService(b.store, b.identities, app.AuthConfig{
		Secret:     []byte(secret),
		SessionTTL: config.TTLDuration(cfg.Auth.SessionTTL, 8*time.Hour),
	}, log)
}

// maybeSeedDemo seeds demo data only when asked to, and only into memory storage.
func maybeSeedDemo(ctx context.Context, cfg config.Config, demo bool, auth *app.AuthService, store app.Store, log logrus.FieldLogger, out io.Writer) error {
	if !demo && !cfg.Storage.SeedDemo {
		return nil
	}
	if cfg.Storage.Driver != config.DriverMemory {
		log.WithField("storage", cfg.Storage.Driver).Warn("demo data is only seeded into memory storage")
		return nil
	}
	_, err := seedDemo(ctx, auth, store, log, out)
	return err
}

func runServer(ctx context.Context, configPath, portFlag string, demo bool, out io.Writer) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	auth, err := newAuthService(cfg, b, log)
	if err != nil {
		return err
	}
	if err := maybeSeedDemo(ctx, cfg, demo, auth, b.store, log, out); err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	handler := transport.NewRouter(transport.Deps{
		Game:           app.NewGameService(b.store, b.names, log),
		Auth:           auth,
		Store:          b.store,
		Names:          b.names,
		Log:            log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": finalPort, "storage": cfg.Storage.Driver}).Info("starting quiz service")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
