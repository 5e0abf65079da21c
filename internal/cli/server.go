package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/config"
	"trivia-room-service/internal/infra/file"
	"trivia-room-service/internal/infra/memory"
	pgstore "trivia-room-service/internal/infra/postgres"
	redisstore "trivia-room-service/internal/infra/redis"
	"trivia-room-service/internal/infra/sqlite"
	transport "trivia-room-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *verbose)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg, verbose)
	slog.SetDefault(logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	history, closeHistory, err := openHistory(ctx, cfg, redisClient, pool)
	if err != nil {
		return err
	}
	defer closeHistory()

	service, err := app.NewGameService(ctx, questionRepository(cfg, redisClient, pool), history,
		app.WithBankID(cfg.Questions.Bank),
		app.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(service, transport.RouterConfig{
			Prefix:    cfg.Server.Prefix,
			PublicURL: cfg.Server.PublicURL,
		}, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting trivia service", "addr", server.Addr, "prefix", cfg.Server.Prefix, "history", cfg.HistoryDriver())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// questionRepository chains the configured question sources in front of the
// built-in bank and caches the result.
func questionRepository(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) app.QuestionRepository {
	var loaders memory.FallbackLoader
	if cfg.Questions.File != "" {
		loaders = append(loaders, file.NewQuestionLoader(afero.NewOsFs(), cfg.Questions.File))
	}
	if pool != nil {
		loaders = append(loaders, pgstore.NewQuestionLoader(pool))
	}
	loaders = append(loaders, memory.NewDefaultQuestionLoader())

	ttl := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	if redisClient != nil {
		return redisstore.NewQuestionRepository(redisClient, loaders, ttl)
	}
	return memory.NewQuestionRepository(loaders, ttl)
}

func openHistory(ctx context.Context, cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) (app.HistoryRepository, func(), error) {
	noop := func() {}
	switch driver := cfg.HistoryDriver(); driver {
	case config.DriverMemory:
		return memory.NewHistoryStore(), noop, nil
	case config.DriverFile:
		store, err := file.Open(afero.NewOsFs(), cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.DriverRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("history driver %q requires redis.addr", driver)
		}
		return redisstore.NewHistoryStore(redisClient), noop, nil
	case config.DriverPostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("history driver %q requires postgres.url", driver)
		}
		return pgstore.NewHistoryStore(pool), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported history driver: %s", driver)
	}
}

func newLogger(w io.Writer, cfg config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.Log.Level))
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
