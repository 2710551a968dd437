package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/auth"
	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/infra/memory"
	"quiz-progress-service/internal/infra/postgres"
	infraredis "quiz-progress-service/internal/infra/redis"
	"quiz-progress-service/internal/logger"
	transport "quiz-progress-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz progress server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backend is the storage wiring chosen from config.
type backend struct {
	store     app.Store
	reader    app.Reader
	users     app.Directory
	questions app.QuestionSource
	closers   []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret not set, using the development secret")
	}
	if logger.IsRelease(cfg.Server.Mode) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := transport.NewRouter(transport.Options{
		Sessions:       app.NewSessionManager(b.store, b.questions, log),
		Progress:       app.NewProgressReader(b.reader, b.users),
		Analytics:      app.NewAnalytics(b.reader, b.users),
		Tokens:         auth.NewTokens(jwtSecret(cfg), config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)),
		Metrics:        transport.NewMetrics(),
		Log:            log,
		AllowOrigins:   cfg.CORS.AllowOrigins,
		StreamInterval: config.TTLDuration(cfg.Analytics.StreamInterval, transport.DefaultStreamInterval),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz progress service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openBackend picks Postgres when a URL is configured and the in-memory store with the
// sample bank otherwise. Answer keys are cached in Redis when an address is configured.
func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (*backend, error) {
	b := &backend{}
	var source app.QuestionSource

	if cfg.Postgres.URL != "" {
		db := postgres.Open(cfg.Postgres.URL)
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := runMigrations(ctx, db, log); err != nil {
			b.close()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)

		store := postgres.NewStore(db)
		b.store, b.reader, b.users = store, store, store
		source = postgres.NewQuestionSource(pool)
		log.Info("using postgres store")
	} else {
		bank := memory.NewQuestionBank(sampleQuestions())
		store := memory.NewStore(bank, sampleUsers())
		b.store, b.reader, b.users = store, store, store
		source = bank
		log.Info("postgres url not set, using in-memory store with sample content")
	}

	ttl := config.TTLDuration(cfg.Quiz.AnswerKeyTTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, answer keys will be loaded from the source on each miss", zap.Error(err))
		}
		b.questions = infraredis.NewAnswerKeyCache(client, source, ttl)
	} else {
		b.questions = memory.NewAnswerKeyCache(source, ttl)
	}
	return b, nil
}
