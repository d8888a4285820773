package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/adams-okode/messaging-gateway-service/internal/api"
	"github.com/adams-okode/messaging-gateway-service/internal/cache"
	"github.com/adams-okode/messaging-gateway-service/internal/config"
	"github.com/adams-okode/messaging-gateway-service/internal/dispatch"
	"github.com/adams-okode/messaging-gateway-service/internal/model"
	"github.com/adams-okode/messaging-gateway-service/internal/provider"
	"github.com/adams-okode/messaging-gateway-service/internal/queue"
	"github.com/adams-okode/messaging-gateway-service/internal/repo"
	"github.com/adams-okode/messaging-gateway-service/internal/retry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("pgx", cfg.Database.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := repo.NewPostgresMessageRepo(db)
	transport := queue.NewRedisTransport(rdb, cfg.Redis.Channel)
	smsClient := provider.NewSMSClient(cfg.Provider.APIURL, cfg.Provider.Username, cfg.Provider.APIKey)
	receipts := cache.NewRedisReceiptCache(rdb, cfg.Redis.ReceiptTTL)

	svc := dispatch.NewService(transport, store, dispatch.Options{
		DefaultSender: cfg.Provider.DefaultSender,
		MaxRetries:    cfg.Dispatch.MaxRetries,
	}).
		RegisterProvider(model.TypeSMS, smsClient).
		WithReceipts(receipts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A broken subscription means no consumer; refuse to start.
	if err := svc.Subscribe(ctx); err != nil {
		log.Fatal(err)
	}

	var sweeper *retry.Sweeper
	if cfg.Sweep.Interval > 0 {
		sweeper, err = retry.New(cfg.Sweep.Interval, cfg.Sweep.BatchSize, cfg.Sweep.MaxRetries, store, transport)
		if err != nil {
			log.Fatal(err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	h := api.NewHandler(svc, store, sweeper)
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: loggingMiddleware(api.Router(h)),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("messaging gateway starting",
		"addr", cfg.Server.Address,
		"channel", cfg.Redis.Channel,
		"maxRetries", cfg.Dispatch.MaxRetries,
		"sweepInterval", cfg.Sweep.Interval.String(),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
