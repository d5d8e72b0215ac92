package main

import (
	"context"
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

	"github.com/urbantrend/cart-recall/internal/api"
	"github.com/urbantrend/cart-recall/internal/cache"
	"github.com/urbantrend/cart-recall/internal/config"
	"github.com/urbantrend/cart-recall/internal/faq"
	"github.com/urbantrend/cart-recall/internal/reminder"
	"github.com/urbantrend/cart-recall/internal/repo"
	"github.com/urbantrend/cart-recall/internal/router"
	"github.com/urbantrend/cart-recall/internal/scheduler"
	"github.com/urbantrend/cart-recall/internal/transport"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	slog.Info("cart-recall starting",
		"addr", cfg.Server.Address,
		"interval", cfg.Reminder.Interval.String(),
		"threshold", cfg.Reminder.Threshold.String(),
		"policy", string(cfg.Reminder.Policy),
		"redis", cfg.Redis.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.NewPool(ctx, cfg.Database.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	users := repo.NewPostgresUserRepo(pool, cfg.Reminder.Policy, cfg.Reminder.Cooldown)
	catalog := repo.NewPostgresCatalogRepo(pool)

	sender := transport.NewWebhookSender(cfg.Webhook.URL)

	dispatcher := reminder.NewDispatcher(users, catalog, sender, cfg.Reminder.Threshold, cfg.Reminder.Concurrency)

	var faqSource faq.Source = catalog
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		faqSource = faq.NewCachedSource(catalog, rdb, cfg.Redis.TTL)

		sentLog := cache.NewRedisLog(rdb, cfg.Redis.TTL)
		dispatcher.WithRecordedHook(func(ctx context.Context, userID int64, remoteID string, sentAt time.Time) {
			if err := sentLog.StoreReminder(ctx, userID, remoteID, sentAt); err != nil {
				slog.Warn("sent-log write failed", "user_id", userID, "err", err)
			}
		})
	}

	rt := router.New(users, faq.NewMatcher(faqSource), sender)

	sched, err := scheduler.New(cfg.Reminder.Interval, dispatcher.Cycle)
	if err != nil {
		log.Fatal(err)
	}
	sched.Start()

	handler := api.NewHandler(sched, users, rt.Handler())
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: loggingMiddleware(api.Router(handler)),
	}

	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	sched.Stop()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
