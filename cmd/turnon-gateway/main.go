package main

import (
	"context"
	"errors"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"turnon/internal/apiclient"
	"turnon/internal/config"
	"turnon/internal/httpapi"
	"turnon/internal/hub"
	"turnon/internal/service"
	"turnon/internal/store/postgres"
	"turnon/internal/telemetry"
	"turnon/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup("turnon-gateway", version)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, apiclient.StaticToken(cfg.ServiceToken))
	h := hub.New()

	var relay *hub.Relay
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis url: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		relay = hub.NewRelay(rdb, cfg.RedisChannel, h)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("redis relay stopped: %v", err)
			}
		}()
	}

	var (
		activity service.ActivityRecorder
		daily    service.DailySource
		history  httpapi.HistorySource
		stats    *postgres.Store
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer pool.Close()
		stats = postgres.NewStore(pool)
		activity = stats
		daily = stats
		history = stats
	}

	turns := service.NewTurns(api, service.TurnOptions{
		DemoFallback: cfg.DemoFallback,
		Location:     cfg.Location,
		Notifier:     hub.Notifier{Hub: h, Relay: relay},
		Activity:     activity,
	})
	dashboard := service.NewDashboard(turns, daily)

	refresher := worker.NewRefresher(turns, worker.RefresherConfig{Interval: cfg.KioskPollInterval})
	signals, stopListening := h.Listen()
	defer stopListening()
	go refresher.Run(ctx, signals)

	if stats != nil {
		rollup := worker.NewRollup(turns, stats, cfg.Location)
		if err := rollup.Start(cfg.RollupSchedule); err != nil {
			log.Fatalf("rollup schedule: %v", err)
		}
		defer rollup.Stop()
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Turns:     turns,
		Users:     service.NewUsers(api),
		Doctors:   service.NewDoctors(api),
		Auth:      service.NewAuth(api, nil),
		Dashboard: dashboard,
		Kiosk:     refresher,
		History:   history,
	}, httpapi.Options{KioskToken: cfg.KioskToken})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:    cfg.RateLimitPerMinute,
		IPBurst:        cfg.RateLimitBurst,
		TokenPerMinute: cfg.TokenRateLimitPerMinute,
		TokenBurst:     cfg.TokenRateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/realtime/", httpapi.RealtimeHandler(h))
	mux.Handle("/", httpapi.AuthMiddleware(handler.Routes()))

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "turnon-gateway")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("turnon-gateway %s listening on %s upstream=%s", version, server.Addr, cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
