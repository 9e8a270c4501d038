package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sartoria-ai/chat-platform/internal/api/router"
	appconfig "github.com/sartoria-ai/chat-platform/internal/config"
	"github.com/sartoria-ai/chat-platform/internal/conversation"
	"github.com/sartoria-ai/chat-platform/internal/nlp"
	"github.com/sartoria-ai/chat-platform/internal/observability/metrics"
	"github.com/sartoria-ai/chat-platform/internal/response"
	"github.com/sartoria-ai/chat-platform/internal/webchat"
	"github.com/sartoria-ai/chat-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting chat-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Redis backs session memory, flow state, transcripts and the
	// response cache.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable at startup, continuing degraded", "addr", cfg.RedisAddr, "error", err)
	}
	pingCancel()

	analyzer := nlp.NewClient(cfg.NLPServiceURL, cfg.NLPTimeout, logger)
	store := conversation.NewStore(redisClient)
	engine := conversation.NewEngine(conversation.NewRegistry(), store, analyzer, logger)
	generator := response.NewGenerator(engine, redisClient, cfg.ResponseCacheTTL, logger)
	transcript := conversation.NewTranscriptStore(redisClient)
	chatMetrics := metrics.NewChatMetrics(prometheus.DefaultRegisterer)

	webchatHandler := webchat.NewHandler(engine, generator, analyzer, transcript, chatMetrics, webchat.Options{
		QueueDepth:       cfg.SessionQueueDepth,
		IdleTimeout:      cfg.ConnectionIdleTimeout,
		TypingStaleAfter: cfg.TypingStaleAfter,
		AgentAssignDelay: cfg.AgentAssignDelay,
	}, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go webchatHandler.RunBackground(bgCtx, webchat.Sweeps{
		Connections:   cfg.ConnectionSweepEvery,
		Typing:        cfg.TypingSweepEvery,
		Notifications: cfg.NotificationSweepEvery,
	})
	go sweepIdleSessions(bgCtx, engine, cfg.ConnectionSweepEvery, cfg.ConnectionIdleTimeout, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Webchat:            webchatHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: 10,
		RateLimitBurst:     30,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	bgCancel()
	webchatHandler.Handoffs().Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// sweepIdleSessions evicts registry entries for sessions idle past maxIdle.
// Persisted memory stays in Redis; only the in-process state is dropped.
func sweepIdleSessions(ctx context.Context, engine *conversation.Engine, every, maxIdle time.Duration, logger *logging.Logger) {
	if every <= 0 {
		every = 5 * time.Minute
	}
	if maxIdle <= 0 {
		maxIdle = 30 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := engine.SweepIdleSessions(maxIdle); evicted > 0 {
				logger.Info("idle sessions evicted", "count", evicted)
			}
		}
	}
}
