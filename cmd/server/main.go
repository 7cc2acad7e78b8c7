package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"fraudgate/internal/attempts"
	"fraudgate/internal/attempts/tracker"
	"fraudgate/internal/audit"
	"fraudgate/internal/blacklist"
	"fraudgate/internal/checkout"
	"fraudgate/internal/jwtoken"
	"fraudgate/internal/match"
	"fraudgate/internal/orders"
	"fraudgate/internal/platform/config"
	"fraudgate/internal/platform/database"
	"fraudgate/internal/platform/health"
	"fraudgate/internal/platform/httpserver"
	"fraudgate/internal/platform/kafka/producer"
	"fraudgate/internal/platform/logger"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/platform/redis"
	"fraudgate/internal/ruleset"
	rulesetstore "fraudgate/internal/ruleset/store"
	httptransport "fraudgate/internal/transport/http"
	"fraudgate/migrations"
)

const operatorTokenTTL = 24 * time.Hour

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.DebugLog)

	log.Info("initializing fraudgate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.DatabaseURL != "",
		"redis", cfg.RedisURL != "",
		"kafka", cfg.KafkaBrokers != "",
	)

	m := metrics.New()
	healthHandler := health.New(cfg.Environment)

	ctx := context.Background()

	// Stores: postgres when configured, in-memory otherwise. The in-memory
	// fallback keeps local development and CI dependency-free.
	var (
		rsStore      rulesetstore.Store
		orderStore   orders.Store
		attemptStore attempts.Store
		auditStore   audit.Store
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	db, err := database.New(dbCfg)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()

		if err := db.ApplyMigrations(ctx, migrations.FS); err != nil {
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}

		rsStore = rulesetstore.NewPostgres(db.DB())
		orderStore = orders.NewPostgres(db.DB())
		attemptStore = attempts.NewPostgres(db.DB())
		auditStore = audit.NewPostgres(db.DB())
		healthHandler.RegisterCheck("postgres", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Health(checkCtx)
		})
	} else {
		log.Warn("no database configured, using in-memory stores")
		rsStore = rulesetstore.NewMemoryStore()
		orderStore = orders.NewMemoryStore()
		attemptStore = attempts.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()

		// The in-process cache below owns the hit/miss counters; the Redis
		// tier passes nil metrics so a read is counted once.
		rsStore = rulesetstore.NewRedis(rsStore, redisClient.Client, log, nil)
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})
	}

	// The in-process snapshot cache sits in front of whatever store chain is
	// configured; checkout reads the ruleset on every request.
	cached := rulesetstore.NewCached(rsStore, cfg.RulesetCacheTTL)
	cached.Hit = m.RulesetCacheHits.Inc
	cached.Miss = m.RulesetCacheMisses.Inc

	rulesetService := ruleset.NewService(cached, log, ruleset.WithMetrics(m))

	publisherOpts := []audit.PublisherOption{
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	}
	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		kafkaProducer, err = producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close()

		publisherOpts = append(publisherOpts, audit.WithKafkaSink(kafkaProducer, cfg.AuditKafkaTopic))
	}
	blockedLog := audit.NewPublisher(auditStore, publisherOpts...)
	defer blockedLog.Close()

	blacklistService := blacklist.NewService(rulesetService, orderStore, blockedLog, log, blacklist.WithMetrics(m))
	failureTracker := tracker.New(rulesetService, attemptStore, orderStore, blacklistService, log,
		tracker.WithMetrics(m),
		tracker.WithRequiredFields(cfg.RequiredCheckoutFields),
	)
	checkoutService := checkout.NewService(rulesetService, match.NewEngine(), blockedLog, log, checkout.WithMetrics(m))

	tokenService := jwtoken.NewService(cfg.JWTSigningKey, operatorTokenTTL)

	router := httptransport.NewRouter(httptransport.Services{
		Checkout:   checkoutService,
		Tracker:    failureTracker,
		Ruleset:    rulesetService,
		Attempts:   attemptStore,
		Orders:     orderStore,
		BlockedLog: blockedLog,
		Tokens:     tokenService,
		Health:     healthHandler,
		Metrics:    m,
	}, log)

	srv := httpserver.New(cfg.Addr, router)

	if redisClient != nil {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				redisClient.RecordPoolStats()
			}
		}()
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	if err := httpserver.Shutdown(srv, 10*time.Second); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
