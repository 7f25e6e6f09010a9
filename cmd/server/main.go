package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"featstack/internal/auth/service"
	passwordreset "featstack/internal/auth/store/password-reset"
	refreshtoken "featstack/internal/auth/store/refresh-token"
	userstore "featstack/internal/auth/store/user"
	"featstack/internal/auth/workers/cleanup"
	jwttoken "featstack/internal/jwt_token"
	"featstack/internal/notification"
	"featstack/internal/platform/config"
	"featstack/internal/platform/database"
	"featstack/internal/platform/kafka/producer"
	"featstack/internal/platform/logger"
	"featstack/internal/platform/metrics"
	platformRedis "featstack/internal/platform/redis"
	"featstack/internal/platform/tracer"
	httptransport "featstack/internal/transport/http"
	"featstack/internal/users"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing featstack",
		"addr", cfg.Addr,
		"registration_disabled", cfg.DisableRegister,
	)

	m := metrics.New()

	// Postgres is optional: without DATABASE_URL everything runs in memory,
	// which is enough for local development.
	pool, err := database.New(database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformRedis.New(platformRedis.Config{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var (
		userStore    service.UserStore
		adminStore   users.Store
		refreshStore service.RefreshTokenStore
		cleanupRT    cleanup.RefreshTokenStore
		resetStore   service.ResetTokenStore
		cleanupRS    cleanup.ResetTokenStore
	)
	if pool != nil {
		pgUsers := userstore.NewPostgres(pool.DB())
		pgRefresh := refreshtoken.NewPostgres(pool.DB())
		userStore, adminStore = pgUsers, pgUsers
		refreshStore, cleanupRT = pgRefresh, pgRefresh
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		memUsers := userstore.New()
		memRefresh := refreshtoken.NewInMemoryStore()
		userStore, adminStore = memUsers, memUsers
		refreshStore, cleanupRT = memRefresh, memRefresh
	}

	// Reset tokens prefer Redis: the key TTL makes expiry cleanup automatic.
	switch {
	case redisClient != nil:
		rs := passwordreset.NewRedis(redisClient.Client)
		resetStore, cleanupRS = rs, rs
	case pool != nil:
		rs := passwordreset.NewPostgres(pool.DB())
		resetStore, cleanupRS = rs, rs
	default:
		rs := passwordreset.NewInMemoryStore()
		resetStore, cleanupRS = rs, rs
	}

	// Notifications ride Kafka when a broker is configured; otherwise the
	// reset link is only logged.
	var notifier service.NotificationSender
	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		producerCfg := producer.DefaultConfig()
		producerCfg.Brokers = cfg.KafkaBrokers
		kafkaProducer, err = producer.New(producerCfg, log)
		if err != nil {
			log.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		notifier = notification.NewKafkaSender(kafkaProducer, cfg.NotificationTopic, cfg.FrontendURL)
	} else {
		log.Warn("KAFKA_BROKERS not set, reset emails will only be logged")
		notifier = notification.NewLogSender(log, cfg.FrontendURL)
	}

	var tr tracer.Tracer = tracer.NewNoop()
	if os.Getenv("OTEL_ENABLED") == "true" {
		tr = tracer.NewOTel()
	}

	codec := jwttoken.NewCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authService := service.New(
		userStore,
		refreshStore,
		resetStore,
		codec,
		service.Config{
			DisableRegister: cfg.DisableRegister,
			BcryptCost:      cfg.BcryptCost,
			RefreshTokenTTL: cfg.RefreshTokenTTL,
			ResetTokenTTL:   cfg.ResetTokenTTL,
		},
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithTracer(tr),
		service.WithNotificationSender(notifier),
	)

	usersService := users.New(adminStore, users.WithLogger(log), users.WithBcryptCost(cfg.BcryptCost))

	cleaner, err := cleanup.New(cleanupRT, cleanupRS,
		cleanup.WithInterval(cfg.CleanupInterval),
		cleanup.WithLogger(log),
	)
	if err != nil {
		log.Error("cleanup worker init failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Dependencies{
		Auth:           authService,
		Users:          usersService,
		TokenValidator: jwttoken.NewCodecAdapter(codec),
		Logger:         log,
		Metrics:        m,
		Health: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if pool != nil {
				if err := pool.Health(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				if err := redisClient.Health(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := cleaner.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if redisClient != nil {
		g.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					redisClient.RecordPoolStats()
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	if kafkaProducer != nil {
		kafkaProducer.Close() //nolint:errcheck // shutting down
	}
	if redisClient != nil {
		redisClient.Close() //nolint:errcheck // shutting down
	}
	if pool != nil {
		pool.Close() //nolint:errcheck // shutting down
	}

	log.Info("server stopped")
}
