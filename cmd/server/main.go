package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authHandler "rngenius/internal/auth/handler"
	"rngenius/internal/auth/jwttoken"
	"rngenius/internal/authlockout"
	generatorHandler "rngenius/internal/generator/handler"
	generatorService "rngenius/internal/generator/service"
	generatorStore "rngenius/internal/generator/store"
	"rngenius/internal/platform/config"
	"rngenius/internal/platform/database"
	"rngenius/internal/platform/httpserver"
	"rngenius/internal/platform/logger"
	"rngenius/internal/platform/metrics"
	"rngenius/internal/platform/redis"
	userService "rngenius/internal/user/service"
	userStore "rngenius/internal/user/store"
	"rngenius/pkg/domain"
	"rngenius/pkg/platform/audit"
	auditKafka "rngenius/pkg/platform/audit/publishers/kafka"
	auditMemory "rngenius/pkg/platform/audit/store/memory"
	auditPostgres "rngenius/pkg/platform/audit/store/postgres"
	auditWorker "rngenius/pkg/platform/audit/worker"
)

// userDirectory adapts the user service to the generator service's lookup
// needs.
type userDirectory struct {
	users *userService.Service
}

func (d userDirectory) IDByEmail(ctx context.Context, email string) (domain.UserID, error) {
	u, err := d.users.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// main wires the backends, services, and HTTP surface. Backends left
// unconfigured fall back to in-memory implementations so a bare binary still
// serves a working API.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Persistence.
	var users userStore.Store = userStore.NewMemoryStore()
	var stores generatorService.Stores = generatorStore.NewMemory()
	var auditStore audit.Store = auditMemory.NewInMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		users = userStore.NewPostgresStore(db)
		stores = generatorStore.NewPostgres(db)
		auditStore = auditPostgres.New(db)
		log.Info("using postgres persistence")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory persistence")
	}

	// Login lockout counters.
	var lockoutStore authlockout.Store = authlockout.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := redis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		lockoutStore = authlockout.NewRedisStore(rdb)
		log.Info("using redis lockout counters")
	}

	// Audit trail: emitter in front, worker behind, kafka fan-out when
	// brokers are configured.
	auditor := audit.NewEmitter(0)
	var publisher auditWorker.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := auditKafka.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kp.Close()
		publisher = kp
		log.Info("publishing audit events to kafka", "topic", cfg.AuditTopic)
	}
	worker := auditWorker.NewWorker(auditStore, publisher, auditor.Events(), log)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	// Services.
	usersSvc := userService.New(users,
		userService.WithLogger(log),
		userService.WithMetrics(m),
		userService.WithAuditor(auditor),
	)
	generatorsSvc := generatorService.New(stores, userDirectory{users: usersSvc},
		generatorService.WithLogger(log),
		generatorService.WithMetrics(m),
		generatorService.WithAuditor(auditor),
	)
	lockoutSvc := authlockout.New(lockoutStore, cfg.LockoutMaxAttempts, cfg.LockoutWindow,
		authlockout.WithLogger(log),
		authlockout.WithAuditor(auditor),
	)
	tokens := jwttoken.New(cfg.JWTSigningKey, cfg.AccessTokenTTL)

	// HTTP surface.
	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	authHandler.New(usersSvc, tokens, lockoutSvc, log, m).Register(router)
	generatorHandler.New(generatorsSvc, tokens, log, m).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting rngenius", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
