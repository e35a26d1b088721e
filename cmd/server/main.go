package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/twmb/franz-go/pkg/kgo"

	"partnersearch/internal/audit"
	"partnersearch/internal/auth"
	"partnersearch/internal/company/store"
	"partnersearch/internal/dnb"
	"partnersearch/internal/hierarchy/cache"
	hierarchyhandler "partnersearch/internal/hierarchy/handler"
	hierarchyservice "partnersearch/internal/hierarchy/service"
	jwttoken "partnersearch/internal/jwt_token"
	"partnersearch/internal/navigation"
	"partnersearch/internal/platform/config"
	"partnersearch/internal/platform/httpserver"
	"partnersearch/internal/platform/kafka"
	"partnersearch/internal/platform/logger"
	"partnersearch/internal/platform/metrics"
	"partnersearch/internal/platform/postgres"
	"partnersearch/internal/platform/redis"
	"partnersearch/internal/ratelimit"
	"partnersearch/internal/search"
	"partnersearch/pkg/platform/httputil"
	authmw "partnersearch/pkg/platform/middleware/auth"
	"partnersearch/pkg/platform/middleware/metadata"
	"partnersearch/pkg/platform/middleware/requesttime"
	"partnersearch/pkg/platform/tx"
)

const (
	jwtIssuer          = "partnersearch"
	auditBufferSize    = 1024
	auditTopicReplicas = 1
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// backends holds the optional infrastructure. Nil fields fall back to
// in-process implementations.
type backends struct {
	redis *redis.Client
	db    *sql.DB
	kafka *kgo.Client
}

func (b *backends) close() {
	if b.kafka != nil {
		b.kafka.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

func connect(ctx context.Context, cfg config.Config, log *slog.Logger) (*backends, error) {
	b := &backends{}
	var err error
	if b.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if b.redis != nil {
		log.Info("redis connected; hierarchy cache and export links are shared")
	}
	if b.db, err = postgres.Open(ctx, cfg.Database); err != nil {
		b.close()
		return nil, err
	}
	if b.db != nil {
		log.Info("postgres connected; cached companies are persisted")
	}
	if b.kafka, err = kafka.NewClient(cfg.Kafka); err != nil {
		b.close()
		return nil, err
	}
	if b.kafka != nil {
		if err := kafka.EnsureTopic(ctx, b.kafka, cfg.Kafka.AuditTopic, auditTopicReplicas, log); err != nil {
			log.Warn("could not ensure audit topic", "error", err, "topic", cfg.Kafka.AuditTopic)
		}
		log.Info("kafka configured; export audit events are published", "topic", cfg.Kafka.AuditTopic)
	}
	return b, nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	b, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	var appMetrics *metrics.Metrics
	var dnbMetrics *dnb.Metrics
	var hierarchyMetrics *hierarchyservice.Metrics
	if cfg.Metrics.Enabled {
		appMetrics = metrics.New()
		dnbMetrics = dnb.NewMetrics()
		hierarchyMetrics = hierarchyservice.NewMetrics()
	}

	client := dnb.New(cfg.DNB, log, dnbMetrics)

	// Audit
	var sink audit.Publisher = audit.NewLogPublisher(log)
	if b.kafka != nil {
		sink = audit.NewKafkaPublisher(b.kafka, cfg.Kafka.AuditTopic, log)
	}
	auditWorker := audit.NewWorker(sink, auditBufferSize, log)
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	auditDone := make(chan struct{})
	go func() {
		defer close(auditDone)
		_ = auditWorker.Run(auditCtx)
	}()

	// Hierarchy
	hierarchyOpts := []hierarchyservice.Option{
		hierarchyservice.WithLogger(log),
		hierarchyservice.WithAuditPublisher(auditWorker),
		hierarchyservice.WithMetrics(hierarchyMetrics),
	}
	if b.redis != nil {
		hierarchyOpts = append(hierarchyOpts,
			hierarchyservice.WithHierarchyCache(cache.NewRedisHierarchyCache(b.redis.Client), cfg.Cache.HierarchyTTL),
			hierarchyservice.WithArtifactStore(cache.NewRedisArtifactStore(b.redis.Client), cfg.Cache.ExportLinkTTL),
		)
	} else {
		hierarchyOpts = append(hierarchyOpts,
			hierarchyservice.WithHierarchyCache(cache.NewInMemoryHierarchyCache(time.Now), cfg.Cache.HierarchyTTL),
			hierarchyservice.WithArtifactStore(cache.NewInMemoryArtifactStore(time.Now), cfg.Cache.ExportLinkTTL),
		)
	}
	hierarchySvc := hierarchyservice.New(client, hierarchyOpts...)

	// Search
	var companies store.Store = store.NewInMemory()
	searchOpts := []search.Option{search.WithLogger(log)}
	if b.db != nil {
		pg := store.NewPostgres(b.db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		companies = pg
		searchOpts = append(searchOpts, search.WithTxRunner(tx.NewPostgresRunner(b.db)))
	}
	searchSvc := search.New(client, companies, searchOpts...)

	navigationSvc := navigation.NewService(hierarchySvc, searchSvc, navigation.NewStore(), navigation.WithLogger(log))

	// Auth
	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, jwtIssuer)
	authSvc := auth.NewService(auth.NewInMemoryUserStore(), jwtService, cfg.Auth.JWTExpiry,
		auth.WithLogger(log),
		auth.WithMetrics(appMetrics),
	)
	if _, err := authSvc.SeedUser(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminEmail, "Administrator"); err != nil {
		return err
	}
	limiter := newRateLimiter(cfg, log, b)
	authHandler := auth.NewHandler(authSvc, log, auth.WithLoginMiddleware(limiter.Limit(ratelimit.ClassLogin)))

	router := newRouter(cfg, log, appMetrics, b)
	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), log))
			r.Use(authHandler.RequireActiveUser)
			authHandler.RegisterProtected(r)
			search.NewHandler(searchSvc, log).Register(r)
			hierarchyhandler.New(hierarchySvc, log,
				hierarchyhandler.WithExportMiddleware(limiter.Limit(ratelimit.ClassExport)),
			).Register(r)
			navigation.NewHandler(navigationSvc, log).Register(r)
		})
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting partnersearch", "addr", cfg.Server.Addr, "dnb_mode", cfg.DNB.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stopAudit()
			<-auditDone
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down", "grace", cfg.Server.ShutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	stopAudit()
	<-auditDone
	if kp, ok := sink.(*audit.KafkaPublisher); ok {
		if err := kp.Flush(shutdownCtx); err != nil {
			log.Warn("audit flush incomplete", "error", err)
		}
	}
	if dropped := auditWorker.Dropped(); dropped > 0 {
		log.Warn("audit events dropped while buffer was full", "count", dropped)
	}
	return nil
}

func newRateLimiter(cfg config.Config, log *slog.Logger, b *backends) *ratelimit.Middleware {
	var store ratelimit.Store = ratelimit.NewInMemoryStore(time.Now)
	if b.redis != nil {
		store = ratelimit.NewRedisStore(b.redis.Client, time.Now)
	}
	opts := []ratelimit.Option{ratelimit.WithDisabled(cfg.RateLimit.Disabled)}
	if cfg.Metrics.Enabled {
		opts = append(opts, ratelimit.WithMetrics(ratelimit.NewMetrics()))
	}
	return ratelimit.New(store, map[ratelimit.Class]ratelimit.Limit{
		ratelimit.ClassLogin:  {Requests: cfg.RateLimit.LoginLimit, Window: cfg.RateLimit.Window},
		ratelimit.ClassExport: {Requests: cfg.RateLimit.ExportLimit, Window: cfg.RateLimit.Window},
	}, log, opts...)
}

func newRouter(cfg config.Config, log *slog.Logger, m *metrics.Metrics, b *backends) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}).Handler)
	r.Use(m.Middleware)

	r.Get("/health", healthHandler(cfg, log, b))
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler())
	}
	return r
}

func healthHandler(cfg config.Config, log *slog.Logger, b *backends) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		if b.redis != nil {
			checks["redis"] = "ok"
			if err := b.redis.Health(ctx); err != nil {
				log.WarnContext(ctx, "redis health check failed", "error", err)
				checks["redis"] = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}
		if b.db != nil {
			checks["postgres"] = "ok"
			if err := b.db.PingContext(ctx); err != nil {
				log.WarnContext(ctx, "postgres health check failed", "error", err)
				checks["postgres"] = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}
		overall := "healthy"
		if status != http.StatusOK {
			overall = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status":   overall,
			"dnb_mode": cfg.DNB.Mode,
			"checks":   checks,
		})
	}
}
