package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"medgate/internal/audit"
	auditmetrics "medgate/internal/audit/metrics"
	"medgate/internal/authz"
	authzmetrics "medgate/internal/authz/metrics"
	"medgate/internal/consent"
	jwttoken "medgate/internal/jwt_token"
	"medgate/internal/platform/config"
	"medgate/internal/platform/httpserver"
	"medgate/internal/platform/logger"
	"medgate/internal/platform/metrics"
	platformredis "medgate/internal/platform/redis"
	"medgate/internal/record"
	httptransport "medgate/internal/transport/http"
)

// main wires the dependencies and owns the process lifecycle. Business logic
// lives in the internal services; nothing here makes a decision.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		consentStore consent.Store
		recordStore  record.Store
		auditStore   audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		consentStore = consent.NewPostgresStore(db)
		recordStore = record.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		consentStore = consent.NewInMemoryStore()
		recordStore = record.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	consentService := consent.NewService(consentStore, log)

	// Consent lookup, optionally cached in Redis.
	var (
		lookup      authz.ConsentLookup
		invalidator record.ConsentInvalidator
	)
	storeLookup := consent.NewStoreLookup(consentStore)
	lookup = storeLookup
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cached := consent.NewCachedLookup(storeLookup, redisClient.Client, cfg.ConsentCacheTTL, log)
		lookup = cached
		invalidator = cached
	}

	engine := authz.NewEngine(lookup, authzmetrics.New(), log)

	// Audit ledger, optionally mirrored to Kafka.
	auditMetrics := auditmetrics.New()
	var mirror audit.Mirror
	if len(cfg.KafkaBrokers) > 0 {
		kafkaMirror, err := audit.NewKafkaMirror(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := kafkaMirror.Close(context.Background()); err != nil {
				log.Error("close kafka mirror", "error", err)
			}
		}()
		mirror = kafkaMirror
	}
	ledger := audit.NewLedger(auditStore, mirror, auditMetrics, log)
	retrier := audit.NewRetrier(auditStore, audit.SlogAlerter{Logger: log}, auditMetrics, log)

	gateway := record.NewGateway(recordStore, consentService, engine, ledger, retrier, invalidator, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "medgate", "medgate")
	handler := httptransport.New(gateway, log)
	router := httptransport.NewRouter(handler, jwtService, metrics.New(), log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting medgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := retrier.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
