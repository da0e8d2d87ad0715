package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/MKabaja/SHIFTFlow/internal/config"
	"github.com/MKabaja/SHIFTFlow/internal/database"
	"github.com/MKabaja/SHIFTFlow/internal/handler"
	"github.com/MKabaja/SHIFTFlow/internal/middleware"
	"github.com/MKabaja/SHIFTFlow/internal/observability"
	"github.com/MKabaja/SHIFTFlow/internal/queue"
	"github.com/MKabaja/SHIFTFlow/internal/repository"
	"github.com/MKabaja/SHIFTFlow/internal/router"
	"github.com/MKabaja/SHIFTFlow/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	log := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db, "up"); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}

	rdb := config.NewRedisClient(ctx, config.RedisOptions())
	if rdb == nil {
		log.Warn("redis unavailable: using MySQL denylist, rate limit and cache disabled")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	var revocations service.RevocationStore
	sched := cron.New()
	if rdb != nil {
		revocations = service.NewRedisRevocationStore(rdb, cfg.RevokedPrefix)
	} else {
		tokens := repository.NewTokenRepo(db)
		revocations = tokens
		if err := schedulePurge(sched, tokens, cfg.PurgeInterval, metrics, log); err != nil {
			log.WithError(err).Fatal("schedule revoked token purge")
		}
	}
	revocations = service.NewCachedRevocationStore(revocations, revokedCacheSize, revokedCacheTTL)

	g, gctx := errgroup.WithContext(ctx)

	var events service.Publisher = service.NopPublisher{}
	if cfg.AuditEnabled {
		pub := service.NewAMQPPublisher(cfg.AMQPURL, 0, log)
		events = pub
		g.Go(func() error {
			pub.Run(gctx)
			return nil
		})
		consumer := &queue.AuditConsumer{URL: cfg.AMQPURL, LogPath: cfg.AuditLogPath, Log: log}
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("audit consumer stopped")
			}
			return nil
		})
	}

	issuer := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, revocations)
	auth, err := service.NewAuthService(users, issuer, service.AuthOptions{
		RejectInactive: cfg.RejectInactive,
		BcryptCost:     cfg.BcryptCost,
		Metrics:        metrics,
		Events:         events,
		Log:            log,
	})
	if err != nil {
		log.WithError(err).Fatal("auth service")
	}

	cacheCfg := config.LoadCacheConfig()
	e := router.New(router.Deps{
		Auth:           handler.NewAuthHandler(auth),
		Positions:      handler.NewPositionHandler(repository.NewPositionRepo(db), router.PositionsPurger(rdb, cacheCfg.Prefix), log),
		Schedules:      handler.NewScheduleHandler(repository.NewScheduleRepo(db), users),
		Availabilities: handler.NewAvailabilityHandler(repository.NewAvailabilityRepo(db)),
		UserAdmin:      handler.NewUserAdminHandler(users, cfg.BcryptCost),
		Resolver:       auth,
		Gate:           middleware.GateDeps{Log: log, Metrics: metrics, Events: events},
		Log:            log,
		Metrics:        metrics,
		Gatherer:       registry,
		DB:             db,
		LoginLimit:     middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		PositionsCache: middleware.NewRedisCache(cacheCfg, rdb, log),
	})

	sched.Start()

	addr := ":" + cfg.Port
	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		<-sched.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

const (
	revokedCacheSize = 4096
	revokedCacheTTL  = 10 * time.Minute
)

// schedulePurge deletes expired revoked_tokens rows on every tick of the
// given interval.
func schedulePurge(c *cron.Cron, tokens *repository.TokenRepo, every time.Duration, m *observability.Metrics, log logrus.FieldLogger) error {
	if every <= 0 {
		return nil
	}
	_, err := c.AddFunc("@every "+every.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := tokens.PurgeExpired(ctx, time.Now())
		if err != nil {
			log.WithError(err).Warn("purge revoked tokens")
			return
		}
		if n > 0 {
			m.RevokedPurgedTotal.Add(float64(n))
			log.WithField("rows", n).Debug("purged revoked tokens")
		}
	})
	return err
}
