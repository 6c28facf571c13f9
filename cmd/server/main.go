package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evex/pkg/apiclient"
	"evex/pkg/broker"
	"evex/pkg/cache"
	"evex/pkg/config"
	"evex/pkg/database"
	"evex/pkg/envelope"
	"evex/pkg/handlers"
	"evex/pkg/hub"
	"evex/pkg/logger"
	"evex/pkg/monitoring"
	"evex/pkg/server"
	"evex/pkg/session"
	"evex/pkg/tokenstore"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sessionTTL    = 30 * 24 * time.Hour
	sweepInterval = time.Minute
	authLimit     = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("[PORTAL] config")
	}
	log := logger.New(cfg.LogLevel, true)
	plog := logger.Component(log, "portal")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		plog.Info("[PORTAL] Connecting to Redis...")
		rdb, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			plog.WithError(err).Fatal("[PORTAL] redis")
		}
		defer rdb.Close()
		plog.Info("[PORTAL] Redis connected")
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			plog.WithError(err).Fatal("[PORTAL] postgres")
		}
		defer db.Close()
		go purgeIdleSessions(ctx, db, plog)
	}

	stores := storeFactory(cfg.TokenStore, rdb, db, plog)
	monitor := monitoring.NewMonitor()
	wsHub := hub.New(log)

	var pub hub.Publisher
	if rdb != nil {
		b := broker.New(rdb, log)
		b.On(envelope.ActionStorage, func(env envelope.Envelope) {
			wsHub.Deliver(env)
		})
		go func() {
			if err := b.Run(ctx); err != nil && ctx.Err() == nil {
				plog.WithError(err).Error("[PORTAL] broker stopped")
			}
		}()
		pub = b
	}
	storageChanged := wsHub.StorageNotifier(pub)
	notify := func(ctx context.Context, sid, reason string) {
		if reason == session.ReasonExpired {
			monitor.TrackForcedLogout()
		}
		storageChanged(ctx, sid, reason)
	}

	clientOpts := []apiclient.Option{
		apiclient.WithLogger(log),
		apiclient.WithMetrics(monitor),
	}
	if cfg.HTTPTimeout > 0 {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}

	registry := session.NewRegistry(func(sid string) *session.Entry {
		return session.NewEntry(sid, cfg.APIURL, stores(sid), clientOpts,
			session.WithNotifier(notify),
			session.WithLogger(log),
		)
	}, cfg.SessionIdle, log)
	go registry.Run(ctx, sweepInterval)
	go monitor.Collect(ctx, 15*time.Second, registry.Len, wsHub.ClientCount)

	var inflight cache.Inflight = cache.NewMemory()
	if rdb != nil {
		inflight = cache.NewRedis(rdb)
	}

	app := server.NewApp(server.Options{
		Name:    "evex-portal",
		Origins: cfg.CORSOrigins,
		Log:     log,
		Tracker: monitor,
	})

	app.Get("/hub/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"clients":  wsHub.ClientCount(),
			"sessions": wsHub.SessionCount(),
			"holders":  registry.Len(),
		})
	})

	handlers.Mount(app, handlers.Deps{
		Registry:  registry,
		Hub:       wsHub,
		Inflight:  inflight,
		Log:       log,
		Secret:    cfg.JWTSecret,
		Secure:    cfg.Production(),
		AuthLimit: authLimit,
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			plog.WithError(err).Warn("[PORTAL] shutdown")
		}
	}()

	addr := "0.0.0.0:" + cfg.Port
	plog.WithFields(logrus.Fields{"addr": addr, "api": cfg.APIURL, "store": cfg.TokenStore}).Info("[PORTAL] Server starting")
	if err := app.Listen(addr); err != nil {
		plog.WithError(err).Fatal("[PORTAL] Failed to start")
	}
}

func storeFactory(kind string, rdb *redis.Client, db *sql.DB, log *logrus.Entry) tokenstore.Factory {
	switch kind {
	case "redis":
		if rdb == nil {
			log.Fatal("[PORTAL] EVEX_TOKEN_STORE=redis needs REDIS_URL")
		}
		return tokenstore.RedisFactory(rdb, sessionTTL)
	case "postgres":
		if db == nil {
			log.Fatal("[PORTAL] EVEX_TOKEN_STORE=postgres needs DATABASE_URL")
		}
		return tokenstore.PostgresFactory(db)
	case "", "memory":
		return tokenstore.MemoryFactory()
	}
	log.WithField("store", kind).Fatal("[PORTAL] unknown token store")
	return nil
}

func purgeIdleSessions(ctx context.Context, db *sql.DB, log *logrus.Entry) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokenstore.PurgeIdle(ctx, db, sessionTTL)
			if err != nil {
				log.WithError(err).Warn("[PORTAL] purge sessions")
				continue
			}
			if n > 0 {
				log.WithField("removed", n).Info("[PORTAL] purged idle sessions")
			}
		}
	}
}
