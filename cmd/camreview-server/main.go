package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/cwhuang-tw/camreview/internal/camreview/cache"
	"github.com/cwhuang-tw/camreview/internal/camreview/notify"
	natsnotify "github.com/cwhuang-tw/camreview/internal/camreview/notify/nats"
	"github.com/cwhuang-tw/camreview/internal/camreview/service"
	"github.com/cwhuang-tw/camreview/internal/camreview/store/sqlite"
	"github.com/cwhuang-tw/camreview/internal/config"
	"github.com/cwhuang-tw/camreview/internal/db"
	"github.com/cwhuang-tw/camreview/internal/httpapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Env == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.WithError(err).Warnf("unknown display timezone %q, using UTC", cfg.DisplayTimezone)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.WithError(err).Fatal("seed dev data")
		}
	}

	requestStore := sqlite.NewRequestStore(conn, writer)
	rosterStore := sqlite.NewRosterStore(conn)
	directoryStore := sqlite.NewDirectoryStore(conn)
	catalogStore := sqlite.NewCatalogStore(conn)

	// Caches + resolvers
	rosterCache := cache.New[[]string](time.Now)
	directoryCache := cache.New[map[string]string](time.Now)
	roles := service.NewRoleResolver(rosterStore, rosterCache, logger)
	directory := service.NewDirectoryResolver(directoryStore, directoryCache, logger)

	// Notification transport
	var notifier notify.Notifier
	if cfg.NATSURL != "" {
		pub, err := natsnotify.NewPublisher(cfg.NATSURL, cfg.NotifySubject, cfg.BaseURL)
		if err != nil {
			logger.WithError(err).Fatal("connect notification transport")
		}
		defer pub.Close()
		notifier = pub
	} else {
		logger.Warn("no NATS URL configured, notifications are log-only")
		notifier = notify.NewLogNotifier(logger)
	}

	// Services
	workflow := service.NewWorkflow(requestStore, roles, directory, notifier, logger)
	queries := service.NewQueryService(requestStore, roles, directory, loc)
	legacy := service.NewLegacyService(requestStore, roles, logger, loc)
	catalog := service.NewCatalogService(catalogStore, logger)

	janitor := service.NewCacheJanitor(cfg.JanitorInterval, logger, rosterCache, directoryCache)
	janitor.Start(ctx)
	defer janitor.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logger,
		Addr:           cfg.HTTPAddr,
		IdentityHeader: cfg.IdentityHeader,
		Workflow:       workflow,
		Queries:        queries,
		Legacy:         legacy,
		Catalog:        catalog,
		Roles:          roles,
		Directory:      directory,
	})

	go func() {
		logger.Infof("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
