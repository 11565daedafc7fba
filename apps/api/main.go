package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/contracts"
	bandihandler "github.com/concoro/concoro-platform/domains/bandi/be/handler"
	bandirepo "github.com/concoro/concoro-platform/domains/bandi/be/repo"
	bandiservice "github.com/concoro/concoro-platform/domains/bandi/be/service"
	sitemaphandler "github.com/concoro/concoro-platform/domains/sitemap/be/handler"
	sitemapservice "github.com/concoro/concoro-platform/domains/sitemap/be/service"
	"github.com/concoro/concoro-platform/platform/go/gcp"
	platformlogging "github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/metrics"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	AuthProvider    string        `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	GCP             gcp.Config

	BandiCollection   string `env:"BANDI_COLLECTION" envDefault:"concorsi"`
	BandiActiveStatus string `env:"BANDI_ACTIVE_STATUS" envDefault:"open"`

	SiteBaseURL        string        `env:"SITE_BASE_URL" envDefault:"https://www.concoro.it"`
	SitemapBackend     string        `env:"SITEMAP_BACKEND" envDefault:"gcs"`                // gcs | local
	SitemapBucket      string        `env:"SITEMAP_BUCKET"`                                  // required when SITEMAP_BACKEND=gcs
	SitemapPrefix      string        `env:"SITEMAP_PREFIX"`                                  // object prefix inside the bucket or local dir
	SitemapLocalDir    string        `env:"SITEMAP_LOCAL_DIR" envDefault:"./.data/sitemap"` // used when SITEMAP_BACKEND=local
	SitemapStaticPages string        `env:"SITEMAP_STATIC_PAGES"`                            // optional YAML override
	SitemapCacheTTL    time.Duration `env:"SITEMAP_CACHE_TTL" envDefault:"15m"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "bandi-api",
		Level:     cfg.LogLevel,
		Version:   version,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	clients, err := gcp.NewClients(ctx, cfg.GCP, gcp.Want{
		Firestore: true,
		Auth:      cfg.AuthProvider == "firebase",
		Storage:   cfg.SitemapBackend == "gcs",
	})
	if err != nil {
		logger.Fatal("init google clients", zap.Error(err))
	}
	defer func() {
		if err := clients.Close(); err != nil {
			logger.Warn("close google clients", zap.Error(err))
		}
	}()

	m := metrics.New()

	bandiRepo := bandirepo.NewFirestoreRepository(clients.Firestore, bandirepo.FirestoreConfig{
		Collection:   cfg.BandiCollection,
		ActiveStatus: cfg.BandiActiveStatus,
	})
	bandiService := bandiservice.New(bandiRepo, logger, m)

	staticPages, err := loadStaticPages(cfg.SitemapStaticPages)
	if err != nil {
		logger.Fatal("load sitemap static pages", zap.String("path", cfg.SitemapStaticPages), zap.Error(err))
	}
	publisher, err := buildPublisher(cfg, clients)
	if err != nil {
		logger.Fatal("init sitemap publisher", zap.Error(err))
	}
	sitemapService := sitemapservice.New(bandiService, publisher, sitemapservice.Config{
		BaseURL:     cfg.SiteBaseURL,
		StaticPages: staticPages,
		CacheTTL:    cfg.SitemapCacheTTL,
	}, logger, m)

	spec, err := contracts.Load(contracts.Bandi)
	if err != nil {
		logger.Fatal("load openapi contract", zap.Error(err))
	}

	router := newRouter(routerDeps{
		logger:         logger,
		metrics:        m,
		bandi:          bandihandler.New(bandiService, logger),
		sitemap:        sitemaphandler.New(sitemapService, logger),
		verify:         buildVerifier(cfg, clients, logger),
		spec:           spec,
		requestTimeout: cfg.RequestTimeout,
		corsOrigins:    cfg.CORSOrigins,
		projectID:      cfg.GCP.ProjectID,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
