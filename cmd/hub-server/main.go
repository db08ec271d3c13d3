package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/resourceshub/hub/pkg/hub/browse"
	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/config"
	"github.com/resourceshub/hub/pkg/hub/cors"
	"github.com/resourceshub/hub/pkg/hub/data"
	"github.com/resourceshub/hub/pkg/hub/database"
	"github.com/resourceshub/hub/pkg/hub/export"
	"github.com/resourceshub/hub/pkg/hub/logging"
	"github.com/resourceshub/hub/pkg/hub/metrics"
	"github.com/resourceshub/hub/pkg/hub/refresh"
	"github.com/resourceshub/hub/pkg/hub/votes"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", os.Getenv("HUB_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Votes are recorded locally unless a remote vote service is configured
	var voter votes.Voter
	var local *votes.Service
	if cfg.Votes.ServiceURL != "" {
		voter = votes.NewClient(cfg.Votes.ServiceURL, cfg.Data.Timeout, cfg.Votes.MaxRetry)
		log.Info().Str("url", cfg.Votes.ServiceURL).Msg("Using remote vote service")
	} else {
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to open vote database")
		}
		local = votes.NewService(votes.NewGormStore(db), cfg.Votes.Window)
		voter = local
		log.Info().Str("path", cfg.DatabasePath).Msg("Recording votes locally")
	}

	store := catalog.NewStore(voter, m)

	loader, err := data.NewClient(cfg.Data.BaseURL, data.Paths{
		Resources:  cfg.Data.ResourcesPath,
		Categories: cfg.Data.CategoriesPath,
		Tags:       cfg.Data.TagsPath,
	}, cfg.Data.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create data client")
	}
	refresher := refresh.New(loader, store, m, cfg.Data.ReportDupes)
	if err := refresher.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}

	// Background jobs
	scheduler := refresh.NewScheduler(cfg.Data.Timeout * 4)
	if err := scheduler.Add("refresh", cfg.Schedule.Refresh, refresher.Reload); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule refresh")
	}
	if err := scheduler.Add("vote-sync", cfg.Schedule.VoteSync, refresher.SyncVotes); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule vote sync")
	}
	if local != nil {
		purge := func(ctx context.Context) error {
			n, err := local.Purge(ctx)
			if err == nil && n > 0 {
				log.Debug().Int64("receipts", n).Msg("Purged expired vote receipts")
			}
			return err
		}
		if err := scheduler.Add("purge-receipts", "@hourly", purge); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule receipt purge")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	limiter := votes.NewRateLimiter(cfg.Votes.RateLimit, cfg.Votes.RateBurst)
	go limiter.Run(ctx)

	if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := setupRouter(routerDeps{
		store:    store,
		pipeline: browse.NewPipeline(cfg.Browse.Language),
		limiter:  limiter,
		metrics:  m,
		gatherer: reg,
		origins:  cfg.AllowedOrigins,
		proxies:  cfg.TrustedProxies,
		opts: browse.QueryOptions{
			PageSizes:       cfg.Browse.PageSizes,
			DefaultPageSize: cfg.Browse.DefaultPageSize,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}
	serveFrontend(r, "./web/dist")

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting Resources Hub server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}

type routerDeps struct {
	store    *catalog.Store
	pipeline *browse.Pipeline
	opts     browse.QueryOptions
	limiter  *votes.RateLimiter
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	origins  []string
	proxies  []string
}

// setupRouter creates a Gin engine with all API routes registered.
// Client IPs come from X-Forwarded-For only when the peer is one of
// d.proxies.
func setupRouter(d routerDeps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), logging.Middleware(), d.metrics.Middleware(), cors.Middleware(d.origins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
	if d.gatherer != nil {
		metrics.Register(r, d.gatherer)
	}

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			snap := d.store.Snapshot()
			c.JSON(200, gin.H{
				"status":     "ok",
				"service":    "resources-hub",
				"resources":  len(snap.Resources()),
				"lastLoaded": snap.LoadedAt(),
			})
		})

		browseHandler := browse.NewHandler(d.store, d.pipeline, d.opts)
		browseHandler.RegisterRoutes(api)

		votesHandler := votes.NewHandler(d.store, d.limiter)
		votesHandler.RegisterRoutes(api)

		exportHandler := export.NewHandler(d.store, d.pipeline, d.opts)
		exportHandler.RegisterRoutes(api)
	}
	return r, nil
}

// serveFrontend serves the built single-page app from dir, if present
func serveFrontend(r *gin.Engine, dir string) {
	if _, err := os.Stat(dir); err != nil {
		log.Info().Str("dir", dir).Msg("No frontend build found - API only mode")
		return
	}
	r.Static("/assets", filepath.Join(dir, "assets"))
	r.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	r.StaticFile("/robots.txt", filepath.Join(dir, "robots.txt"))

	// SPA fallback - serve index.html for frontend routes
	indexHTML := filepath.Join(dir, "index.html")
	for _, route := range []string{"/", "/browse", "/about"} {
		r.GET(route, func(c *gin.Context) {
			c.File(indexHTML)
		})
	}
	r.GET("/category/*path", func(c *gin.Context) {
		c.File(indexHTML)
	})
	r.GET("/resource/*path", func(c *gin.Context) {
		c.File(indexHTML)
	})
	log.Info().Str("dir", dir).Msg("Serving frontend")
}
