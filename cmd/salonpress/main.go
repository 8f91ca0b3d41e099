// Package main is the entry point for the salonpress server.
// It loads configuration, connects to services, starts the collection
// synchronizers, sets up routing, and runs the HTTP server with graceful
// shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonpress/internal/ai"
	"salonpress/internal/cache"
	"salonpress/internal/config"
	"salonpress/internal/database"
	"salonpress/internal/forms"
	"salonpress/internal/handlers"
	"salonpress/internal/live"
	"salonpress/internal/models"
	"salonpress/internal/render"
	"salonpress/internal/router"
	"salonpress/internal/session"
	"salonpress/internal/storage"
	"salonpress/internal/store"
	"salonpress/internal/upload"
)

// collections lists the managed content collections. Each gets its own
// synchronizer, reorder coordinator, and admin editing surface.
var collections = []string{"staffs", "products", "news"}

func main() {
	// Structured logger — outputs text to stdout at debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"site", cfg.SiteID,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions, page cache, change notifications).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Initialize the HTML template renderer.
	renderer, err := render.New(cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores. Item writes publish change notifications so
	// every running instance reloads its snapshot.
	notifier := live.NewNotifier(valkeyClient)
	itemStore := store.NewItemStore(db, notifier)
	userStore := store.NewUserStore(db)

	// Connect to S3-compatible object storage (optional — the site works
	// without it, but media uploads are disabled).
	var storageClient *storage.Client
	if cfg.HasStorage() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	var uploader forms.Uploader
	var pipeline *upload.Pipeline
	if storageClient != nil {
		pipeline = upload.New(storageClient, cfg.SiteID)
		uploader = pipeline
	}

	// Initialize the full-page cache for the public site.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel},
		"gemini": {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel},
		"claude": {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel},
	})

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	var generator forms.TextGenerator
	if len(aiRegistry.Available()) > 0 {
		generator = aiRegistry
	}

	// Context for the background synchronizers, cancelled at shutdown.
	runCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()

	// One synchronizer and reorder coordinator per collection. The
	// synchronizer keeps an in-memory snapshot current via Valkey change
	// notifications; mutations also invalidate the page cache.
	syncs := make(map[string]*live.Synchronizer, len(collections))
	coords := make(map[string]*live.Coordinator, len(collections))
	for _, collection := range collections {
		sync := live.New(itemStore, valkeyClient, collection, cfg.SiteID)
		syncs[collection] = sync
		coords[collection] = live.NewCoordinator(sync, itemStore)

		col := collection
		sync.Subscribe(func([]models.Item) {
			pageCache.InvalidateCollection(context.Background(), col)
		})

		go func() {
			if err := sync.Run(runCtx); err != nil && runCtx.Err() == nil {
				slog.Error("synchronizer stopped", "collection", col, "error", err)
			}
		}()
	}

	// Per-session form controllers share the stores and pipeline.
	formRegistry := forms.NewRegistry(func(collection string) *forms.Controller {
		return forms.NewController(itemStore, uploader, generator, collection, cfg.SiteID)
	})

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(renderer, syncs, coords, itemStore, pipeline, formRegistry, cfg.SiteID)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	publicHandlers := handlers.NewPublic(renderer, syncs, pageCache)

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, adminHandlers, authHandlers, publicHandlers)

	// Create the HTTP server. WriteTimeout accommodates media uploads and
	// AI endpoints that wait on provider responses.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	stopSync()

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
