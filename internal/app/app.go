package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/meta-bridge/internal/config"
	httpcontroller "github.com/vadim/meta-bridge/internal/controller/http"
	"github.com/vadim/meta-bridge/internal/database"
	catalogdao "github.com/vadim/meta-bridge/internal/domain/catalog/dao"
	catalogservice "github.com/vadim/meta-bridge/internal/domain/catalog/service"
	composerservice "github.com/vadim/meta-bridge/internal/domain/composer/service"
	linksdao "github.com/vadim/meta-bridge/internal/domain/links/dao"
	linksservice "github.com/vadim/meta-bridge/internal/domain/links/service"
	pubdao "github.com/vadim/meta-bridge/internal/domain/publication/dao"
	pubpolicy "github.com/vadim/meta-bridge/internal/domain/publication/policy"
	"github.com/vadim/meta-bridge/internal/domain/publication/scheduler"
	pubservice "github.com/vadim/meta-bridge/internal/domain/publication/service"
	shopdao "github.com/vadim/meta-bridge/internal/domain/shoptemplate/dao"
	shopservice "github.com/vadim/meta-bridge/internal/domain/shoptemplate/service"
	webhookdao "github.com/vadim/meta-bridge/internal/domain/webhook/dao"
	webhookpolicy "github.com/vadim/meta-bridge/internal/domain/webhook/policy"
	webhookservice "github.com/vadim/meta-bridge/internal/domain/webhook/service"
	"github.com/vadim/meta-bridge/internal/httpx/upstream/graph"
	"github.com/vadim/meta-bridge/internal/httpx/upstream/ogmeta"
	"github.com/vadim/meta-bridge/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	pool *pgxpool.Pool
	s3   *storage.S3Storage

	accounts       *catalogdao.AccountPostgres
	catalogService *catalogservice.Service
	linksService   *linksservice.Service
	composer       *composerservice.Service
	pubPolicy      *pubpolicy.Policy
	webhookPolicy  *webhookpolicy.Policy
	shopService    *shopservice.Service

	scheduler *scheduler.Scheduler
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(60 * time.Second))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	if err := app.initDomains(ctx); err != nil {
		return nil, fmt.Errorf("initializing domains: %w", err)
	}

	app.registerRoutes()

	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(app.pubPolicy, app.linksService, cfg.Scheduler.Interval, logger)
	}

	return app, nil
}

// initInfrastructure initializes the database pool and object storage
func (a *App) initInfrastructure(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.pool = pool

	s3, err := storage.NewS3Storage(storage.S3Config{
		Endpoint:        a.cfg.S3.Endpoint,
		AccessKeyID:     a.cfg.S3.AccessKeyID,
		SecretAccessKey: a.cfg.S3.SecretAccessKey,
		Bucket:          a.cfg.S3.Bucket,
		Region:          a.cfg.S3.Region,
		PublicURL:       a.cfg.S3.PublicURL,
	})
	if err != nil {
		return fmt.Errorf("initializing s3 storage: %w", err)
	}
	a.s3 = s3

	return nil
}

// initDomains initializes domain layers (DAO, Service, Policy)
func (a *App) initDomains(ctx context.Context) error {
	graphClient := graph.New(
		graph.WithBaseURL(a.cfg.Graph.BaseURL),
		graph.WithAPIVersion(a.cfg.Graph.APIVersion),
		graph.WithHTTPClient(&http.Client{Timeout: a.cfg.Graph.Timeout}),
	)

	// Catalog
	a.accounts = catalogdao.NewAccountPostgres(a.pool)
	a.catalogService = catalogservice.New(a.accounts, graph.NewCatalogLoader(graphClient))

	// Link detection
	resolver := ogmeta.New(ogmeta.WithTimeout(a.cfg.Links.ResolveTimeout))
	previewRepo := linksdao.NewPreviewPostgres(a.pool)
	a.linksService = linksservice.New(resolver, previewRepo, a.cfg.Links.CacheTTL, a.logger)

	// Composer
	a.composer = composerservice.New(a.linksService, a.catalogService, a.cfg.Links.DebounceInterval, a.logger)

	// Publication
	uploader := &keyedUploader{s3: a.s3}
	pubSvc := pubservice.New(
		pubdao.NewPgPostRepository(a.pool),
		pubdao.NewPgMediaRepository(a.pool),
		pubdao.NewPgOutcomeRepository(a.pool),
		uploader,
		a.logger,
	)
	publisher := &graphPublisherAdapter{publisher: graph.NewPublisher(graphClient)}
	a.pubPolicy = pubpolicy.New(pubSvc, publisher, a.accounts, a.catalogService, a.logger)

	// Shop templates and webhook ingestion
	a.shopService = shopservice.New(shopdao.NewTemplatePostgres(a.pool))
	webhookSvc := webhookservice.New(webhookdao.NewItemPostgres(a.pool))
	a.webhookPolicy = webhookpolicy.New(
		webhookSvc,
		a.shopService,
		a.catalogService,
		a.pubPolicy,
		uploader,
		a.cfg.Webhook.OwnerUserID,
		a.logger,
	)

	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	swaggerHandler := httpcontroller.NewSwaggerHandler("Meta-Bridge Publishing API", OpenAPISpec)
	swaggerHandler.RegisterRoutes(a.router)

	a.router.Route("/api/v1", func(r chi.Router) {
		httpcontroller.NewAccountHandler(a.accounts).RegisterRoutes(r)
		httpcontroller.NewPlatformHandler(a.catalogService, a.composer).RegisterRoutes(r)
		httpcontroller.NewDraftHandler(a.composer, a.pubPolicy, a.catalogService).RegisterRoutes(r)
		httpcontroller.NewLinkHandler(a.linksService).RegisterRoutes(r)
		httpcontroller.NewMediaHandler(&mediaUploaderAdapter{s3: a.s3}).RegisterRoutes(r)
		httpcontroller.NewPostHandler(a.pubPolicy).RegisterRoutes(r)
		httpcontroller.NewShopHandler(a.shopService).RegisterRoutes(r)
		httpcontroller.NewWebhookHandler(a.webhookPolicy, a.cfg.Webhook.Token).RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := a.pool.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded","database":"unreachable"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("shutdown complete")
	return nil
}

// graphPublisherAdapter adapts graph.Publisher to pubpolicy.TargetPublisher
type graphPublisherAdapter struct {
	publisher *graph.Publisher
}

func (a *graphPublisherAdapter) PublishTarget(ctx context.Context, in pubpolicy.PublishRequest) (*pubpolicy.PublishResponse, error) {
	media := make([]graph.MediaRef, len(in.Media))
	for i, m := range in.Media {
		media[i] = graph.MediaRef{URL: m.URL, IsVideo: m.IsVideo}
	}

	out, err := a.publisher.PublishTarget(ctx, graph.PublishTargetInput{
		Target: graph.TargetInput{
			Kind:        string(in.Kind),
			TargetID:    in.TargetID,
			AccessToken: in.AccessToken,
		},
		Message:     in.Message,
		Media:       media,
		LinkURL:     in.LinkURL,
		CommentLink: in.CommentLink,
	})
	if err != nil {
		return nil, err
	}

	return &pubpolicy.PublishResponse{
		PostID:    out.PostID,
		CommentID: out.CommentID,
	}, nil
}

// keyedUploader adapts S3Storage to the keyed Upload interface the
// publication service and webhook policy expect
type keyedUploader struct {
	s3 *storage.S3Storage
}

func (u *keyedUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	return u.s3.UploadWithKey(ctx, key, contentType, body)
}

// mediaUploaderAdapter adapts S3Storage to httpcontroller.MediaUploader
type mediaUploaderAdapter struct {
	s3 *storage.S3Storage
}

func (a *mediaUploaderAdapter) Upload(ctx context.Context, in httpcontroller.MediaUploadInput) (*httpcontroller.MediaUploadOutput, error) {
	out, err := a.s3.Upload(ctx, storage.UploadInput{
		Reader:      in.Reader,
		ContentType: in.ContentType,
		Size:        in.Size,
		Filename:    in.Filename,
	})
	if err != nil {
		return nil, err
	}

	return &httpcontroller.MediaUploadOutput{
		URL:  out.URL,
		Key:  out.Key,
		Size: out.Size,
	}, nil
}
