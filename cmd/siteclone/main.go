package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/riandyrn/otelchi"
	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/siteclone/internal/adapter/filestore"
	"github.com/neomorfeo/siteclone/internal/adapter/fsm"
	handler "github.com/neomorfeo/siteclone/internal/adapter/http"
	oteladapter "github.com/neomorfeo/siteclone/internal/adapter/otel"
	"github.com/neomorfeo/siteclone/internal/adapter/ristretto"
	riveradapter "github.com/neomorfeo/siteclone/internal/adapter/river"
	"github.com/neomorfeo/siteclone/internal/adapter/sqlite"
	"github.com/neomorfeo/siteclone/internal/adapter/token"
	"github.com/neomorfeo/siteclone/internal/adapter/transcript"
	"github.com/neomorfeo/siteclone/internal/app"
	"github.com/neomorfeo/siteclone/internal/config"
	"github.com/neomorfeo/siteclone/internal/domain"
	"github.com/neomorfeo/siteclone/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "siteclone: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging, cfg.Telemetry.ServiceName, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	providers, err := oteladapter.Setup(ctx, oteladapter.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Telemetry.Environment,
		Exporter:       cfg.Telemetry.Exporter,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	queue, err := riveradapter.Setup(ctx, db, log.With("component", "river"))
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	publisher := oteladapter.NewTracingPublisher(riveradapter.NewPublisher(queue))

	lifecycle := fsm.New()
	mode := platformMode(cfg.Platform)

	var catalog domain.TenantCatalog = app.NewCatalog(repo, mode.Duplicables)
	onChange := func() {}
	if cfg.Catalog.CacheTTL > 0 {
		cached, err := ristretto.New(catalog, cfg.Catalog.CacheTTL)
		if err != nil {
			return fmt.Errorf("catalog cache: %w", err)
		}
		defer cached.Close()
		catalog, onChange = cached, cached.Invalidate
	}
	catalog = oteladapter.NewTracingCatalog(catalog)

	secret := cfg.Security.TokenSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("no token secret configured, issued tokens will not survive a restart")
	}
	signer := token.NewSigner(secret, cfg.Security.TokenTTL)

	engine, err := oteladapter.NewTracingEngine(
		app.NewCloneEngine(repo, repo, filestore.New(cfg.Assets.Root), publisher, lifecycle),
	)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	// --- Application ---
	orchestrator := app.NewOrchestrator(
		app.NewRequestValidator(signer, catalog, app.WithLogRoot(cfg.Transcript.Root)),
		engine,
		transcript.NewFileOpener(cfg.Transcript.Root, cfg.Transcript.BaseURL),
		log.With("component", "orchestrator"),
	)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(otelchi.Middleware(cfg.Telemetry.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(log.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig("siteclone", cfg.Telemetry.ServiceVersion))
	handler.Register(api, handler.Services{
		Admin:        app.NewTenantAdmin(repo, lifecycle, publisher),
		Orchestrator: orchestrator,
		Sources:      app.NewSourceSelector(catalog, cfg.Platform.AutoSelectSingle),
		Tokens:       signer,
		Mode:         mode,
		Scheme:       cfg.Platform.Scheme,
		OnChange:     onChange,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// River stops through Stop below, not through context cancellation.
		if err := queue.Start(context.WithoutCancel(gctx)); err != nil {
			return fmt.Errorf("river start: %w", err)
		}
		<-gctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := queue.Stop(stopCtx); err != nil {
			return fmt.Errorf("river stop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("siteclone listening", "addr", srv.Addr, "docs", "http://localhost:"+cfg.Server.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}

// platformMode converts the platform settings to the domain view.
func platformMode(p config.Platform) domain.PlatformMode {
	return domain.PlatformMode{
		SubdomainInstall: p.SubdomainInstall,
		BaseDomain:       p.BaseDomain,
		BasePath:         p.BasePath,
		ReservedWords:    p.ReservedWords,
		Duplicables:      domain.DuplicablePolicy(p.Duplicables),
	}
}
