package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/karak-pos/internal/api"
	"github.com/xenking/karak-pos/internal/domain/access"
	"github.com/xenking/karak-pos/internal/domain/cart"
	"github.com/xenking/karak-pos/internal/domain/checkout"
	"github.com/xenking/karak-pos/internal/domain/menu"
	"github.com/xenking/karak-pos/internal/domain/order"
	"github.com/xenking/karak-pos/internal/receipt"
	"github.com/xenking/karak-pos/internal/storage/file"
	"github.com/xenking/karak-pos/pkg/health"
	"github.com/xenking/karak-pos/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the terminal.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("data_dir", cfg.DataDir),
	)

	// Snapshot store + initial state. Missing or incompatible snapshots come
	// back as seeded defaults.
	store, err := file.New(cfg.DataDir, lg.Named("storage"))
	if err != nil {
		return errors.Wrap(err, "create snapshot store")
	}
	state, err := store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load snapshots")
	}

	receipts, err := receipt.NewFileRenderer(cfg.ReceiptDir)
	if err != nil {
		return errors.Wrap(err, "create receipt renderer")
	}

	// Domain components, wired explicitly: the store is the only shared
	// collaborator, everything else owns its own state.
	catalog := menu.NewCatalog(store, state.Categories, state.Items, lg.Named("menu"))
	journal := order.NewJournal(store, state.Orders, lg.Named("journal"))
	directory := access.NewDirectory(store, state.User, state.Users, lg.Named("access"))
	session := checkout.NewSession(cart.New(), journal, receipts, cfg.CompleteDelay, lg.Named("checkout"))
	defer session.Close()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("data-dir", 2*time.Second, health.DirWritableCheck(store.Dir()))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP surface: probes + API routes on one server.
	h := api.NewHandler(catalog, session, journal, directory)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Routes(mux)

	handler := httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(handler, "pos-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	// Graceful shutdown: flip readiness, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Terminal listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
