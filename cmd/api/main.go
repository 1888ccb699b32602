package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pilingqa/internal/adapters/archive"
	"github.com/samirrijal/pilingqa/internal/adapters/dxf"
	"github.com/samirrijal/pilingqa/internal/adapters/http"
	"github.com/samirrijal/pilingqa/internal/adapters/landxml"
	natsadapter "github.com/samirrijal/pilingqa/internal/adapters/nats"
	"github.com/samirrijal/pilingqa/internal/adapters/session"
	"github.com/samirrijal/pilingqa/internal/adapters/valkey"
	"github.com/samirrijal/pilingqa/internal/core/ports"
	"github.com/samirrijal/pilingqa/internal/core/usecases"
	"github.com/samirrijal/pilingqa/internal/pkg/config"
	"github.com/samirrijal/pilingqa/internal/pkg/logging"
	"github.com/samirrijal/pilingqa/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("pilingqa-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Extractors, in the order formats are listed to users
	xml := landxml.NewExtractor()
	designs := usecases.NewDesignService(
		xml,
		dxf.NewExtractor(cfg.DXF.Enabled),
		archive.NewExtractor(xml),
	)
	if !cfg.DXF.Enabled {
		slog.Warn("dxf reader disabled, .dxf uploads will load no points")
	}

	deps := &http.Dependencies{
		Designs:       designs,
		SessionCookie: cfg.Session.CookieName,
		DXFEnabled:    cfg.DXF.Enabled,
		Version:       version,
	}

	// Session store
	var store ports.SessionStore
	switch cfg.Session.Store {
	case config.StoreValkey:
		cache, err := valkey.New(cfg.Valkey.Addr, "pilingqa:")
		if err != nil {
			log.Fatalf("valkey: %v", err)
		}
		defer cache.Close()
		store = session.NewCacheStore(cache, cfg.Session.TTLSeconds)
		deps.Cache = cache
	default:
		mem := session.NewMemoryStore(time.Duration(cfg.Session.TTLSeconds) * time.Second)
		go mem.RunSweeper(ctx, time.Minute)
		store = mem
	}
	slog.Info("session store ready", "store", cfg.Session.Store, "ttl_seconds", cfg.Session.TTLSeconds)

	// NATS
	var (
		publisher ports.EventPublisher
		natsConn  *nats.Conn
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, design events disabled", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}
	deps.NATS = natsConn
	deps.Sessions = usecases.NewSessionService(designs, store, publisher)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit(),
		AppName:      "Piling QA",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("dashboard starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight uploads up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
