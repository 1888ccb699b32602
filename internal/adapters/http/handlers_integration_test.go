//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/pilingqa/internal/adapters/archive"
	"github.com/samirrijal/pilingqa/internal/adapters/dxf"
	handler "github.com/samirrijal/pilingqa/internal/adapters/http"
	"github.com/samirrijal/pilingqa/internal/adapters/landxml"
	natsadapter "github.com/samirrijal/pilingqa/internal/adapters/nats"
	"github.com/samirrijal/pilingqa/internal/adapters/session"
	"github.com/samirrijal/pilingqa/internal/adapters/valkey"
	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/ports"
	"github.com/samirrijal/pilingqa/internal/core/usecases"
	"github.com/samirrijal/pilingqa/internal/pkg/config"
)

// setupTestCache connects to the Valkey named by the test configuration.
func setupTestCache(t *testing.T, cfg *config.Config) *valkey.Cache {
	cache, err := valkey.New(cfg.Valkey.Addr, "pilingqa-test:"+time.Now().Format("150405.000")+":")
	if err != nil {
		t.Fatalf("connect valkey: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("ping valkey: %v", err)
	}
	return cache
}

// setupTestDeps wires the real extractors to a Valkey-backed session store.
func setupTestDeps(t *testing.T, cfg *config.Config, cache *valkey.Cache, pub *natsadapter.Publisher) *handler.Dependencies {
	designs := usecases.NewDesignService(
		landxml.NewExtractor(),
		dxf.NewExtractor(true),
		archive.NewExtractor(landxml.NewExtractor()),
	)
	var publisher ports.EventPublisher
	if pub != nil {
		publisher = pub
	}
	return &handler.Dependencies{
		Designs:    designs,
		Sessions:   usecases.NewSessionService(designs, session.NewCacheStore(cache, cfg.Session.TTLSeconds), publisher),
		Cache:      cache,
		DXFEnabled: true,
		Version:    "integration",
	}
}

func loadTestConfig(t *testing.T) *config.Config {
	cfg, err := config.Load("pilingqa-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

// TestSession_Integration_ValkeyStore keeps a design across requests in Valkey.
func TestSession_Integration_ValkeyStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := loadTestConfig(t)
	cache := setupTestCache(t, cfg)
	defer cache.Close()

	b := newBrowser(t, setupApp(setupTestDeps(t, cfg, cache, nil)))

	resp := b.upload("/v1/designs", "design.xml", []byte(landXMLDesign))
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	b.postJSON("/v1/session/view", `{"mode":"3D Orbit"}`)

	s := decodeSession(t, b.get("/v1/session"))
	if s.PointCount != 3 || s.ViewMode != "3D Orbit" || s.FileName != "design.xml" {
		t.Errorf("unexpected session from valkey %+v", s)
	}

	// A second app on the same cache sees the same session.
	other := &browser{t: t, app: setupApp(setupTestDeps(t, cfg, cache, nil)), cookie: b.cookie}
	if s := decodeSession(t, other.get("/v1/session")); s.PointCount != 3 {
		t.Errorf("expected session shared through valkey, got %+v", s)
	}
}

// TestReady_Integration_Valkey checks the readiness probe against a live cache.
func TestReady_Integration_Valkey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := loadTestConfig(t)
	cache := setupTestCache(t, cfg)
	defer cache.Close()

	app := setupApp(setupTestDeps(t, cfg, cache, nil))
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
}

// TestUpload_Integration_PublishesEvent round-trips a design.loaded event
// through JetStream.
func TestUpload_Integration_PublishesEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := loadTestConfig(t)
	cache := setupTestCache(t, cfg)
	defer cache.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		t.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		t.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan *domain.DesignLoadedEvent, 1)
	if err := sub.SubscribeDesignLoaded(ctx, "", func(ctx context.Context, ev *domain.DesignLoadedEvent) error {
		select {
		case got <- ev:
		default:
		}
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	b := newBrowser(t, setupApp(setupTestDeps(t, cfg, cache, pub)))
	resp := b.upload("/v1/designs", "site.dxf", []byte(dxfDesign))
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	select {
	case ev := <-got:
		if ev.Format != domain.FormatDXF || ev.PointCount != 3 || ev.FileName != "site.dxf" {
			raw, _ := json.Marshal(ev)
			t.Errorf("unexpected event %s", raw)
		}
		if ev.SessionID != b.cookie.Value {
			t.Errorf("expected event for session %s, got %s", b.cookie.Value, ev.SessionID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for design.loaded event")
	}
}
