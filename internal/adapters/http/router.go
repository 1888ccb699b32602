package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/pilingqa/internal/pkg/metrics"
)

const (
	readTimeout   = 15 * time.Second
	uploadTimeout = 2 * time.Minute
)

// SetupRoutes registers the dashboard pages and the REST, GraphQL, and
// WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, no session)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))
	app.Get("/v1/formats", FormatsHandler(deps))

	sess := SessionMiddleware(deps)

	// Dashboard pages
	app.Get("/", sess, PageHandler(deps))
	app.Post("/designs", sess, timeout.NewWithContext(PageUploadHandler(deps), uploadTimeout))
	app.Post("/page/overview", sess, PageOverviewHandler(deps))
	app.Post("/page/home", sess, PageHomeHandler(deps))
	app.Post("/view", sess, PageViewModeHandler(deps))

	// REST API v1
	v1 := app.Group("/v1", sess)
	v1.Get("/session", timeout.NewWithContext(GetSessionHandler(deps), readTimeout))
	v1.Delete("/session", timeout.NewWithContext(ResetSessionHandler(deps), readTimeout))
	v1.Post("/session/page", timeout.NewWithContext(SetPageHandler(deps), readTimeout))
	v1.Post("/session/view", timeout.NewWithContext(SetViewModeHandler(deps), readTimeout))
	v1.Post("/designs", timeout.NewWithContext(UploadDesignHandler(deps), uploadTimeout))
	v1.Get("/points", timeout.NewWithContext(ListPointsHandler(deps), readTimeout))
	v1.Get("/points.geojson", timeout.NewWithContext(PointsGeoJSONHandler(deps), readTimeout))
	v1.Get("/summary", timeout.NewWithContext(SummaryHandler(deps), readTimeout))
	v1.Get("/views/:name", timeout.NewWithContext(ViewHandler(deps), readTimeout))

	// GraphQL
	app.Post("/graphql", sess, GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket relay of design.loaded events
	if deps.NATS == nil {
		app.Get("/ws", func(c *fiber.Ctx) error {
			return errUnavailable(c, "event relay is not configured")
		})
		return
	}
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
