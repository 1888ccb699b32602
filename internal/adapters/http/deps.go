package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pilingqa/internal/core/usecases"
)

// Pinger is a backend the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Designs  *usecases.DesignService
	Sessions *usecases.SessionService
	NATS     *nats.Conn
	Cache    Pinger

	// SessionCookie names the cookie carrying the session id.
	SessionCookie string
	SecureCookie  bool
	DXFEnabled    bool
	Version       string
}

func (d *Dependencies) cookieName() string {
	if d.SessionCookie == "" {
		return "pilingqa_session"
	}
	return d.SessionCookie
}
