package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/ports"
	"github.com/samirrijal/pilingqa/internal/pkg/plot"
)

// UploadResult is the outcome of one design upload.
type UploadResult struct {
	Table    *domain.PointTable
	Format   domain.Format
	State    *domain.AppState
	Replaced bool // the session's current table was replaced
}

// SessionOption customizes a SessionService.
type SessionOption func(*SessionService)

// WithClock overrides the time source used to stamp uploads.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// SessionService drives the two-page dashboard flow. Every method loads the
// session's AppState, applies one transition and saves it back.
type SessionService struct {
	designs   *DesignService
	store     ports.SessionStore
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewSessionService creates a new SessionService. publisher may be nil.
func NewSessionService(designs *DesignService, store ports.SessionStore, publisher ports.EventPublisher, opts ...SessionOption) *SessionService {
	s := &SessionService{designs: designs, store: store, publisher: publisher, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's state, or a fresh home state for an unknown id.
func (s *SessionService) State(ctx context.Context, id string) (*domain.AppState, error) {
	st, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if st == nil {
		return domain.NewAppState(), nil
	}
	st.Normalize()
	return st, nil
}

// Upload extracts fileName and, when it yields points, makes the result the
// session's current table. Failed and empty loads leave the session as it was.
func (s *SessionService) Upload(ctx context.Context, id, fileName string, data []byte) (*UploadResult, error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return nil, err
	}

	table, format, err := s.designs.Load(ctx, fileName, data)
	if err != nil {
		return nil, err
	}

	res := &UploadResult{Table: table, Format: format, State: st}
	if table.Empty() {
		return res, nil
	}

	loadedAt := s.now().UTC()
	st.ReplaceDesign(table, fileName, loadedAt)
	if err := s.save(ctx, id, st); err != nil {
		return nil, err
	}
	res.Replaced = true

	s.publish(ctx, &domain.DesignLoadedEvent{
		SessionID:  id,
		FileName:   fileName,
		Format:     format,
		PointCount: table.Len(),
		Sources:    table.SourceCounts(),
		LoadedAt:   loadedAt,
	})
	return res, nil
}

// GoOverview moves to the overview page. It fails with domain.ErrNoDesignData
// until a design has been loaded.
func (s *SessionService) GoOverview(ctx context.Context, id string) (*domain.AppState, error) {
	return s.update(ctx, id, func(st *domain.AppState) error { return st.GoOverview() })
}

// GoHome moves back to the home page.
func (s *SessionService) GoHome(ctx context.Context, id string) (*domain.AppState, error) {
	return s.update(ctx, id, func(st *domain.AppState) error {
		st.GoHome()
		return nil
	})
}

// SetViewMode switches the overview chart between plan and orbit views.
func (s *SessionService) SetViewMode(ctx context.Context, id, mode string) (*domain.AppState, error) {
	return s.update(ctx, id, func(st *domain.AppState) error { return st.SetViewMode(mode) })
}

// Reset forgets the session entirely.
func (s *SessionService) Reset(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Figure renders the chart selected by the state's view mode.
func (s *SessionService) Figure(st *domain.AppState) plot.Figure {
	return plot.ForMode(st.ViewMode, st.Table)
}

func (s *SessionService) update(ctx context.Context, id string, apply func(*domain.AppState) error) (*domain.AppState, error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(st); err != nil {
		return nil, err
	}
	if err := s.save(ctx, id, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SessionService) save(ctx context.Context, id string, st *domain.AppState) error {
	if err := s.store.Save(ctx, id, st); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// publish is best-effort: a broker outage never fails an upload.
func (s *SessionService) publish(ctx context.Context, ev *domain.DesignLoadedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDesignLoaded(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish design loaded", "session", ev.SessionID, "error", err)
	}
}
