package domain

import "time"

// Page is the dashboard page a session is currently on.
type Page string

const (
	PageHome     Page = "home"
	PageOverview Page = "overview"
)

// ParsePage validates a user supplied page name.
func ParsePage(s string) (Page, error) {
	switch p := Page(s); p {
	case PageHome, PageOverview:
		return p, nil
	}
	return "", ErrUnknownPage
}

// ViewMode selects which chart the overview page shows.
type ViewMode string

const (
	ViewPlan  ViewMode = "Local 2D Plan"
	ViewOrbit ViewMode = "3D Orbit"
)

// ViewModes lists the selectable view modes, default first.
var ViewModes = []ViewMode{ViewPlan, ViewOrbit}

// ParseViewMode validates a user supplied view mode.
func ParseViewMode(s string) (ViewMode, error) {
	for _, m := range ViewModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", ErrUnknownViewMode
}

// AppState is the per-session dashboard state. It is passed explicitly into
// and out of every handler rather than held in package globals.
type AppState struct {
	Page     Page        `json:"page"`
	ViewMode ViewMode    `json:"view_mode"`
	Table    *PointTable `json:"table,omitempty"`
	FileName string      `json:"file_name,omitempty"`
	LoadedAt time.Time   `json:"loaded_at,omitempty"`
}

// NewAppState returns the state of a fresh session.
func NewAppState() *AppState {
	return &AppState{Page: PageHome, ViewMode: ViewPlan}
}

// Normalize resets unrecognized page and view mode values to their defaults.
// The overview page falls back to home when no design is loaded.
func (s *AppState) Normalize() {
	switch s.Page {
	case PageHome:
	case PageOverview:
		if !s.HasDesign() {
			s.Page = PageHome
		}
	default:
		s.Page = PageHome
	}
	if _, err := ParseViewMode(string(s.ViewMode)); err != nil {
		s.ViewMode = ViewPlan
	}
}

// Clone returns a copy of the state. The table is shared since tables are
// never mutated after loading.
func (s *AppState) Clone() *AppState {
	c := *s
	return &c
}

// HasDesign reports whether a non-empty table is loaded.
func (s *AppState) HasDesign() bool {
	return s.Table != nil && !s.Table.Empty()
}

// ReplaceDesign installs a freshly loaded table, replacing the previous one
// wholesale.
func (s *AppState) ReplaceDesign(t *PointTable, fileName string, at time.Time) {
	s.Table = t
	s.FileName = fileName
	s.LoadedAt = at
}

// GoOverview moves to the overview page. It requires a loaded design.
func (s *AppState) GoOverview() error {
	if !s.HasDesign() {
		return ErrNoDesignData
	}
	s.Page = PageOverview
	return nil
}

// GoHome moves back to the home page.
func (s *AppState) GoHome() {
	s.Page = PageHome
}

// SetViewMode switches the overview chart. The table is left untouched.
func (s *AppState) SetViewMode(mode string) error {
	m, err := ParseViewMode(mode)
	if err != nil {
		return err
	}
	s.ViewMode = m
	return nil
}

// DesignLoadedEvent is published after a design file produced points.
type DesignLoadedEvent struct {
	SessionID  string         `json:"session_id"`
	FileName   string         `json:"file_name"`
	Format     Format         `json:"format"`
	PointCount int            `json:"point_count"`
	Sources    map[string]int `json:"sources"`
	LoadedAt   time.Time      `json:"loaded_at"`
}
