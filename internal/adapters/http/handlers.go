package http

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/usecases"
	"github.com/samirrijal/pilingqa/internal/pkg/geospatial"
	"github.com/samirrijal/pilingqa/internal/pkg/plot"
)

// uploadField is the multipart field carrying the design file.
const uploadField = "design"

// SessionView is the client-facing projection of a session's state.
type SessionView struct {
	Page       domain.Page     `json:"page"`
	ViewMode   domain.ViewMode `json:"view_mode"`
	ViewModes  []string        `json:"view_modes"`
	HasDesign  bool            `json:"has_design"`
	FileName   string          `json:"file_name,omitempty"`
	LoadedAt   *time.Time      `json:"loaded_at,omitempty"`
	PointCount int             `json:"point_count"`
	Sources    map[string]int  `json:"sources"`
}

func newSessionView(st *domain.AppState) SessionView {
	v := SessionView{
		Page:       st.Page,
		ViewMode:   st.ViewMode,
		HasDesign:  st.HasDesign(),
		FileName:   st.FileName,
		PointCount: st.Table.Len(),
		Sources:    st.Table.SourceCounts(),
	}
	for _, m := range domain.ViewModes {
		v.ViewModes = append(v.ViewModes, string(m))
	}
	if !st.LoadedAt.IsZero() {
		at := st.LoadedAt
		v.LoadedAt = &at
	}
	return v
}

// UploadResponse reports the outcome of a design upload.
type UploadResponse struct {
	FileName   string             `json:"file_name"`
	Format     domain.Format      `json:"format"`
	PointCount int                `json:"point_count"`
	Replaced   bool               `json:"replaced"`
	Columns    []string           `json:"columns"`
	Points     *domain.PointTable `json:"points"`
	Summary    geospatial.Summary `json:"summary"`
	Session    SessionView        `json:"session"`
}

// FormatInfo describes one accepted design format.
type FormatInfo struct {
	Format    domain.Format `json:"format"`
	Extension string        `json:"extension"`
	Available bool          `json:"available"`
}

// readUpload returns the name and bytes of the uploaded design file.
func readUpload(c *fiber.Ctx) (string, []byte, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return "", nil, fmt.Errorf("multipart field %q is required", uploadField)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return fh.Filename, data, nil
}

// GetSessionHandler returns the caller's session state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.State(c.UserContext(), sessionID(c))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(newSessionView(st))
	}
}

// ResetSessionHandler forgets the caller's session.
func ResetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Reset(c.UserContext(), sessionID(c)); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetPageHandler switches between the home and overview pages.
// Body: {"page": "home" | "overview"}.
func SetPageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Page string `json:"page"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		st, err := setPage(c.UserContext(), deps, sessionID(c), body.Page)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(newSessionView(st))
	}
}

// setPage moves the session to the named page.
func setPage(ctx context.Context, deps *Dependencies, id, name string) (*domain.AppState, error) {
	page, err := domain.ParsePage(name)
	if err != nil {
		return nil, err
	}
	if page == domain.PageOverview {
		return deps.Sessions.GoOverview(ctx, id)
	}
	return deps.Sessions.GoHome(ctx, id)
}

// SetViewModeHandler selects the overview chart.
// Body: {"mode": "Local 2D Plan" | "3D Orbit"}.
func SetViewModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Mode string `json:"mode"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		st, err := deps.Sessions.SetViewMode(c.UserContext(), sessionID(c), body.Mode)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(newSessionView(st))
	}
}

// UploadDesignHandler accepts a multipart design upload and makes it the
// session's current table when it yields points.
func UploadDesignHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, data, err := readUpload(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		res, err := deps.Sessions.Upload(c.UserContext(), sessionID(c), name, data)
		if err != nil {
			return errFrom(c, err)
		}

		status := fiber.StatusOK
		if res.Replaced {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(UploadResponse{
			FileName:   name,
			Format:     res.Format,
			PointCount: res.Table.Len(),
			Replaced:   res.Replaced,
			Columns:    res.Table.Columns(),
			Points:     res.Table,
			Summary:    geospatial.Summarize(res.Table),
			Session:    newSessionView(res.State),
		})
	}
}

// ListPointsHandler returns the session's design points, paginated.
func ListPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.State(c.UserContext(), sessionID(c))
		if err != nil {
			return errFrom(c, err)
		}

		pg := pageParams(c, st.Table.Len())
		if source := c.Query("source"); source != "" {
			var filtered []domain.PointRecord
			for _, r := range st.Table.Rows() {
				if r.Source == source {
					filtered = append(filtered, r)
				}
			}
			pg.Total = len(filtered)
			points := domain.NewPointTable(filtered...).Slice(pg.Offset, pg.Limit)
			SetLinkHeaders(c, pg)
			return c.JSON(PaginatedResponse{Data: points, Pagination: pg})
		}

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: st.Table.Slice(pg.Offset, pg.Limit), Pagination: pg})
	}
}

// PointsGeoJSONHandler exports the session's design points as GeoJSON.
func PointsGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.State(c.UserContext(), sessionID(c))
		if err != nil {
			return errFrom(c, err)
		}
		data, err := geospatial.FeatureCollection(st.Table).MarshalJSON()
		if err != nil {
			return errFrom(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// SummaryHandler returns counts, extent and spacing of the session's design.
func SummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.State(c.UserContext(), sessionID(c))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(geospatial.SummarizeWithSpacing(st.Table))
	}
}

// ViewHandler returns a chart figure for the session's design. The :name
// parameter is plan, orbit, or current (the session's selected view mode).
func ViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.State(c.UserContext(), sessionID(c))
		if err != nil {
			return errFrom(c, err)
		}

		var fig plot.Figure
		switch c.Params("name") {
		case "plan":
			fig = plot.PlanView(st.Table)
		case "orbit":
			fig = plot.OrbitView(st.Table)
		case "current":
			fig = deps.Sessions.Figure(st)
		default:
			return errNotFound(c, "view must be plan, orbit, or current")
		}
		return c.JSON(fig)
	}
}

// FormatsHandler lists the accepted design formats.
func FormatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		formats := deps.Designs.Formats()
		out := make([]FormatInfo, 0, len(formats))
		for _, f := range formats {
			out = append(out, FormatInfo{
				Format:    f,
				Extension: usecases.ExtensionFor(f),
				Available: f != domain.FormatDXF || deps.DXFEnabled,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Extension < out[j].Extension })
		return c.JSON(fiber.Map{"formats": out})
	}
}
