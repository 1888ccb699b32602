package http

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/core/usecases"
	"github.com/samirrijal/pilingqa/internal/pkg/plot"
)

const previewRows = 5

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"coord": func(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) },
}).ParseFS(templateFS, "templates/*.html"))

type flash struct {
	Kind    string // success, warning, error
	Message string
}

type pointRows struct {
	Columns []string
	Rows    []domain.PointRecord
}

type viewOption struct {
	Label   string
	Checked bool
}

type pageData struct {
	Title     string
	Accept    string
	State     SessionView
	Flash     *flash
	Preview   *pointRows
	Table     pointRows
	ViewModes []viewOption
	Figure    plot.Figure
}

func acceptList(deps *Dependencies) string {
	var exts []string
	for _, f := range deps.Designs.Formats() {
		exts = append(exts, usecases.ExtensionFor(f))
	}
	return strings.Join(exts, ",")
}

// renderPage draws the page the state points at.
func renderPage(c *fiber.Ctx, deps *Dependencies, status int, st *domain.AppState, fl *flash, preview *domain.PointTable) error {
	data := pageData{
		Title:  "Piling QA Dashboard",
		Accept: acceptList(deps),
		State:  newSessionView(st),
		Flash:  fl,
	}

	name := "home"
	if st.Page == domain.PageOverview && st.HasDesign() {
		name = "overview"
		data.Title = "Overview - Piling QA Dashboard"
		data.Table = pointRows{Columns: st.Table.Columns(), Rows: st.Table.Rows()}
		data.Figure = deps.Sessions.Figure(st)
		for _, m := range domain.ViewModes {
			data.ViewModes = append(data.ViewModes, viewOption{Label: string(m), Checked: m == st.ViewMode})
		}
	} else if !preview.Empty() {
		data.Preview = &pointRows{Columns: preview.Columns(), Rows: preview.Head(previewRows)}
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// renderFailure re-renders the current page with an error banner.
func renderFailure(c *fiber.Ctx, deps *Dependencies, err error) error {
	status, _ := classify(err)
	if status == fiber.StatusInternalServerError {
		LoggerFromCtx(c.UserContext()).Error("page request failed", "path", c.Path(), "error", err)
	}
	st, stErr := deps.Sessions.State(c.UserContext(), sessionID(c))
	if stErr != nil {
		LoggerFromCtx(c.UserContext()).Error("page request failed", "path", c.Path(), "error", stErr)
		st = domain.NewAppState()
	}
	return renderPage(c, deps, status, st, &flash{Kind: "error", Message: userMessage(err)}, nil)
}

// PageHandler renders the home or overview page for the session.
func PageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.State(c.UserContext(), sessionID(c))
		if err != nil {
			return renderFailure(c, deps, err)
		}
		return renderPage(c, deps, fiber.StatusOK, st, nil, nil)
	}
}

// PageUploadHandler handles the home page upload form.
func PageUploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, data, err := readUpload(c)
		if err != nil {
			st, stErr := deps.Sessions.State(c.UserContext(), sessionID(c))
			if stErr != nil {
				LoggerFromCtx(c.UserContext()).Error("page request failed", "path", c.Path(), "error", stErr)
				st = domain.NewAppState()
			}
			return renderPage(c, deps, fiber.StatusBadRequest, st, &flash{Kind: "error", Message: "Choose a design file to upload"}, nil)
		}

		res, err := deps.Sessions.Upload(c.UserContext(), sessionID(c), name, data)
		if err != nil {
			return renderFailure(c, deps, err)
		}

		if !res.Replaced {
			return renderPage(c, deps, fiber.StatusOK, res.State, &flash{
				Kind:    "warning",
				Message: "No design points found in " + name,
			}, nil)
		}
		return renderPage(c, deps, fiber.StatusOK, res.State, &flash{
			Kind:    "success",
			Message: "Loaded " + strconv.Itoa(res.Table.Len()) + " design points from " + name,
		}, res.Table)
	}
}

// PageOverviewHandler moves to the overview page.
func PageOverviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := deps.Sessions.GoOverview(c.UserContext(), sessionID(c)); err != nil {
			return renderFailure(c, deps, err)
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// PageHomeHandler returns to the home page.
func PageHomeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := deps.Sessions.GoHome(c.UserContext(), sessionID(c)); err != nil {
			return renderFailure(c, deps, err)
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// PageViewModeHandler applies the view mode radio selection.
func PageViewModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := deps.Sessions.SetViewMode(c.UserContext(), sessionID(c), c.FormValue("mode")); err != nil {
			return renderFailure(c, deps, err)
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}
