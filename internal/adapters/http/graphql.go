package http

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/pilingqa/internal/core/domain"
	"github.com/samirrijal/pilingqa/internal/pkg/geospatial"
)

const sessionCtxKey ctxKey = "session"

func sessionFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(sessionCtxKey).(string)
	return id
}

type sourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

func sortedSources(counts map[string]int) []sourceCount {
	out := make([]sourceCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, sourceCount{Source: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// gqlError carries the REST error code in the GraphQL error extensions.
type gqlError struct {
	code string
	msg  string
}

func (e *gqlError) Error() string { return e.msg }

func (e *gqlError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

func gqlErrorFrom(err error) error {
	status, code := classify(err)
	if status == fiber.StatusInternalServerError {
		return err
	}
	return &gqlError{code: code, msg: userMessage(err)}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DesignPoint",
		Fields: graphql.Fields{
			"name":      &graphql.Field{Type: graphql.String},
			"easting":   &graphql.Field{Type: graphql.Float},
			"northing":  &graphql.Field{Type: graphql.Float},
			"elevation": &graphql.Field{Type: graphql.Float},
			"source":    &graphql.Field{Type: graphql.String},
		},
	})

	sourceCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SourceCount",
		Fields: graphql.Fields{
			"source": &graphql.Field{Type: graphql.String},
			"count":  &graphql.Field{Type: graphql.Int},
		},
	})

	extentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Extent",
		Fields: graphql.Fields{
			"min_easting":   &graphql.Field{Type: graphql.Float},
			"min_northing":  &graphql.Field{Type: graphql.Float},
			"min_elevation": &graphql.Field{Type: graphql.Float},
			"max_easting":   &graphql.Field{Type: graphql.Float},
			"max_northing":  &graphql.Field{Type: graphql.Float},
			"max_elevation": &graphql.Field{Type: graphql.Float},
		},
	})

	sourcesField := func() *graphql.Field {
		return &graphql.Field{
			Type: graphql.NewList(sourceCountType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				switch v := p.Source.(type) {
				case geospatial.Summary:
					return sortedSources(v.Sources), nil
				case SessionView:
					return sortedSources(v.Sources), nil
				}
				return nil, nil
			},
		}
	}

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Summary",
		Fields: graphql.Fields{
			"count":       &graphql.Field{Type: graphql.Int},
			"sources":     sourcesField(),
			"extent":      &graphql.Field{Type: extentType},
			"centroid":    &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"min_spacing": &graphql.Field{Type: graphql.Float},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"page":        &graphql.Field{Type: graphql.String},
			"view_mode":   &graphql.Field{Type: graphql.String},
			"view_modes":  &graphql.Field{Type: graphql.NewList(graphql.String)},
			"has_design":  &graphql.Field{Type: graphql.Boolean},
			"file_name":   &graphql.Field{Type: graphql.String},
			"point_count": &graphql.Field{Type: graphql.Int},
			"sources":     sourcesField(),
		},
	})

	state := func(p graphql.ResolveParams) (*domain.AppState, error) {
		return deps.Sessions.State(p.Context, sessionFromCtx(p.Context))
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"designPoints": &graphql.Field{
				Type:        graphql.NewList(pointType),
				Description: "Design points of the current session, optionally filtered by source tag",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
					"source": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					st, err := state(p)
					if err != nil {
						return nil, err
					}
					table := st.Table
					if source, ok := p.Args["source"].(string); ok && source != "" {
						var rows []domain.PointRecord
						for _, r := range table.Rows() {
							if r.Source == source {
								rows = append(rows, r)
							}
						}
						table = domain.NewPointTable(rows...)
					}
					limit := p.Args["limit"].(int)
					if limit <= 0 || limit > maxPageLimit {
						limit = defaultPageLimit
					}
					return table.Slice(p.Args["offset"].(int), limit), nil
				},
			},
			"summary": &graphql.Field{
				Type:        summaryType,
				Description: "Counts, extent and spacing of the current design",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					st, err := state(p)
					if err != nil {
						return nil, err
					}
					return geospatial.SummarizeWithSpacing(st.Table), nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Dashboard state of the current session",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					st, err := state(p)
					if err != nil {
						return nil, err
					}
					return newSessionView(st), nil
				},
			},
			"formats": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Accepted design formats",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var out []string
					for _, f := range deps.Designs.Formats() {
						out = append(out, string(f))
					}
					return out, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"setViewMode": &graphql.Field{
				Type:        sessionType,
				Description: "Select the overview chart",
				Args: graphql.FieldConfigArgument{
					"mode": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					st, err := deps.Sessions.SetViewMode(p.Context, sessionFromCtx(p.Context), p.Args["mode"].(string))
					if err != nil {
						return nil, gqlErrorFrom(err)
					}
					return newSessionView(st), nil
				},
			},
			"setPage": &graphql.Field{
				Type:        sessionType,
				Description: "Move between the home and overview pages",
				Args: graphql.FieldConfigArgument{
					"page": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					st, err := setPage(p.Context, deps, sessionFromCtx(p.Context), p.Args["page"].(string))
					if err != nil {
						return nil, gqlErrorFrom(err)
					}
					return newSessionView(st), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        context.WithValue(c.UserContext(), sessionCtxKey, sessionID(c)),
		})

		return c.JSON(result)
	}
}
