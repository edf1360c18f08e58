// Package testgroup manages top-level test groups (hematology,
// biochemistry, ...). Test categories hang off a group.
package testgroup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/internal/platform/form"
	"github.com/medlab/labadmin/internal/platform/list"
	"github.com/medlab/labadmin/internal/platform/nav"
	"github.com/medlab/labadmin/internal/platform/rest"
	"github.com/medlab/labadmin/internal/session"
	"github.com/medlab/labadmin/pkg/criteria"
)

const BasePath = "/TestGroup"

type TestGroup struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (t TestGroup) WithID(id string) TestGroup {
	t.ID = id
	return t
}

func Schema() *form.Schema[TestGroup] {
	return form.NewSchema(
		func() TestGroup { return TestGroup{} },
		form.Field{Name: "name", Label: "Name", Required: true},
		form.Field{Name: "description", Label: "Description"},
	)
}

type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[TestGroup], error) {
	return rest.Search[TestGroup](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*TestGroup, error) {
	return rest.GetOne[TestGroup](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values TestGroup) (*TestGroup, error) {
	return rest.PostOne[TestGroup](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values TestGroup) (*TestGroup, error) {
	return rest.PutOne[TestGroup](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[TestGroup] {
	return list.NewController[TestGroup](g, log)
}

func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[TestGroup] {
	return session.NewController(session.Config[TestGroup]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    TestGroup.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
