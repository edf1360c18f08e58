// Package testcategory manages test categories within a test group.
package testcategory

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

const BasePath = "/TestCategory"

type TestCategory struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	TestGroupID string `json:"testGroupId" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (t TestCategory) WithID(id string) TestCategory {
	t.ID = id
	return t
}

func Schema() *form.Schema[TestCategory] {
	return form.NewSchema(
		func() TestCategory { return TestCategory{} },
		form.Field{Name: "name", Label: "Name", Required: true},
		form.Field{Name: "testGroupId", Label: "Test group", Required: true},
		form.Field{Name: "description", Label: "Description"},
	)
}

type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[TestCategory], error) {
	return rest.Search[TestCategory](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*TestCategory, error) {
	return rest.GetOne[TestCategory](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values TestCategory) (*TestCategory, error) {
	return rest.PostOne[TestCategory](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values TestCategory) (*TestCategory, error) {
	return rest.PutOne[TestCategory](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[TestCategory] {
	return list.NewController[TestCategory](g, log)
}

func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[TestCategory] {
	return session.NewController(session.Config[TestCategory]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    TestCategory.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
