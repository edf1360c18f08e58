// Package indication manages the billable indications (individual test
// parameters) within a test category.
package indication

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

const BasePath = "/Indication"

type Indication struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name" validate:"required"`
	TestCategoryID string  `json:"testCategoryId" validate:"required"`
	Price          float64 `json:"price" validate:"gte=0"`
	// Measure is the result unit, e.g. "mmol/L".
	Measure        string  `json:"measure,omitempty"`
	ReferenceRange string  `json:"referenceRange,omitempty"`
}

func (i Indication) WithID(id string) Indication {
	i.ID = id
	return i
}

func Schema() *form.Schema[Indication] {
	return form.NewSchema(
		func() Indication { return Indication{} },
		form.Field{Name: "name", Label: "Name", Required: true},
		form.Field{Name: "testCategoryId", Label: "Test category", Required: true},
		form.Field{Name: "price", Label: "Price"},
		form.Field{Name: "measure", Label: "Measure"},
		form.Field{Name: "referenceRange", Label: "Reference range"},
	)
}

type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[Indication], error) {
	return rest.Search[Indication](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*Indication, error) {
	return rest.GetOne[Indication](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values Indication) (*Indication, error) {
	return rest.PostOne[Indication](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values Indication) (*Indication, error) {
	return rest.PutOne[Indication](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[Indication] {
	return list.NewController[Indication](g, log)
}

func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[Indication] {
	return session.NewController(session.Config[Indication]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    Indication.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
