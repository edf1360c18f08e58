// Package unit manages referring units (clinics, departments).
package unit

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

const BasePath = "/Unit"

type Unit struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address,omitempty"`
	PhoneNo string `json:"phoneNo,omitempty" validate:"omitempty,len=10,numeric"`
}

func (u Unit) WithID(id string) Unit {
	u.ID = id
	return u
}

func Schema() *form.Schema[Unit] {
	return form.NewSchema(
		func() Unit { return Unit{} },
		form.Field{Name: "name", Label: "Name", Required: true},
		form.Field{Name: "address", Label: "Address"},
		form.Field{Name: "phoneNo", Label: "Phone number", Len: 10},
	)
}

type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[Unit], error) {
	return rest.Search[Unit](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*Unit, error) {
	return rest.GetOne[Unit](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values Unit) (*Unit, error) {
	return rest.PostOne[Unit](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values Unit) (*Unit, error) {
	return rest.PutOne[Unit](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[Unit] {
	return list.NewController[Unit](g, log)
}

func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[Unit] {
	return session.NewController(session.Config[Unit]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    Unit.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
