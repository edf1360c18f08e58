// Package doctor manages the referring-doctor registry.
package doctor

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

const BasePath = "/Doctor"

type Doctor struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"fullName" validate:"required"`
	PhoneNo  string `json:"phoneNo" validate:"required,len=10,numeric"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	UnitID   string `json:"unitId" validate:"required"`
	Title    string `json:"title,omitempty"`
	Address  string `json:"address,omitempty"`
}

func (d Doctor) WithID(id string) Doctor {
	d.ID = id
	return d
}

func Schema() *form.Schema[Doctor] {
	return form.NewSchema(
		func() Doctor { return Doctor{} },
		form.Field{Name: "fullName", Label: "Full name", Required: true},
		form.Field{Name: "phoneNo", Label: "Phone number", Required: true, Len: 10},
		form.Field{Name: "email", Label: "Email"},
		form.Field{Name: "unitId", Label: "Unit", Required: true},
		form.Field{Name: "title", Label: "Title"},
		form.Field{Name: "address", Label: "Address"},
	)
}

type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[Doctor], error) {
	return rest.Search[Doctor](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*Doctor, error) {
	return rest.GetOne[Doctor](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values Doctor) (*Doctor, error) {
	return rest.PostOne[Doctor](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values Doctor) (*Doctor, error) {
	return rest.PutOne[Doctor](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[Doctor] {
	return list.NewController[Doctor](g, log)
}

func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[Doctor] {
	return session.NewController(session.Config[Doctor]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    Doctor.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
