package patient

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/internal/platform/list"
	"github.com/medlab/labadmin/internal/platform/nav"
	"github.com/medlab/labadmin/internal/platform/rest"
	"github.com/medlab/labadmin/internal/session"
	"github.com/medlab/labadmin/pkg/criteria"
)

// BasePath is the patient endpoint root.
const BasePath = "/Patient"

// Gateway is the typed client for the patient endpoints.
type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway {
	return &Gateway{c: c}
}

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[Patient], error) {
	return rest.Search[Patient](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*Patient, error) {
	return rest.GetOne[Patient](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values Patient) (*Patient, error) {
	return rest.PostOne[Patient](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values Patient) (*Patient, error) {
	return rest.PutOne[Patient](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

// ByCode resolves a patient by the short code printed on order slips.
func (g *Gateway) ByCode(ctx context.Context, code string) (*Patient, error) {
	return rest.GetOne[Patient](ctx, g.c, BasePath+"/by-code/"+code)
}

// ByPersonalID resolves a patient by the 12-character personal id.
func (g *Gateway) ByPersonalID(ctx context.Context, personalID string) (*Patient, error) {
	return rest.GetOne[Patient](ctx, g.c, BasePath+"/by-personalid/"+personalID)
}

// NewListController builds the list state for the patient screen.
func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[Patient] {
	return list.NewController[Patient](g, log)
}

// NewEditSession builds the edit surface for the patient screen. onSaved is
// the list-refresh hook.
func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[Patient] {
	return session.NewController(session.Config[Patient]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    Patient.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
