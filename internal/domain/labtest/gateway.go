package labtest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/internal/platform/list"
	"github.com/medlab/labadmin/internal/platform/nav"
	"github.com/medlab/labadmin/internal/platform/rest"
	"github.com/medlab/labadmin/internal/session"
	"github.com/medlab/labadmin/pkg/criteria"
)

const BasePath = "/Test"

// Gateway is the typed client for the test-order endpoints, the standard
// CRUD set plus the order-specific operations.
type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[Test], error) {
	return rest.Search[Test](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*Test, error) {
	return rest.GetOne[Test](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values Test) (*Test, error) {
	return rest.PostOne[Test](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values Test) (*Test, error) {
	return rest.PutOne[Test](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

// EditIndications replaces the ordered indication set of a test.
func (g *Gateway) EditIndications(ctx context.Context, req EditIndicationsRequest) ([]TestIndication, error) {
	out, err := rest.PostOne[[]TestIndication](ctx, g.c, BasePath+"/edit-indication", req)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// IndicationsByID lists the indications ordered on a test.
func (g *Gateway) IndicationsByID(ctx context.Context, testID string) ([]TestIndication, error) {
	out, err := rest.GetOne[[]TestIndication](ctx, g.c, BasePath+"/indications-by-id/"+testID)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Details lists the result rows of a test.
func (g *Gateway) Details(ctx context.Context, testID string) ([]TestDetail, error) {
	out, err := rest.GetOne[[]TestDetail](ctx, g.c, BasePath+"/details/"+testID)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// UpdateDetails writes result rows back.
func (g *Gateway) UpdateDetails(ctx context.Context, req UpdateDetailsRequest) ([]TestDetail, error) {
	out, err := rest.PutOne[[]TestDetail](ctx, g.c, BasePath+"/details", req)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// UpdateStatus moves the order through its workflow.
func (g *Gateway) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Test, error) {
	return rest.PutOne[Test](ctx, g.c, BasePath+"/status", req)
}

func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[Test] {
	return list.NewController[Test](g, log)
}

func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[Test] {
	return session.NewController(session.Config[Test]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    Test.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
