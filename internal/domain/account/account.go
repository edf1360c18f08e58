// Package account manages application users and the login operation that
// issues the session token.
package account

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

const BasePath = "/Account"

type User struct {
	ID           string `json:"id,omitempty"`
	UserName     string `json:"userName" validate:"required"`
	EmailAddress string `json:"emailAddress" validate:"required,email"`
	FullName     string `json:"fullName,omitempty"`
	PhoneNo      string `json:"phoneNo,omitempty" validate:"omitempty,len=10,numeric"`
	Role         string `json:"role,omitempty"`
	// Password is write-only; the backend never echoes it.
	Password string `json:"password,omitempty"`
}

func (u User) WithID(id string) User {
	u.ID = id
	return u
}

func Schema() *form.Schema[User] {
	return form.NewSchema(
		func() User { return User{} },
		form.Field{Name: "userName", Label: "User name", Required: true},
		form.Field{Name: "emailAddress", Label: "Email address", Required: true},
		form.Field{Name: "fullName", Label: "Full name"},
		form.Field{Name: "phoneNo", Label: "Phone number", Len: 10},
		form.Field{Name: "role", Label: "Role"},
	)
}

// LoginRequest is the POST /Account/Login body.
type LoginRequest struct {
	UserName     string `json:"userName" validate:"required"`
	Password     string `json:"password" validate:"required"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// LoginResult carries the issued bearer token. The token is stored raw;
// its exp claim drives the client-side session expiry check.
type LoginResult struct {
	Token    string `json:"token"`
	UserName string `json:"userName,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role,omitempty"`
}

type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

// Login exchanges credentials for a session token. It is the one operation
// issued without a bearer header.
func (g *Gateway) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	return rest.PostOne[LoginResult](ctx, g.c, BasePath+"/Login", req)
}

func (g *Gateway) Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[User], error) {
	return rest.Search[User](ctx, g.c, BasePath, crit)
}

func (g *Gateway) GetByID(ctx context.Context, id string) (*User, error) {
	return rest.GetOne[User](ctx, g.c, BasePath+"/"+id)
}

func (g *Gateway) Create(ctx context.Context, values User) (*User, error) {
	return rest.PostOne[User](ctx, g.c, BasePath, values)
}

func (g *Gateway) Update(ctx context.Context, values User) (*User, error) {
	return rest.PutOne[User](ctx, g.c, BasePath+"/"+values.ID, values)
}

func (g *Gateway) Delete(ctx context.Context, id string) error {
	return rest.Delete(ctx, g.c, BasePath+"/"+id)
}

func NewListController(g *Gateway, log zerolog.Logger) *list.Controller[User] {
	return list.NewController[User](g, log)
}

func NewEditSession(g *Gateway, back *nav.Backstack, onSaved func(), log zerolog.Logger) *session.Controller[User] {
	return session.NewController(session.Config[User]{
		Gateway:   g,
		Schema:    Schema(),
		Backstack: back,
		WithID:    User.WithID,
		OnSaved:   onSaved,
		Logger:    log,
	})
}
