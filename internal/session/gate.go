package session

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/logging"
	"github.com/vasymarket/webfront/internal/models"
)

const (
	CtxToken   = "token"
	CtxUser    = "user"
	CtxCreator = "creator"
)

// Gate authorizes requests against the backend. The backend's answer to
// /users/me is the only authority for identity and role; an expired token and
// an unreachable backend are treated the same and fail closed to /login.
type Gate struct {
	API *gateway.Client
}

func NewGate(api *gateway.Client) *Gate {
	return &Gate{API: api}
}

// RequireAuth resolves the current user from the request cookie, placing the
// token and user in the echo context. Unauthenticated or unresolvable
// sessions redirect to /login.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := TokenFromRequest(c)
		if token == "" {
			return Redirect("/login")
		}

		ctx := c.Request().Context()
		user, err := gateway.GetAs[models.User](ctx, g.API, "/users/me", token)
		if err != nil {
			logging.FromContext(ctx).Warn("session rejected", "error", err)
			return Redirect("/login")
		}

		c.Set(CtxToken, token)
		c.Set(CtxUser, &user)
		return next(c)
	}
}

// RequireRole gates a resource on the role resolved by RequireAuth. A
// mismatch is not an authorization error surfaced to the user: the request is
// redirected to the dashboard, which dispatches to a role-appropriate page.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return Redirect("/login")
			}
			if !slices.Contains(roles, user.Role) {
				return Redirect("/dashboard")
			}
			return next(c)
		}
	}
}

// RequireApprovedCreator layers the approval check on top of the creator
// role: the creator profile is resolved via the backend and unapproved
// creators land on /pending-approval.
func (g *Gate) RequireApprovedCreator(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleCreator {
			return Redirect("/dashboard")
		}

		ctx := c.Request().Context()
		creator, err := gateway.GetAs[models.Creator](ctx, g.API, "/creators/me", Token(c))
		if err != nil {
			return err
		}
		if !creator.IsApproved {
			return Redirect("/pending-approval")
		}

		c.Set(CtxCreator, &creator)
		return next(c)
	}
}

// OptionalUser resolves the user when a valid session exists and leaves it
// nil otherwise. Public pages use it; it never redirects.
func (g *Gate) OptionalUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := TokenFromRequest(c)
		if token == "" {
			return next(c)
		}
		ctx := c.Request().Context()
		user, err := gateway.GetAs[models.User](ctx, g.API, "/users/me", token)
		if err == nil {
			c.Set(CtxToken, token)
			c.Set(CtxUser, &user)
		}
		return next(c)
	}
}

// CurrentUser returns the user resolved by the gate, or nil.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(CtxUser).(*models.User)
	return u
}

// CurrentCreator returns the creator profile resolved by
// RequireApprovedCreator, or nil.
func CurrentCreator(c echo.Context) *models.Creator {
	cr, _ := c.Get(CtxCreator).(*models.Creator)
	return cr
}

// Token returns the request's bearer token, or empty when unauthenticated.
func Token(c echo.Context) string {
	t, _ := c.Get(CtxToken).(string)
	if t == "" {
		t = TokenFromRequest(c)
	}
	return t
}
