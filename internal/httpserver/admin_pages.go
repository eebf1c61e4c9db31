package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/vasymarket/webfront/internal/commission"
	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
	"github.com/vasymarket/webfront/internal/validate"
)

func (h *Handlers) AdminStats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := gateway.GetAs[models.Stats](ctx, h.API, "/admin/stats", session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  session.CurrentUser(c),
		"stats": stats,
	})
}

func (h *Handlers) AdminUsers(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := h.API.Get(ctx, "/admin/users", session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  session.CurrentUser(c),
		"users": json.RawMessage(raw),
	})
}

func (h *Handlers) AdminDeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.API.Delete(ctx, "/admin/users/"+c.Param("id"), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	h.publish(c, "admin_user_deleted", map[string]any{"target_id": c.Param("id")})
	return session.Redirect("/admin/users")
}

func (h *Handlers) AdminCreators(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := h.API.Get(ctx, "/admin/creators", session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":     session.CurrentUser(c),
		"creators": json.RawMessage(raw),
	})
}

func (h *Handlers) AdminApproveCreator(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.API.Post(ctx, "/admin/creators/"+c.Param("id")+"/approve", nil, session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	h.publish(c, "creator_approved", map[string]any{"creator_id": c.Param("id")})
	return session.Redirect("/admin/creators")
}

func (h *Handlers) AdminCreatorProducts(c echo.Context) error {
	ctx := c.Request().Context()
	token := session.Token(c)

	creator, err := gateway.GetAs[models.Creator](ctx, h.API, "/creators/"+c.Param("id"), token)
	if err != nil {
		return notFoundPage("Créateur non trouvé")
	}
	raw, err := h.API.Get(ctx, "/admin/creators/"+c.Param("id")+"/products", token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":     session.CurrentUser(c),
		"creator":  creator,
		"products": json.RawMessage(raw),
	})
}

func (h *Handlers) AdminEvents(c echo.Context) error {
	ctx := c.Request().Context()
	path := "/admin/events"
	if status := c.QueryParam("status"); status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	raw, err := h.API.Get(ctx, path, session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":   session.CurrentUser(c),
		"events": json.RawMessage(raw),
	})
}

func (h *Handlers) AdminEvent(c echo.Context) error {
	ctx := c.Request().Context()
	evt, err := gateway.GetAs[models.Event](ctx, h.API, "/admin/events/"+c.Param("id"), session.Token(c))
	if err != nil {
		return notFoundPage("Événement non trouvé")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  session.CurrentUser(c),
		"event": evt,
	})
}

func (h *Handlers) AdminUpdateEvent(c echo.Context) error {
	var form validate.EventForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	form.Normalize()
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.API.Patch(ctx, "/admin/events/"+c.Param("id"), eventPayload(form.Name, form.Description, form.DateTime(), form.LocationText, form.Latitude, form.Longitude), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	return session.Redirect("/admin/events")
}

func (h *Handlers) AdminDeleteEvent(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.API.Delete(ctx, "/admin/events/"+c.Param("id"), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	h.publish(c, "admin_event_deleted", map[string]any{"event_id": c.Param("id")})
	return session.Redirect("/admin/events")
}

// AdminExpireEvents asks the backend to sweep past events and reports how
// many were closed.
func (h *Handlers) AdminExpireEvents(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := h.API.Post(ctx, "/admin/events/expire", nil, session.Token(c))
	if err != nil {
		return validate.FormError("Erreur lors de l'expiration")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "result": json.RawMessage(raw)})
}

func (h *Handlers) AdminOrders(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := h.API.Get(ctx, "/admin/orders", session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":   session.CurrentUser(c),
		"orders": json.RawMessage(raw),
	})
}

func (h *Handlers) AdminInvitations(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := h.API.Get(ctx, "/admin/invitations", session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":        session.CurrentUser(c),
		"invitations": json.RawMessage(raw),
	})
}

func (h *Handlers) AdminCreateInvitation(c echo.Context) error {
	var form validate.InvitationForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	raw, err := h.API.Post(ctx, "/admin/invitations", map[string]string{"email": form.Email}, session.Token(c))
	if err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	h.publish(c, "invitation_created", map[string]any{"email": form.Email})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "invitation": json.RawMessage(raw)})
}

func (h *Handlers) AdminDeleteInvitation(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.API.Delete(ctx, "/admin/invitations/"+c.Param("id"), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	return session.Redirect("/admin/invitations")
}

// AdminCommissions degrades to an empty ledger when the backend feed is
// unavailable so the page keeps rendering.
func (h *Handlers) AdminCommissions(c echo.Context) error {
	ctx := c.Request().Context()

	commissions := json.RawMessage("[]")
	if raw, err := h.API.Get(ctx, "/admin/commissions", session.Token(c)); err == nil {
		commissions = raw
	} else {
		h.Log.Warn("commissions feed unavailable", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":        session.CurrentUser(c),
		"commissions": commissions,
		"rates": echo.Map{
			"platformPercent": commission.PlatformPercent,
			"platformFixed":   commission.PlatformFixedPerProduct,
			"stripePercent":   commission.StripePercent,
			"stripeFixed":     commission.StripeFixed,
		},
	})
}

// AdminReports joins the product and event report feeds; either feed failing
// yields an empty list rather than a failed page.
func (h *Handlers) AdminReports(c echo.Context) error {
	ctx := c.Request().Context()
	token := session.Token(c)

	reports := json.RawMessage("[]")
	eventReports := json.RawMessage("[]")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if raw, err := h.API.Get(gctx, "/admin/reports", token); err == nil {
			reports = raw
		}
		return nil
	})
	g.Go(func() error {
		if raw, err := h.API.Get(gctx, "/admin/event-reports", token); err == nil {
			eventReports = raw
		}
		return nil
	})
	_ = g.Wait()

	return c.JSON(http.StatusOK, echo.Map{
		"user":         session.CurrentUser(c),
		"reports":      reports,
		"eventReports": eventReports,
	})
}
