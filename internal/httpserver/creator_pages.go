package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vasymarket/webfront/internal/commission"
	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
	"github.com/vasymarket/webfront/internal/validate"
)

func (h *Handlers) CreatorProducts(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := h.API.Get(ctx, "/products/my", session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":     session.CurrentUser(c),
		"products": json.RawMessage(raw),
	})
}

// CreatorNewProductPage loads the Stripe onboarding state alongside the form.
// A failing status call must not block the page, the form simply shows the
// account as not connected.
func (h *Handlers) CreatorNewProductPage(c echo.Context) error {
	ctx := c.Request().Context()

	status := models.StripeStatus{Connected: false}
	if s, err := gateway.GetAs[models.StripeStatus](ctx, h.API, "/stripe/connect/status", session.Token(c)); err == nil {
		status = s
	} else {
		h.Log.Warn("stripe status unavailable", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":   session.CurrentUser(c),
		"stripe": status,
	})
}

func (h *Handlers) CreatorCreateProduct(c echo.Context) error {
	var form validate.ProductForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	payload := map[string]any{
		"name":        form.Name,
		"description": form.Description,
		"price":       form.Price,
		"stock":       form.Stock,
		"image_urls":  form.ImageURLs,
	}
	if _, err := h.API.Post(ctx, "/products/", payload, session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}

	h.publish(c, "product_created", map[string]any{"name": form.Name, "price": form.Price})
	return session.Redirect("/creator/products")
}

func (h *Handlers) CreatorProduct(c echo.Context) error {
	ctx := c.Request().Context()
	product, err := gateway.GetAs[models.Product](ctx, h.API, "/products/"+c.Param("id"), session.Token(c))
	if err != nil {
		return notFoundPage("Produit non trouvé")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":       session.CurrentUser(c),
		"product":    product,
		"commission": commission.ForProduct(product.Price),
	})
}

func (h *Handlers) CreatorUpdateProduct(c echo.Context) error {
	var form validate.ProductForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	payload := map[string]any{
		"name":        form.Name,
		"description": form.Description,
		"price":       form.Price,
		"stock":       form.Stock,
		"image_urls":  form.ImageURLs,
	}
	if _, err := h.API.Patch(ctx, "/products/"+c.Param("id"), payload, session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	return session.Redirect("/creator/products")
}

func (h *Handlers) CreatorDeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.API.Delete(ctx, "/products/"+c.Param("id"), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	h.publish(c, "product_deleted", map[string]any{"product_id": c.Param("id")})
	return session.Redirect("/creator/products")
}

func (h *Handlers) CreatorEvents(c echo.Context) error {
	ctx := c.Request().Context()
	raw, err := h.API.Get(ctx, "/events/my", session.Token(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":   session.CurrentUser(c),
		"events": json.RawMessage(raw),
	})
}

func (h *Handlers) CreatorCreateEvent(c echo.Context) error {
	var form validate.EventForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	form.Normalize()
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.API.Post(ctx, "/events/", eventPayload(form.Name, form.Description, form.DateTime(), form.LocationText, form.Latitude, form.Longitude), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}

	h.publish(c, "event_created", map[string]any{"name": form.Name})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CreatorEvent sends the visitor back to the list when the event is gone or
// belongs to somebody else.
func (h *Handlers) CreatorEvent(c echo.Context) error {
	ctx := c.Request().Context()
	event, err := gateway.GetAs[models.Event](ctx, h.API, "/events/"+c.Param("id"), session.Token(c))
	if err != nil {
		return session.Redirect("/creator/events")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":  session.CurrentUser(c),
		"event": event,
	})
}

func (h *Handlers) CreatorUpdateEvent(c echo.Context) error {
	var form validate.EventUpdateForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	form.Normalize()
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.API.Patch(ctx, "/events/"+c.Param("id"), eventPayload(form.Name, form.Description, form.DateTime(), form.LocationText, nil, nil), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	return session.Redirect("/creator/events")
}

func (h *Handlers) CreatorDeleteEvent(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.API.Delete(ctx, "/events/"+c.Param("id"), session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	h.publish(c, "event_deleted", map[string]any{"event_id": c.Param("id")})
	return session.Redirect("/creator/events")
}

// eventPayload builds the event body the backend expects. Description is
// nullable and the coordinates are only present for callers that set a pin.
func eventPayload(name, description, date, locationText string, lat, lng *float64) map[string]any {
	payload := map[string]any{
		"name":          name,
		"description":   nil,
		"date":          date,
		"location_text": locationText,
	}
	if description != "" {
		payload["description"] = description
	}
	if lat != nil && lng != nil {
		payload["latitude"] = *lat
		payload["longitude"] = *lng
	}
	return payload
}

func (h *Handlers) CreatorProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user":    session.CurrentUser(c),
		"creator": session.CurrentCreator(c),
	})
}

func (h *Handlers) CreatorUpdateProfile(c echo.Context) error {
	var form validate.CreatorProfileForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	payload := map[string]any{
		"display_name":      form.DisplayName,
		"bio":               form.Bio,
		"profile_image_url": form.ProfileImageURL,
	}
	if _, err := h.API.Patch(ctx, "/creators/me", payload, session.Token(c)); err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
