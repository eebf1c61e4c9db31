package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
	"github.com/vasymarket/webfront/internal/store"
)

// The /api group carries no gate middleware: each proxy authenticates on its
// own so the failure shape stays a JSON 401 instead of a page redirect.

func (h *Handlers) requireAPIUser(c echo.Context) (models.User, string, error) {
	token := session.TokenFromRequest(c)
	if token == "" {
		return models.User{}, "", echo.NewHTTPError(http.StatusUnauthorized, "Non authentifié")
	}
	user, err := gateway.GetAs[models.User](c.Request().Context(), h.API, "/users/me", token)
	if err != nil {
		return models.User{}, "", echo.NewHTTPError(http.StatusUnauthorized, "Non authentifié")
	}
	return user, token, nil
}

// tokenRemote binds a session token onto the gateway client so the favorites
// store can run its background sync without echo context access.
type tokenRemote struct {
	api   *gateway.Client
	token string
}

func (r tokenRemote) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return r.api.Request(ctx, method, path, body, r.token)
}

func (h *Handlers) favoritesFor(user models.User, token string) *store.Favorites {
	fav := store.NewFavorites(h.State, h.Log, tokenRemote{api: h.API, token: token})
	fav.Init(user.ID)
	return fav
}

func (h *Handlers) ProxyCheckout(c echo.Context) error {
	_, token, err := h.requireAPIUser(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}

	raw, err := h.API.Post(c.Request().Context(), "/orders/checkout", json.RawMessage(body), token)
	if err != nil {
		return err
	}
	h.publish(c, "checkout_created", nil)
	return c.JSONBlob(http.StatusOK, raw)
}

// ProxyListFavorites never fails the caller: a backend outage reads as an
// empty favorites list.
func (h *Handlers) ProxyListFavorites(c echo.Context) error {
	user, token, err := h.requireAPIUser(c)
	if err != nil {
		return err
	}

	raw, err := h.API.Get(c.Request().Context(), "/favorites/", token)
	if err != nil {
		h.Log.Warn("favorites feed unavailable", "user_id", user.ID, "error", err)
		return c.JSON(http.StatusOK, []models.Favorite{})
	}
	return c.JSONBlob(http.StatusOK, raw)
}

func (h *Handlers) ProxyAddFavorite(c echo.Context) error {
	user, token, err := h.requireAPIUser(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Produit invalide")
	}

	fav := h.favoritesFor(user, token)
	fav.Add(c.Request().Context(), req.ProductID)

	h.publish(c, "favorite_added", map[string]any{"product_id": req.ProductID})
	return c.JSON(http.StatusOK, echo.Map{"favorites": fav.IDs()})
}

func (h *Handlers) ProxyRemoveFavorite(c echo.Context) error {
	user, token, err := h.requireAPIUser(c)
	if err != nil {
		return err
	}

	fav := h.favoritesFor(user, token)
	fav.Remove(c.Request().Context(), c.Param("id"))

	h.publish(c, "favorite_removed", map[string]any{"product_id": c.Param("id")})
	return c.JSON(http.StatusOK, echo.Map{"favorites": fav.IDs()})
}

// ProxyReport accepts anonymous reports: signalement does not require a
// session.
func (h *Handlers) ProxyReport(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}

	raw, err := h.API.Post(c.Request().Context(), "/reports", json.RawMessage(body), session.TokenFromRequest(c))
	if err != nil {
		return err
	}
	h.publish(c, "report_submitted", nil)
	return c.JSONBlob(http.StatusCreated, raw)
}

func (h *Handlers) ProxyStripeConnect(c echo.Context) error {
	_, token, err := h.requireAPIUser(c)
	if err != nil {
		return err
	}
	raw, err := h.API.Post(c.Request().Context(), "/stripe/connect/account", nil, token)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}

func (h *Handlers) ProxyStripeSetupPayout(c echo.Context) error {
	_, token, err := h.requireAPIUser(c)
	if err != nil {
		return err
	}
	raw, err := h.API.Post(c.Request().Context(), "/stripe/setup-payout", nil, token)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}

// ProxyUploadAvatar streams the multipart body through untouched; re-encoding
// it here would corrupt the form boundaries.
func (h *Handlers) ProxyUploadAvatar(c echo.Context) error {
	_, token, err := h.requireAPIUser(c)
	if err != nil {
		return err
	}

	req := c.Request()
	status, payload, err := h.API.Forward(req.Context(), http.MethodPost, "/upload/avatar",
		req.Header.Get(echo.HeaderContentType), req.Body, token)
	if err != nil {
		return err
	}
	return c.JSONBlob(status, payload)
}
