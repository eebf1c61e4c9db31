package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
	"github.com/vasymarket/webfront/internal/store"
	"github.com/vasymarket/webfront/internal/validate"
)

// Dashboard dispatches to the role-appropriate landing page.
func (h *Handlers) Dashboard(c echo.Context) error {
	switch session.CurrentUser(c).Role {
	case models.RoleCreator:
		return session.Redirect("/creator/products")
	case models.RoleAdmin:
		return session.Redirect("/admin/stats")
	default:
		return session.Redirect("/products")
	}
}

// PendingApproval is the waiting room for unapproved creators. Approved or
// non-creator sessions have no business here and are redirected.
func (h *Handlers) PendingApproval(c echo.Context) error {
	user := session.CurrentUser(c)
	if user.Role != models.RoleCreator {
		return session.Redirect("/dashboard")
	}

	ctx := c.Request().Context()
	creator, err := gateway.GetAs[models.Creator](ctx, h.API, "/creators/me", session.Token(c))
	if err != nil {
		return session.Redirect("/login")
	}
	if creator.IsApproved {
		return session.Redirect("/dashboard")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user, "creator": creator})
}

func (h *Handlers) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	user := session.CurrentUser(c)

	// Orders are non-critical: the profile still renders without them.
	var orders json.RawMessage = []byte("[]")
	if raw, err := h.API.Get(ctx, "/orders/my-orders", session.Token(c)); err == nil {
		orders = raw
	} else {
		h.Log.Warn("profile orders unavailable", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user, "orders": orders})
}

func (h *Handlers) UpdateProfile(c echo.Context) error {
	var form validate.ProfileUpdateForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	payload := map[string]string{"email": form.Email}
	if form.NewPassword != "" {
		payload["current_password"] = form.CurrentPassword
		payload["new_password"] = form.NewPassword
	}

	ctx := c.Request().Context()
	raw, err := h.API.Patch(ctx, "/users/me", payload, session.Token(c))
	if err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}

	var result struct {
		EmailChangePending bool   `json:"email_change_pending"`
		NewEmail           string `json:"new_email"`
	}
	_ = json.Unmarshal(raw, &result)
	if result.EmailChangePending {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true, "emailChangePending": true, "newEmail": result.NewEmail,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// cartFor opens the visitor's cart partition: the user's own when signed in,
// the guest partition otherwise.
func (h *Handlers) cartFor(c echo.Context) *store.Cart {
	uid := ""
	if u := session.CurrentUser(c); u != nil {
		uid = u.ID
	}
	cart := store.NewCart(h.State, h.Log)
	cart.Init(uid)
	return cart
}

func (h *Handlers) CartPage(c echo.Context) error {
	cart := h.cartFor(c)
	return c.JSON(http.StatusOK, echo.Map{
		"user":     session.CurrentUser(c),
		"items":    cart.Items(),
		"subtotal": cart.Subtotal(),
	})
}

func (h *Handlers) CartAdd(c echo.Context) error {
	var item store.CartItem
	if err := c.Bind(&item); err != nil || item.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Produit invalide")
	}

	cart := h.cartFor(c)
	cart.AddItem(item)

	h.publish(c, "cart_item_added", map[string]any{
		"product_id": item.ID,
		"quantity":   item.Quantity,
	})
	return c.JSON(http.StatusOK, echo.Map{"items": cart.Items(), "subtotal": cart.Subtotal()})
}

func (h *Handlers) CartUpdateQuantity(c echo.Context) error {
	var req struct {
		Quantity int `json:"quantity" form:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}

	cart := h.cartFor(c)
	cart.UpdateQuantity(c.Param("id"), req.Quantity)

	h.publish(c, "cart_quantity_updated", map[string]any{
		"product_id": c.Param("id"),
		"quantity":   req.Quantity,
	})
	return c.JSON(http.StatusOK, echo.Map{"items": cart.Items(), "subtotal": cart.Subtotal()})
}

func (h *Handlers) CartRemove(c echo.Context) error {
	cart := h.cartFor(c)
	cart.RemoveItem(c.Param("id"))

	h.publish(c, "cart_item_removed", map[string]any{"product_id": c.Param("id")})
	return c.JSON(http.StatusOK, echo.Map{"items": cart.Items(), "subtotal": cart.Subtotal()})
}

func (h *Handlers) CartClear(c echo.Context) error {
	cart := h.cartFor(c)
	cart.Clear()

	h.publish(c, "cart_cleared", nil)
	return c.JSON(http.StatusOK, echo.Map{"items": cart.Items(), "subtotal": int64(0)})
}

func (h *Handlers) CheckoutPage(c echo.Context) error {
	cart := h.cartFor(c)
	return c.JSON(http.StatusOK, echo.Map{
		"user":     session.CurrentUser(c),
		"items":    cart.Items(),
		"subtotal": cart.Subtotal(),
	})
}

// CheckoutAction forwards the cart to the backend; on success the cart
// partition is cleared.
func (h *Handlers) CheckoutAction(c echo.Context) error {
	cart := h.cartFor(c)
	items := cart.Items()
	if len(items) == 0 {
		return validate.FormError("Votre panier est vide")
	}

	ctx := c.Request().Context()
	raw, err := h.API.Post(ctx, "/orders/checkout", map[string]any{"items": items}, session.Token(c))
	if err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}

	cart.Clear()
	h.publish(c, "checkout_created", map[string]any{"item_count": len(items)})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": json.RawMessage(raw)})
}

func (h *Handlers) CheckoutSuccess(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user": session.CurrentUser(c)})
}

// publish emits one activity event; best effort.
func (h *Handlers) publish(c echo.Context, eventType string, data map[string]any) {
	uid := ""
	if u := session.CurrentUser(c); u != nil {
		uid = u.ID
	}
	h.Producer.Publish(c.Request().Context(), eventType, uid, data)
}
