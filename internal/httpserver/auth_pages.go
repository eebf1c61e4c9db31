package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
	"github.com/vasymarket/webfront/internal/validate"
)

func (h *Handlers) LoginPage(c echo.Context) error {
	if session.CurrentUser(c) != nil {
		return session.Redirect("/dashboard")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": nil})
}

func (h *Handlers) Login(c echo.Context) error {
	var form validate.LoginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tok, err := gateway.PostAs[models.TokenResponse](ctx, h.API, "/auth/login", map[string]string{
		"email":    form.Email,
		"password": form.Password,
	}, "")
	if err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}

	session.SetTokenCookie(c, tok.AccessToken, h.Secure)
	return session.Redirect("/dashboard")
}

func (h *Handlers) RegisterPage(c echo.Context) error {
	if session.CurrentUser(c) != nil {
		return session.Redirect("/dashboard")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": nil})
}

func (h *Handlers) RegisterAction(c echo.Context) error {
	var form validate.RegisterForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tok, err := gateway.PostAs[models.TokenResponse](ctx, h.API, "/auth/register", map[string]string{
		"email":    form.Email,
		"password": form.Password,
	}, "")
	if err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}

	session.SetTokenCookie(c, tok.AccessToken, h.Secure)
	return session.Redirect("/dashboard")
}

// ForgotPassword always answers success so account emails cannot be
// enumerated.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	var form validate.ForgotPasswordForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.API.Post(ctx, "/auth/forgot-password", map[string]string{"email": form.Email}, ""); err != nil {
		h.Log.Warn("forgot-password request failed", "error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handlers) ResetPasswordPage(c echo.Context) error {
	ctx := c.Request().Context()
	_, err := h.API.Get(ctx, "/auth/reset-password/"+c.Param("token"), "")
	return c.JSON(http.StatusOK, echo.Map{"valid": err == nil})
}

func (h *Handlers) ResetPassword(c echo.Context) error {
	var form validate.ResetPasswordForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	_, err := h.API.Post(ctx, "/auth/reset-password", map[string]string{
		"token":    c.Param("token"),
		"password": form.Password,
	}, "")
	if err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handlers) InvitePage(c echo.Context) error {
	if session.CurrentUser(c) != nil {
		return session.Redirect("/dashboard")
	}

	ctx := c.Request().Context()
	code := c.Param("code")
	raw, err := h.API.Get(ctx, "/auth/invitation/"+code, "")
	if err != nil {
		msg := "Invitation invalide"
		var ge *gateway.Error
		if errors.As(err, &ge) {
			msg = ge.Message
		}
		return c.JSON(http.StatusOK, echo.Map{"error": msg, "code": code})
	}
	return c.JSON(http.StatusOK, echo.Map{"invitation": json.RawMessage(raw), "code": code})
}

func (h *Handlers) InviteRegister(c echo.Context) error {
	var form validate.InviteRegisterForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Requête invalide")
	}
	form.Normalize()
	if err := c.Validate(&form); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tok, err := gateway.PostAs[models.TokenResponse](ctx, h.API, "/auth/register/creator", map[string]string{
		"token":        c.Param("code"),
		"password":     form.Password,
		"display_name": form.DisplayName,
		"siret":        form.Siret,
	}, "")
	if err != nil {
		var ge *gateway.Error
		if errors.As(err, &ge) {
			return validate.FormError(ge.Message)
		}
		return err
	}

	session.SetTokenCookie(c, tok.AccessToken, h.Secure)
	return session.Redirect("/dashboard")
}

func (h *Handlers) ConfirmEmailChange(c echo.Context) error {
	ctx := c.Request().Context()
	_, err := h.API.Get(ctx, "/users/confirm-email-change/"+c.Param("token"), "")
	if err != nil {
		msg := "Lien invalide ou expiré"
		var ge *gateway.Error
		if errors.As(err, &ge) {
			msg = ge.Message
		}
		return c.JSON(http.StatusOK, echo.Map{"success": false, "error": msg})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *Handlers) Logout(c echo.Context) error {
	session.ClearTokenCookie(c, h.Secure)
	return session.Redirect("/login")
}
