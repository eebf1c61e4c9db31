package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
)

// Home loads the landing page: latest products, plus the visitor's favorite
// ids when signed in. Favorites are non-critical and fall back to empty.
func (h *Handlers) Home(c echo.Context) error {
	ctx := c.Request().Context()
	user := session.CurrentUser(c)
	token := session.Token(c)

	var (
		products  []models.Product
		favorites []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = gateway.GetAs[[]models.Product](gctx, h.API, "/products/?skip=0&limit=20", "")
		return err
	})
	if user != nil {
		g.Go(func() error {
			favs, err := gateway.GetAs[[]models.Favorite](gctx, h.API, "/favorites/", token)
			if err != nil {
				return nil // non-critical
			}
			for _, f := range favs {
				favorites = append(favorites, f.ProductID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":      user,
		"products":  products,
		"favorites": favorites,
	})
}

func (h *Handlers) Products(c echo.Context) error {
	ctx := c.Request().Context()
	skip := intQuery(c, "skip", 0)
	limit := intQuery(c, "limit", 20)

	products, err := gateway.GetAs[[]models.Product](ctx, h.API,
		fmt.Sprintf("/products/?skip=%d&limit=%d", skip, limit), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":     session.CurrentUser(c),
		"products": products,
	})
}

func (h *Handlers) Product(c echo.Context) error {
	ctx := c.Request().Context()
	product, err := gateway.GetAs[models.Product](ctx, h.API, "/products/"+c.Param("id"), "")
	if err != nil {
		return notFoundPage("Produit non trouvé")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":    session.CurrentUser(c),
		"product": product,
	})
}

// EventList shows public events; admins are sent back to their dashboard.
func (h *Handlers) EventList(c echo.Context) error {
	user := session.CurrentUser(c)
	if user != nil && user.Role == models.RoleAdmin {
		return session.Redirect("/dashboard")
	}

	ctx := c.Request().Context()
	evts, err := gateway.GetAs[[]models.Event](ctx, h.API, "/events/public", "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user, "events": evts})
}

func (h *Handlers) EventDetail(c echo.Context) error {
	user := session.CurrentUser(c)
	if user != nil && user.Role == models.RoleAdmin {
		return session.Redirect("/dashboard")
	}

	ctx := c.Request().Context()
	evt, err := gateway.GetAs[models.Event](ctx, h.API, "/events/public/"+c.Param("id"), "")
	if err != nil {
		return notFoundPage("Événement non trouvé")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user, "event": evt})
}

func (h *Handlers) Creator(c echo.Context) error {
	ctx := c.Request().Context()
	creator, err := gateway.GetAs[models.Creator](ctx, h.API, "/creators/"+c.Param("id"), session.Token(c))
	if err != nil {
		return notFoundPage("Créateur non trouvé")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":    session.CurrentUser(c),
		"creator": creator,
	})
}

// Search forwards the query to the backend; an empty query short-circuits
// without a backend call.
func (h *Handlers) Search(c echo.Context) error {
	user := session.CurrentUser(c)
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusOK, echo.Map{
			"user": user, "products": []models.Product{}, "creators": []models.Creator{}, "searchQuery": "",
		})
	}

	ctx := c.Request().Context()
	data, err := gateway.GetAs[models.SearchResult](ctx, h.API,
		"/search?q="+url.QueryEscape(q)+"&limit=100", "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":        user,
		"products":    data.Results,
		"creators":    data.Creators,
		"searchQuery": q,
	})
}

func intQuery(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
