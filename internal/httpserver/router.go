package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/vasymarket/webfront/internal/events"
	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/localstore"
	"github.com/vasymarket/webfront/internal/logging"
	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
	"github.com/vasymarket/webfront/internal/validate"
)

// Handlers holds everything the routes need; one instance serves the whole
// process.
type Handlers struct {
	API      *gateway.Client
	Gate     *session.Gate
	State    *localstore.Store
	Producer *events.Producer
	Log      *slog.Logger

	// Secure toggles the Secure flag on session cookies; on in production.
	Secure bool
}

func Register(e *echo.Echo, h *Handlers) {
	e.HideBanner = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = ErrorHandler(h.Log)

	e.Use(ecM.Recover())
	e.Use(ecM.RequestID())
	e.Use(logging.RequestLogger(h.Log))
	e.Use(ecM.Secure())
	e.Use(ecM.CORS())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Public pages; the user is attached when a valid session exists.
	pub := e.Group("", h.Gate.OptionalUser)
	pub.GET("/", h.Home)
	pub.GET("/products", h.Products)
	pub.GET("/products/:id", h.Product)
	pub.GET("/events", h.EventList)
	pub.GET("/events/:id", h.EventDetail)
	pub.GET("/creators/:id", h.Creator)
	pub.GET("/search", h.Search)

	pub.GET("/login", h.LoginPage)
	pub.POST("/login", h.Login)
	pub.GET("/register", h.RegisterPage)
	pub.POST("/register", h.RegisterAction)
	pub.POST("/forgot-password", h.ForgotPassword)
	pub.GET("/reset-password/:token", h.ResetPasswordPage)
	pub.POST("/reset-password/:token", h.ResetPassword)
	pub.GET("/invite/:code", h.InvitePage)
	pub.POST("/invite/:code", h.InviteRegister)
	pub.GET("/confirm-email-change/:token", h.ConfirmEmailChange)
	pub.POST("/logout", h.Logout)

	// Guest carts are allowed; the partition follows the session.
	pub.POST("/cart/items", h.CartAdd)
	pub.PATCH("/cart/items/:id", h.CartUpdateQuantity)
	pub.DELETE("/cart/items/:id", h.CartRemove)
	pub.POST("/cart/clear", h.CartClear)

	// Pages behind the session gate.
	app := e.Group("", h.Gate.RequireAuth)
	app.GET("/dashboard", h.Dashboard)
	app.GET("/pending-approval", h.PendingApproval)

	client := app.Group("", session.RequireRole(models.RoleClient))
	client.GET("/profile", h.Profile)
	client.POST("/profile", h.UpdateProfile)
	client.GET("/cart", h.CartPage)
	client.GET("/checkout", h.CheckoutPage)
	client.POST("/checkout", h.CheckoutAction)
	client.GET("/checkout/success", h.CheckoutSuccess)

	creator := app.Group("/creator",
		session.RequireRole(models.RoleCreator),
		h.Gate.RequireApprovedCreator,
	)
	creator.GET("/products", h.CreatorProducts)
	creator.GET("/products/new", h.CreatorNewProductPage)
	creator.POST("/products/new", h.CreatorCreateProduct)
	creator.GET("/products/:id", h.CreatorProduct)
	creator.POST("/products/:id", h.CreatorUpdateProduct)
	creator.POST("/products/:id/delete", h.CreatorDeleteProduct)
	creator.GET("/events", h.CreatorEvents)
	creator.POST("/events", h.CreatorCreateEvent)
	creator.GET("/events/:id", h.CreatorEvent)
	creator.POST("/events/:id", h.CreatorUpdateEvent)
	creator.POST("/events/:id/delete", h.CreatorDeleteEvent)
	creator.GET("/profile", h.CreatorProfile)
	creator.POST("/profile", h.CreatorUpdateProfile)

	admin := app.Group("/admin", session.RequireRole(models.RoleAdmin))
	admin.GET("/stats", h.AdminStats)
	admin.GET("/users", h.AdminUsers)
	admin.POST("/users/:id/delete", h.AdminDeleteUser)
	admin.GET("/creators", h.AdminCreators)
	admin.POST("/creators/:id/approve", h.AdminApproveCreator)
	admin.GET("/creators/:id/products", h.AdminCreatorProducts)
	admin.GET("/events", h.AdminEvents)
	admin.POST("/events/expire", h.AdminExpireEvents)
	admin.GET("/events/:id", h.AdminEvent)
	admin.POST("/events/:id", h.AdminUpdateEvent)
	admin.POST("/events/:id/delete", h.AdminDeleteEvent)
	admin.GET("/orders", h.AdminOrders)
	admin.GET("/invitations", h.AdminInvitations)
	admin.POST("/invitations", h.AdminCreateInvitation)
	admin.POST("/invitations/:id/delete", h.AdminDeleteInvitation)
	admin.GET("/commissions", h.AdminCommissions)
	admin.GET("/signalements", h.AdminReports)

	// Thin proxies: token presence is checked per handler (401 JSON, no
	// redirect), then the request is forwarded verbatim.
	api := e.Group("/api")
	api.POST("/checkout", h.ProxyCheckout)
	api.GET("/favorites", h.ProxyListFavorites)
	api.POST("/favorites", h.ProxyAddFavorite)
	api.DELETE("/favorites/:id", h.ProxyRemoveFavorite)
	api.POST("/reports", h.ProxyReport)
	api.POST("/stripe/connect", h.ProxyStripeConnect)
	api.POST("/stripe/setup-payout", h.ProxyStripeSetupPayout)
	api.POST("/upload/avatar", h.ProxyUploadAvatar)
}
