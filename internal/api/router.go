package api

import (
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/ticketdesk/dashboard/internal/api/handler"
	"github.com/ticketdesk/dashboard/internal/api/middleware"
	"github.com/ticketdesk/dashboard/internal/api/workspace"
	"github.com/ticketdesk/dashboard/internal/core/authz"
	"github.com/ticketdesk/dashboard/internal/core/domain"
	infrahttp "github.com/ticketdesk/dashboard/internal/infrastructure/http"
	"github.com/ticketdesk/dashboard/internal/infrastructure/http/handlers"
)

// Deps is everything the router needs from main.
type Deps struct {
	Workspaces  *workspace.Manager
	Cookie      middleware.CookieConfig
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	// TrustedProxies lists the CIDRs whose X-Forwarded-For is believed. With
	// none, the client IP is the peer address.
	TrustedProxies []string
	Checkers    []handlers.Checker
	Swagger     bool
	Logger      zerolog.Logger

	// Registerer receives the HTTP metrics. Nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.IPExtractor = ipExtractor(d.TrustedProxies, d.Logger)
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     origins(d.CORSOrigins),
		AllowCredentials: !slices.Contains(d.CORSOrigins, "*"),
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dashboard",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health")
		},
	}))

	// --- Operational endpoints (no session) ---
	infrahttp.RegisterProbes(e, d.Checkers...)
	e.GET("/metrics", echoprometheus.NewHandler())
	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Dashboard screens ---
	app := e.Group("", middleware.Session(d.Workspaces, d.Cookie, d.Logger))
	guard := func(roles ...domain.Role) echo.MiddlewareFunc { return middleware.Guard(d.Logger, roles...) }
	limited := d.Limiter.Middleware()

	authH := handler.NewAuthHandler(d.Logger)
	app.GET("/login", authH.LoginScreen)
	app.POST("/login", authH.Login, limited)
	app.POST("/signup", authH.Signup, limited)
	app.POST("/logout", authH.Logout)

	homeH := handler.NewHomeHandler()
	app.GET("/", homeH.Home, guard())
	app.GET("/events", homeH.Events)

	tenantH := handler.NewTenantHandler()
	app.GET("/select-tenant", tenantH.SelectTenantScreen, guard(authz.SelectTenantRoles...))
	app.POST("/select-tenant", tenantH.SelectTenant, guard(authz.SelectTenantRoles...))
	companies := app.Group("/companies", guard(authz.TenantRoles...))
	companies.GET("", tenantH.List)
	companies.POST("", tenantH.Create)
	companies.GET("/:id", tenantH.Get)
	companies.PUT("/:id", tenantH.Update)
	companies.DELETE("/:id", tenantH.Delete)
	// Tenant admins read their own company's usage; the service scopes it.
	app.GET("/companies/:id/token-usage", tenantH.TokenUsage, guard(authz.AnalyticsRoles...))

	analyticsH := handler.NewAnalyticsHandler()
	app.GET("/analytics", analyticsH.Dashboard, guard(authz.AnalyticsRoles...))
	app.GET("/analytics/tenants", analyticsH.Tenants, guard(authz.TenantRoles...))

	ticketH := handler.NewTicketHandler()
	tickets := app.Group("/tickets", guard(authz.TicketRoles...))
	tickets.GET("", ticketH.List)
	tickets.GET("/:id", ticketH.Get)
	tickets.PATCH("/:id", ticketH.UpdateDetails)
	tickets.PUT("/:id/status", ticketH.SetStatus)
	tickets.PUT("/:id/department", ticketH.Reroute)
	tickets.POST("/:id/notes", ticketH.AddNote)
	tickets.POST("/:id/draft-reply", ticketH.DraftReply)
	tickets.POST("/:id/reply", ticketH.Reply)

	dirH := handler.NewDirectoryHandler()
	departments := app.Group("/departments", guard(authz.DepartmentRoles...))
	departments.GET("", dirH.ListDepartments)
	departments.POST("", dirH.CreateDepartment)
	departments.GET("/:id", dirH.GetDepartment)
	departments.PUT("/:id", dirH.RenameDepartment)
	departments.DELETE("/:id", dirH.DeleteDepartment)

	users := app.Group("/users", guard(authz.UserRoles...))
	users.GET("", dirH.ListUsers)
	users.POST("", dirH.CreateEmployee)
	users.GET("/:id", dirH.GetUser)
	users.PUT("/:id", dirH.UpdateUser)
	users.DELETE("/:id", dirH.DeleteUser)
	app.POST("/account/password", dirH.ChangePassword, guard())

	settings := app.Group("/settings", guard(authz.SettingsRoles...))
	settings.GET("", dirH.Settings)
	settings.PUT("/webhook", dirH.UpdateWebhook)

	return e
}

// ipExtractor trusts X-Forwarded-For only from the given proxy ranges.
func ipExtractor(proxies []string, log zerolog.Logger) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range proxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			log.Warn().Err(err).Str("cidr", cidr).Msg("ignoring trusted proxy")
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error()
			case v.Status >= http.StatusBadRequest:
				ev = log.Warn()
			}
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// origins drops blanks; none left means any origin.
func origins(in []string) []string {
	var out []string
	for _, o := range in {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
