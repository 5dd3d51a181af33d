package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/middleware"
	"github.com/plusvans/admin/internal/plugins/admin"
	"github.com/plusvans/admin/internal/plugins/audit"
	"github.com/plusvans/admin/internal/plugins/auth"
	"github.com/plusvans/admin/internal/plugins/bookings"
	"github.com/plusvans/admin/internal/plugins/customers"
	"github.com/plusvans/admin/internal/plugins/health"
	"github.com/plusvans/admin/internal/plugins/invoices"
	"github.com/plusvans/admin/internal/plugins/media"
	"github.com/plusvans/admin/internal/plugins/pricing"
	"github.com/plusvans/admin/internal/plugins/quotes"
	"github.com/plusvans/admin/internal/templates/layouts"
	"github.com/plusvans/admin/internal/widgets/listview"
	"github.com/plusvans/admin/internal/widgets/notes"
)

// healthPingTimeout bounds each local dependency ping on /healthz.
const healthPingTimeout = 2 * time.Second

// RegisterRoutes builds every plugin and registers its routes. This is the
// single place where plugins are wired together; when a plugin is added,
// it is constructed and registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo
	cfg := a.Config

	// List view state lives in Redis for as long as the session does.
	stateStore := listing.NewStateStore(a.Redis, cfg.Auth.SessionMaxAge)
	listFor := func(view, basePath string) *listview.Controller {
		return listview.NewController(stateStore, view, basePath)
	}

	// --- Auth ---
	// Logout drops the cached profile and every saved list view.
	authSvc := auth.NewAuthService(
		a.Backend,
		auth.NewProfileCache(a.Redis, cfg.Auth.ProfileCacheTTL),
		stateStore.Clear,
	)
	auth.RegisterRoutes(e, auth.NewHandler(authSvc, cfg.Auth), a.Redis)

	// Layout data for every rendered page. Set here so middleware imports
	// no plugin.
	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
		ctx = layouts.SetRequestID(ctx, middleware.GetRequestID(c))
		ctx = layouts.SetActivePath(ctx, c.Request().URL.Path)
		if p := auth.GetProfile(c); p != nil {
			ctx = layouts.SetIsAuthenticated(ctx, true)
			ctx = layouts.SetUserID(ctx, p.ID)
			ctx = layouts.SetUserName(ctx, p.Name)
			ctx = layouts.SetUserEmail(ctx, p.Email)
			ctx = layouts.SetUserRole(ctx, p.Role)
		}
		return ctx
	}

	// --- Health ---
	healthSvc := health.NewHealthService(a.Backend, healthPingTimeout,
		health.Check{Name: "mariadb", Ping: a.DB.PingContext},
		health.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}},
	)
	health.RegisterRoutes(e, health.NewHandler(healthSvc))

	// --- Audit ---
	auditSvc := audit.NewAuditService(audit.NewAuditRepository(a.DB, listing.NewTranslator(audit.Fields)))
	audit.RegisterRoutes(e, audit.NewHandler(auditSvc, listFor("audit", "/admin/audit")), authSvc, cfg.Auth)

	// --- Bookings + notes ---
	noteSvc := notes.NewNoteService(notes.NewNoteRepository(a.DB), auditSvc)
	notes.RegisterRoutes(e, notes.NewHandler(noteSvc), authSvc, cfg.Auth)

	bookingSvc := bookings.NewBookingService(
		bookings.NewBookingRepository(a.DB, listing.NewTranslator(bookings.Fields)),
		auditSvc,
	)
	bookings.RegisterRoutes(e,
		bookings.NewHandler(bookingSvc, noteSvc, listFor("bookings", "/admin/bookings")),
		authSvc, cfg.Auth)

	// --- Customers ---
	customerSvc := customers.NewCustomerService(
		customers.NewCustomerRepository(a.DB, listing.NewTranslator(customers.Fields)),
		auditSvc,
	)
	customers.RegisterRoutes(e,
		customers.NewHandler(customerSvc, listFor("customers", "/admin/customers")),
		authSvc, cfg.Auth)

	// --- Media ---
	mediaSvc := media.NewMediaService(
		media.NewMediaRepository(a.DB, listing.NewTranslator(media.Fields)),
		auditSvc, cfg.Upload.MediaPath, cfg.Upload.MaxSize,
	)
	media.RegisterRoutes(e,
		media.NewHandler(mediaSvc, listFor("media", "/admin/media")),
		authSvc, cfg.Auth, a.Redis, cfg.Upload.MaxSize)

	// --- Quotes ---
	// Pricing and numbering run as backend procedures.
	quoteSvc := quotes.NewQuoteService(
		quotes.NewQuoteRepository(a.DB, listing.NewTranslator(quotes.Fields)),
		a.Backend, auditSvc,
	)
	quotes.RegisterRoutes(e,
		quotes.NewHandler(quoteSvc, listFor("quotes", "/admin/quotes")),
		authSvc, cfg.Auth)

	// --- Pricing rules ---
	pricingSvc := pricing.NewRuleService(
		pricing.NewRuleRepository(a.DB, listing.NewTranslator(pricing.Fields)),
		auditSvc,
	)
	pricing.RegisterRoutes(e,
		pricing.NewHandler(pricingSvc, listFor("pricing", "/admin/pricing")),
		authSvc, cfg.Auth)

	// --- Invoices ---
	invoiceSvc := invoices.NewInvoiceService(
		invoices.NewInvoiceRepository(a.DB, listing.NewTranslator(invoices.Fields)),
		bookingSvc, auditSvc,
	)
	invoices.RegisterRoutes(e,
		invoices.NewHandler(invoiceSvc, listFor("invoices", "/admin/invoices")),
		authSvc, cfg.Auth)

	// --- Dashboard ---
	adminHandler := admin.NewHandler(bookingSvc, customerSvc, mediaSvc)
	adminHandler.SetActivity(auditSvc)
	admin.RegisterRoutes(e, adminHandler, authSvc, cfg.Auth)

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, cfg.Auth.AdminPrefix)
	})
}
