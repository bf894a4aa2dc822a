package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"otlobha/menuhub/internal/config"
	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/internal/service"
	jwtpkg "otlobha/menuhub/pkg/jwt"
	"otlobha/menuhub/pkg/metrics"
)

type Handlers struct {
	Auth         *AuthHandler
	Tenant       *TenantHandler
	Subscription *SubscriptionHandler
	Webhook      *WebhookHandler
	QrCode       *QrCodeHandler
	PublicMenu   *PublicMenuHandler
	Analytics    *AnalyticsHandler
}

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	tenantRepo repository.TenantRepository,
	accessService service.AccessService,
	subscriptionService service.SubscriptionService,
	reg *metrics.Registry,
	h Handlers,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check and metrics
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg.Prometheus(), promhttp.HandlerOpts{})))

	// Public auth routes
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		// Only the short-lived setup token opens this endpoint.
		auth.POST("/set-password", middleware.SetupAuth(jwtManager), h.Auth.SetPassword)
	}

	// Public QR resolution and menu: no authentication, but the menu is still
	// behind the subscription rules.
	public := r.Group("/api/v1/public")
	{
		public.GET("/qr-codes/:code", h.QrCode.PublicResolve)
		public.GET("/menus/:tenant_id", h.PublicMenu.GetMenu)
		public.POST("/menus/:tenant_id/views", h.PublicMenu.TrackView)
	}

	// Billing webhook: signature-checked, no JWT.
	r.POST("/api/v1/webhooks/billing", h.Webhook.HandleBilling)

	// The tenant-scoped guard chain, assembled explicitly per group:
	// authenticate, resolve the tenant, authorize the principal, then gate on
	// the subscription.
	authn := middleware.JWTAuth(jwtManager)
	resolveTenant := middleware.TenantResolver(tenantRepo)
	authorize := middleware.TenantAccess(accessService)
	gate := middleware.SubscriptionGate(subscriptionService, reg)

	protected := r.Group("/api/v1")
	protected.Use(authn)
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.POST("/tenants", h.Tenant.Create)
	}

	// Subscription reads and self-service cancel need access but not an
	// active subscription, or an expired tenant could never see why.
	tenantScoped := r.Group("/api/v1/tenants/:tenant_id")
	tenantScoped.Use(authn, resolveTenant, authorize)
	{
		tenantScoped.GET("", h.Tenant.Get)
		tenantScoped.GET("/subscription", h.Subscription.Get)
		tenantScoped.POST("/subscription/cancel-at-period-end", h.Subscription.CancelAtPeriodEnd)
		tenantScoped.GET("/members", h.Tenant.ListMembers)
		tenantScoped.POST("/members", h.Tenant.AddMember)
		tenantScoped.POST("/staff", h.Tenant.AddStaff)
		tenantScoped.DELETE("/members/:user_id", h.Tenant.RemoveMember)
	}

	// Resource operations additionally require an admissible subscription.
	gated := r.Group("/api/v1/tenants/:tenant_id")
	gated.Use(authn, resolveTenant, authorize, gate)
	{
		gated.POST("/qr-codes", h.QrCode.Issue)
		gated.GET("/qr-codes", h.QrCode.List)
		gated.GET("/qr-codes/:id", h.QrCode.Get)
		gated.DELETE("/qr-codes/:id", h.QrCode.Remove)
		gated.GET("/analytics", h.Analytics.Summarize)
	}

	// Platform-admin operations.
	admin := r.Group("/api/v1/admin/tenants/:tenant_id")
	admin.Use(authn, middleware.RequireRole(model.RoleSuperAdmin), resolveTenant)
	{
		admin.POST("/subscription/renew", h.Subscription.Renew)
		admin.POST("/subscription/cancel", h.Subscription.CancelNow)
		admin.DELETE("", h.Tenant.Delete)
	}

	return r
}
