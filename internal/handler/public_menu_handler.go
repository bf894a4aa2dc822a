package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/metrics"
	"otlobha/menuhub/pkg/response"
)

// PublicMenuHandler serves the unauthenticated menu path. It applies the same
// subscription rules as the dashboard: a lapsed subscription hides the public
// menu immediately.
type PublicMenuHandler struct {
	tenantService       service.TenantService
	subscriptionService service.SubscriptionService
	menuService         service.MenuService
	analyticsService    service.AnalyticsService
	metrics             *metrics.Registry
}

func NewPublicMenuHandler(
	tenantService service.TenantService,
	subscriptionService service.SubscriptionService,
	menuService service.MenuService,
	analyticsService service.AnalyticsService,
	reg *metrics.Registry,
) *PublicMenuHandler {
	return &PublicMenuHandler{
		tenantService:       tenantService,
		subscriptionService: subscriptionService,
		menuService:         menuService,
		analyticsService:    analyticsService,
		metrics:             reg,
	}
}

func (h *PublicMenuHandler) gate(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := uuid.Parse(c.Param("tenant_id"))
	if err != nil {
		response.NotFound(c, service.ErrTenantNotFound.Error())
		return uuid.Nil, false
	}

	sub, err := h.subscriptionService.GetForTenant(c.Request.Context(), tenantID)
	if err != nil && !errors.Is(err, service.ErrSubscriptionNotFound) {
		writeServiceError(c, err)
		return uuid.Nil, false
	}
	if gateErr := service.EvaluateGate(sub, time.Now()); gateErr != nil {
		middleware.WriteGateError(c, gateErr, h.metrics)
		return uuid.Nil, false
	}
	return tenantID, true
}

// GetMenu returns the translated menu tree for scanners and records the view.
func (h *PublicMenuHandler) GetMenu(c *gin.Context) {
	tenantID, ok := h.gate(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), tenantID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	menu, err := h.menuService.GetPublicMenu(c.Request.Context(), tenant, c.Query("lang"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// View tracking never delays the response.
	h.analyticsService.RecordViewDetached(tenant.ID, nil, nil)

	response.Success(c, menu)
}

type TrackViewRequest struct {
	ItemID     *string `json:"item_id"`
	CategoryID *string `json:"category_id"`
}

// TrackView records an item or category view from the public menu.
func (h *PublicMenuHandler) TrackView(c *gin.Context) {
	tenantID, ok := h.gate(c)
	if !ok {
		return
	}

	var req TrackViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	h.analyticsService.RecordViewDetached(tenantID, req.ItemID, req.CategoryID)
	response.Success(c, gin.H{"recorded": true})
}
