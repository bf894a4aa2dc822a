package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/response"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	sub, err := h.subscriptionService.GetForTenant(c.Request.Context(), tenant.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, sub)
}

type RenewRequest struct {
	TenantID string  `json:"tenant_id"`
	Plan     *string `json:"plan"`
	Months   int     `json:"months"`
}

// Renew is the administrative transition to a fresh active period.
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	var req RenewRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	var plan *model.SubscriptionPlan
	if req.Plan != nil {
		p := model.SubscriptionPlan(*req.Plan)
		plan = &p
	}

	sub, err := h.subscriptionService.Renew(c.Request.Context(), tenant.ID, plan, req.Months)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, sub)
}

// CancelNow is the administrative hard cancel: status CANCELLED and the
// period ends at the cancellation instant.
func (h *SubscriptionHandler) CancelNow(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	sub, err := h.subscriptionService.CancelNow(c.Request.Context(), tenant.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, sub)
}

// CancelAtPeriodEnd is the self-service soft cancel; access continues until
// the period lapses.
func (h *SubscriptionHandler) CancelAtPeriodEnd(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	sub, err := h.subscriptionService.CancelAtPeriodEnd(c.Request.Context(), tenant.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, sub)
}
