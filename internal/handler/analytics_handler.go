package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/response"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// Summarize returns the tenant's rollup window with totals and the
// most-viewed-item ranking.
func (h *AnalyticsHandler) Summarize(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	start, ok := parseDateQuery(c, "start_date")
	if !ok {
		response.BadRequest(c, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, ok := parseDateQuery(c, "end_date")
	if !ok {
		response.BadRequest(c, "invalid end_date, expected YYYY-MM-DD")
		return
	}

	summary, err := h.analyticsService.Summarize(c.Request.Context(), tenant.ID, start, end)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, summary)
}
