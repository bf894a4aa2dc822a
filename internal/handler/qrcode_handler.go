package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/response"
)

type QrCodeHandler struct {
	qrCodeService service.QrCodeService
}

func NewQrCodeHandler(qrCodeService service.QrCodeService) *QrCodeHandler {
	return &QrCodeHandler{qrCodeService: qrCodeService}
}

type IssueQrCodeRequest struct {
	TenantID string  `json:"tenant_id"`
	TableID  *string `json:"table_id"`
}

// Issue creates or returns the QR code for a table. Issuing twice for the
// same table yields the same code.
func (h *QrCodeHandler) Issue(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	var req IssueQrCodeRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	qr, err := h.qrCodeService.Issue(c.Request.Context(), tenant.ID, req.TableID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, qr)
}

func (h *QrCodeHandler) List(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	codes, err := h.qrCodeService.List(c.Request.Context(), tenant.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, codes)
}

func (h *QrCodeHandler) Get(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid qr code id")
		return
	}

	qr, err := h.qrCodeService.Get(c.Request.Context(), id, tenant.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, qr)
}

func (h *QrCodeHandler) Remove(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid qr code id")
		return
	}

	if err := h.qrCodeService.Remove(c.Request.Context(), id, tenant.ID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// PublicResolve serves the unauthenticated QR lookup and fires scan tracking
// as a side effect.
func (h *QrCodeHandler) PublicResolve(c *gin.Context) {
	qr, err := h.qrCodeService.Resolve(
		c.Request.Context(),
		c.Param("code"),
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, qr)
}
