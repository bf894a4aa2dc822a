package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/response"
)

type TenantHandler struct {
	tenantService service.TenantService
}

func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

type CreateTenantRequest struct {
	Name     string         `json:"name" binding:"required"`
	Slug     string         `json:"slug" binding:"required"`
	Email    string         `json:"email"`
	Settings datatypes.JSON `json:"settings"`
}

func (h *TenantHandler) Create(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), ownerID, service.CreateTenantInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Email:    req.Email,
		Settings: req.Settings,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, tenant)
}

func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}
	response.Success(c, tenant)
}

func (h *TenantHandler) Delete(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	if err := h.tenantService.Delete(c.Request.Context(), tenant.ID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type AddMemberRequest struct {
	TenantID    string         `json:"tenant_id"`
	UserID      string         `json:"user_id" binding:"required"`
	Role        string         `json:"role"`
	Permissions datatypes.JSON `json:"permissions"`
}

func (h *TenantHandler) AddMember(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(c, "invalid user_id")
		return
	}

	membership, err := h.tenantService.AddMember(c.Request.Context(), tenant.ID, userID, model.UserRole(req.Role), req.Permissions)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, membership)
}

type AddStaffRequest struct {
	TenantID    string         `json:"tenant_id"`
	Phone       string         `json:"phone" binding:"required"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Role        string         `json:"role"`
	Permissions datatypes.JSON `json:"permissions"`
}

// AddStaff creates a password-less staff account and enrolls it in the
// tenant. The new account logs in with an empty password to set its own.
func (h *TenantHandler) AddStaff(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	var req AddStaffRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, membership, err := h.tenantService.AddStaff(c.Request.Context(), tenant.ID, service.AddStaffInput{
		Phone:       req.Phone,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        model.UserRole(req.Role),
		Permissions: req.Permissions,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user, "membership": membership})
}

func (h *TenantHandler) RemoveMember(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.BadRequest(c, "invalid user_id")
		return
	}

	if err := h.tenantService.RemoveMember(c.Request.Context(), tenant.ID, userID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *TenantHandler) ListMembers(c *gin.Context) {
	tenant, err := middleware.TenantFromContext(c)
	if err != nil {
		response.InternalError(c, "tenant not resolved")
		return
	}

	members, err := h.tenantService.ListMembers(c.Request.Context(), tenant.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, members)
}
