package handler

import (
	"github.com/gin-gonic/gin"

	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Phone, req.Password, req.FirstName, req.LastName, model.UserRole(req.Role))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}

type SetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// SetPassword finishes the password-less bootstrap. Mounted behind SetupAuth,
// so only setup tokens reach it; the token's JTI is consumed on first use.
func (h *AuthHandler) SetPassword(c *gin.Context) {
	claims, err := middleware.ClaimsFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.authService.SetPassword(c.Request.Context(), userID, claims.ID, claims.ExpiresAt.Time, req.Password, req.ConfirmPassword)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, result)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, tokens)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
