package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/response"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Billing-Signature"

type WebhookHandler struct {
	subscriptionService service.SubscriptionService
}

func NewWebhookHandler(subscriptionService service.SubscriptionService) *WebhookHandler {
	return &WebhookHandler{subscriptionService: subscriptionService}
}

// HandleBilling verifies and applies one billing provider event. The raw body
// is read directly because the signature covers the exact bytes sent.
func (h *WebhookHandler) HandleBilling(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read payload")
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if err := h.subscriptionService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"received": true})
}
