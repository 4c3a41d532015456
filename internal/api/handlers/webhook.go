package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"ffbridge/internal/logger"

	"github.com/gin-gonic/gin"
)

type TokenRemover interface {
	DeleteByShop(ctx context.Context, shop string) error
}

// WebhookHandler receives Shopify webhooks signed with the app secret.
type WebhookHandler struct {
	configs ConfigStore
	tokens  TokenRemover
	secret  string
	logger  *logger.Logger
}

func NewWebhookHandler(configs ConfigStore, tokens TokenRemover, secret string, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		configs: configs,
		tokens:  tokens,
		secret:  secret,
		logger:  logger,
	}
}

// AppUninstalled removes everything stored for the shop.
func (h *WebhookHandler) AppUninstalled(c *gin.Context) {
	signature := c.GetHeader("X-Shopify-Hmac-Sha256")
	shop := c.GetHeader("X-Shopify-Shop-Domain")
	if signature == "" || shop == "" {
		h.logger.Warn("Shopify uninstall webhook missing required headers")
		c.String(http.StatusBadRequest, "Missing headers")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid body")
		return
	}

	if !h.validSignature(body, signature) {
		h.logger.Warn("Shopify uninstall webhook HMAC verification failed for %s", shop)
		c.String(http.StatusUnauthorized, "Invalid HMAC")
		return
	}

	if err := h.configs.DeleteByShop(c.Request.Context(), shop); err != nil {
		h.logger.Error("Failed to remove config for %s: %v", shop, err)
	}
	if err := h.tokens.DeleteByShop(c.Request.Context(), shop); err != nil {
		h.logger.Error("Failed to remove token for %s: %v", shop, err)
	}

	h.logger.Info("Shopify uninstall processed for %s", shop)
	c.String(http.StatusOK, "OK")
}

func (h *WebhookHandler) validSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
