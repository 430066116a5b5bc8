package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/identity"
	"github.com/xmoure/blog-api-server/internal/webhooks"
	"github.com/xmoure/blog-api-server/pkg/logger"
)

// maxWebhookBody caps the raw body read before signature verification.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	verifier webhooks.Verifier
	sync     *identity.Service
	dedupe   *webhooks.RedisDeduper
}

// NewWebhookHandler accepts a nil verifier, in which case every delivery is rejected,
// and a nil deduper, which disables redelivery tracking.
func NewWebhookHandler(v webhooks.Verifier, s *identity.Service, d *webhooks.RedisDeduper) *WebhookHandler {
	return &WebhookHandler{verifier: v, sync: s, dedupe: d}
}

// Register routes under /webhooks
func (h *WebhookHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/webhooks/clerk", h.Clerk)
}

func (h *WebhookHandler) Clerk(c *gin.Context) {
	ctx := c.Request.Context()
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Webhook verification failed."})
		return
	}
	if h.verifier == nil {
		logger.Errorf("webhook: no signing secret configured")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Webhook verification failed."})
		return
	}
	evt, err := h.verifier.Verify(payload, c.Request.Header)
	if err != nil {
		logger.Warnf("webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Webhook verification failed."})
		return
	}

	msgID := c.GetHeader(webhooks.HeaderMessageID)
	done, err := h.dedupe.Processed(ctx, msgID)
	if err != nil {
		logger.Warnf("webhook: dedupe lookup for %s: %v", msgID, err)
	}
	if done {
		logger.Debugf("webhook: %s already processed", msgID)
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received"})
		return
	}

	res, err := h.sync.Apply(ctx, evt)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			logger.Warnf("webhook: %s %s: %v", evt.Type, evt.Data.ID, err)
			c.JSON(http.StatusConflict, gin.H{"message": conflictMessage(evt.Type)})
			return
		}
		writeError(c, err)
		return
	}
	if err := h.dedupe.MarkProcessed(ctx, msgID); err != nil {
		logger.Warnf("webhook: mark %s processed: %v", msgID, err)
	}
	logger.Infof("webhook: %s %s -> %s", evt.Type, evt.Data.ID, res)
	c.JSON(http.StatusOK, gin.H{"message": "Webhook received"})
}

func conflictMessage(eventType string) string {
	if eventType == identity.UserCreated {
		return "User already exists"
	}
	return "Username or email already in use"
}
