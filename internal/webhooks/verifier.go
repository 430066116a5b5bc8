package webhooks

import (
	"encoding/json"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
	"github.com/xmoure/blog-api-server/internal/apperr"
	"github.com/xmoure/blog-api-server/internal/identity"
)

// Message id header set by the sender; stable across redeliveries.
const HeaderMessageID = "svix-id"

// Verifier authenticates a raw webhook delivery and decodes its event.
type Verifier interface {
	Verify(payload []byte, headers http.Header) (identity.Event, error)
}

// SvixVerifier checks svix-style signatures against a shared "whsec_" secret.
type SvixVerifier struct {
	wh *svix.Webhook
}

func NewVerifier(secret string) (*SvixVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret is empty: %w", apperr.ErrVerification)
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("webhook secret: %w", err)
	}
	return &SvixVerifier{wh: wh}, nil
}

func (v *SvixVerifier) Verify(payload []byte, headers http.Header) (identity.Event, error) {
	var evt identity.Event
	if err := v.wh.Verify(payload, headers); err != nil {
		return evt, fmt.Errorf("%v: %w", err, apperr.ErrVerification)
	}
	if err := json.Unmarshal(payload, &evt); err != nil {
		return evt, fmt.Errorf("decode event: %v: %w", err, apperr.ErrValidation)
	}
	return evt, nil
}
