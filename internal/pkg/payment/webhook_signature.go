package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// VerifyPaystackWebhookSignature checks the x-paystack-signature header.
// Paystack signs the raw request body with HMAC-SHA512 keyed by the secret.
func VerifyPaystackWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// PaystackWebhookEvent is the normalized shape of a provider webhook delivery.
type PaystackWebhookEvent struct {
	Event     string
	EventID   string
	Reference string
	Status    string
}

// ParsePaystackWebhookEvent extracts the transaction reference from a webhook
// payload. Only charge events carry a reference this core acts on; other event
// types are recorded but not confirmed.
func ParsePaystackWebhookEvent(payload []byte) (*PaystackWebhookEvent, error) {
	var raw struct {
		Event string `json:"event"`
		Data  struct {
			ID        json.Number `json:"id"`
			Reference string      `json:"reference"`
			Status    string      `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	out := &PaystackWebhookEvent{
		Event:     strings.TrimSpace(raw.Event),
		EventID:   strings.TrimSpace(raw.Data.ID.String()),
		Reference: strings.TrimSpace(raw.Data.Reference),
		Status:    strings.TrimSpace(raw.Data.Status),
	}
	if out.Event == "" {
		return nil, errors.New("paystack webhook payload missing event type")
	}
	return out, nil
}

// IsChargeEvent reports whether the delivery refers to a transaction charge.
func (e *PaystackWebhookEvent) IsChargeEvent() bool {
	return strings.HasPrefix(strings.ToLower(e.Event), "charge.")
}
