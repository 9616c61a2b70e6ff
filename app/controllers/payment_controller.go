package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/payflowhq/payflow/app/models"
	"github.com/payflowhq/payflow/internal/pkg/cache"
	"github.com/payflowhq/payflow/internal/pkg/database"
	"github.com/payflowhq/payflow/internal/pkg/env"
	"github.com/payflowhq/payflow/internal/pkg/metrics/counter"
	"github.com/payflowhq/payflow/internal/pkg/middleware"
	"github.com/payflowhq/payflow/internal/pkg/notify"
	"github.com/payflowhq/payflow/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const paymentRequestTimeout = 20 * time.Second

type initiatePaymentRequest struct {
	UserID         uint            `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	ProductID      *uint           `json:"product_id,omitempty"`
	SubscriptionID *uint           `json:"subscription_id,omitempty"`
	Email          string          `json:"email,omitempty"`
	CallbackURL    string          `json:"callback_url,omitempty"`
}

// HandleInitiatePayment starts a payment attempt and returns the provider
// checkout URL together with the pending transaction reference.
func HandleInitiatePayment(c *fiber.Ctx) error {
	var req initiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	svc := newPaymentService()
	ctx, cancel := context.WithTimeout(context.Background(), paymentRequestTimeout)
	defer cancel()

	out, err := svc.Initiate(ctx, payment.InitiateInput{
		UserID:         req.UserID,
		Amount:         req.Amount,
		ProductID:      req.ProductID,
		SubscriptionID: req.SubscriptionID,
		Email:          req.Email,
		CallbackURL:    req.CallbackURL,
		AuthToken:      middleware.BusinessTokenFromContext(c),
	})
	if err != nil {
		return respondPaymentError(c, err)
	}

	if cerr := counter.AddInitiated(); cerr != nil {
		log.Printf("payment metrics: %v", cerr)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reference":    out.Reference,
		"checkout_url": out.CheckoutURL,
		"status":       out.Transaction.Status,
	})
}

// HandleConfirmPayment verifies a transaction by reference. Polling clients
// and internal tooling share this endpoint; terminal outcomes are written to
// the cache so webhook deliveries can short-circuit.
func HandleConfirmPayment(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Reference missing"})
	}

	svc := newPaymentService()
	ctx, cancel := context.WithTimeout(context.Background(), paymentRequestTimeout)
	defer cancel()

	out, err := svc.ConfirmByReference(ctx, reference, middleware.BusinessTokenFromContext(c))
	if err != nil {
		return respondPaymentError(c, err)
	}

	if out.Transaction.IsTerminal() {
		if cerr := cache.SetTransactionStatus(reference, out.Transaction.Status); cerr != nil {
			log.Printf("payment cache: %v", cerr)
		}
		if !out.AlreadyResolved {
			recordOutcomeMetric(out.Transaction.Status)
		}
	}

	return c.Status(fiber.StatusOK).JSON(transactionResponse(out.Transaction))
}

// HandlePaystackWebhook ingests provider deliveries. The payload is persisted
// idempotently before any processing; confirmation funnels through the same
// service entry point as polling, so replayed deliveries are harmless.
func HandlePaystackWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)
	signature := c.Get("x-paystack-signature")
	secret := env.GetEnv("PAYSTACK_WEBHOOK_SECRET", env.GetEnv("PAYSTACK_SECRET_KEY", ""))

	signatureValid := payment.VerifyPaystackWebhookSignature(rawBody, signature, secret)

	svc := newPaymentService()
	ctx, cancel := context.WithTimeout(context.Background(), paymentRequestTimeout)
	defer cancel()

	event, parseErr := payment.ParsePaystackWebhookEvent(rawBody)
	eventType := ""
	eventID := ""
	if parseErr == nil {
		eventType = event.Event
		eventID = event.EventID
	}

	created, stored, err := svc.RecordWebhookEvent(ctx, payment.WebhookEventInput{
		Provider:        models.PaymentProviderPaystack,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		log.Printf("paystack webhook: persist failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}

	if !signatureValid {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, payment.NewError(payment.ErrValidation, "invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	if webhookAlreadyHandled(created, stored) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "duplicate"})
	}

	if parseErr != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_payload"})
	}

	if !event.IsChargeEvent() || event.Reference == "" {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ignored"})
	}

	// Recently resolved references are served from cache; the store's
	// compare-and-set already guarantees correctness without it.
	if status := cache.GetTransactionStatus(event.Reference); status != "" {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "processed", "transaction_status": status})
	}

	out, err := svc.ConfirmByReference(ctx, event.Reference, secret)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		// Transient failures stay pending; the provider retries delivery.
		return respondPaymentError(c, err)
	}
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)

	if out.Transaction.IsTerminal() {
		if cerr := cache.SetTransactionStatus(out.Transaction.Reference, out.Transaction.Status); cerr != nil {
			log.Printf("payment cache: %v", cerr)
		}
		if !out.AlreadyResolved {
			recordOutcomeMetric(out.Transaction.Status)
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "processed", "transaction_status": out.Transaction.Status})
}

// HandlePaymentMetrics exposes the in-process payment counters.
func HandlePaymentMetrics(c *fiber.Ctx) error {
	snapshot, err := counter.Snapshot()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "metrics_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(snapshot)
}

// webhookAlreadyHandled reports whether a redelivered event was already
// processed cleanly. Redeliveries of events whose processing failed, or that
// were never marked processed, fall through so the provider retry can re-run
// confirmation, which is idempotent.
func webhookAlreadyHandled(created bool, stored *models.PaymentWebhookEvent) bool {
	return !created && stored.ProcessedAt != nil && stored.ProcessingError == ""
}

func newPaymentService() *payment.Service {
	db := database.GetDB()
	return payment.NewServiceFromDB(db, notify.NewDispatcher(db, nil))
}

func recordOutcomeMetric(status string) {
	var err error
	switch status {
	case models.TransactionStatusSuccess:
		err = counter.AddSucceeded()
	case models.TransactionStatusFailed:
		err = counter.AddFailed()
	}
	if err != nil {
		log.Printf("payment metrics: %v", err)
	}
}

// transactionResponse shapes a transaction for API responses.
func transactionResponse(tx *models.Transaction) fiber.Map {
	return fiber.Map{
		"reference":       tx.Reference,
		"amount":          tx.Amount.StringFixed(2),
		"status":          tx.Status,
		"type":            tx.Type,
		"partners":        tx.Partners,
		"product_id":      tx.ProductID,
		"subscription_id": tx.SubscriptionID,
		"user_id":         tx.UserID,
		"paid_at":         formatTimePtr(tx.PaidAt),
		"created_at":      tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// formatTimePtr renders an optional timestamp as RFC3339 UTC, nil when unset.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// respondPaymentError maps the payment error taxonomy onto HTTP statuses.
func respondPaymentError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_server_error"

	switch payment.KindOf(err) {
	case payment.ErrValidation:
		status, code = fiber.StatusBadRequest, "bad_request"
	case payment.ErrNotFound:
		status, code = fiber.StatusNotFound, "not_found"
	case payment.ErrConflict:
		status, code = fiber.StatusConflict, "conflict"
	case payment.ErrGatewayRejection:
		status, code = fiber.StatusBadGateway, "gateway_rejection"
	case payment.ErrTransport:
		status, code = fiber.StatusGatewayTimeout, "transport_error"
	case payment.ErrConfiguration:
		status, code = fiber.StatusInternalServerError, "configuration_error"
	case payment.ErrDuplicateReference:
		// Reference collisions should be unreachable; flag loudly.
		log.Printf("payment: reference collision: %v", err)
		status, code = fiber.StatusInternalServerError, "duplicate_reference"
	}

	return c.Status(status).JSON(fiber.Map{"error": code, "message": err.Error()})
}
