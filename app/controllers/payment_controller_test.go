package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/payflowhq/payflow/app/models"
	"github.com/payflowhq/payflow/internal/pkg/payment"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2025, 3, 10, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.IsType(t, "", formatted)

	expected := now.UTC().Format(time.RFC3339)
	assert.Equal(t, expected, formatted)
}

func TestTransactionResponseShape(t *testing.T) {
	paidAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	subID := uint(7)
	tx := &models.Transaction{
		Reference:      "pf-ref-1",
		Amount:         decimal.NewFromInt(5000),
		Status:         models.TransactionStatusSuccess,
		Type:           models.TransactionTypeSubscription,
		Partners:       models.PaymentProviderPaystack,
		SubscriptionID: &subID,
		UserID:         1,
		PaidAt:         &paidAt,
	}

	resp := transactionResponse(tx)
	assert.Equal(t, "pf-ref-1", resp["reference"])
	assert.Equal(t, "5000.00", resp["amount"])
	assert.Equal(t, models.TransactionStatusSuccess, resp["status"])
	assert.Equal(t, "2025-03-10T12:00:00Z", resp["paid_at"])
}

func TestWebhookAlreadyHandled(t *testing.T) {
	processedAt := time.Now()

	tests := []struct {
		name    string
		created bool
		event   models.PaymentWebhookEvent
		want    bool
	}{
		{
			name:    "first delivery",
			created: true,
			event:   models.PaymentWebhookEvent{},
			want:    false,
		},
		{
			name:    "redelivery after clean processing",
			created: false,
			event:   models.PaymentWebhookEvent{ProcessedAt: &processedAt},
			want:    true,
		},
		{
			name:    "redelivery after failed processing",
			created: false,
			event:   models.PaymentWebhookEvent{ProcessedAt: &processedAt, ProcessingError: "transport: request to paystack failed"},
			want:    false,
		},
		{
			name:    "redelivery before processing finished",
			created: false,
			event:   models.PaymentWebhookEvent{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, webhookAlreadyHandled(tt.created, &tt.event))
		})
	}
}

func TestRespondPaymentErrorStatusMapping(t *testing.T) {
	tests := []struct {
		kind payment.ErrorKind
		want int
	}{
		{kind: payment.ErrValidation, want: fiber.StatusBadRequest},
		{kind: payment.ErrNotFound, want: fiber.StatusNotFound},
		{kind: payment.ErrConflict, want: fiber.StatusConflict},
		{kind: payment.ErrGatewayRejection, want: fiber.StatusBadGateway},
		{kind: payment.ErrTransport, want: fiber.StatusGatewayTimeout},
		{kind: payment.ErrConfiguration, want: fiber.StatusInternalServerError},
		{kind: payment.ErrDuplicateReference, want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			app := fiber.New()
			app.Get("/err", func(c *fiber.Ctx) error {
				return respondPaymentError(c, payment.NewError(tt.kind, "boom"))
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/err", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
