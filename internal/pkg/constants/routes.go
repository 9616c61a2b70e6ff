package constants

// Static route constants
const (
	APIRoute             = "/api"
	PaymentsRoute        = "/payments"
	PaystackWebhookRoute = "/webhooks/paystack"
)
