package router

import (
	"github.com/payflowhq/payflow/app/controllers"
	"github.com/payflowhq/payflow/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
)

type WebhookRouter struct {
}

// InstallRouter registers provider webhook endpoints. These are unauthenticated
// on purpose; the controller verifies the provider signature on the raw body.
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post(constants.PaystackWebhookRoute, controllers.HandlePaystackWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
