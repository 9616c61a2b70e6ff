package router

import (
	"github.com/payflowhq/payflow/app/controllers"
	"github.com/payflowhq/payflow/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	payments := v1.Group("/payments", middleware.BusinessTokenMiddleware())
	payments.Post("/", controllers.HandleInitiatePayment)
	payments.Get("/:reference", controllers.HandleConfirmPayment)
	v1.Get("/payments-metrics", controllers.HandlePaymentMetrics)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
