package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/fintech-masoori/masoori/app/controllers"
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
	v1.Get("/notifications/subscribe", controllers.HandleSubscribe)
	v1.Get("/users/:id/cards", controllers.HandleListUserCards)
	v1.Get("/users/:id/notifications", controllers.HandleListUnreadNotifications)
	v1.Get("/pipeline/stats", controllers.HandlePipelineStats)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
