package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)

	sync := api.Group("/sync", handler.AuthRequired)
	sync.Post("/pull", handler.PullChanges)
	sync.Post("/push", handler.PushChanges)
}
