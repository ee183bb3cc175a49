package routes

import (
	"community-backend/internal/controllers"
	"community-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAuth(app *fiber.App, h *controllers.AuthHandler) {
	a := app.Group("/auth")
	a.Post("/register", h.Register)
	a.Post("/login", h.Login)
	a.Get("/me", middleware.RequireAuth(), h.Me)
}
