package routes

import (
	"community-backend/internal/controllers"
	"community-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func NotificationRoutes(app *fiber.App, h *controllers.NotificationHandler) {
	noti := app.Group("/notifications", middleware.RequireAuth())
	noti.Get("/", h.List)
	noti.Get("/unread-count", h.UnreadCount)
	noti.Post("/read-all", h.MarkAllRead)
	noti.Patch("/:id/read", h.MarkRead)
	noti.Delete("/:id", h.Delete)
}
