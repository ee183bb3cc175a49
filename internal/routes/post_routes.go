package routes

import (
	"community-backend/internal/controllers"
	"community-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutesPost mounts posts, moderation, likes and comments. Static
// segments are registered before /:postId so they are not captured by it.
func SetupRoutesPost(app *fiber.App, h *controllers.PostHandler, eh *controllers.EngagementHandler) {
	auth := middleware.RequireAuth()

	posts := app.Group("/posts")
	posts.Get("/check-limit", h.CheckLimit)

	admin := posts.Group("/admin", auth)
	admin.Get("/queue", h.ReviewQueue)
	admin.Post("/approve", h.ApprovePost)
	admin.Post("/reject", h.RejectPost)

	posts.Post("/", auth, h.CreatePost)
	posts.Get("/", h.Feed)
	posts.Get("/:postId", h.GetPost)
	posts.Post("/:postId/view", h.RecordView)
	posts.Post("/:postId/like", auth, eh.LikePost)
	posts.Post("/:postId/comments", auth, eh.CreateComment)
	posts.Get("/:postId/comments", eh.ListComments)

	app.Post("/comments/:commentId/like", auth, eh.LikeComment)
	app.Get("/users/:userId/posts", h.UserPosts)
}
