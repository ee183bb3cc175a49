package controllers

import (
	"time"

	"community-backend/config"
	"community-backend/dto"
	"community-backend/internal/apperr"
	mid "community-backend/internal/middleware"
	"community-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

type EngagementHandler struct {
	Svc     *services.EngagementService
	Timeout time.Duration
}

func NewEngagementHandler(svc *services.EngagementService, timeout time.Duration) *EngagementHandler {
	return &EngagementHandler{Svc: svc, Timeout: timeout}
}

func likeResponse(r *services.LikeResult) dto.LikeResponse {
	status := "liked"
	if r.AlreadyLiked {
		status = "already-liked"
	}
	return dto.LikeResponse{Status: status, IsLiked: r.Liked, LikeCount: r.LikeCount}
}

// LikePost godoc
// @Summary      Like an approved post
// @Description  Liking twice is accepted and reports already-liked without changing the count.
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "Post ID"
// @Success      200     {object}  dto.LikeResponse
// @Failure      401     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /posts/{postId}/like [post]
func (h *EngagementHandler) LikePost(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	r, err := h.Svc.LikePost(ctx, c.Params("postId"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likeResponse(r))
}

// LikeComment godoc
// @Summary      Like a comment
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        commentId  path      string  true  "Comment ID"
// @Success      200        {object}  dto.LikeResponse
// @Failure      401        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /comments/{commentId}/like [post]
func (h *EngagementHandler) LikeComment(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	r, err := h.Svc.LikeComment(ctx, c.Params("commentId"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likeResponse(r))
}

// CreateComment godoc
// @Summary      Comment on an approved post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string                    true  "Post ID"
// @Param        body    body      dto.CreateCommentRequest  true  "Comment"
// @Success      201     {object}  dto.CommentResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      401     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /posts/{postId}/comments [post]
func (h *EngagementHandler) CreateComment(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	var body dto.CreateCommentRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	cm, err := h.Svc.AddComment(ctx, c.Params("postId"), uid, body.Text, body.ParentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCommentResponse(cm))
}

// ListComments godoc
// @Summary      List comments, newest first
// @Tags         comments
// @Produce      json
// @Param        postId  path      string  true   "Post ID"
// @Param        cursor  query     string  false  "Cursor from a previous page"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  dto.ListCommentsResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /posts/{postId}/comments [get]
func (h *EngagementHandler) ListComments(c *fiber.Ctx) error {
	limit := config.ClampLimit(c.QueryInt("limit", config.DefaultPageLimit))

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	page, err := h.Svc.ListComments(ctx, c.Params("postId"), c.Query("cursor"), limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CommentResponse, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, dto.NewCommentResponse(&page.Items[i]))
	}
	return c.JSON(dto.ListCommentsResponse{
		Comments:   out,
		NextCursor: page.NextCursor,
		HasMore:    page.NextCursor != nil,
	})
}
