package controllers

import (
	"errors"
	"strings"
	"time"

	"community-backend/dto"
	"community-backend/internal/apperr"
	mid "community-backend/internal/middleware"
	"community-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	Posts   *services.PostService
	Engage  *services.EngagementService
	Timeout time.Duration
}

func NewPostHandler(posts *services.PostService, engage *services.EngagementService, timeout time.Duration) *PostHandler {
	return &PostHandler{Posts: posts, Engage: engage, Timeout: timeout}
}

// CreatePost godoc
// @Summary      Submit a post for review
// @Description  Creates a pending post and consumes one of the caller's daily submissions.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreatePostRequest  true  "Post content"
// @Success      201   {object}  dto.CreatePostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.QuotaErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}

	var body dto.CreatePostRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	res, err := h.Posts.Submit(ctx, uid, services.SubmitInput{
		Content: body.Content,
		Title:   body.Title,
		Summary: body.Summary,
	})
	if errors.Is(err, apperr.ErrQuotaExceeded) {
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.QuotaErrorResponse{
			Error:          apperr.PublicMessage(err),
			Code:           apperr.KindQuotaExceeded.String(),
			RemainingPosts: res.Usage.RemainingPosts,
			PostsToday:     res.Usage.PostsToday,
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CreatePostResponse{
		ID:             res.Post.ID.Hex(),
		RemainingPosts: res.Usage.RemainingPosts,
		PostsToday:     res.Usage.PostsToday,
		Post:           dto.NewPostResponse(res.Post),
	})
}

// CheckLimit godoc
// @Summary      Daily submission quota
// @Description  Reports whether the user may submit another post today. Defaults to the caller when userId is omitted.
// @Tags         posts
// @Produce      json
// @Param        userId  query     string  false  "User ID"
// @Success      200     {object}  quota.Usage
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /posts/check-limit [get]
func (h *PostHandler) CheckLimit(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		userID, _ = mid.UIDFromLocals(c)
	}
	if userID == "" {
		return respondError(c, apperr.Invalid("userId is required"))
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	usage, err := h.Posts.CheckDailyLimit(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(usage)
}

// ApprovePost godoc
// @Summary      Approve a pending post
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.ApprovePostRequest  true  "Post to approve"
// @Success      200   {object}  dto.ModerationResponse
// @Failure      400   {object}  dto.ErrorResponse  "invalid body or post not pending"
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /posts/admin/approve [post]
func (h *PostHandler) ApprovePost(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	var body dto.ApprovePostRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	p, err := h.Posts.Approve(ctx, body.PostID, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ModerationResponse{Message: "post approved", Post: dto.NewPostResponse(p)})
}

// RejectPost godoc
// @Summary      Reject a pending post
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.RejectPostRequest  true  "Post and reason"
// @Success      200   {object}  dto.ModerationResponse
// @Failure      400   {object}  dto.ErrorResponse  "missing reason or post not pending"
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /posts/admin/reject [post]
func (h *PostHandler) RejectPost(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	var body dto.RejectPostRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	p, err := h.Posts.Reject(ctx, body.PostID, uid, body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ModerationResponse{Message: "post rejected", Post: dto.NewPostResponse(p)})
}

// ReviewQueue godoc
// @Summary      Moderation queue
// @Tags         moderation
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending (default), approved or rejected"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  dto.PostListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /posts/admin/queue [get]
func (h *PostHandler) ReviewQueue(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	limit, offset := pageParams(c)

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	posts, err := h.Posts.ListForReview(ctx, uid, c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PostListResponse{Data: dto.NewPostList(posts), Limit: limit, Offset: offset})
}

// Feed godoc
// @Summary      Approved posts, newest first
// @Tags         posts
// @Produce      json
// @Param        limit   query     int  false  "Page size (max 100)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  dto.PostListResponse
// @Router       /posts [get]
func (h *PostHandler) Feed(c *fiber.Ctx) error {
	limit, offset := pageParams(c)

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	posts, err := h.Posts.ListFeed(ctx, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.NewPostList(posts)
	viewer := mid.ViewerID(c)
	for i := range out {
		out[i].IsLiked = h.Engage.IsPostLiked(ctx, posts[i].ID, viewer)
	}
	return c.JSON(dto.PostListResponse{Data: out, Limit: limit, Offset: offset})
}

// GetPost godoc
// @Summary      Get a post
// @Description  Pending and rejected posts are visible only to their author and admins.
// @Tags         posts
// @Produce      json
// @Param        postId  path      string  true  "Post ID"
// @Success      200     {object}  dto.PostResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /posts/{postId} [get]
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	viewer := mid.ViewerID(c)
	p, err := h.Posts.Get(ctx, c.Params("postId"), viewer)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.NewPostResponse(p)
	out.IsLiked = h.Engage.IsPostLiked(ctx, p.ID, viewer)
	return c.JSON(out)
}

// UserPosts godoc
// @Summary      A user's posts
// @Description  Other users see only approved posts; the author and admins see every status.
// @Tags         posts
// @Produce      json
// @Param        userId  path      string  true   "Author ID"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  dto.PostListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /users/{userId}/posts [get]
func (h *PostHandler) UserPosts(c *fiber.Ctx) error {
	limit, offset := pageParams(c)

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	posts, err := h.Posts.ListByAuthor(ctx, c.Params("userId"), mid.ViewerID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PostListResponse{Data: dto.NewPostList(posts), Limit: limit, Offset: offset})
}

// RecordView godoc
// @Summary      Count a view
// @Tags         posts
// @Param        postId  path  string  true  "Post ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /posts/{postId}/view [post]
func (h *PostHandler) RecordView(c *fiber.Ctx) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	if err := h.Posts.RecordView(ctx, c.Params("postId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
