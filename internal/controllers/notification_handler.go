package controllers

import (
	"time"

	"community-backend/dto"
	"community-backend/internal/apperr"
	mid "community-backend/internal/middleware"
	"community-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler serves the caller's own inbox. Every route requires auth.
type NotificationHandler struct {
	Svc     *services.NotificationService
	Timeout time.Duration
}

func NewNotificationHandler(svc *services.NotificationService, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{Svc: svc, Timeout: timeout}
}

// List godoc
// @Summary      List notifications for the current user
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query     bool  false  "Only unread"
// @Param        limit   query     int   false  "Page size (max 100)"
// @Param        offset  query     int   false  "Offset"
// @Success      200     {object}  dto.NotificationListResponse
// @Failure      401     {object}  dto.ErrorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	limit, offset := pageParams(c)

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	list, err := h.Svc.List(ctx, uid, c.QueryBool("unread", false), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NotificationListResponse{Data: list, Limit: limit, Offset: offset})
}

// UnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UnreadCountResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	n, err := h.Svc.UnreadCount(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.UnreadCountResponse{UnreadCount: n})
}

// MarkRead godoc
// @Summary      Mark one notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  models.Notification
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	n, err := h.Svc.MarkRead(ctx, c.Params("id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(n)
}

// MarkAllRead godoc
// @Summary      Mark every notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MarkAllReadResponse
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	n, err := h.Svc.MarkAllRead(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MarkAllReadResponse{Updated: n})
}

// Delete godoc
// @Summary      Delete a notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	if err := h.Svc.Delete(ctx, c.Params("id"), uid); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
