package controllers

import (
	"context"
	"errors"
	"time"

	"community-backend/config"
	"community-backend/dto"
	"community-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const defaultTimeout = 5 * time.Second

func requestCtx(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(c.UserContext(), d)
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}

// respondError writes the error body for err. Internal causes are logged,
// never returned to the client.
func respondError(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		log.Errorf("[%s] %s %s: %v", requestID(c), c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: apperr.PublicMessage(err),
		Code:  apperr.KindOf(err).String(),
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).
		JSON(dto.ErrorResponse{Error: "invalid body", Code: apperr.KindValidation.String()})
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and
// middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			log.Errorf("[%s] %s %s: %v", requestID(c), c.Method(), c.Path(), err)
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: fe.Message})
	}
	return respondError(c, err)
}

func pageParams(c *fiber.Ctx) (limit, offset int64) {
	limit = config.ClampLimit(c.QueryInt("limit", config.DefaultPageLimit))
	offset = int64(c.QueryInt("offset", 0))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
