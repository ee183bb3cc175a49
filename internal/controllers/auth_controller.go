package controllers

import (
	"time"

	"community-backend/dto"
	"community-backend/internal/apperr"
	mid "community-backend/internal/middleware"
	"community-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Svc     *services.AccountService
	Timeout time.Duration
}

func NewAuthHandler(svc *services.AccountService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{Svc: svc, Timeout: timeout}
}

// Register godoc
// @Summary      Create a local account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse  "invalid input or email taken"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body dto.RegisterRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	u, err := h.Svc.Register(ctx, services.RegisterInput{
		Email:       body.Email,
		Password:    body.Password,
		DisplayName: body.DisplayName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(u))
}

// Login godoc
// @Summary      Exchange credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body dto.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	tok, u, err := h.Svc.Login(ctx, body.Email, body.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LoginResponse{AccessToken: tok, User: dto.NewUserResponse(u)})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uid, err := mid.UIDObjectID(c)
	if err != nil {
		return respondError(c, apperr.Unauthenticated("authentication required"))
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	u, err := h.Svc.Me(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewUserResponse(u))
}
