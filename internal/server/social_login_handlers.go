package server

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"newsletter/internal/featureflags"
	"newsletter/internal/middleware"
	"newsletter/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SocialLogin handles POST /api/social-login/
// @Summary Connect an OAuth-verified email to an account
// @Description Finds the user with this email or creates one with an unusable password. No token is issued.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Verified email"
// @Success 200 {object} object{success=bool,user_id=int}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/social-login/ [post]
func (s *Server) SocialLogin(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = s.socialLoginFailure(c, fmt.Errorf("%v", r), debug.Stack())
		}
	}()

	if !s.featureFlags.Enabled(featureflags.SocialLogin, 0) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Social login is disabled",
		})
	}

	var req struct {
		Email string `json:"email"`
	}
	if perr := c.BodyParser(&req); perr != nil {
		return s.socialLoginFailure(c, errors.New("Invalid request body"), debug.Stack())
	}

	user, lerr := s.authService.SocialLogin(c.UserContext(), req.Email)
	if lerr != nil {
		return s.socialLoginFailure(c, lerr, debug.Stack())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user_id": user.ID,
	})
}

// socialLoginFailure answers every failure with 400. The stack is only
// exposed in development.
func (s *Server) socialLoginFailure(c *fiber.Ctx, err error, stack []byte) error {
	msg := err.Error()
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	middleware.Logger.WarnContext(c.UserContext(), "social login failed", slog.String("error", err.Error()))

	body := fiber.Map{
		"success": false,
		"error":   msg,
	}
	if s.config.IsDevelopment() {
		body["trace"] = string(stack)
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
