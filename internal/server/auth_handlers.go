package server

import (
	"newsletter/internal/models"
	"newsletter/internal/service"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// identifier prefers the email and falls back to the username.
func (r credentialsRequest) identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// ObtainToken handles POST /api/token/
// @Summary Obtain a token pair
// @Description Exchange email (or username) and password for an access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} models.ErrorResponse
// @Router /api/token/ [post]
func (s *Server) ObtainToken(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	res, err := s.authService.Login(c.UserContext(), req.identifier(), req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.TokenPair{Access: res.Access, Refresh: res.Refresh})
}

// RefreshToken handles POST /api/token/refresh/
// @Summary Refresh the access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} object{access=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /api/token/refresh/ [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	if req.Refresh == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("refresh", "This field is required."))
	}
	access, err := s.tokens.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"access": access})
}

// Register handles POST /auth/registration/
// @Summary Register an account
// @Description Creates a user, subscribes them to General and returns a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/registration/ [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	res, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /auth/login/
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login/ [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	res, err := s.authService.Login(c.UserContext(), req.identifier(), req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Logout handles POST /auth/logout/
// @Summary Log out
// @Description Revokes the presented access token and, when given, the refresh token
// @Tags auth
// @Security BearerAuth
// @Param request body object{refresh=string} false "Refresh token"
// @Success 200 {object} object{detail=string}
// @Router /auth/logout/ [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if len(c.Body()) > 0 {
		if err := bindBody(c, &req); err != nil {
			return nil
		}
	}
	access, _ := c.Locals("accessToken").(string)
	if err := s.authService.Logout(c.UserContext(), access, req.Refresh); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Successfully logged out."})
}

// ChangePassword handles POST /auth/password/change/
// @Summary Change password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.ChangePasswordInput true "Passwords"
// @Success 200 {object} object{detail=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/password/change/ [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordInput
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	req.UserID = mustUserID(c)
	if err := s.authService.ChangePassword(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "New password has been saved."})
}
