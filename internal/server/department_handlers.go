package server

import (
	"errors"

	"newsletter/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetDepartments handles GET /departments/
// @Summary Department and role enumerations
// @Description Every department with its subscriber count, plus the role list
// @Tags departments
// @Produce json
// @Success 200 {object} service.DepartmentsOverview
// @Router /departments/ [get]
func (s *Server) GetDepartments(c *fiber.Ctx) error {
	overview, err := s.subscriptionService.Overview(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(overview)
}

// FollowDepartment handles POST /departments/follow/
// @Summary Follow or unfollow a department
// @Tags departments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{department=string} true "Department"
// @Success 200 {object} object{department=string,following=bool}
// @Failure 400 {object} object{error=string}
// @Router /departments/follow/ [post]
func (s *Server) FollowDepartment(c *fiber.Ctx) error {
	var req struct {
		Department string `json:"department"`
	}
	if err := bindBody(c, &req); err != nil {
		return nil
	}

	dept, following, err := s.subscriptionService.Toggle(c.UserContext(), mustUserID(c), req.Department)
	if errors.Is(err, service.ErrInvalidDepartment) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid department"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"department": dept,
		"following":  following,
	})
}
