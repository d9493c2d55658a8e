package server

import (
	"newsletter/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /admin/feature-flags/ [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}

// UpdateFeatureFlag overrides one flag until the process restarts.
// @Summary Override a feature flag
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Flag name"
// @Param request body object{value=string} true "on, off or N%"
// @Success 200 {object} object{raw=map[string]string}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/feature-flags/{name}/ [put]
func (s *Server) UpdateFeatureFlag(c *fiber.Ctx) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	if err := s.featureFlags.Set(c.Params("name"), req.Value); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("value", err.Error()))
	}
	return c.JSON(fiber.Map{"raw": s.featureFlags.Raw()})
}
