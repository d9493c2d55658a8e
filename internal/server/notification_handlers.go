package server

import (
	"context"

	"newsletter/internal/models"
	"newsletter/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /notifications/
// @Summary List own notifications
// @Description Newest first, each with an embedded post summary. Every notification is returned unless limit is set.
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Notification
// @Router /notifications/ [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), listTimeout)
	defer cancel()

	page := parsePagination(c, 0)
	notes, err := s.notificationService.List(ctx, service.ListNotificationsInput{
		UserID:     mustUserID(c),
		UnreadOnly: c.QueryBool("unread", false),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notes)
}

// GetUnreadCount handles GET /notifications/unread-count/
// @Summary Count own unread notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{unread_count=int}
// @Router /notifications/unread-count/ [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.notificationService.UnreadCount(c.UserContext(), mustUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": n})
}

// MarkAllNotificationsRead handles POST /notifications/mark-all-read/
// @Summary Mark every own notification read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{updated=int}
// @Router /notifications/mark-all-read/ [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notificationService.MarkAllRead(c.UserContext(), mustUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

// GetNotification handles GET /notifications/:id/
// @Summary Get an own notification
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/ [get]
func (s *Server) GetNotification(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	note, err := s.notificationService.Get(c.UserContext(), mustUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(note)
}

// UpdateNotification handles PUT|PATCH /notifications/:id/
// @Summary Mark a notification read or unread
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Notification ID"
// @Param request body object{is_read=bool} true "Read state"
// @Success 200 {object} models.Notification
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/ [put]
func (s *Server) UpdateNotification(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		IsRead *bool `json:"is_read"`
	}
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	if req.IsRead == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("is_read", "This field is required."))
	}

	note, err := s.notificationService.SetRead(c.UserContext(), mustUserID(c), id, *req.IsRead)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(note)
}

// DeleteNotification handles DELETE /notifications/:id/
// @Summary Delete an own notification
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/ [delete]
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.Delete(c.UserContext(), mustUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
