package server

import (
	"newsletter/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /user/profile/
// @Summary Current user's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /user/profile/ [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), mustUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT|PATCH /user/profile/
// @Summary Update the current user's profile
// @Description Partial update of username, first_name, last_name, department and image. Role is not writable here.
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /user/profile/ [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username   *string `json:"username"`
		FirstName  *string `json:"first_name"`
		LastName   *string `json:"last_name"`
		Department *string `json:"department"`
		Image      *string `json:"image"`
	}
	if err := bindBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:     mustUserID(c),
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
		Image:      req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /users/:username/
// @Summary Public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/ [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUserRole handles PUT|PATCH /users/:username/update-role/
// @Summary Change a user's role
// @Description Allowed for admins, the President and the Vice President
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param request body object{role=string} true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/update-role/ [put]
func (s *Server) UpdateUserRole(c *fiber.Ctx) error {
	var req struct {
		Role string `json:"role"`
	}
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	user, err := s.userService.UpdateRole(c.UserContext(), mustUserID(c), c.Params("username"), req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /users/
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Router /users/ [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetLikedPosts handles GET /users/:username/liked/
// @Summary Posts a user liked
// @Description Most recent like first
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/liked/ [get]
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	viewerID, _ := currentUserID(c)
	page := parsePagination(c, 0)
	posts, err := s.postService.LikedBy(c.UserContext(), c.Params("username"), viewerID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetSavedPosts handles GET /users/:username/saved/
// @Summary Posts a user saved
// @Description Saves are private: requesting another user's list returns an empty list
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Post
// @Router /users/{username}/saved/ [get]
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 0)
	posts, err := s.postService.SavedBy(c.UserContext(), c.Params("username"), mustUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowedDepartments handles GET /api/user/:user_id/followed-departments/
// @Summary Departments a user follows
// @Tags departments
// @Security BearerAuth
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {array} string
// @Failure 404 {object} models.ErrorResponse
// @Router /api/user/{user_id}/followed-departments/ [get]
func (s *Server) GetFollowedDepartments(c *fiber.Ctx) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return nil
	}
	depts, err := s.subscriptionService.FollowedDepartments(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(depts)
}
