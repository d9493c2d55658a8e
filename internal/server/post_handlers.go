package server

import (
	"context"
	"time"

	"newsletter/internal/service"

	"github.com/gofiber/fiber/v2"
)

const listTimeout = 5 * time.Second

// GetPosts handles GET /posts/
// @Summary List posts
// @Description All posts newest first, optionally filtered by department
// @Tags posts
// @Produce json
// @Param department query string false "Department filter (exact match)"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts/ [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), listTimeout)
	defer cancel()

	viewerID, _ := currentUserID(c)
	page := parsePagination(c, 0)
	posts, err := s.postService.ListPosts(ctx, service.ListPostsInput{
		Department: c.Query("department"),
		ViewerID:   viewerID,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /posts/
// @Summary Create a post
// @Description Managers and Assistants always post into their own department. Subscribers of the department are notified.
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/ [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := bindBody(c, &req); err != nil {
		return nil
	}
	req.UserID = mustUserID(c)

	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFollowedPosts handles GET /posts/followed/
// @Summary Posts from followed departments
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts/followed/ [get]
func (s *Server) GetFollowedPosts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), listTimeout)
	defer cancel()

	page := parsePagination(c, 0)
	posts, err := s.postService.FollowedPosts(ctx, mustUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /posts/:id/
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/ [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := currentUserID(c)

	post, err := s.postService.GetPost(c.UserContext(), id, viewerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT|PATCH /posts/:id/
// @Summary Update a post
// @Description Only the author or an admin may update a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/ [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Title      *string `json:"title"`
		Content    *string `json:"content"`
		Department *string `json:"department"`
		Image      *string `json:"image"`
	}
	if err := bindBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:     mustUserID(c),
		PostID:     id,
		Title:      req.Title,
		Content:    req.Content,
		Department: req.Department,
		Image:      req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /posts/:id/
// @Summary Delete a post
// @Description Removes the post with its comments, likes, saves and notifications
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/ [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: mustUserID(c),
		PostID: id,
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /posts/:id/like/
// @Summary Toggle a like
// @Tags engagement
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 201 {object} object{message=string} "Post liked"
// @Success 200 {object} object{message=string} "Post unliked"
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like/ [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.engagementService.ToggleLike(c.UserContext(), mustUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if liked {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Post liked"})
	}
	return c.JSON(fiber.Map{"message": "Post unliked"})
}

// SavePost handles POST /posts/:id/save/
// @Summary Toggle a save
// @Tags engagement
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 201 {object} object{message=string} "Post saved"
// @Success 200 {object} object{message=string} "Post unsaved"
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/save/ [post]
func (s *Server) SavePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	saved, err := s.engagementService.ToggleSave(c.UserContext(), mustUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if saved {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Post saved"})
	}
	return c.JSON(fiber.Map{"message": "Post unsaved"})
}
