package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetGlobalFeed handles GET /api/posts
func (s *Server) GetGlobalFeed(c *fiber.Ctx) error {
	posts, err := s.feedService.GlobalFeed(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowingFeed handles GET /api/posts/following
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	posts, err := s.feedService.FollowingFeed(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetUserFeed handles GET /api/posts/user/:username
func (s *Server) GetUserFeed(c *fiber.Ctx) error {
	username := c.Params("username")

	posts, err := s.feedService.UserFeed(c.Context(), username, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetLikedFeed handles GET /api/posts/likes/:id
func (s *Server) GetLikedFeed(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.feedService.LikedFeed(c.Context(), targetID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}
