package server

import (
	"encoding/base64"
	"strings"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// decodeImagePayload accepts either a bare base64 string or a data URL
// ("data:image/png;base64,...") and returns the raw bytes.
func decodeImagePayload(img string) ([]byte, error) {
	if img == "" {
		return nil, nil
	}
	if idx := strings.Index(img, ","); idx != -1 && strings.HasPrefix(img, "data:") {
		img = img[idx+1:]
	}
	return base64.StdEncoding.DecodeString(img)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	imageData, err := decodeImagePayload(req.Image)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid image encoding"))
	}

	post, err := s.interactionService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:    userID,
		Text:      req.Text,
		ImageData: imageData,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.interactionService.DeletePost(c.Context(), userID, postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.interactionService.GetPost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.interactionService.GetPost(c.Context(), postID, 0); err != nil {
		return respondServiceError(c, err)
	}

	comments, err := s.commentRepo.ListByPost(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// ToggleLike handles POST /api/posts/:id/like. The same endpoint likes and
// unlikes depending on the current state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.interactionService.ToggleLike(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.interactionService.Comment(c.Context(), service.CommentInput{
		UserID: userID,
		PostID: postID,
		Text:   req.Text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}
