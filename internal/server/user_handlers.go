package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles POST /api/users/:id/follow. The same endpoint follows
// and unfollows depending on the current edge state.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.graphService.ToggleFollow(c.Context(), userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	message := "User unfollowed successfully"
	if following {
		message = "User followed successfully"
	}
	return c.JSON(fiber.Map{
		"message":   message,
		"following": following,
	})
}

// GetSuggestedUsers handles GET /api/users/suggested
func (s *Server) GetSuggestedUsers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	users, err := s.graphService.SuggestedUsers(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// UpdateProfile handles POST /api/users/update. Only the fields present in
// the body change; a password change needs the current password alongside
// the new one.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Bio             string `json:"bio"`
		Avatar          string `json:"avatar"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.graphService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:          userID,
		Username:        req.Username,
		Email:           req.Email,
		Bio:             req.Bio,
		Avatar:          req.Avatar,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/profile/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.graphService.GetProfile(c.Context(), username)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
