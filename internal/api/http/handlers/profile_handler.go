package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/api/dto"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// ProfileHandler reads and patches the active profile.
type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Get GET /api/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"identity": shell.Identity(),
		"profile":  shell.Profile(),
	}})
}

// Patch PATCH /api/profile.
func (h *ProfileHandler) Patch(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ProfilePatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := shell.UpdateProfile(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}
