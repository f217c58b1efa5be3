package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/api/dto"
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// SocialHandler manages the team's social media library and feed connections.
type SocialHandler struct {
	services SocialServices
}

func NewSocialHandler(services SocialServices) *SocialHandler {
	return &SocialHandler{services: services}
}

// ListEntries GET /api/social/entries.
func (h *SocialHandler) ListEntries(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	entries, err := h.services.For(shell).Entries(c.UserContext(), actorOf(shell), shell.Notifications())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSocialEntryList(entries)})
}

// CreateEntry POST /api/social/entries.
func (h *SocialHandler) CreateEntry(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SocialEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.services.For(shell).AddEntry(c.UserContext(), actorOf(shell), req.ToInput(), shell.Notifications())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSocialEntryResponse(entry)})
}

// DeleteEntry DELETE /api/social/entries/:id.
func (h *SocialHandler) DeleteEntry(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	if err := h.services.For(shell).DeleteEntry(c.UserContext(), actorOf(shell), id, shell.Notifications()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListConnections GET /api/social/connections.
func (h *SocialHandler) ListConnections(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	conns, err := h.services.For(shell).Connections(c.UserContext(), actorOf(shell), shell.Notifications())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewConnectionList(conns)})
}

// UpdateConnection PUT /api/social/connections/:network.
func (h *SocialHandler) UpdateConnection(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	network, ok := knownNetwork(c.Params("network"))
	if !ok {
		return apperrors.NewNotFound("social network", map[string]any{"network": c.Params("network")})
	}
	var req dto.ConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Toggle && req.AutoSync == "" {
		return apperrors.NewValidationError("toggle or auto_sync required", nil)
	}

	actor := actorOf(shell)
	var conn domain.SocialConnection
	if req.Toggle {
		if conn, err = h.services.For(shell).ToggleConnection(c.UserContext(), actor, network, shell.Notifications()); err != nil {
			return err
		}
	}
	if req.AutoSync != "" {
		cadence := domain.NormalizeCadence(req.AutoSync)
		if conn, err = h.services.For(shell).SetCadence(c.UserContext(), actor, network, cadence, shell.Notifications()); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"data": dto.NewConnectionResponse(conn)})
}

func knownNetwork(raw string) (domain.SocialNetwork, bool) {
	for _, n := range domain.SocialNetworks {
		if string(n) == raw {
			return n, true
		}
	}
	return "", false
}
