package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/api/dto"
	"github.com/spec-kit/pao-metrics/internal/app"
	"github.com/spec-kit/pao-metrics/internal/dashboard"
	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/social"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// StateHandler exposes the shell itself: snapshot, active view, revalidation
// and notifications.
type StateHandler struct {
	social SocialServices
	now    func() time.Time
}

func NewStateHandler(socials SocialServices) *StateHandler {
	return &StateHandler{social: socials, now: time.Now}
}

// State GET /api/state.
func (h *StateHandler) State(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStateResponse(shell.Snapshot())})
}

// SetView PUT /api/view. The stored view falls back to the dashboard when the
// profile may not open the requested one.
func (h *StateHandler) SetView(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SetViewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	view, err := domain.ParseViewID(req.View)
	if err != nil {
		return apperrors.NewValidationError("unknown view", map[string]any{"view": req.View})
	}
	active := shell.SetActiveView(view)
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requested":   view,
		"active_view": active,
		"allowed":     active == view,
	}})
}

// View GET /api/view renders the payload of the effective view.
func (h *StateHandler) View(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	snap := shell.Snapshot()
	resp := dto.ViewResponse{View: snap.EffectiveView}
	if snap.Profile == nil {
		return c.JSON(fiber.Map{"data": resp})
	}

	data := snap.Collections
	switch snap.EffectiveView {
	case domain.ViewDashboard:
		resp.Data = dashboard.Summarize(dashboard.Input{
			Entries:   data.KpiEntries,
			Campaigns: data.Campaigns,
			Goals:     data.Goals,
			Now:       h.now(),
		})
	case domain.ViewTable:
		resp.Data = dto.NewKpiEntryList(data.KpiEntries)
	case domain.ViewDataEntry:
		resp.Data = fiber.Map{"campaigns": dto.NewCampaignList(data.Campaigns), "types": domain.EntryTypes}
	case domain.ViewCampaigns:
		resp.Data = dto.NewCampaignList(data.Campaigns)
	case domain.ViewGoals:
		resp.Data = fiber.Map{"goals": dto.NewGoalList(data.Goals), "campaigns": dto.NewCampaignList(data.Campaigns)}
	case domain.ViewPlanBuilder:
		resp.Data = shell.Wizard().State()
	case domain.ViewSocialMedia:
		actor, svc := actorOf(shell), h.social.For(shell)
		entries, err := svc.Entries(c.UserContext(), actor, shell.Notifications())
		if err != nil {
			return err
		}
		conns, err := svc.Connections(c.UserContext(), actor, shell.Notifications())
		if err != nil {
			return err
		}
		resp.Data = fiber.Map{"entries": dto.NewSocialEntryList(entries), "connections": dto.NewConnectionList(conns)}
	case domain.ViewProfile:
		resp.Data = fiber.Map{"identity": snap.Identity, "profile": snap.Profile}
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Revalidate POST /api/session/revalidate.
func (h *StateHandler) Revalidate(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	shell.Revalidate()
	return c.SendStatus(http.StatusAccepted)
}

// Notifications GET /api/notifications.
func (h *StateHandler) Notifications(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shell.Notifications().List()})
}

// DismissNotification DELETE /api/notifications/:id.
func (h *StateHandler) DismissNotification(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if !shell.Notifications().Dismiss(id) {
		return apperrors.NewNotFound("notification", map[string]any{"id": id})
	}
	return c.SendStatus(http.StatusNoContent)
}

// actorOf builds the social actor. Demo shells have no identity and act as "demo".
func actorOf(shell *app.Shell) social.Actor {
	actor := social.Actor{UserID: "demo"}
	if id := shell.Identity(); id != nil {
		actor.UserID = id.UserID
	}
	if p := shell.Profile(); p != nil {
		actor.Profile = *p
	}
	return actor
}
