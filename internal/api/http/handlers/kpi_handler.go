package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/api/dto"
	"github.com/spec-kit/pao-metrics/internal/dashboard"
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// KpiHandler serves the dashboard, the data explorer and the entry forms.
type KpiHandler struct {
	now func() time.Time
}

func NewKpiHandler() *KpiHandler {
	return &KpiHandler{now: time.Now}
}

// Dashboard GET /api/dashboard?campaign_id=.
func (h *KpiHandler) Dashboard(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	campaignID, err := optionalInt64Query(c, "campaign_id")
	if err != nil {
		return err
	}
	data := shell.Collections()
	summary := dashboard.Summarize(dashboard.Input{
		Entries:    data.KpiEntries,
		Campaigns:  data.Campaigns,
		Goals:      data.Goals,
		CampaignID: campaignID,
		Now:        h.now(),
	})
	return c.JSON(fiber.Map{"data": summary})
}

// ListEntries GET /api/kpi?sort=&dir=&type=&metric=&campaign_id=.
func (h *KpiHandler) ListEntries(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	q, err := parseTableQuery(c)
	if err != nil {
		return err
	}
	rows := dashboard.Table(shell.Collections().KpiEntries, q)
	return c.JSON(fiber.Map{"data": dto.NewKpiEntryList(rows)})
}

// CreateEntry POST /api/kpi.
func (h *KpiHandler) CreateEntry(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	var req dto.KpiEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := req.ToDomain()
	if err != nil {
		return err
	}
	created, err := shell.AddKpiEntry(c.UserContext(), entry)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewKpiEntryResponse(created)})
}

// ListCampaigns GET /api/campaigns.
func (h *KpiHandler) ListCampaigns(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCampaignList(shell.Collections().Campaigns)})
}

// CreateCampaign POST /api/campaigns.
func (h *KpiHandler) CreateCampaign(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	campaign, err := req.ToDomain()
	if err != nil {
		return err
	}
	created, err := shell.AddCampaign(c.UserContext(), campaign)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCampaignResponse(created)})
}

// ListGoals GET /api/goals.
func (h *KpiHandler) ListGoals(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGoalList(shell.Collections().Goals)})
}

// CreateGoal POST /api/goals.
func (h *KpiHandler) CreateGoal(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	var req dto.GoalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	goal, err := req.ToDomain()
	if err != nil {
		return err
	}
	created, err := shell.AddGoal(c.UserContext(), goal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewGoalResponse(created)})
}

func parseTableQuery(c *fiber.Ctx) (dashboard.Query, error) {
	var q dashboard.Query
	key, err := dashboard.ParseSortKey(c.Query("sort"))
	if err != nil {
		return q, apperrors.NewValidationError("invalid sort", map[string]any{"sort": c.Query("sort")})
	}
	q.Sort = key
	switch strings.ToLower(c.Query("dir")) {
	case "", "asc":
	case "desc":
		q.Descending = true
	default:
		return q, apperrors.NewValidationError("invalid dir", map[string]any{"dir": c.Query("dir")})
	}
	if raw := c.Query("type"); raw != "" {
		t, err := domain.ParseEntryType(raw)
		if err != nil {
			return q, apperrors.NewValidationError("invalid type", map[string]any{"type": raw})
		}
		q.Type = t
	}
	q.Metric = c.Query("metric")
	if q.CampaignID, err = optionalInt64Query(c, "campaign_id"); err != nil {
		return q, err
	}
	return q, nil
}
