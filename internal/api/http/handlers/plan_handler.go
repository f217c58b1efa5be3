package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pao-metrics/internal/api/dto"
	"github.com/spec-kit/pao-metrics/internal/plan"
)

// PlanHandler drives the client's plan builder wizard.
type PlanHandler struct{}

func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

// State GET /api/plan.
func (h *PlanHandler) State(c *fiber.Ctx) error {
	return h.step(c, func(w *plan.Wizard, _ string) plan.State { return w.State() })
}

// Start POST /api/plan/start.
func (h *PlanHandler) Start(c *fiber.Ctx) error {
	return h.step(c, func(w *plan.Wizard, _ string) plan.State { return w.Start() })
}

// Next POST /api/plan/next.
func (h *PlanHandler) Next(c *fiber.Ctx) error {
	return h.step(c, (*plan.Wizard).Next)
}

// Previous POST /api/plan/previous.
func (h *PlanHandler) Previous(c *fiber.Ctx) error {
	return h.step(c, (*plan.Wizard).Previous)
}

// Reset POST /api/plan/reset.
func (h *PlanHandler) Reset(c *fiber.Ctx) error {
	return h.step(c, func(w *plan.Wizard, _ string) plan.State { return w.StartOver() })
}

// Generate POST /api/plan/generate. Generator failures still answer 200:
// the plan text carries the error message and the wizard is complete.
func (h *PlanHandler) Generate(c *fiber.Ctx) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	state := shell.Wizard().Generate(c.UserContext(), planInput(c))
	return c.JSON(fiber.Map{"data": state})
}

func (h *PlanHandler) step(c *fiber.Ctx, fn func(*plan.Wizard, string) plan.State) error {
	shell, err := ShellFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fn(shell.Wizard(), planInput(c))})
}

// planInput tolerates an empty body: the input is optional.
func planInput(c *fiber.Ctx) string {
	var req dto.PlanInputRequest
	if len(c.Body()) == 0 {
		return ""
	}
	if err := c.BodyParser(&req); err != nil {
		return ""
	}
	return req.Input
}
