package datasource

import (
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// ValidateKpiEntry checks the fields the data entry form requires.
func ValidateKpiEntry(e domain.KpiEntry) error {
	missing := map[string]any{}
	if e.Date.IsZero() {
		missing["date"] = "required"
	}
	if _, err := domain.ParseEntryType(string(e.Type)); err != nil {
		missing["type"] = "must be Output, Outtake or Outcome"
	}
	if blank(e.Metric) {
		missing["metric"] = "required"
	}
	if e.Quantity < 0 {
		missing["quantity"] = "must not be negative"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("Please fill out all required fields.", missing)
	}
	return nil
}

// ValidateCampaign checks name, description and the date window.
func ValidateCampaign(c domain.Campaign) error {
	details := map[string]any{}
	if blank(c.Name) {
		details["name"] = "required"
	}
	if blank(c.Description) {
		details["description"] = "required"
	}
	checkWindow(details, c.StartDate.IsZero(), c.EndDate.IsZero(), c.EndDate.Before(c.StartDate))
	if len(details) > 0 {
		return apperrors.NewValidationError("Please fill out all required fields.", details)
	}
	return nil
}

// ValidateGoal checks metric, target and the date window.
func ValidateGoal(g domain.Goal) error {
	details := map[string]any{}
	if blank(g.Metric) {
		details["metric"] = "required"
	}
	if g.TargetValue <= 0 {
		details["target_value"] = "must be positive"
	}
	checkWindow(details, g.StartDate.IsZero(), g.EndDate.IsZero(), g.EndDate.Before(g.StartDate))
	if len(details) > 0 {
		return apperrors.NewValidationError("Please fill out all required fields.", details)
	}
	return nil
}

func checkWindow(details map[string]any, noStart, noEnd, reversed bool) {
	switch {
	case noStart || noEnd:
		if noStart {
			details["start_date"] = "required"
		}
		if noEnd {
			details["end_date"] = "required"
		}
	case reversed:
		details["end_date"] = "must not be before start_date"
	}
}
