package dto

import (
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// GoalRequest payload for POST /api/goals.
type GoalRequest struct {
	Metric      string   `json:"metric"`
	TargetValue *float64 `json:"target_value"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	CampaignID  *int64   `json:"campaign_id"`
}

// GoalResponse is one goal on the wire.
type GoalResponse struct {
	ID          int64   `json:"id"`
	Metric      string  `json:"metric"`
	TargetValue float64 `json:"target_value"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	CampaignID  *int64  `json:"campaign_id"`
}

func (r GoalRequest) ToDomain() (domain.Goal, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return domain.Goal{}, apperrors.NewValidationError("invalid start_date", map[string]any{"start_date": r.StartDate})
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return domain.Goal{}, apperrors.NewValidationError("invalid end_date", map[string]any{"end_date": r.EndDate})
	}
	goal := domain.Goal{Metric: r.Metric, StartDate: start, EndDate: end, CampaignID: r.CampaignID}
	if r.TargetValue != nil {
		goal.TargetValue = *r.TargetValue
	}
	return goal, nil
}

func NewGoalResponse(g domain.Goal) GoalResponse {
	return GoalResponse{
		ID:          g.ID,
		Metric:      g.Metric,
		TargetValue: g.TargetValue,
		StartDate:   FormatDate(g.StartDate),
		EndDate:     FormatDate(g.EndDate),
		CampaignID:  g.CampaignID,
	}
}

func NewGoalList(goals []domain.Goal) []GoalResponse {
	out := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, NewGoalResponse(g))
	}
	return out
}
