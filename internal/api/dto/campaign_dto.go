package dto

import (
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// CampaignRequest payload for POST /api/campaigns.
type CampaignRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// CampaignResponse is one campaign on the wire.
type CampaignResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (r CampaignRequest) ToDomain() (domain.Campaign, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return domain.Campaign{}, apperrors.NewValidationError("invalid start_date", map[string]any{"start_date": r.StartDate})
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return domain.Campaign{}, apperrors.NewValidationError("invalid end_date", map[string]any{"end_date": r.EndDate})
	}
	return domain.Campaign{Name: r.Name, Description: r.Description, StartDate: start, EndDate: end}, nil
}

func NewCampaignResponse(c domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		StartDate:   FormatDate(c.StartDate),
		EndDate:     FormatDate(c.EndDate),
	}
}

func NewCampaignList(campaigns []domain.Campaign) []CampaignResponse {
	out := make([]CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, NewCampaignResponse(c))
	}
	return out
}
