package dto

import (
	"github.com/spec-kit/pao-metrics/internal/domain"
	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

// KpiEntryRequest payload for POST /api/kpi.
type KpiEntryRequest struct {
	Date       string   `json:"date"`
	Type       string   `json:"type"`
	Metric     string   `json:"metric"`
	Quantity   *float64 `json:"quantity"`
	Notes      string   `json:"notes"`
	CampaignID *int64   `json:"campaign_id"`
	Link       string   `json:"link"`
}

// KpiEntryResponse is one KPI entry on the wire.
type KpiEntryResponse struct {
	ID         int64   `json:"id"`
	Date       string  `json:"date"`
	Type       string  `json:"type"`
	Metric     string  `json:"metric"`
	Quantity   float64 `json:"quantity"`
	Notes      string  `json:"notes,omitempty"`
	CampaignID *int64  `json:"campaign_id"`
	Link       string  `json:"link,omitempty"`
}

// ToDomain converts the request. Missing fields other than quantity stay
// zero-valued and are reported by validation.
func (r KpiEntryRequest) ToDomain() (domain.KpiEntry, error) {
	if r.Quantity == nil {
		return domain.KpiEntry{}, apperrors.NewValidationError("Please fill out all required fields.", map[string]any{"quantity": "required"})
	}
	date, err := ParseDate(r.Date)
	if err != nil {
		return domain.KpiEntry{}, apperrors.NewValidationError("invalid date", map[string]any{"date": r.Date})
	}
	entry := domain.KpiEntry{
		Date:       date,
		Metric:     r.Metric,
		Notes:      r.Notes,
		CampaignID: r.CampaignID,
		Link:       r.Link,
	}
	if r.Type != "" {
		t, err := domain.ParseEntryType(r.Type)
		if err != nil {
			return domain.KpiEntry{}, apperrors.NewValidationError("invalid type", map[string]any{"type": r.Type})
		}
		entry.Type = t
	}
	entry.Quantity = *r.Quantity
	return entry, nil
}

// NewKpiEntryResponse converts a domain entry.
func NewKpiEntryResponse(e domain.KpiEntry) KpiEntryResponse {
	return KpiEntryResponse{
		ID:         e.ID,
		Date:       FormatDate(e.Date),
		Type:       string(e.Type),
		Metric:     e.Metric,
		Quantity:   e.Quantity,
		Notes:      e.Notes,
		CampaignID: e.CampaignID,
		Link:       e.Link,
	}
}

// NewKpiEntryList converts a slice, never returning nil.
func NewKpiEntryList(entries []domain.KpiEntry) []KpiEntryResponse {
	out := make([]KpiEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewKpiEntryResponse(e))
	}
	return out
}
