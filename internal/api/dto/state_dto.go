package dto

import (
	"github.com/spec-kit/pao-metrics/internal/app"
	"github.com/spec-kit/pao-metrics/internal/domain"
)

// StateResponse is the shell snapshot without collections.
type StateResponse struct {
	ClientID      string                  `json:"client_id"`
	Identity      *domain.Identity        `json:"identity"`
	Profile       *domain.Profile         `json:"profile"`
	Loading       bool                    `json:"loading"`
	Demo          bool                    `json:"demo"`
	ActiveView    domain.ViewID           `json:"active_view"`
	EffectiveView domain.ViewID           `json:"effective_view"`
	Navigation    []domain.NavigationItem `json:"navigation"`
	Counts        CollectionCounts        `json:"counts"`
}

// CollectionCounts sizes the loaded collections.
type CollectionCounts struct {
	KpiEntries int `json:"kpi_entries"`
	Campaigns  int `json:"campaigns"`
	Goals      int `json:"goals"`
}

// SetViewRequest payload for PUT /api/view.
type SetViewRequest struct {
	View string `json:"view"`
}

// ViewResponse is the payload of the rendered view.
type ViewResponse struct {
	View domain.ViewID `json:"view"`
	Data any           `json:"data,omitempty"`
}

func NewStateResponse(s app.Snapshot) StateResponse {
	return StateResponse{
		ClientID:      s.ClientID,
		Identity:      s.Identity,
		Profile:       s.Profile,
		Loading:       s.Loading,
		Demo:          s.Demo,
		ActiveView:    s.ActiveView,
		EffectiveView: s.EffectiveView,
		Navigation:    s.Navigation,
		Counts: CollectionCounts{
			KpiEntries: len(s.Collections.KpiEntries),
			Campaigns:  len(s.Collections.Campaigns),
			Goals:      len(s.Collections.Goals),
		},
	}
}
