package dto

import (
	"time"

	"github.com/spec-kit/pao-metrics/internal/domain"
	"github.com/spec-kit/pao-metrics/internal/social"
)

// SocialEntryRequest payload for POST /api/social/entries.
type SocialEntryRequest struct {
	Network   string `json:"network"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Placement string `json:"placement"`
	Notes     string `json:"notes"`
}

// SocialEntryResponse is one social media entry on the wire.
type SocialEntryResponse struct {
	ID        int64     `json:"id"`
	Network   string    `json:"network"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Placement string    `json:"placement"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ConnectionRequest payload for PUT /api/social/connections/:network.
// Toggle flips the connected flag; a non-empty cadence changes auto sync.
type ConnectionRequest struct {
	Toggle   bool   `json:"toggle"`
	AutoSync string `json:"auto_sync"`
}

// ConnectionResponse is one feed connection on the wire.
type ConnectionResponse struct {
	ID         *int64     `json:"id"`
	Network    string     `json:"network"`
	Connected  bool       `json:"connected"`
	AutoSync   string     `json:"auto_sync"`
	LastSynced *time.Time `json:"last_synced"`
}

func (r SocialEntryRequest) ToInput() social.NewEntry {
	return social.NewEntry{Network: r.Network, Title: r.Title, URL: r.URL, Placement: r.Placement, Notes: r.Notes}
}

func NewSocialEntryList(entries []domain.SocialMediaEntry) []SocialEntryResponse {
	out := make([]SocialEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewSocialEntryResponse(e))
	}
	return out
}

func NewSocialEntryResponse(e domain.SocialMediaEntry) SocialEntryResponse {
	return SocialEntryResponse{
		ID:        e.ID,
		Network:   string(e.Network),
		Title:     e.Title,
		URL:       e.URL,
		Placement: e.Placement,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
	}
}

func NewConnectionResponse(c domain.SocialConnection) ConnectionResponse {
	return ConnectionResponse{
		ID:         c.ID,
		Network:    string(c.Network),
		Connected:  c.Connected,
		AutoSync:   string(c.AutoSync),
		LastSynced: c.LastSynced,
	}
}

func NewConnectionList(conns []domain.SocialConnection) []ConnectionResponse {
	out := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		out = append(out, NewConnectionResponse(c))
	}
	return out
}
