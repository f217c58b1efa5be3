package navigation

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

//go:embed navigation.yaml
var defaultTable []byte

// Gate decides which views a profile may see.
type Gate struct {
	items []domain.NavigationItem
}

// NewGate builds a gate over a navigation table.
func NewGate(items []domain.NavigationItem) *Gate {
	cp := make([]domain.NavigationItem, len(items))
	copy(cp, items)
	return &Gate{items: cp}
}

// DefaultGate builds a gate over the embedded navigation table.
func DefaultGate() (*Gate, error) {
	items, err := ParseTable(defaultTable)
	if err != nil {
		return nil, err
	}
	return NewGate(items), nil
}

// ParseTable decodes a YAML navigation table and validates its entries.
func ParseTable(raw []byte) ([]domain.NavigationItem, error) {
	var items []domain.NavigationItem
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode navigation table: %w", err)
	}
	seen := make(map[domain.ViewID]struct{}, len(items))
	for _, item := range items {
		if _, err := domain.ParseViewID(string(item.ID)); err != nil {
			return nil, err
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate navigation item %q", item.ID)
		}
		seen[item.ID] = struct{}{}
		for _, role := range item.AllowedRoles {
			if !role.Valid() {
				return nil, fmt.Errorf("navigation item %q: unknown role %q", item.ID, role)
			}
		}
	}
	return items, nil
}

// Items returns the full table.
func (g *Gate) Items() []domain.NavigationItem {
	cp := make([]domain.NavigationItem, len(g.items))
	copy(cp, g.items)
	return cp
}

// Visible returns the items the profile's role may open. A nil profile sees nothing.
func (g *Gate) Visible(profile *domain.Profile) []domain.NavigationItem {
	if profile == nil {
		return []domain.NavigationItem{}
	}
	visible := make([]domain.NavigationItem, 0, len(g.items))
	for _, item := range g.items {
		if item.Allows(profile.Role) {
			visible = append(visible, item)
		}
	}
	return visible
}

// IsViewAllowed reports whether profile may open view.
func (g *Gate) IsViewAllowed(profile *domain.Profile, view domain.ViewID) bool {
	if profile == nil {
		return false
	}
	if view == domain.ViewProfile {
		return true
	}
	for _, item := range g.items {
		if item.ID == view {
			return item.Allows(profile.Role)
		}
	}
	return false
}

// Enforce returns the view that should be stored as active.
// A disallowed view under a resolved profile resets to the dashboard.
func (g *Gate) Enforce(profile *domain.Profile, active domain.ViewID) domain.ViewID {
	if profile != nil && !g.IsViewAllowed(profile, active) {
		return domain.ViewDashboard
	}
	return active
}

// Effective returns the view to render regardless of the stored value.
func (g *Gate) Effective(profile *domain.Profile, active domain.ViewID) domain.ViewID {
	if profile == nil || !g.IsViewAllowed(profile, active) {
		return domain.ViewDashboard
	}
	return active
}
