package domain

import "fmt"

// ViewID identifies a top-level screen.
type ViewID string

const (
	ViewDashboard   ViewID = "dashboard"
	ViewTable       ViewID = "table"
	ViewDataEntry   ViewID = "data-entry"
	ViewPlanBuilder ViewID = "plan-builder"
	ViewCampaigns   ViewID = "campaigns"
	ViewGoals       ViewID = "goals"
	ViewSocialMedia ViewID = "social-media"
	ViewProfile     ViewID = "profile"
)

// AllViews lists every view in menu order.
var AllViews = []ViewID{
	ViewDashboard, ViewTable, ViewDataEntry, ViewPlanBuilder,
	ViewCampaigns, ViewGoals, ViewSocialMedia, ViewProfile,
}

// ParseViewID validates raw against the fixed view enumeration.
func ParseViewID(raw string) (ViewID, error) {
	for _, v := range AllViews {
		if string(v) == raw {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", raw)
}

// NavigationItem is one entry of the static navigation table.
type NavigationItem struct {
	ID           ViewID `json:"id" yaml:"id"`
	Label        string `json:"label" yaml:"label"`
	AllowedRoles []Role `json:"allowed_roles" yaml:"roles"`
}

// Allows reports whether role may open the item.
func (n NavigationItem) Allows(role Role) bool {
	for _, r := range n.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}
