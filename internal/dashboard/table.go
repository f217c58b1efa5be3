package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// SortKey is a sortable column of the data explorer.
type SortKey string

const (
	SortNone     SortKey = ""
	SortDate     SortKey = "date"
	SortType     SortKey = "type"
	SortMetric   SortKey = "metric"
	SortQuantity SortKey = "quantity"
)

// Query selects and orders the rows of the data explorer.
type Query struct {
	Sort       SortKey
	Descending bool
	Type       domain.EntryType
	Metric     string
	CampaignID *int64
}

// ParseSortKey validates a sort column name. Empty keeps the collection order.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(raw)); k {
	case SortNone, SortDate, SortType, SortMetric, SortQuantity:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort column %q", raw)
	}
}

// Table filters and sorts entries. The input slice is not modified.
func Table(entries []domain.KpiEntry, q Query) []domain.KpiEntry {
	out := make([]domain.KpiEntry, 0, len(entries))
	for _, e := range entries {
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		if q.Metric != "" && !strings.EqualFold(e.Metric, q.Metric) {
			continue
		}
		if q.CampaignID != nil && (e.CampaignID == nil || *e.CampaignID != *q.CampaignID) {
			continue
		}
		out = append(out, e)
	}

	less := lessFor(q.Sort)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFor(key SortKey) func(a, b domain.KpiEntry) bool {
	switch key {
	case SortDate:
		return func(a, b domain.KpiEntry) bool { return a.Date.Before(b.Date) }
	case SortType:
		return func(a, b domain.KpiEntry) bool { return a.Type < b.Type }
	case SortMetric:
		return func(a, b domain.KpiEntry) bool { return a.Metric < b.Metric }
	case SortQuantity:
		return func(a, b domain.KpiEntry) bool { return a.Quantity < b.Quantity }
	default:
		return nil
	}
}
