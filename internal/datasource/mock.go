package datasource

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

//go:embed mockdata.yaml
var mockData []byte

// Dataset is a full set of collections.
type Dataset struct {
	KpiEntries []domain.KpiEntry `yaml:"kpi_entries"`
	Campaigns  []domain.Campaign `yaml:"campaigns"`
	Goals      []domain.Goal     `yaml:"goals"`
}

// Clone returns a deep copy, so callers may mutate the result freely.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		KpiEntries: make([]domain.KpiEntry, len(d.KpiEntries)),
		Campaigns:  make([]domain.Campaign, len(d.Campaigns)),
		Goals:      make([]domain.Goal, len(d.Goals)),
	}
	copy(out.Campaigns, d.Campaigns)
	for i, e := range d.KpiEntries {
		e.CampaignID = cloneID(e.CampaignID)
		out.KpiEntries[i] = e
	}
	for i, g := range d.Goals {
		g.CampaignID = cloneID(g.CampaignID)
		out.Goals[i] = g
	}
	return out
}

// MockDataset decodes the embedded demo dataset.
func MockDataset() (Dataset, error) {
	return ParseDataset(mockData)
}

// ParseDataset decodes a YAML dataset and checks its entry types.
func ParseDataset(raw []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode mock dataset: %w", err)
	}
	for _, e := range ds.KpiEntries {
		if _, err := domain.ParseEntryType(string(e.Type)); err != nil {
			return Dataset{}, fmt.Errorf("kpi entry %d: %w", e.ID, err)
		}
	}
	return ds, nil
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
