package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/pao-metrics/pkg/util/errorutil"
)

func TestKpiEntryRequestToDomain(t *testing.T) {
	qty := 12.0
	entry, err := KpiEntryRequest{Date: "2024-05-02", Type: "Outtake", Metric: "Media pickups", Quantity: &qty}.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), entry.Date)
	assert.Equal(t, 12.0, entry.Quantity)

	_, err = KpiEntryRequest{Date: "2024-05-02", Type: "Outtake", Metric: "Media pickups"}.ToDomain()
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = KpiEntryRequest{Date: "05/02/2024", Quantity: &qty}.ToDomain()
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = KpiEntryRequest{Type: "Impact", Quantity: &qty}.ToDomain()
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}

func TestBlankDatesStayZero(t *testing.T) {
	c, err := CampaignRequest{Name: "Spring"}.ToDomain()
	require.NoError(t, err)
	assert.True(t, c.StartDate.IsZero())
	assert.Equal(t, "", NewCampaignResponse(c).StartDate)
}

func TestGoalResponseFormatsDates(t *testing.T) {
	target := 24.0
	g, err := GoalRequest{Metric: "News release", TargetValue: &target, StartDate: "2024-01-01", EndDate: "2030-12-31"}.ToDomain()
	require.NoError(t, err)
	resp := NewGoalResponse(g)
	assert.Equal(t, "2024-01-01", resp.StartDate)
	assert.Equal(t, "2030-12-31", resp.EndDate)
	assert.Equal(t, 24.0, resp.TargetValue)
}

func TestListsAreNeverNil(t *testing.T) {
	assert.NotNil(t, NewKpiEntryList(nil))
	assert.NotNil(t, NewCampaignList(nil))
	assert.NotNil(t, NewGoalList(nil))
	assert.NotNil(t, NewSocialEntryList(nil))
	assert.NotNil(t, NewConnectionList(nil))
}
