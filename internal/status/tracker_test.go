package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iac-studio/dashboard/internal/models"
)

func TestSummarizeMixedRepresentations(t *testing.T) {
	var rs []models.Resource
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","status":"Failed"},{"id":"b","status":2}]`), &rs))

	s := Summarize(rs)
	require.Equal(t, 2, s.Total)
	require.Equal(t, 1, s.Active)
	require.Equal(t, 1, s.Failed)
	require.True(t, s.HasFailures())
}

func TestSummarizeCountsEveryResourceOnce(t *testing.T) {
	cost := 10.0
	rs := []models.Resource{
		{Status: models.StatusCode(0)},
		{Status: models.StatusName("Provisioning")},
		{Status: models.StatusCode(2), EstimatedMonthlyCost: &cost},
		{Status: models.StatusCode(4)},
		{Status: models.StatusName("Deleted")},
		{Status: models.StatusName("Paused")},
		{},
	}
	s := Summarize(rs)
	require.Equal(t, Summary{
		Total: 7, Planned: 1, Provisioning: 1, Active: 1, Deleting: 1, Deleted: 1, Unknown: 2, MonthlyCost: 10,
	}, s)
	require.False(t, s.HasFailures())
}

func TestFailedResourcesKeepsOrder(t *testing.T) {
	rs := []models.Resource{
		{ID: "1", Status: models.StatusCode(3)},
		{ID: "2", Status: models.StatusCode(2)},
		{ID: "3", Status: models.StatusName("FAILED")},
	}
	got := FailedResources(rs)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "3", got[1].ID)
}
