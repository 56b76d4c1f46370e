package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

func TestJobCodeAssignmentIsDeterministic(t *testing.T) {
	o := models.ServiceOrder{OrderNo: "SO-77", Appliance: "Refrigerator"}
	idx := jobPatternFor(o)
	for i := 0; i < 10; i++ {
		assert.Equal(t, idx, jobPatternFor(o), "same order must always map to the same pattern")
	}
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, len(jobPatterns))
}

func TestJobCodeFormat(t *testing.T) {
	assert.Equal(t, "REF-01", jobCodeFor("Refrigerator", 0))
	assert.Equal(t, "WAS-05", jobCodeFor("Washer", 4))
	assert.Equal(t, "GEN-02", jobCodeFor("  --  ", 1), "non-letter appliances fall back to the generic code")
}

func TestEstimateFirstTimeFixTiers(t *testing.T) {
	assert.Equal(t, 92.0, estimateFirstTimeFix(1.5))
	assert.Equal(t, 83.0, estimateFirstTimeFix(3.0))
	assert.Equal(t, 83.0, estimateFirstTimeFix(6.9))
	assert.Equal(t, 72.0, estimateFirstTimeFix(7.0))
}

func TestEstimateRecallFloor(t *testing.T) {
	assert.Equal(t, 8.0, estimateRecall(nil, 0))
	assert.Equal(t, 3.0, estimateRecall(rating(4.6), 200), "great rating and profit take the full deltas")
	assert.Equal(t, 5.0, estimateRecall(rating(4.2), 80))
	assert.GreaterOrEqual(t, estimateRecall(rating(5), 1000), 1.0, "rate never drops below the floor")
}

func TestEstimateDiagnosticAccuracyCap(t *testing.T) {
	assert.Equal(t, 85.0, estimateDiagnosticAccuracy(0, 20))
	assert.Equal(t, 95.0, estimateDiagnosticAccuracy(60, 2))
	assert.LessOrEqual(t, estimateDiagnosticAccuracy(100, 0), 98.0)
}

func TestProductTypeBreakdownGroupsAndSorts(t *testing.T) {
	orders := []models.ServiceOrder{
		{OrderNo: "SO-1", Appliance: "Washer", Revenue: 100, CycleTimeDays: 2},
		{OrderNo: "SO-2", Appliance: "Washer", Revenue: 200, CycleTimeDays: 4},
		{OrderNo: "SO-3", Appliance: "Dryer", Revenue: 300, CycleTimeDays: 6},
		{OrderNo: "SO-4", Appliance: ""},
	}

	breakdown := productTypeBreakdown(orders)
	require.Len(t, breakdown, 3)
	assert.Equal(t, "Washer", breakdown[0].Appliance, "largest group first")
	assert.Equal(t, 2, breakdown[0].JobCount)
	assert.InDelta(t, 150.0, breakdown[0].AvgRevenue, 0.01)

	var names []string
	for _, p := range breakdown {
		names = append(names, p.Appliance)
	}
	assert.Contains(t, names, "Unknown", "blank appliance buckets under Unknown")
}

func TestEveryJobPatternHasAPlaybook(t *testing.T) {
	for _, pattern := range jobPatterns {
		pb := PlaybooksFor(pattern)
		require.NotEmpty(t, pb, "pattern %q has no playbook", pattern)
		for _, entry := range pb {
			assert.NotEmpty(t, entry.Title)
			assert.NotEmpty(t, entry.Steps)
		}
	}
}

func TestJobCodeBreakdownAttachesPlaybooks(t *testing.T) {
	orders := []models.ServiceOrder{
		{OrderNo: "SO-1", Appliance: "Refrigerator", Revenue: 120, Profit: 60, CycleTimeDays: 3},
		{OrderNo: "SO-2", Appliance: "Refrigerator", Revenue: 180, Profit: 90, CycleTimeDays: 5},
	}
	codes := jobCodeBreakdown("Refrigerator", orders)
	require.NotEmpty(t, codes)
	for _, jc := range codes {
		assert.NotEmpty(t, jc.Playbooks, "job code %s missing playbooks", jc.Code)
		assert.Greater(t, jc.JobCount, 0)
	}
	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1].Code, codes[i].Code, "codes must be sorted")
	}
}
