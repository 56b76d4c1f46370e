package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

// One clean performer, one severe underperformer, one middling technician.
func summaryFixture() *Engine {
	a := orderFor("TA", 5, 5)
	b := orderFor("TB", 1, 5)
	c := orderFor("TC", 3, 3)
	return newTestEngine(&stubSource{orders: []models.ServiceOrder{a, b, c}})
}

func TestSummaryRollupCounts(t *testing.T) {
	s := summaryFixture().Summary()

	assert.Equal(t, 3, s.TechnicianCount)
	assert.Equal(t, 2, s.ByRiskLevel[models.RiskLow])
	assert.Equal(t, 1, s.ByRiskLevel[models.RiskHigh])

	// TB draws three critical recommendations, TC one high and one medium.
	assert.Equal(t, 5, s.RecommendationCount)
	assert.Equal(t, 3, s.ByPriority[models.PriorityCritical])
	assert.Equal(t, 1, s.ByPriority[models.PriorityHigh])
	assert.Equal(t, 1, s.ByPriority[models.PriorityMedium])
}

func TestSummaryTopPerformersDescending(t *testing.T) {
	s := summaryFixture().Summary()

	require.Len(t, s.TopPerformers, 3)
	assert.Equal(t, "TA", s.TopPerformers[0].TechnicianID)
	for i := 1; i < len(s.TopPerformers); i++ {
		assert.GreaterOrEqual(t, s.TopPerformers[i-1].OverallScore, s.TopPerformers[i].OverallScore)
	}
}

func TestSummaryAtRiskOnlyHighAndCritical(t *testing.T) {
	s := summaryFixture().Summary()

	require.Len(t, s.AtRisk, 1)
	assert.Equal(t, "TB", s.AtRisk[0].TechnicianID)
	for i := 1; i < len(s.AtRisk); i++ {
		assert.LessOrEqual(t, s.AtRisk[i-1].OverallScore, s.AtRisk[i].OverallScore, "worst first")
	}
}

func TestSummaryIncludesFleetProductTypes(t *testing.T) {
	s := summaryFixture().Summary()

	require.NotEmpty(t, s.FleetProductTypes)
	assert.Equal(t, "Refrigerator", s.FleetProductTypes[0].Appliance)
	assert.Equal(t, 3, s.FleetProductTypes[0].JobCount)
}

func TestSummaryEmptyFleet(t *testing.T) {
	s := newTestEngine(&stubSource{}).Summary()

	assert.Zero(t, s.TechnicianCount)
	assert.Zero(t, s.RecommendationCount)
	assert.Empty(t, s.TopPerformers)
	assert.Empty(t, s.AtRisk)
	assert.Empty(t, s.FleetProductTypes)
}
