package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

func findByTitle(recs []models.CoachingRecommendation, title string) *models.CoachingRecommendation {
	for i := range recs {
		if recs[i].Title == title {
			return &recs[i]
		}
	}
	return nil
}

func TestLowSatisfactionTriggersCriticalCustomerService(t *testing.T) {
	e := newTestEngine(&stubSource{})
	in := models.TechnicianInsight{
		TechnicianID:              "T1",
		CustomerSatisfactionScore: 55,
		EfficiencyScore:           90,
		TechnicalSkillScore:       90,
		CommunicationScore:        90,
	}

	recs := e.GenerateCoachingRecommendations(in)
	rec := findByTitle(recs, "Customer Service Excellence")
	require.NotNil(t, rec, "expected a customer-service recommendation")
	assert.Equal(t, models.PriorityCritical, rec.Priority)
	assert.Equal(t, models.RecCustomerService, rec.Type)
	assert.InDelta(t, 30.0, rec.PerformanceGap, 0.01, "gap from the 85 target")
	assert.Equal(t, models.StatusPending, rec.Status)
}

func TestModerateSatisfactionTriggersHighPriority(t *testing.T) {
	e := newTestEngine(&stubSource{})
	in := models.TechnicianInsight{
		TechnicianID:              "T1",
		CustomerSatisfactionScore: 72,
		EfficiencyScore:           90,
		TechnicalSkillScore:       90,
		CommunicationScore:        90,
	}
	rec := findByTitle(e.GenerateCoachingRecommendations(in), "Customer Service Excellence")
	require.NotNil(t, rec)
	assert.Equal(t, models.PriorityHigh, rec.Priority)
}

func TestSevereGapEmitsBothPerceptionAndIntensive(t *testing.T) {
	e := newTestEngine(&stubSource{})
	diff := 3.0
	in := models.TechnicianInsight{
		TechnicianID:              "T1",
		CustomerSatisfactionScore: 90,
		EfficiencyScore:           90,
		TechnicalSkillScore:       90,
		CommunicationScore:        40,
		AvgRatingDifference:       &diff,
	}

	recs := e.GenerateCoachingRecommendations(in)
	gap := findByTitle(recs, "Perception vs Reality Gap (Overconfidence)")
	require.NotNil(t, gap, "expected the standard perception-gap recommendation")
	assert.Equal(t, models.PriorityCritical, gap.Priority)

	intensive := findByTitle(recs, "Intensive Customer Experience Realignment")
	require.NotNil(t, intensive, "chronic misalignment layers the intensive intervention on top")
	assert.Equal(t, models.PriorityCritical, intensive.Priority)
	assert.Greater(t, intensive.TimeToCompleteHours, gap.TimeToCompleteHours)
}

func TestNegativeGapFramesConfidenceBuilding(t *testing.T) {
	e := newTestEngine(&stubSource{})
	diff := -1.2
	in := models.TechnicianInsight{
		TechnicianID:              "T1",
		CustomerSatisfactionScore: 90,
		EfficiencyScore:           90,
		TechnicalSkillScore:       90,
		CommunicationScore:        76,
		AvgRatingDifference:       &diff,
	}

	recs := e.GenerateCoachingRecommendations(in)
	rec := findByTitle(recs, "Perception vs Reality Gap (Confidence Building)")
	require.NotNil(t, rec)
	assert.Equal(t, models.PriorityMedium, rec.Priority)
	assert.Nil(t, findByTitle(recs, "Intensive Customer Experience Realignment"))
}

func TestHealthyInsightGeneratesNothing(t *testing.T) {
	e := newTestEngine(&stubSource{})
	diff := 0.2
	in := models.TechnicianInsight{
		TechnicianID:              "T1",
		CustomerSatisfactionScore: 92,
		EfficiencyScore:           88,
		TechnicalSkillScore:       95,
		CommunicationScore:        96,
		AvgRatingDifference:       &diff,
	}
	assert.Empty(t, e.GenerateCoachingRecommendations(in))
}

func TestRecommendationIDsAreDeterministic(t *testing.T) {
	e := newTestEngine(&stubSource{})
	in := models.TechnicianInsight{TechnicianID: "T1", CustomerSatisfactionScore: 55,
		EfficiencyScore: 90, TechnicalSkillScore: 90, CommunicationScore: 90}

	first := e.GenerateCoachingRecommendations(in)
	second := e.GenerateCoachingRecommendations(in)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "IDs must be stable so persisted statuses can re-attach")
	}
}

// Two orders with self-ratings 5 and 4 against customer ratings of 2 average a
// discrepancy of 2.5, which must surface both the standard overconfidence
// coaching and the intensive realignment program, both critical.
func TestEndToEndSevereOverconfidence(t *testing.T) {
	o1 := orderFor("T1", 2, 5)
	o1.OrderNo = "SO-1"
	o2 := orderFor("T1", 2, 4)
	o2.OrderNo = "SO-2"
	e := newTestEngine(&stubSource{orders: []models.ServiceOrder{o1, o2}})

	recs, err := e.GenerateForTechnician("T1")
	require.NoError(t, err)

	gap := findByTitle(recs, "Perception vs Reality Gap (Overconfidence)")
	require.NotNil(t, gap)
	assert.Equal(t, models.PriorityCritical, gap.Priority)

	intensive := findByTitle(recs, "Intensive Customer Experience Realignment")
	require.NotNil(t, intensive)
	assert.Equal(t, models.PriorityCritical, intensive.Priority)
}

func TestGenerateForUnknownTechnician(t *testing.T) {
	e := newTestEngine(&stubSource{})
	_, err := e.GenerateForTechnician("T404")
	require.ErrorIs(t, err, ErrTechnicianNotFound)
}
