package coaching

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

type stubSource struct {
	orders []models.ServiceOrder
	techs  []models.Technician
}

func (s *stubSource) ServiceOrders() []models.ServiceOrder { return s.orders }
func (s *stubSource) Technicians() []models.Technician     { return s.techs }
func (s *stubSource) TechnicianByID(id string) (models.Technician, bool) {
	for _, t := range s.techs {
		if t.ID == id {
			return t, true
		}
	}
	return models.Technician{}, false
}

func newTestEngine(src *stubSource) *Engine {
	e := NewEngine(src, zerolog.Nop())
	e.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func rating(v float64) *float64 { return &v }

func orderFor(tech string, customer, self float64) models.ServiceOrder {
	o := models.ServiceOrder{
		OrderNo:        "SO-" + tech,
		TechnicianID:   tech,
		TechnicianName: "Tech " + tech,
		Appliance:      "Refrigerator",
		CustomerRating: rating(customer),
		TechSelfRating: rating(self),
	}
	d := self - customer
	o.RatingDiscrepancy = &d
	return o
}

func TestRiskTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.RiskLevel
	}{
		{100, models.RiskLow},
		{80.0, models.RiskLow},
		{79.9, models.RiskMedium},
		{70.0, models.RiskMedium},
		{69.9, models.RiskHigh},
		{60.0, models.RiskHigh},
		{59.9, models.RiskCritical},
		{0, models.RiskCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, riskLevelFor(tc.score), "score %.1f", tc.score)
	}
}

func TestScoresAreBounded(t *testing.T) {
	src := &stubSource{
		orders: []models.ServiceOrder{
			orderFor("T1", 1, 5),
			orderFor("T1", 1, 5),
			{OrderNo: "SO-X", TechnicianID: "T1", ResponseTimeDays: 45, CycleTimeDays: 60},
		},
	}
	e := newTestEngine(src)

	in, err := e.AnalyzeTechnicianPerformance("T1")
	require.NoError(t, err)

	for name, score := range map[string]float64{
		"customer_satisfaction": in.CustomerSatisfactionScore,
		"efficiency":            in.EfficiencyScore,
		"technical_skill":       in.TechnicalSkillScore,
		"communication":         in.CommunicationScore,
		"overall":               in.OverallScore,
	} {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 100.0, name)
	}
}

func TestUnknownTechnicianIsNotFound(t *testing.T) {
	e := newTestEngine(&stubSource{
		techs: []models.Technician{{ID: "T1", Name: "Alex Chen"}},
	})

	_, err := e.AnalyzeTechnicianPerformance("T404")
	require.ErrorIs(t, err, ErrTechnicianNotFound)

	// A roster technician with zero orders is found, but empty.
	in, err := e.AnalyzeTechnicianPerformance("T1")
	require.NoError(t, err)
	assert.Zero(t, in.TotalOrders)
	assert.Equal(t, "Alex Chen", in.TechnicianName)
}

func TestRosterAggregatesPreferredOverOrderAverages(t *testing.T) {
	src := &stubSource{
		orders: []models.ServiceOrder{orderFor("T1", 2, 2)},
		techs: []models.Technician{{
			ID:             "T1",
			Name:           "Alex Chen",
			Attempts:       100,
			Completions:    92,
			CompletionRate: 92,
			CustomerRating: rating(4.5),
			TechRating:     rating(4.0),
		}},
	}
	e := newTestEngine(src)

	in, err := e.AnalyzeTechnicianPerformance("T1")
	require.NoError(t, err)
	assert.InDelta(t, 90.0, in.CustomerSatisfactionScore, 0.01, "roster customer rating 4.5 scales to 90")
	assert.InDelta(t, 92.0, in.EfficiencyScore, 0.01, "roster completion rate wins over response-time fallback")
	assert.InDelta(t, 80.0, in.TechnicalSkillScore, 0.01, "roster tech rating 4.0 scales to 80")
}

func TestStrengthsAndImprovementAreas(t *testing.T) {
	src := &stubSource{
		orders: []models.ServiceOrder{orderFor("T1", 4.8, 4.9)},
		techs: []models.Technician{{
			ID:             "T1",
			Attempts:       100,
			Completions:    95,
			CompletionRate: 95,
			CustomerRating: rating(4.8),
			TechRating:     rating(4.9),
		}},
	}
	e := newTestEngine(src)

	in, err := e.AnalyzeTechnicianPerformance("T1")
	require.NoError(t, err)
	assert.Contains(t, in.Strengths, "Consistently high customer satisfaction")
	assert.Contains(t, in.Strengths, "Accurate self-assessment")
	assert.Contains(t, in.Strengths, "Efficient diagnosis with minimal parts usage")
	assert.Empty(t, in.ImprovementAreas)

	weak := newTestEngine(&stubSource{
		orders: []models.ServiceOrder{
			func() models.ServiceOrder {
				o := orderFor("T2", 2, 5)
				o.PartsOrdered = true
				return o
			}(),
		},
	})
	in, err = weak.AnalyzeTechnicianPerformance("T2")
	require.NoError(t, err)
	assert.Contains(t, in.ImprovementAreas, "Customer interaction quality")
	assert.Contains(t, in.ImprovementAreas, "Self-assessment calibration")
	assert.Contains(t, in.ImprovementAreas, "Diagnostic accuracy before parts ordering")
}

func TestAnalyzeAllCoversRosterOnlyAndOrderOnlyTechnicians(t *testing.T) {
	src := &stubSource{
		orders: []models.ServiceOrder{orderFor("T9", 4, 4)},
		techs:  []models.Technician{{ID: "T1", Name: "Roster Only"}},
	}
	e := newTestEngine(src)

	insights := e.AnalyzeAll()
	require.Len(t, insights, 2)
	assert.Equal(t, "T1", insights[0].TechnicianID)
	assert.Equal(t, "T9", insights[1].TechnicianID)
}
