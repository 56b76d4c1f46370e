package coaching

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

// ErrTechnicianNotFound distinguishes "no such technician" from "technician
// has zero orders". Compared with errors.Is at the call site.
var ErrTechnicianNotFound = errors.New("technician not found")

// DataSource is the slice of the unification layer the engine consumes.
type DataSource interface {
	ServiceOrders() []models.ServiceOrder
	Technicians() []models.Technician
	TechnicianByID(id string) (models.Technician, bool)
}

// Engine turns normalized orders into explainable performance insights and a
// prioritized coaching action list. Rule-based, not learned; every output is
// reproducible from the same snapshot.
type Engine struct {
	source DataSource
	logger zerolog.Logger
	now    func() time.Time
}

func NewEngine(source DataSource, logger zerolog.Logger) *Engine {
	return &Engine{source: source, logger: logger, now: time.Now}
}

// Score thresholds and targets for the insight computation. Sub-scores live
// on a 0-100 scale throughout.
const (
	riskLowFloor    = 80.0
	riskMediumFloor = 70.0
	riskHighFloor   = 60.0

	strengthFloor    = 85.0
	improvementCeil  = 70.0
	discrepancyTight = 0.5
	discrepancyWide  = 1.5
	partsRateLean    = 30.0
	partsRateHeavy   = 70.0

	// Baseline used when no roster completion data exists: a technician whose
	// average response time reaches this many days scores 0 on efficiency.
	responseBaselineDays = 10.0
)

// AnalyzeTechnicianPerformance computes the insight for one technician.
// Returns ErrTechnicianNotFound when the id appears neither in the roster nor
// on any order.
func (e *Engine) AnalyzeTechnicianPerformance(technicianID string) (models.TechnicianInsight, error) {
	var orders []models.ServiceOrder
	for _, o := range e.source.ServiceOrders() {
		if o.TechnicianID == technicianID {
			orders = append(orders, o)
		}
	}

	tech, inRoster := e.source.TechnicianByID(technicianID)
	if !inRoster && len(orders) == 0 {
		return models.TechnicianInsight{}, errors.Wrap(ErrTechnicianNotFound, technicianID)
	}

	var techPtr *models.Technician
	if inRoster {
		techPtr = &tech
	}
	return e.buildInsight(technicianID, techPtr, orders), nil
}

// AnalyzeAll groups every order by technician and computes one insight per
// technician, roster-only technicians included. Results are sorted by id.
func (e *Engine) AnalyzeAll() []models.TechnicianInsight {
	byTech := map[string][]models.ServiceOrder{}
	for _, o := range e.source.ServiceOrders() {
		byTech[o.TechnicianID] = append(byTech[o.TechnicianID], o)
	}

	seen := map[string]bool{}
	var out []models.TechnicianInsight
	for _, t := range e.source.Technicians() {
		tech := t
		out = append(out, e.buildInsight(t.ID, &tech, byTech[t.ID]))
		seen[t.ID] = true
	}
	for id, orders := range byTech {
		if seen[id] {
			continue
		}
		out = append(out, e.buildInsight(id, nil, orders))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TechnicianID < out[j].TechnicianID })
	return out
}

func (e *Engine) buildInsight(id string, tech *models.Technician, orders []models.ServiceOrder) models.TechnicianInsight {
	in := models.TechnicianInsight{
		TechnicianID: id,
		TotalOrders:  len(orders),
	}
	if tech != nil {
		in.TechnicianName = tech.Name
	} else if len(orders) > 0 {
		in.TechnicianName = orders[0].TechnicianName
	}

	var respSum, cycleSum, custSum, selfSum, diffSum, absDiffSum float64
	var custN, selfN, diffN, partsN int
	for _, o := range orders {
		if o.Completed() {
			in.CompletedOrders++
		}
		in.TotalRevenue += o.Revenue
		respSum += float64(o.ResponseTimeDays)
		cycleSum += float64(o.CycleTimeDays)
		if o.CustomerRating != nil {
			custSum += *o.CustomerRating
			custN++
		}
		if o.TechSelfRating != nil {
			selfSum += *o.TechSelfRating
			selfN++
		}
		if o.RatingDiscrepancy != nil {
			diffSum += *o.RatingDiscrepancy
			absDiffSum += math.Abs(*o.RatingDiscrepancy)
			diffN++
		}
		if o.PartsOrdered {
			partsN++
		}
	}
	if len(orders) > 0 {
		in.AvgResponseTimeDays = roundOne(respSum / float64(len(orders)))
		in.AvgCycleTimeDays = roundOne(cycleSum / float64(len(orders)))
		in.PartsOrderRate = roundOne(float64(partsN) / float64(len(orders)) * 100)
	}
	if custN > 0 {
		v := roundOne(custSum / float64(custN))
		in.AvgCustomerRating = &v
	}
	if selfN > 0 {
		v := roundOne(selfSum / float64(selfN))
		in.AvgSelfRating = &v
	}
	avgAbsDiff := 0.0
	if diffN > 0 {
		v := roundOne(diffSum / float64(diffN))
		in.AvgRatingDifference = &v
		avgAbsDiff = absDiffSum / float64(diffN)
	}

	in.CustomerSatisfactionScore = customerSatisfactionScore(tech, in.AvgCustomerRating)
	in.EfficiencyScore = efficiencyScore(tech, in.AvgResponseTimeDays)
	in.TechnicalSkillScore = technicalSkillScore(tech, in.AvgSelfRating)
	in.CommunicationScore = clampScore(100 - 20*avgAbsDiff)
	in.OverallScore = roundOne((in.CustomerSatisfactionScore + in.EfficiencyScore +
		in.TechnicalSkillScore + in.CommunicationScore) / 4)
	in.RiskLevel = riskLevelFor(in.OverallScore)

	in.Strengths, in.ImprovementAreas = assessQualities(in, avgAbsDiff, diffN > 0, len(orders) > 0)
	in.ProductTypes = productTypeBreakdown(orders)
	return in
}

// customerSatisfactionScore prefers the roster-level aggregate rating over the
// order-level average.
func customerSatisfactionScore(tech *models.Technician, orderAvg *float64) float64 {
	rating := 0.0
	switch {
	case tech != nil && tech.CustomerRating != nil:
		rating = *tech.CustomerRating
	case orderAvg != nil:
		rating = *orderAvg
	}
	return clampScore(rating / 5 * 100)
}

func efficiencyScore(tech *models.Technician, avgResponseDays float64) float64 {
	if tech != nil && tech.Attempts > 0 {
		return clampScore(tech.CompletionRate)
	}
	return clampScore(100 * (1 - avgResponseDays/responseBaselineDays))
}

func technicalSkillScore(tech *models.Technician, selfAvg *float64) float64 {
	rating := 0.0
	switch {
	case tech != nil && tech.TechRating != nil:
		rating = *tech.TechRating
	case selfAvg != nil:
		rating = *selfAvg
	}
	return clampScore(rating / 5 * 100)
}

// riskLevelFor is a total, ordered classification: every score maps to exactly
// one tier, inclusive on each tier's lower bound.
func riskLevelFor(score float64) models.RiskLevel {
	switch {
	case score >= riskLowFloor:
		return models.RiskLow
	case score >= riskMediumFloor:
		return models.RiskMedium
	case score >= riskHighFloor:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

func assessQualities(in models.TechnicianInsight, avgAbsDiff float64, hasDiff, hasOrders bool) (strengths, improvements []string) {
	grade := func(score float64, strength, improvement string) {
		switch {
		case score >= strengthFloor:
			strengths = append(strengths, strength)
		case score < improvementCeil:
			improvements = append(improvements, improvement)
		}
	}
	grade(in.CustomerSatisfactionScore, "Consistently high customer satisfaction", "Customer interaction quality")
	grade(in.EfficiencyScore, "Strong completion and response efficiency", "Response and completion speed")
	grade(in.TechnicalSkillScore, "Deep technical proficiency", "Core technical skills")
	grade(in.CommunicationScore, "Clear expectation setting with customers", "Customer expectation management")

	if hasDiff {
		if avgAbsDiff < discrepancyTight {
			strengths = append(strengths, "Accurate self-assessment")
		} else if avgAbsDiff > discrepancyWide {
			improvements = append(improvements, "Self-assessment calibration")
		}
	}
	if hasOrders {
		if in.PartsOrderRate < partsRateLean {
			strengths = append(strengths, "Efficient diagnosis with minimal parts usage")
		} else if in.PartsOrderRate > partsRateHeavy {
			improvements = append(improvements, "Diagnostic accuracy before parts ordering")
		}
	}
	return strengths, improvements
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return roundOne(v)
}

func roundOne(f float64) float64 {
	return math.Round(f*10) / 10
}
