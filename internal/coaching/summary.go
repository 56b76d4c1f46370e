package coaching

import (
	"sort"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

const topPerformerCount = 5

// Summary builds the fleet-wide rollup from the per-technician insights and
// their recommendations; no second pass over raw orders is needed for the
// counts.
func (e *Engine) Summary() models.CoachingSummary {
	insights := e.AnalyzeAll()

	summary := models.CoachingSummary{
		TechnicianCount: len(insights),
		ByPriority:      map[models.Priority]int{},
		ByRiskLevel:     map[models.RiskLevel]int{},
	}

	scores := make([]models.TechnicianScore, 0, len(insights))
	for _, in := range insights {
		summary.ByRiskLevel[in.RiskLevel]++
		for _, r := range e.GenerateCoachingRecommendations(in) {
			summary.ByPriority[r.Priority]++
			summary.RecommendationCount++
		}
		scores = append(scores, models.TechnicianScore{
			TechnicianID:   in.TechnicianID,
			TechnicianName: in.TechnicianName,
			OverallScore:   in.OverallScore,
			RiskLevel:      in.RiskLevel,
		})
	}

	top := make([]models.TechnicianScore, len(scores))
	copy(top, scores)
	sort.Slice(top, func(i, j int) bool {
		if top[i].OverallScore == top[j].OverallScore {
			return top[i].TechnicianID < top[j].TechnicianID
		}
		return top[i].OverallScore > top[j].OverallScore
	})
	if len(top) > topPerformerCount {
		top = top[:topPerformerCount]
	}
	summary.TopPerformers = top

	var atRisk []models.TechnicianScore
	for _, s := range scores {
		if s.RiskLevel == models.RiskHigh || s.RiskLevel == models.RiskCritical {
			atRisk = append(atRisk, s)
		}
	}
	sort.Slice(atRisk, func(i, j int) bool {
		if atRisk[i].OverallScore == atRisk[j].OverallScore {
			return atRisk[i].TechnicianID < atRisk[j].TechnicianID
		}
		return atRisk[i].OverallScore < atRisk[j].OverallScore
	})
	summary.AtRisk = atRisk

	summary.FleetProductTypes = productTypeBreakdown(e.source.ServiceOrders())
	return summary
}
