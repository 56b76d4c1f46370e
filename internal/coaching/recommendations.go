package coaching

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

// Trigger thresholds and targets for the recommendation rules. Confidence
// values are handcrafted per rule: they reflect how directly the underlying
// metric maps to the recommended action, not a computed statistic.
const (
	satisfactionTrigger  = 80.0
	satisfactionCritical = 60.0
	satisfactionTarget   = 85.0

	efficiencyTrigger  = 75.0
	efficiencyCritical = 60.0

	technicalTrigger  = 80.0
	technicalCritical = 65.0

	gapTrigger       = 0.8
	gapHighBand      = 1.5
	gapCriticalBand  = 2.0
	gapIntensiveBand = 2.5
)

// GenerateCoachingRecommendations evaluates the independent trigger rules in
// order and appends one recommendation per rule that fires. A technician may
// receive zero, one, or several.
func (e *Engine) GenerateCoachingRecommendations(in models.TechnicianInsight) []models.CoachingRecommendation {
	var out []models.CoachingRecommendation

	if in.CustomerSatisfactionScore < satisfactionTrigger {
		gap := clampGap(satisfactionTarget - in.CustomerSatisfactionScore)
		priority := models.PriorityHigh
		if in.CustomerSatisfactionScore < satisfactionCritical {
			priority = models.PriorityCritical
		}
		// Impact and due date scale linearly with the gap from target.
		dueDays := 21 - int(gap/5)
		if dueDays < 7 {
			dueDays = 7
		}
		out = append(out, e.rec(in, models.CoachingRecommendation{
			Type:     models.RecCustomerService,
			Priority: priority,
			Title:    "Customer Service Excellence",
			Description: "Customer satisfaction is trending below the fleet target. " +
				"Focus coaching on first-contact courtesy, status updates, and closing walkthroughs.",
			ActionItems: []string{
				"Shadow a top-rated technician on two service calls",
				"Call each customer with an arrival window the day before",
				"Walk the customer through the completed repair before leaving",
			},
			EstimatedImpact:     fmt.Sprintf("Up to %.0f-point lift in customer satisfaction", gap),
			TimeToCompleteHours: 8 + int(gap/10)*2,
			DueDate:             e.due(dueDays),
			PerformanceGap:      gap,
			Confidence:          0.85,
		}))
	}

	if in.EfficiencyScore < efficiencyTrigger {
		priority := models.PriorityMedium
		if in.EfficiencyScore < efficiencyCritical {
			priority = models.PriorityHigh
		}
		gap := clampGap(efficiencyTrigger - in.EfficiencyScore)
		out = append(out, e.rec(in, models.CoachingRecommendation{
			Type:     models.RecEfficiency,
			Priority: priority,
			Title:    "Time Management & Efficiency",
			Description: "Completion rate or response time lags the fleet baseline. " +
				"Review routing, pre-call triage, and truck stock for the most common job codes.",
			ActionItems: []string{
				"Review last month's response times against the planning-area baseline",
				"Pre-stage parts for the top three job codes before each route",
				"Confirm appliance model numbers during scheduling calls",
			},
			EstimatedImpact:     fmt.Sprintf("Up to %.0f-point lift in efficiency score", gap),
			TimeToCompleteHours: 12,
			DueDate:             e.due(21),
			PerformanceGap:      gap,
			Confidence:          0.75,
		}))
	}

	if in.TechnicalSkillScore < technicalTrigger {
		priority := models.PriorityMedium
		if in.TechnicalSkillScore < technicalCritical {
			priority = models.PriorityHigh
		}
		gap := clampGap(technicalTrigger - in.TechnicalSkillScore)
		out = append(out, e.rec(in, models.CoachingRecommendation{
			Type:     models.RecTechnical,
			Priority: priority,
			Title:    "Technical Skills Enhancement",
			Description: "Technical ratings are below target for the assigned product mix. " +
				"Pair refresher training with the repair playbooks for the weakest job codes.",
			ActionItems: []string{
				"Complete the diagnostic refresher for the lowest-rated product type",
				"Work the repair playbook checklist on the next five jobs",
				"Schedule a ride-along with a senior technician",
			},
			EstimatedImpact:     fmt.Sprintf("Up to %.0f-point lift in technical skill score", gap),
			TimeToCompleteHours: 16,
			DueDate:             e.due(30),
			PerformanceGap:      gap,
			Confidence:          0.8,
		}))
	}

	if in.AvgRatingDifference != nil {
		diff := *in.AvgRatingDifference
		absDiff := math.Abs(diff)

		if absDiff > gapTrigger {
			priority := models.PriorityMedium
			switch {
			case absDiff > gapCriticalBand:
				priority = models.PriorityCritical
			case absDiff > gapHighBand:
				priority = models.PriorityHigh
			}

			title := "Perception vs Reality Gap (Overconfidence)"
			description := "Self-ratings consistently exceed customer ratings. Coach on reading " +
				"customer signals and verifying satisfaction before closing the order."
			actions := []string{
				"Compare self-ratings with customer surveys on the last ten orders",
				"Ask the customer to confirm the fix before marking complete",
				"Debrief the three largest rating gaps with a coach",
			}
			if diff < 0 {
				title = "Perception vs Reality Gap (Confidence Building)"
				description = "Customer ratings consistently exceed self-ratings. Coach on " +
					"recognizing quality work and raising accurate self-assessment."
				actions = []string{
					"Review customer praise against the matching self-ratings",
					"List one thing done well on each order for two weeks",
					"Walk through strengths with a coach using recent surveys",
				}
			}

			out = append(out, e.rec(in, models.CoachingRecommendation{
				Type:                models.RecCommunication,
				Priority:            priority,
				Title:               title,
				Description:         description,
				ActionItems:         actions,
				EstimatedImpact:     "Closer self/customer rating alignment within one review cycle",
				TimeToCompleteHours: 10,
				DueDate:             e.due(14),
				PerformanceGap:      clampGap(absDiff * 20),
				Confidence:          0.7,
			}))
		}

		// Chronic severe misalignment gets the intensive intervention layered
		// on top of the standard one, not instead of it.
		if absDiff >= gapIntensiveBand {
			out = append(out, e.rec(in, models.CoachingRecommendation{
				Type:     models.RecCustomerService,
				Priority: models.PriorityCritical,
				Title:    "Intensive Customer Experience Realignment",
				Description: "Severe, sustained misalignment between self-perception and customer " +
					"perception. Requires a structured program with weekly coach checkpoints.",
				ActionItems: []string{
					"Enroll in the four-week customer experience program",
					"Weekly one-on-one review of every customer survey",
					"Supervised calls until the rating gap closes below one point",
				},
				EstimatedImpact:     "Restore customer trust and halve the rating gap within a month",
				TimeToCompleteHours: 40,
				DueDate:             e.due(30),
				PerformanceGap:      clampGap(absDiff * 20),
				Confidence:          0.9,
			}))
		}
	}

	return out
}

// GenerateForTechnician analyzes one technician and generates their
// recommendation list.
func (e *Engine) GenerateForTechnician(technicianID string) ([]models.CoachingRecommendation, error) {
	in, err := e.AnalyzeTechnicianPerformance(technicianID)
	if err != nil {
		return nil, err
	}
	return e.GenerateCoachingRecommendations(in), nil
}

// AllRecommendations generates the recommendation list for every technician
// in the current snapshot.
func (e *Engine) AllRecommendations() []models.CoachingRecommendation {
	var out []models.CoachingRecommendation
	for _, in := range e.AnalyzeAll() {
		out = append(out, e.GenerateCoachingRecommendations(in)...)
	}
	return out
}

// rec fills the lifecycle fields shared by every rule. IDs are deterministic
// v5 UUIDs over technician and title so a persisted status can re-attach to
// the recommendation on later runs.
func (e *Engine) rec(in models.TechnicianInsight, r models.CoachingRecommendation) models.CoachingRecommendation {
	r.ID = RecommendationID(in.TechnicianID, r.Title)
	r.TechnicianID = in.TechnicianID
	r.Status = models.StatusPending
	r.CreatedAt = e.now().UTC()
	return r
}

// RecommendationID derives the stable identifier for a technician/title pair.
func RecommendationID(technicianID, title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("coaching/"+technicianID+"/"+title)).String()
}

func (e *Engine) due(days int) time.Time {
	return e.now().UTC().AddDate(0, 0, days)
}

func clampGap(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return roundOne(v)
}
