package models

import "time"

// Quality flags attached to normalized orders. Consumers use these to tell
// parsed-but-suspect values apart from trustworthy ones.
const (
	FlagBadCreateDate         = "bad_create_date"
	FlagBadScheduleDate       = "bad_schedule_date"
	FlagBadCompleteDate       = "bad_complete_date"
	FlagScheduleAfterComplete = "schedule_after_complete"
	FlagSyntheticRating       = "synthetic_rating"
	FlagUnknownTechnician     = "unknown_technician"
)

// ServiceOrder is the canonical unit of work after unification. Raw export
// sentinels ("-" ratings, mixed date formats) never survive into this type.
type ServiceOrder struct {
	OrderNo        string `json:"order_no"`
	ServiceUnitNo  string `json:"service_unit_no"`
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	RepairType     string `json:"repair_type"`
	Appliance      string `json:"appliance"`
	PlanningArea   string `json:"planning_area"`
	District       string `json:"district"`
	TechnicianID   string `json:"technician_id"`
	TechnicianName string `json:"technician_name"`

	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`

	CreateDate   time.Time `json:"create_date"`
	ScheduleDate time.Time `json:"schedule_date"`
	CompleteDate time.Time `json:"complete_date"`

	ResponseTimeDays int `json:"response_time_days"`
	CycleTimeDays    int `json:"cycle_time_days"`

	CustomerRating    *float64 `json:"customer_rating"`
	TechSelfRating    *float64 `json:"tech_self_rating"`
	RatingDiscrepancy *float64 `json:"rating_discrepancy"`

	PartsOrdered      bool `json:"parts_ordered"`
	PartsDeliveryDays *int `json:"parts_delivery_days"`

	QualityFlags []string `json:"quality_flags,omitempty"`
}

func (o ServiceOrder) HasFlag(flag string) bool {
	for _, f := range o.QualityFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// Completed reports whether the order carries a trustworthy completion date.
func (o ServiceOrder) Completed() bool {
	return !o.CompleteDate.IsZero() && !o.HasFlag(FlagBadCompleteDate)
}

// Technician is one roster row with rolling performance counters.
type Technician struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	District     string `json:"district"`
	PlanningArea string `json:"planning_area"`
	Status       string `json:"status"`

	HireDate        *time.Time `json:"hire_date"`
	TerminationDate *time.Time `json:"termination_date"`

	Attempts          int     `json:"attempts"`
	Completions       int     `json:"completions"`
	CompletionRate    float64 `json:"completion_rate"`
	Revenue           float64 `json:"revenue"`
	RevenuePerAttempt float64 `json:"revenue_per_attempt"`

	TechRating     *float64 `json:"tech_rating"`
	CustomerRating *float64 `json:"customer_rating"`
	RatingCount    int      `json:"rating_count"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// TechnicianInsight is the per-technician analytics output. All sub-scores and
// OverallScore are bounded to [0, 100].
type TechnicianInsight struct {
	TechnicianID   string `json:"technician_id"`
	TechnicianName string `json:"technician_name"`

	TotalOrders     int     `json:"total_orders"`
	CompletedOrders int     `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`

	AvgResponseTimeDays float64  `json:"avg_response_time_days"`
	AvgCycleTimeDays    float64  `json:"avg_cycle_time_days"`
	AvgCustomerRating   *float64 `json:"avg_customer_rating"`
	AvgSelfRating       *float64 `json:"avg_self_rating"`

	// AvgRatingDifference is the signed mean of per-order discrepancies
	// (self minus customer); nil when no order had both ratings.
	AvgRatingDifference *float64 `json:"avg_rating_difference"`

	PartsOrderRate float64 `json:"parts_order_rate"`

	CustomerSatisfactionScore float64 `json:"customer_satisfaction_score"`
	EfficiencyScore           float64 `json:"efficiency_score"`
	TechnicalSkillScore       float64 `json:"technical_skill_score"`
	CommunicationScore        float64 `json:"communication_score"`
	OverallScore              float64 `json:"overall_score"`

	RiskLevel        RiskLevel `json:"risk_level"`
	Strengths        []string  `json:"strengths"`
	ImprovementAreas []string  `json:"improvement_areas"`

	ProductTypes []ProductTypePerformance `json:"product_types"`
}

// ProductTypePerformance aggregates orders sharing an appliance category.
// FirstTimeFixRate, RecallRate and DiagnosticAccuracy are estimates inferred
// from cycle time, profit and rating patterns; no source field measures them
// directly.
type ProductTypePerformance struct {
	Appliance string `json:"appliance"`
	JobCount  int    `json:"job_count"`

	AvgCycleTimeDays    float64  `json:"avg_cycle_time_days"`
	AvgResponseTimeDays float64  `json:"avg_response_time_days"`
	AvgRevenue          float64  `json:"avg_revenue"`
	AvgCustomerRating   *float64 `json:"avg_customer_rating"`
	AvgSelfRating       *float64 `json:"avg_self_rating"`

	FirstTimeFixRate   float64 `json:"first_time_fix_rate"`
	RecallRate         float64 `json:"recall_rate"`
	DiagnosticAccuracy float64 `json:"diagnostic_accuracy"`
	PartsOrderRate     float64 `json:"parts_order_rate"`

	JobCodes []JobCodePerformance `json:"job_codes"`
}

// JobCodePerformance aggregates orders mapped to one repair pattern within a
// product type. The job-code taxonomy is synthetic: assignment is a
// deterministic hash of order attributes, reproducible across runs.
type JobCodePerformance struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	JobCount    int    `json:"job_count"`

	AvgDurationDays  float64 `json:"avg_duration_days"`
	FirstTimeFixRate float64 `json:"first_time_fix_rate"`
	RecallRate       float64 `json:"recall_rate"`
	AvgRevenue       float64 `json:"avg_revenue"`
	Profitability    float64 `json:"profitability"`

	Playbooks []MagikButtonRecommendation `json:"playbooks"`
}

// MagikButtonRecommendation is a prescriptive repair playbook surfaced to
// technicians at the point of work.
type MagikButtonRecommendation struct {
	Title          string   `json:"title" yaml:"title"`
	Steps          []string `json:"steps" yaml:"steps"`
	WarningSignals []string `json:"warning_signals" yaml:"warning_signals"`
	CommonMistakes []string `json:"common_mistakes" yaml:"common_mistakes"`
}

type RecommendationType string

const (
	RecTechnical       RecommendationType = "technical"
	RecCustomerService RecommendationType = "customer_service"
	RecEfficiency      RecommendationType = "efficiency"
	RecSafety          RecommendationType = "safety"
	RecCommunication   RecommendationType = "communication"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type RecommendationStatus string

const (
	StatusPending    RecommendationStatus = "pending"
	StatusInProgress RecommendationStatus = "in_progress"
	StatusCompleted  RecommendationStatus = "completed"
	StatusDismissed  RecommendationStatus = "dismissed"
)

// CanTransition reports whether a recommendation status change is allowed:
// pending -> in_progress -> completed|dismissed. Dismissal is also allowed
// straight from pending.
func CanTransition(from, to RecommendationStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusInProgress || to == StatusDismissed
	case StatusInProgress:
		return to == StatusCompleted || to == StatusDismissed
	default:
		return false
	}
}

type CoachingRecommendation struct {
	ID           string             `json:"id"`
	TechnicianID string             `json:"technician_id"`
	Type         RecommendationType `json:"type"`
	Priority     Priority           `json:"priority"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	ActionItems []string `json:"action_items"`

	EstimatedImpact     string    `json:"estimated_impact"`
	TimeToCompleteHours int       `json:"time_to_complete_hours"`
	DueDate             time.Time `json:"due_date"`

	PerformanceGap float64 `json:"performance_gap"`
	Confidence     float64 `json:"confidence"`

	Status    RecommendationStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// TechnicianScore is the compact form used in fleet rollups.
type TechnicianScore struct {
	TechnicianID   string    `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	OverallScore   float64   `json:"overall_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
}

// CoachingSummary is the fleet-wide rollup, derived purely from already
// computed per-technician insights.
type CoachingSummary struct {
	TechnicianCount     int                      `json:"technician_count"`
	RecommendationCount int                      `json:"recommendation_count"`
	ByPriority          map[Priority]int         `json:"by_priority"`
	ByRiskLevel         map[RiskLevel]int        `json:"by_risk_level"`
	TopPerformers       []TechnicianScore        `json:"top_performers"`
	AtRisk              []TechnicianScore        `json:"at_risk"`
	FleetProductTypes   []ProductTypePerformance `json:"fleet_product_types,omitempty"`
}
