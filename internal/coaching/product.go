package coaching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/utils"
)

// Estimated quality-signal constants. No source field measures first-time-fix,
// recall, or diagnostic accuracy directly; these proxies derive them from
// cycle time, profit, and customer-rating distributions. Outputs are estimates
// and documented as such on the model types.
const (
	ftfFastDays   = 3.0
	ftfMediumDays = 7.0
	ftfFastRate   = 92.0
	ftfMediumRate = 83.0
	ftfSlowRate   = 72.0

	recallBaseRate    = 8.0
	recallFloor       = 1.0
	recallRatingGood  = 4.0
	recallRatingGreat = 4.5
	recallProfitGood  = 75.0
	recallProfitGreat = 150.0

	diagBaseRate   = 85.0
	diagCap        = 98.0
	diagPartsBusy  = 50.0
	diagPartsSome  = 30.0
	diagCycleFast  = 5.0
	diagCycleBrisk = 8.0
)

// jobPatterns is the synthetic job-code taxonomy: five canned repair patterns
// per product type. Orders are mapped to a pattern by a stable hash of order
// attributes so the breakdown is reproducible across runs.
var jobPatterns = []string{
	"Compressor Replacement",
	"Control Board Diagnosis",
	"Seal & Gasket Repair",
	"Motor Assembly Service",
	"Sensor Calibration",
}

func jobPatternFor(o models.ServiceOrder) int {
	return utils.HashPick(o.OrderNo+"|"+o.Appliance, len(jobPatterns))
}

func jobCodeFor(appliance string, patternIdx int) string {
	return fmt.Sprintf("%s-%02d", applianceCode(appliance), patternIdx+1)
}

func applianceCode(appliance string) string {
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(appliance) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 3 {
			break
		}
	}
	if len(letters) == 0 {
		return "GEN"
	}
	return string(letters)
}

// productTypeBreakdown aggregates orders by appliance category. Works for one
// technician's orders or fleet-wide.
func productTypeBreakdown(orders []models.ServiceOrder) []models.ProductTypePerformance {
	byAppliance := map[string][]models.ServiceOrder{}
	for _, o := range orders {
		appliance := o.Appliance
		if appliance == "" {
			appliance = "Unknown"
		}
		byAppliance[appliance] = append(byAppliance[appliance], o)
	}

	out := make([]models.ProductTypePerformance, 0, len(byAppliance))
	for appliance, group := range byAppliance {
		out = append(out, buildProductType(appliance, group))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JobCount == out[j].JobCount {
			return out[i].Appliance < out[j].Appliance
		}
		return out[i].JobCount > out[j].JobCount
	})
	return out
}

func buildProductType(appliance string, orders []models.ServiceOrder) models.ProductTypePerformance {
	p := models.ProductTypePerformance{
		Appliance: appliance,
		JobCount:  len(orders),
	}

	agg := aggregate(orders)
	p.AvgCycleTimeDays = agg.avgCycle
	p.AvgResponseTimeDays = agg.avgResponse
	p.AvgRevenue = agg.avgRevenue
	p.AvgCustomerRating = agg.avgCustomer
	p.AvgSelfRating = agg.avgSelf
	p.PartsOrderRate = agg.partsRate

	p.FirstTimeFixRate = estimateFirstTimeFix(agg.avgCycle)
	p.RecallRate = estimateRecall(agg.avgCustomer, agg.avgProfit)
	p.DiagnosticAccuracy = estimateDiagnosticAccuracy(agg.partsRate, agg.avgCycle)

	p.JobCodes = jobCodeBreakdown(appliance, orders)
	return p
}

func jobCodeBreakdown(appliance string, orders []models.ServiceOrder) []models.JobCodePerformance {
	byPattern := map[int][]models.ServiceOrder{}
	for _, o := range orders {
		idx := jobPatternFor(o)
		byPattern[idx] = append(byPattern[idx], o)
	}

	out := make([]models.JobCodePerformance, 0, len(byPattern))
	for idx, group := range byPattern {
		agg := aggregate(group)
		out = append(out, models.JobCodePerformance{
			Code:             jobCodeFor(appliance, idx),
			Description:      jobPatterns[idx],
			JobCount:         len(group),
			AvgDurationDays:  agg.avgCycle,
			FirstTimeFixRate: estimateFirstTimeFix(agg.avgCycle),
			RecallRate:       estimateRecall(agg.avgCustomer, agg.avgProfit),
			AvgRevenue:       agg.avgRevenue,
			Profitability:    agg.avgProfit,
			Playbooks:        PlaybooksFor(jobPatterns[idx]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

type orderAggregate struct {
	avgCycle    float64
	avgResponse float64
	avgRevenue  float64
	avgProfit   float64
	partsRate   float64
	avgCustomer *float64
	avgSelf     *float64
}

func aggregate(orders []models.ServiceOrder) orderAggregate {
	if len(orders) == 0 {
		return orderAggregate{}
	}
	var cycle, resp, revenue, profit, cust, self float64
	var custN, selfN, partsN int
	for _, o := range orders {
		cycle += float64(o.CycleTimeDays)
		resp += float64(o.ResponseTimeDays)
		revenue += o.Revenue
		profit += o.Profit
		if o.CustomerRating != nil {
			cust += *o.CustomerRating
			custN++
		}
		if o.TechSelfRating != nil {
			self += *o.TechSelfRating
			selfN++
		}
		if o.PartsOrdered {
			partsN++
		}
	}
	n := float64(len(orders))
	agg := orderAggregate{
		avgCycle:    roundOne(cycle / n),
		avgResponse: roundOne(resp / n),
		avgRevenue:  roundOne(revenue / n),
		avgProfit:   roundOne(profit / n),
		partsRate:   roundOne(float64(partsN) / n * 100),
	}
	if custN > 0 {
		v := roundOne(cust / float64(custN))
		agg.avgCustomer = &v
	}
	if selfN > 0 {
		v := roundOne(self / float64(selfN))
		agg.avgSelf = &v
	}
	return agg
}

// estimateFirstTimeFix buckets average cycle time into three tiers: shorter
// cycles imply a higher probability the first visit fixed the issue.
func estimateFirstTimeFix(avgCycleDays float64) float64 {
	switch {
	case avgCycleDays < ftfFastDays:
		return ftfFastRate
	case avgCycleDays < ftfMediumDays:
		return ftfMediumRate
	default:
		return ftfSlowRate
	}
}

// estimateRecall starts at a base rate and subtracts fixed deltas for strong
// customer ratings and healthy profit, floored at 1%.
func estimateRecall(avgCustomerRating *float64, avgProfit float64) float64 {
	rate := recallBaseRate
	if avgCustomerRating != nil {
		switch {
		case *avgCustomerRating >= recallRatingGreat:
			rate -= 3
		case *avgCustomerRating >= recallRatingGood:
			rate -= 2
		}
	}
	switch {
	case avgProfit >= recallProfitGreat:
		rate -= 2
	case avgProfit >= recallProfitGood:
		rate -= 1
	}
	if rate < recallFloor {
		rate = recallFloor
	}
	return rate
}

// estimateDiagnosticAccuracy adds fixed deltas for a higher parts-order rate
// and shorter cycle time, capped at 98%.
func estimateDiagnosticAccuracy(partsRate, avgCycleDays float64) float64 {
	rate := diagBaseRate
	switch {
	case partsRate >= diagPartsBusy:
		rate += 5
	case partsRate >= diagPartsSome:
		rate += 3
	}
	switch {
	case avgCycleDays < diagCycleFast:
		rate += 5
	case avgCycleDays < diagCycleBrisk:
		rate += 2
	}
	if rate > diagCap {
		rate = diagCap
	}
	return rate
}
