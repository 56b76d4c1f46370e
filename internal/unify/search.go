package unify

import (
	"strconv"
	"strings"
	"time"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// RatingUnrated is the sentinel accepted by the rating filters, meaning the
// rating is absent on the order.
const RatingUnrated = "unrated"

// SearchParams are applied conjunctively, in field order. Pagination happens
// only after all filters.
type SearchParams struct {
	Search         string
	PlanningArea   string
	Technician     string
	CustomerRating string // numeric or "unrated"
	TechRating     string // numeric or "unrated"
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
}

type SearchResult struct {
	Orders        []models.ServiceOrder `json:"orders"`
	TotalCount    int                   `json:"total_count"`
	FilteredCount int                   `json:"filtered_count"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}

// SearchServiceOrders filters and paginates the cached order collection.
// Read-only and idempotent: two calls against an unchanged cache produce
// identical results. Nonsensical pagination bounds are clamped, not rejected.
func (s *Service) SearchServiceOrders(p SearchParams) SearchResult {
	snap := s.ensure()

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	filtered := make([]models.ServiceOrder, 0, len(snap.orders))
	for _, o := range snap.orders {
		if !matches(o, p) {
			continue
		}
		filtered = append(filtered, o)
	}

	page := []models.ServiceOrder{}
	if offset < len(filtered) {
		end := offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		page = append(page, filtered[offset:end]...)
	}

	return SearchResult{
		Orders:        page,
		TotalCount:    len(snap.orders),
		FilteredCount: len(filtered),
		Limit:         limit,
		Offset:        offset,
	}
}

func matches(o models.ServiceOrder, p SearchParams) bool {
	if q := strings.ToLower(strings.TrimSpace(p.Search)); q != "" {
		if !strings.Contains(strings.ToLower(o.OrderNo), q) &&
			!strings.Contains(strings.ToLower(o.CustomerName), q) &&
			!strings.Contains(strings.ToLower(o.TechnicianName), q) &&
			!strings.Contains(strings.ToLower(o.TechnicianID), q) {
			return false
		}
	}
	if p.PlanningArea != "" && !strings.EqualFold(o.PlanningArea, p.PlanningArea) {
		return false
	}
	if p.Technician != "" && o.TechnicianID != p.Technician {
		return false
	}
	if !matchRating(o.CustomerRating, p.CustomerRating) {
		return false
	}
	if !matchRating(o.TechSelfRating, p.TechRating) {
		return false
	}
	if p.DateFrom != nil && o.CompleteDate.Before(*p.DateFrom) {
		return false
	}
	if p.DateTo != nil && o.CompleteDate.After(*p.DateTo) {
		return false
	}
	return true
}

func matchRating(rating *float64, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	if strings.EqualFold(filter, RatingUnrated) {
		return rating == nil
	}
	want, err := strconv.ParseFloat(filter, 64)
	if err != nil {
		// Unusable filter value; availability over strictness.
		return true
	}
	return rating != nil && *rating == want
}
