package unify

import (
	"reflect"
	"testing"
	"time"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

func rating(v float64) *float64 { return &v }

func searchFixture() *Service {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	orders := []models.ServiceOrder{
		{OrderNo: "SO-1", CustomerName: "Jane Doe", TechnicianID: "T1", TechnicianName: "Alex Chen", PlanningArea: "Area 1", CompleteDate: day(1), CustomerRating: rating(4)},
		{OrderNo: "SO-2", CustomerName: "Bob Roe", TechnicianID: "T2", TechnicianName: "Sam Reyes", PlanningArea: "Area 2", CompleteDate: day(5), CustomerRating: nil},
		{OrderNo: "SO-3", CustomerName: "Ann Poe", TechnicianID: "T1", TechnicianName: "Alex Chen", PlanningArea: "Area 1", CompleteDate: day(10), CustomerRating: rating(2)},
		{OrderNo: "SO-4", CustomerName: "Cal Foe", TechnicianID: "T3", TechnicianName: "Kim Wu", PlanningArea: "Area 2", CompleteDate: day(15), CustomerRating: rating(5)},
	}
	return &Service{
		ttl: time.Hour,
		now: time.Now,
		snap: &snapshot{
			orders:   orders,
			loadedAt: time.Now(),
		},
	}
}

func TestSearchFreeTextMatchesTechnicianName(t *testing.T) {
	svc := searchFixture()
	res := svc.SearchServiceOrders(SearchParams{Search: "alex"})
	if res.FilteredCount != 2 {
		t.Fatalf("expected 2 matches for 'alex', got %d", res.FilteredCount)
	}
	if res.TotalCount != 4 {
		t.Fatalf("expected unfiltered total 4, got %d", res.TotalCount)
	}
}

func TestSearchFiltersAreConjunctive(t *testing.T) {
	svc := searchFixture()
	res := svc.SearchServiceOrders(SearchParams{PlanningArea: "Area 1", Technician: "T1", CustomerRating: "4"})
	if res.FilteredCount != 1 || res.Orders[0].OrderNo != "SO-1" {
		t.Fatalf("expected only SO-1, got %+v", res.Orders)
	}
}

func TestSearchUnratedSentinel(t *testing.T) {
	svc := searchFixture()
	res := svc.SearchServiceOrders(SearchParams{CustomerRating: "unrated"})
	if res.FilteredCount != 1 || res.Orders[0].OrderNo != "SO-2" {
		t.Fatalf("expected only the unrated order, got %+v", res.Orders)
	}
}

func TestSearchDateBoundsInclusive(t *testing.T) {
	svc := searchFixture()
	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	res := svc.SearchServiceOrders(SearchParams{DateFrom: &from, DateTo: &to})
	if res.FilteredCount != 2 {
		t.Fatalf("expected SO-2 and SO-3 inside the inclusive bounds, got %d", res.FilteredCount)
	}
}

func TestSearchPagination(t *testing.T) {
	svc := searchFixture()
	res := svc.SearchServiceOrders(SearchParams{Limit: 2, Offset: 0})
	if len(res.Orders) > 2 {
		t.Fatalf("page exceeds limit: %d", len(res.Orders))
	}
	if res.FilteredCount > res.TotalCount {
		t.Fatalf("filteredCount %d exceeds totalCount %d", res.FilteredCount, res.TotalCount)
	}

	second := svc.SearchServiceOrders(SearchParams{Limit: 2, Offset: 2})
	if len(second.Orders) != 2 {
		t.Fatalf("expected 2 orders on second page, got %d", len(second.Orders))
	}
	if second.Orders[0].OrderNo == res.Orders[0].OrderNo {
		t.Fatalf("offset not applied")
	}
}

func TestSearchClampsNonsensicalBounds(t *testing.T) {
	svc := searchFixture()
	res := svc.SearchServiceOrders(SearchParams{Limit: -5, Offset: -10})
	if res.Limit != DefaultPageSize || res.Offset != 0 {
		t.Fatalf("expected clamped defaults, got limit=%d offset=%d", res.Limit, res.Offset)
	}
	res = svc.SearchServiceOrders(SearchParams{Limit: 10000})
	if res.Limit != MaxPageSize {
		t.Fatalf("expected limit capped at %d, got %d", MaxPageSize, res.Limit)
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	svc := searchFixture()
	params := SearchParams{Search: "so-", Limit: 3}
	first := svc.SearchServiceOrders(params)
	second := svc.SearchServiceOrders(params)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical searches against an unchanged cache diverged")
	}
}
