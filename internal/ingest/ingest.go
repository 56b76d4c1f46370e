package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// RawOrderRecord is one untyped row from the service-order export. All fields
// are strings exactly as they appear in the source; normalization happens in
// the unify package.
type RawOrderRecord struct {
	OrderNo           string
	ServiceUnitNo     string
	CustomerID        string
	CustomerName      string
	RepairType        string
	Appliance         string
	PlanningArea      string
	District          string
	TechnicianID      string
	Revenue           string
	Profit            string
	CreateDate        string
	ScheduleDate      string
	CompleteDate      string
	CustomerRating    string
	TechRating        string
	PartsOrdered      string
	PartsDeliveryDays string
}

// RawTechnicianRecord is one untyped row from the technician roster export.
type RawTechnicianRecord struct {
	ID              string
	Name            string
	District        string
	PlanningArea    string
	Status          string
	HireDate        string
	TerminationDate string
	Attempts        string
	Completions     string
	Revenue         string
	TechRating      string
	CustomerRating  string
	RatingCount     string
}

// Loader reads the two tabular exports from a configured directory. A missing
// file degrades to an empty record set; a malformed row is skipped and the
// batch continues.
type Loader struct {
	Dir        string
	OrdersFile string
	RosterFile string
	Logger     zerolog.Logger
}

func (l *Loader) Orders() []RawOrderRecord {
	f, ok := l.open(l.OrdersFile)
	if !ok {
		return nil
	}
	defer f.Close()

	records, skipped := parseOrdersCSV(f)
	if skipped > 0 {
		l.Logger.Warn().Int("skipped", skipped).Str("file", l.OrdersFile).Msg("skipped malformed order rows")
	}
	return records
}

func (l *Loader) Roster() []RawTechnicianRecord {
	f, ok := l.open(l.RosterFile)
	if !ok {
		return nil
	}
	defer f.Close()

	records, skipped := parseRosterCSV(f)
	if skipped > 0 {
		l.Logger.Warn().Int("skipped", skipped).Str("file", l.RosterFile).Msg("skipped malformed roster rows")
	}
	return records
}

func (l *Loader) open(name string) (*os.File, bool) {
	path := filepath.Join(l.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.Logger.Warn().Str("path", path).Msg("source file absent, returning empty dataset")
		} else {
			l.Logger.Error().Err(errors.Wrapf(err, "open %s", path)).Msg("source file unreadable, returning empty dataset")
		}
		return nil, false
	}
	return f, true
}

func parseOrdersCSV(r io.Reader) ([]RawOrderRecord, int) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, 0
	}
	index := headerIndex(headers)

	var out []RawOrderRecord
	skipped := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		orderNo := getFieldAny(rec, index, "order_no", "order no", "order number", "so_no", "so no")
		if orderNo == "" {
			skipped++
			continue
		}

		out = append(out, RawOrderRecord{
			OrderNo:           orderNo,
			ServiceUnitNo:     getFieldAny(rec, index, "service_unit_no", "service unit no", "unit_no", "unit no"),
			CustomerID:        getFieldAny(rec, index, "customer_id", "customer id", "cust_id"),
			CustomerName:      getFieldAny(rec, index, "customer_name", "customer name", "customer"),
			RepairType:        getFieldAny(rec, index, "repair_type", "repair type", "call_type", "call type"),
			Appliance:         getFieldAny(rec, index, "appliance", "product", "product_type", "product type", "merchandise"),
			PlanningArea:      getFieldAny(rec, index, "planning_area", "planning area", "area"),
			District:          getFieldAny(rec, index, "district"),
			TechnicianID:      getFieldAny(rec, index, "technician_id", "technician id", "tech_id", "tech id", "technician"),
			Revenue:           getFieldAny(rec, index, "revenue", "total_revenue", "total revenue"),
			Profit:            getFieldAny(rec, index, "profit", "gross_profit", "gross profit"),
			CreateDate:        getFieldAny(rec, index, "create_date", "create date", "created", "so_create_date"),
			ScheduleDate:      getFieldAny(rec, index, "schedule_date", "schedule date", "scheduled", "first_schedule_date"),
			CompleteDate:      getFieldAny(rec, index, "complete_date", "complete date", "completed", "completion_date"),
			CustomerRating:    getFieldAny(rec, index, "customer_rating", "customer rating", "csat", "survey_rating"),
			TechRating:        getFieldAny(rec, index, "tech_rating", "tech rating", "tech_self_rating", "self_rating", "self rating"),
			PartsOrdered:      getFieldAny(rec, index, "parts_ordered", "parts ordered", "parts"),
			PartsDeliveryDays: getFieldAny(rec, index, "parts_delivery_days", "parts delivery days", "parts_delivery_time"),
		})
	}
	return out, skipped
}

func parseRosterCSV(r io.Reader) ([]RawTechnicianRecord, int) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, 0
	}
	index := headerIndex(headers)

	var out []RawTechnicianRecord
	skipped := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		id := getFieldAny(rec, index, "technician_id", "technician id", "tech_id", "tech id", "id", "employee_id")
		if id == "" {
			skipped++
			continue
		}

		out = append(out, RawTechnicianRecord{
			ID:              id,
			Name:            getFieldAny(rec, index, "name", "technician_name", "technician name", "full_name"),
			District:        getFieldAny(rec, index, "district"),
			PlanningArea:    getFieldAny(rec, index, "planning_area", "planning area", "area"),
			Status:          getFieldAny(rec, index, "status", "employment_status", "employment status"),
			HireDate:        getFieldAny(rec, index, "hire_date", "hire date", "hired"),
			TerminationDate: getFieldAny(rec, index, "termination_date", "termination date", "terminated"),
			Attempts:        getFieldAny(rec, index, "attempts", "total_attempts", "total attempts"),
			Completions:     getFieldAny(rec, index, "completions", "total_completes", "total completes"),
			Revenue:         getFieldAny(rec, index, "revenue", "total_revenue", "total revenue"),
			TechRating:      getFieldAny(rec, index, "tech_rating", "tech rating", "self_rating"),
			CustomerRating:  getFieldAny(rec, index, "customer_rating", "customer rating", "csat"),
			RatingCount:     getFieldAny(rec, index, "rating_count", "rating count", "surveys"),
		})
	}
	return out, skipped
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}
