package analytics

import (
	"sort"
	"time"

	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

// Segment labels a customer's value tier.
type Segment string

const (
	SegmentVIP     Segment = "VIP"
	SegmentLoyal   Segment = "Loyal"
	SegmentRegular Segment = "Regular"
	SegmentNew     Segment = "New"
	SegmentAtRisk  Segment = "At Risk"
)

// String returns the string representation of Segment
func (s Segment) String() string {
	return string(s)
}

// SegmentRecord assigns one customer exactly one segment label.
type SegmentRecord struct {
	CustomerID string  `json:"customer_id"`
	Segment    Segment `json:"segment"`
}

// CustomerMetrics holds the per-customer aggregates the classifier
// evaluates.
type CustomerMetrics struct {
	Frequency             int
	TotalSpent            decimal.Decimal
	DaysSinceLastPurchase int
}

// SegmentThresholds configures the classification rule cutoffs.
type SegmentThresholds struct {
	VIPMinFrequency     int
	VIPMinSpent         decimal.Decimal
	LoyalMinFrequency   int
	LoyalMinSpent       decimal.Decimal
	RegularMinFrequency int
	RegularMinSpent     decimal.Decimal
	NewMaxRecencyDays   int
}

// DefaultSegmentThresholds returns the standard rule cutoffs.
func DefaultSegmentThresholds() SegmentThresholds {
	return SegmentThresholds{
		VIPMinFrequency:     10,
		VIPMinSpent:         decimal.NewFromInt(1000),
		LoyalMinFrequency:   5,
		LoyalMinSpent:       decimal.NewFromInt(500),
		RegularMinFrequency: 2,
		RegularMinSpent:     decimal.NewFromInt(200),
		NewMaxRecencyDays:   90,
	}
}

// ClassifySegment assigns a segment by an ordered rule chain; the first
// matching rule wins, which is the tie-break for overlapping rules.
// The function is total: every input maps to exactly one label.
func ClassifySegment(m CustomerMetrics, th SegmentThresholds) Segment {
	switch {
	case m.Frequency > th.VIPMinFrequency && m.TotalSpent.GreaterThan(th.VIPMinSpent):
		return SegmentVIP
	case m.Frequency > th.LoyalMinFrequency && m.TotalSpent.GreaterThan(th.LoyalMinSpent):
		return SegmentLoyal
	case m.Frequency > th.RegularMinFrequency && m.TotalSpent.GreaterThan(th.RegularMinSpent):
		return SegmentRegular
	case m.DaysSinceLastPurchase <= th.NewMaxRecencyDays:
		return SegmentNew
	default:
		return SegmentAtRisk
	}
}

// SegmentCustomers classifies every customer observed in the fact rows,
// ordered by customer ID.
func SegmentCustomers(facts []warehouse.SalesFact, analysisDate time.Time, th SegmentThresholds) ([]SegmentRecord, error) {
	metrics, err := collectCustomerMetrics(facts, analysisDate)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]SegmentRecord, len(ids))
	for i, id := range ids {
		records[i] = SegmentRecord{CustomerID: id, Segment: ClassifySegment(metrics[id], th)}
	}
	return records, nil
}

// collectCustomerMetrics derives the classifier inputs from fact rows.
func collectCustomerMetrics(facts []warehouse.SalesFact, analysisDate time.Time) (map[string]CustomerMetrics, error) {
	if len(facts) == 0 {
		return nil, warehouse.NewValidationError("segmentation", "empty fact batch")
	}

	type state struct {
		orders    map[string]struct{}
		spent     decimal.Decimal
		lastOrder time.Time
	}
	states := make(map[string]*state)
	for _, f := range facts {
		st, ok := states[f.CustomerID]
		if !ok {
			st = &state{orders: make(map[string]struct{})}
			states[f.CustomerID] = st
		}
		st.orders[f.OrderID] = struct{}{}
		st.spent = st.spent.Add(f.TotalAmount)
		if f.OrderDate.After(st.lastOrder) {
			st.lastOrder = f.OrderDate
		}
	}

	metrics := make(map[string]CustomerMetrics, len(states))
	for id, st := range states {
		metrics[id] = CustomerMetrics{
			Frequency:             len(st.orders),
			TotalSpent:            st.spent,
			DaysSinceLastPurchase: int(analysisDate.Sub(st.lastOrder).Hours() / 24),
		}
	}
	return metrics, nil
}
