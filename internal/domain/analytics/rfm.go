package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

// RFMRecord scores one customer by recency, frequency and monetary value.
// Scores are quintile positions in 1..5; RFMScore is the concatenation,
// "555" being the best possible customer.
type RFMRecord struct {
	CustomerID  string          `json:"customer_id"`
	RecencyDays int             `json:"recency"`
	Frequency   int             `json:"frequency"`
	Monetary    decimal.Decimal `json:"monetary"`
	RScore      int             `json:"r_score"`
	FScore      int             `json:"f_score"`
	MScore      int             `json:"m_score"`
	RFMScore    string          `json:"rfm_score"`
}

// ScoreRFM computes one RFM record per customer observed in the fact
// rows. Recency is days between the customer's latest order date and
// analysisDate; frequency counts distinct orders; monetary sums
// total_amount.
//
// Quintile breakpoints need five distinct values per metric. When the
// population cannot support that, the bins reduce deterministically and
// positions are rescaled onto 1..5 (see warehouse.QuantileBins.Score),
// so score characters always stay in '1'..'5'.
func ScoreRFM(facts []warehouse.SalesFact, analysisDate time.Time) ([]RFMRecord, error) {
	if len(facts) == 0 {
		return nil, warehouse.NewValidationError("rfm", "empty fact batch")
	}

	type metrics struct {
		lastOrder time.Time
		orders    map[string]struct{}
		monetary  decimal.Decimal
	}
	byCustomer := make(map[string]*metrics)
	for _, f := range facts {
		m, ok := byCustomer[f.CustomerID]
		if !ok {
			m = &metrics{orders: make(map[string]struct{})}
			byCustomer[f.CustomerID] = m
		}
		if f.OrderDate.After(m.lastOrder) {
			m.lastOrder = f.OrderDate
		}
		m.orders[f.OrderID] = struct{}{}
		m.monetary = m.monetary.Add(f.TotalAmount)
	}

	records := make([]RFMRecord, 0, len(byCustomer))
	for id, m := range byCustomer {
		records = append(records, RFMRecord{
			CustomerID:  id,
			RecencyDays: int(math.Floor(analysisDate.Sub(m.lastOrder).Hours() / 24)),
			Frequency:   len(m.orders),
			Monetary:    m.monetary,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CustomerID < records[j].CustomerID })

	recency := make([]float64, len(records))
	frequency := make([]float64, len(records))
	monetary := make([]float64, len(records))
	for i, r := range records {
		recency[i] = float64(r.RecencyDays)
		frequency[i] = float64(r.Frequency)
		monetary[i] = r.Monetary.InexactFloat64()
	}

	rBins, err := quintiles(recency)
	if err != nil {
		return nil, err
	}
	fBins, err := quintiles(frequency)
	if err != nil {
		return nil, err
	}
	mBins, err := quintiles(monetary)
	if err != nil {
		return nil, err
	}

	for i := range records {
		// Recency is inverted: the most recent customers score highest.
		records[i].RScore = 6 - rBins.Score(recency[i], 5)
		records[i].FScore = fBins.Score(frequency[i], 5)
		records[i].MScore = mBins.Score(monetary[i], 5)
		records[i].RFMScore = fmt.Sprintf("%d%d%d", records[i].RScore, records[i].FScore, records[i].MScore)
	}

	return records, nil
}

var quintileLabels = []string{"1", "2", "3", "4", "5"}

func quintiles(values []float64) (warehouse.QuantileBins, error) {
	return warehouse.NewQuantileBins(values, quintileLabels)
}
