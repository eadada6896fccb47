package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

func TestClassifySegment(t *testing.T) {
	th := DefaultSegmentThresholds()

	tests := []struct {
		name    string
		metrics CustomerMetrics
		want    Segment
	}{
		{
			name:    "vip",
			metrics: CustomerMetrics{Frequency: 12, TotalSpent: decimal.NewFromInt(1500), DaysSinceLastPurchase: 10},
			want:    SegmentVIP,
		},
		{
			name:    "loyal",
			metrics: CustomerMetrics{Frequency: 6, TotalSpent: decimal.NewFromInt(600), DaysSinceLastPurchase: 30},
			want:    SegmentLoyal,
		},
		{
			name:    "regular",
			metrics: CustomerMetrics{Frequency: 3, TotalSpent: decimal.NewFromInt(250), DaysSinceLastPurchase: 120},
			want:    SegmentRegular,
		},
		{
			name: "recent low spender is new",
			// Two orders fail the regular frequency cutoff; recency catches it.
			metrics: CustomerMetrics{Frequency: 2, TotalSpent: decimal.NewFromInt(250), DaysSinceLastPurchase: 5},
			want:    SegmentNew,
		},
		{
			name:    "stale low spender is at risk",
			metrics: CustomerMetrics{Frequency: 1, TotalSpent: decimal.NewFromInt(50), DaysSinceLastPurchase: 200},
			want:    SegmentAtRisk,
		},
		{
			name: "vip wins over new",
			// A recent heavy buyer matches both rules; the earlier one wins.
			metrics: CustomerMetrics{Frequency: 11, TotalSpent: decimal.NewFromInt(2000), DaysSinceLastPurchase: 1},
			want:    SegmentVIP,
		},
		{
			name: "frequency alone is not enough",
			metrics: CustomerMetrics{Frequency: 20, TotalSpent: decimal.NewFromInt(100), DaysSinceLastPurchase: 10},
			want:    SegmentNew,
		},
		{
			name: "vip cutoffs are strict",
			// Exactly at the VIP thresholds falls through to loyal.
			metrics: CustomerMetrics{Frequency: 10, TotalSpent: decimal.NewFromInt(1000), DaysSinceLastPurchase: 120},
			want:    SegmentLoyal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySegment(tt.metrics, th))
		})
	}
}

func TestSegmentCustomers(t *testing.T) {
	analysisDate := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	var facts []warehouse.SalesFact
	// c1: two orders totalling 250, five days before the analysis date.
	facts = append(facts,
		testFact("c1-o1", "c1", "p1", "s1", 26, 100),
		testFact("c1-o2", "c1", "p1", "s1", 26, 150),
	)
	// c2: twelve orders of 150 each.
	for o := 1; o <= 12; o++ {
		facts = append(facts, testFact(fmt.Sprintf("c2-o%d", o), "c2", "p1", "s1", 20, 150))
	}
	// c3: one old order (January, far beyond the recency window).
	old := testFact("c3-o1", "c3", "p1", "s1", 1, 50)
	old.OrderDate = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	facts = append(facts, old)

	records, err := SegmentCustomers(facts, analysisDate, DefaultSegmentThresholds())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "c1", records[0].CustomerID)
	assert.Equal(t, SegmentNew, records[0].Segment)
	assert.Equal(t, SegmentVIP, records[1].Segment)
	assert.Equal(t, SegmentAtRisk, records[2].Segment)
}

func TestSegmentCustomers_Deterministic(t *testing.T) {
	analysisDate := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	facts := []warehouse.SalesFact{
		testFact("o1", "c2", "p1", "s1", 10, 100),
		testFact("o2", "c1", "p1", "s1", 11, 100),
		testFact("o3", "c3", "p1", "s1", 12, 100),
	}

	first, err := SegmentCustomers(facts, analysisDate, DefaultSegmentThresholds())
	require.NoError(t, err)
	second, err := SegmentCustomers(facts, analysisDate, DefaultSegmentThresholds())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].CustomerID, first[i].CustomerID)
	}
}

func TestSegmentCustomers_EmptyBatch(t *testing.T) {
	_, err := SegmentCustomers(nil, time.Now(), DefaultSegmentThresholds())
	var verr *warehouse.ValidationError
	require.ErrorAs(t, err, &verr)
}
