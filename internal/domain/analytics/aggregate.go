package analytics

import (
	"sort"
	"strings"

	"github.com/olist/olap-engine/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

// Aggregator names a supported aggregation function.
type Aggregator string

const (
	AggCount         Aggregator = "count"
	AggCountDistinct Aggregator = "count_distinct"
	AggSum           Aggregator = "sum"
	AggAvg           Aggregator = "avg"
)

// MeasureSpec describes one measure of a summary.
//
// Value supplies the fact's contribution and whether it should be
// included; excluded values (e.g. nil day-metrics) never reach the
// aggregator, so a ratio over an empty set is omitted rather than raised
// mid-aggregation. DistinctKey is consulted only by AggCountDistinct.
type MeasureSpec struct {
	Name        string
	Agg         Aggregator
	Value       func(f warehouse.SalesFact) (decimal.Decimal, bool)
	DistinctKey func(f warehouse.SalesFact) string
}

// GroupSpec describes the grouping keys of a summary.
type GroupSpec struct {
	KeyNames []string
	Keys     func(f warehouse.SalesFact) []string
}

// SummaryRow is one output row of an aggregation: the group-key values
// plus the computed measures. Measures whose input set was empty are
// absent from the map.
type SummaryRow struct {
	Keys     []string
	Measures map[string]decimal.Decimal
}

// Measure returns a measure value, or zero when it was omitted.
func (r SummaryRow) Measure(name string) decimal.Decimal {
	return r.Measures[name]
}

type groupState struct {
	keys     []string
	count    int64
	sums     map[string]decimal.Decimal
	counts   map[string]int64
	distinct map[string]map[string]struct{}
}

// Aggregate groups fact rows by the group-key fields and computes the
// requested measures. Output rows are ordered by sortMeasure descending,
// ties broken by natural group-key ordering; with an empty sortMeasure
// rows are ordered by group key ascending. Groups with no matching rows
// are never emitted.
func Aggregate(facts []warehouse.SalesFact, group GroupSpec, measures []MeasureSpec, sortMeasure string) []SummaryRow {
	groups := make(map[string]*groupState)
	var order []string

	for _, f := range facts {
		keys := group.Keys(f)
		id := strings.Join(keys, "\x1f")
		st, ok := groups[id]
		if !ok {
			st = &groupState{
				keys:     keys,
				sums:     make(map[string]decimal.Decimal),
				counts:   make(map[string]int64),
				distinct: make(map[string]map[string]struct{}),
			}
			groups[id] = st
			order = append(order, id)
		}
		st.count++
		for _, m := range measures {
			switch m.Agg {
			case AggCount:
				// group row count; handled via st.count
			case AggCountDistinct:
				set, ok := st.distinct[m.Name]
				if !ok {
					set = make(map[string]struct{})
					st.distinct[m.Name] = set
				}
				set[m.DistinctKey(f)] = struct{}{}
			case AggSum, AggAvg:
				v, include := m.Value(f)
				if !include {
					continue
				}
				st.sums[m.Name] = st.sums[m.Name].Add(v)
				st.counts[m.Name]++
			}
		}
	}

	rows := make([]SummaryRow, 0, len(groups))
	for _, id := range order {
		st := groups[id]
		row := SummaryRow{Keys: st.keys, Measures: make(map[string]decimal.Decimal, len(measures))}
		for _, m := range measures {
			switch m.Agg {
			case AggCount:
				row.Measures[m.Name] = decimal.NewFromInt(st.count)
			case AggCountDistinct:
				row.Measures[m.Name] = decimal.NewFromInt(int64(len(st.distinct[m.Name])))
			case AggSum:
				if st.counts[m.Name] > 0 {
					row.Measures[m.Name] = st.sums[m.Name]
				}
			case AggAvg:
				if n := st.counts[m.Name]; n > 0 {
					row.Measures[m.Name] = st.sums[m.Name].Div(decimal.NewFromInt(n))
				}
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if sortMeasure != "" {
			cmp := rows[i].Measure(sortMeasure).Cmp(rows[j].Measure(sortMeasure))
			if cmp != 0 {
				return cmp > 0
			}
		}
		return lessKeys(rows[i].Keys, rows[j].Keys)
	})

	return rows
}

// lessKeys compares group keys lexicographically, element by element.
func lessKeys(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
