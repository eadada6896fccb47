package analytics

import (
	"sort"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

// BasketPair reports how often two product categories co-occur in the
// same order. Category1 < Category2 always holds; the canonical ordering
// prevents counting a pair in both directions.
type BasketPair struct {
	Category1    string  `json:"category1"`
	Category2    string  `json:"category2"`
	PairCount    int     `json:"pair_count"`
	Support      float64 `json:"support"`
	Confidence12 float64 `json:"confidence_1_2"`
	Confidence21 float64 `json:"confidence_2_1"`
}

// BasketConfig holds the association thresholds.
type BasketConfig struct {
	MinSupport    float64
	MinConfidence float64
	// MaxCategoriesPerOrder bounds the quadratic pair enumeration;
	// orders with more distinct categories are skipped and counted in
	// the report.
	MaxCategoriesPerOrder int
}

// DefaultBasketConfig returns the standard association thresholds.
func DefaultBasketConfig() BasketConfig {
	return BasketConfig{
		MinSupport:            0.01,
		MinConfidence:         0.1,
		MaxCategoriesPerOrder: 50,
	}
}

// BasketReport summarizes a basket analysis run.
type BasketReport struct {
	TotalOrders    int
	SkippedOrders  int // orders over the category bound
	CandidatePairs int // pairs before threshold filtering
}

// AnalyzeBaskets computes category-pair co-occurrence over all orders in
// the fact rows. A pair is retained when its support reaches MinSupport
// and at least one direction's confidence reaches MinConfidence. Results
// are ordered by support descending, then by category names.
func AnalyzeBaskets(facts []warehouse.SalesFact, products []warehouse.ProductDim, cfg BasketConfig) ([]BasketPair, *BasketReport, error) {
	if len(facts) == 0 {
		return nil, nil, warehouse.NewValidationError("basket", "empty fact batch")
	}

	categoryByProduct := make(map[string]string, len(products))
	for _, p := range products {
		categoryByProduct[p.ProductID] = p.CategoryName
	}

	// Distinct categories per order. Facts with an unknown product or an
	// uncategorized product contribute nothing to pair enumeration but
	// their orders still count toward total support.
	categoriesByOrder := make(map[string]map[string]struct{})
	for _, f := range facts {
		set, ok := categoriesByOrder[f.OrderID]
		if !ok {
			set = make(map[string]struct{})
			categoriesByOrder[f.OrderID] = set
		}
		if cat := categoryByProduct[f.ProductID]; cat != "" {
			set[cat] = struct{}{}
		}
	}

	report := &BasketReport{TotalOrders: len(categoriesByOrder)}
	totalOrders := float64(report.TotalOrders)

	type pairKey struct{ c1, c2 string }
	pairCounts := make(map[pairKey]int)
	categoryCounts := make(map[string]int)

	for _, set := range categoriesByOrder {
		if cfg.MaxCategoriesPerOrder > 0 && len(set) > cfg.MaxCategoriesPerOrder {
			report.SkippedOrders++
			continue
		}
		cats := make([]string, 0, len(set))
		for c := range set {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		for _, c := range cats {
			categoryCounts[c]++
		}
		for i := 0; i < len(cats); i++ {
			for j := i + 1; j < len(cats); j++ {
				pairCounts[pairKey{c1: cats[i], c2: cats[j]}]++
			}
		}
	}
	report.CandidatePairs = len(pairCounts)

	pairs := make([]BasketPair, 0, len(pairCounts))
	for key, count := range pairCounts {
		c1Count := categoryCounts[key.c1]
		c2Count := categoryCounts[key.c2]
		if c1Count == 0 || c2Count == 0 {
			// Zero denominator; omit the pair instead of raising
			// mid-aggregation.
			continue
		}
		pair := BasketPair{
			Category1:    key.c1,
			Category2:    key.c2,
			PairCount:    count,
			Support:      float64(count) / totalOrders,
			Confidence12: float64(count) / float64(c1Count),
			Confidence21: float64(count) / float64(c2Count),
		}
		if pair.Support < cfg.MinSupport {
			continue
		}
		if pair.Confidence12 < cfg.MinConfidence && pair.Confidence21 < cfg.MinConfidence {
			continue
		}
		pairs = append(pairs, pair)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Support != pairs[j].Support {
			return pairs[i].Support > pairs[j].Support
		}
		if pairs[i].Category1 != pairs[j].Category1 {
			return pairs[i].Category1 < pairs[j].Category1
		}
		return pairs[i].Category2 < pairs[j].Category2
	})

	return pairs, report, nil
}
