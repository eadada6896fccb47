package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olist/olap-engine/internal/domain/warehouse"
)

func basketProducts() []warehouse.ProductDim {
	return []warehouse.ProductDim{
		{ProductID: "pa", CategoryName: "audio"},
		{ProductID: "pb", CategoryName: "books"},
		{ProductID: "pc", CategoryName: "computers"},
	}
}

func TestAnalyzeBaskets_SingleOrder(t *testing.T) {
	facts := []warehouse.SalesFact{
		testFact("o1", "c1", "pa", "s1", 1, 10),
		testFact("o1", "c1", "pb", "s1", 1, 10),
		testFact("o1", "c1", "pc", "s1", 1, 10),
	}

	pairs, report, err := AnalyzeBaskets(facts, basketProducts(), DefaultBasketConfig())
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	assert.Equal(t, 1, report.TotalOrders)
	assert.Equal(t, 3, report.CandidatePairs)

	for _, p := range pairs {
		assert.Less(t, p.Category1, p.Category2)
		assert.Equal(t, 1, p.PairCount)
		assert.InDelta(t, 1.0, p.Support, 1e-9)
		assert.InDelta(t, 1.0, p.Confidence12, 1e-9)
		assert.InDelta(t, 1.0, p.Confidence21, 1e-9)
	}
}

func TestAnalyzeBaskets_DuplicateCategoriesCountOnce(t *testing.T) {
	// Two audio products in the same order still yield one audio
	// occurrence and a single audio/books pair.
	facts := []warehouse.SalesFact{
		testFact("o1", "c1", "pa", "s1", 1, 10),
		testFact("o1", "c1", "pa", "s1", 1, 10),
		testFact("o1", "c1", "pb", "s1", 1, 10),
	}

	pairs, _, err := AnalyzeBaskets(facts, basketProducts(), DefaultBasketConfig())
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "audio", pairs[0].Category1)
	assert.Equal(t, "books", pairs[0].Category2)
	assert.Equal(t, 1, pairs[0].PairCount)
}

func TestAnalyzeBaskets_OneDirectionConfidenceKeepsPair(t *testing.T) {
	// audio appears in five orders, books in two, both together in two:
	// confidence audio->books is 0.4, books->audio is 1.0. The pair is
	// kept because one direction clears the cutoff.
	var facts []warehouse.SalesFact
	orders := []struct {
		id       string
		products []string
	}{
		{"o1", []string{"pa", "pb"}},
		{"o2", []string{"pa", "pb"}},
		{"o3", []string{"pa"}},
		{"o4", []string{"pa"}},
		{"o5", []string{"pa"}},
	}
	for _, o := range orders {
		for _, p := range o.products {
			facts = append(facts, testFact(o.id, "c1", p, "s1", 1, 10))
		}
	}

	cfg := BasketConfig{MinSupport: 0.1, MinConfidence: 0.5, MaxCategoriesPerOrder: 50}
	pairs, report, err := AnalyzeBaskets(facts, basketProducts(), cfg)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	p := pairs[0]
	assert.Equal(t, 2, p.PairCount)
	assert.InDelta(t, 0.4, p.Support, 1e-9)
	assert.InDelta(t, 0.4, p.Confidence12, 1e-9)
	assert.InDelta(t, 1.0, p.Confidence21, 1e-9)
	assert.Equal(t, 5, report.TotalOrders)
}

func TestAnalyzeBaskets_SupportFilter(t *testing.T) {
	facts := []warehouse.SalesFact{
		testFact("o1", "c1", "pa", "s1", 1, 10),
		testFact("o1", "c1", "pb", "s1", 1, 10),
		testFact("o2", "c2", "pc", "s1", 1, 10),
		testFact("o3", "c3", "pc", "s1", 1, 10),
		testFact("o4", "c4", "pc", "s1", 1, 10),
	}

	cfg := BasketConfig{MinSupport: 0.5, MinConfidence: 0.1, MaxCategoriesPerOrder: 50}
	pairs, report, err := AnalyzeBaskets(facts, basketProducts(), cfg)
	require.NoError(t, err)

	// audio/books co-occur in one of four orders: support 0.25 < 0.5.
	assert.Empty(t, pairs)
	assert.Equal(t, 1, report.CandidatePairs)
}

func TestAnalyzeBaskets_CategoryBound(t *testing.T) {
	facts := []warehouse.SalesFact{
		testFact("o1", "c1", "pa", "s1", 1, 10),
		testFact("o1", "c1", "pb", "s1", 1, 10),
		testFact("o1", "c1", "pc", "s1", 1, 10),
		testFact("o2", "c2", "pa", "s1", 1, 10),
		testFact("o2", "c2", "pb", "s1", 1, 10),
	}

	cfg := BasketConfig{MinSupport: 0.01, MinConfidence: 0.01, MaxCategoriesPerOrder: 2}
	pairs, report, err := AnalyzeBaskets(facts, basketProducts(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, report.SkippedOrders)
	require.Len(t, pairs, 1)
	assert.Equal(t, "audio", pairs[0].Category1)
	assert.Equal(t, "books", pairs[0].Category2)
}

func TestAnalyzeBaskets_EmptyBatch(t *testing.T) {
	_, _, err := AnalyzeBaskets(nil, basketProducts(), DefaultBasketConfig())
	var verr *warehouse.ValidationError
	require.ErrorAs(t, err, &verr)
}
