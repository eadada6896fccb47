package warehouse

import (
	"math"
	"sort"
)

// QuantileMode selects how bin breakpoints are derived.
type QuantileMode string

const (
	// QuantileModeBatch re-derives breakpoints from the current batch on
	// every run. Category labels can therefore differ between runs with
	// different batch composition.
	QuantileModeBatch QuantileMode = "batch"
	// QuantileModeFixed uses externally supplied breakpoints, making
	// labels stable across runs.
	QuantileModeFixed QuantileMode = "fixed"
)

// IsValid checks if the mode is a known QuantileMode
func (m QuantileMode) IsValid() bool {
	return m == QuantileModeBatch || m == QuantileModeFixed
}

// QuantileBins bins values into labeled equal-population buckets.
// Breakpoints are computed once over the full batch; Label is a pure
// binary-search lookup, so the batch-relative step is isolated here.
type QuantileBins struct {
	breaks []float64
	labels []string
}

// NewQuantileBins derives breakpoints for len(labels) equal-population
// bins from the batch values.
//
// Fallback policy when the batch holds fewer distinct values than bins:
// breakpoints that collapse are deduplicated, leaving fewer bins, and the
// labels are re-picked from the original set by relative position: with
// two bins the first and last label survive, with one bin everything gets
// the middle label. The reduction is deterministic for a fixed batch.
func NewQuantileBins(values []float64, labels []string) (QuantileBins, error) {
	if len(values) == 0 {
		return QuantileBins{}, NewValidationError("quantile", "empty value batch")
	}
	if len(labels) < 2 {
		return QuantileBins{}, ErrInvalidBinLabels
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	bins := len(labels)
	breaks := make([]float64, 0, bins-1)
	for i := 1; i < bins; i++ {
		q := quantile(sorted, float64(i)/float64(bins))
		if len(breaks) == 0 || q > breaks[len(breaks)-1] {
			breaks = append(breaks, q)
		}
	}
	// Drop breakpoints at or beyond the maximum; they would leave the
	// last bin empty.
	maxVal := sorted[len(sorted)-1]
	for len(breaks) > 0 && breaks[len(breaks)-1] >= maxVal {
		breaks = breaks[:len(breaks)-1]
	}

	return QuantileBins{breaks: breaks, labels: reduceLabels(labels, len(breaks)+1)}, nil
}

// FixedBins builds bins from externally configured breakpoints.
// Breakpoints must be strictly ascending and one shorter than labels.
func FixedBins(breaks []float64, labels []string) (QuantileBins, error) {
	if len(labels) != len(breaks)+1 {
		return QuantileBins{}, ErrInvalidBinLabels
	}
	for i := 1; i < len(breaks); i++ {
		if breaks[i] <= breaks[i-1] {
			return QuantileBins{}, NewValidationError("quantile", "fixed breakpoints must be strictly ascending")
		}
	}
	return QuantileBins{breaks: breaks, labels: labels}, nil
}

// Bins returns the effective number of bins after any fallback reduction.
func (b QuantileBins) Bins() int {
	return len(b.labels)
}

// BinIndex returns the zero-based bin a value falls into.
func (b QuantileBins) BinIndex(v float64) int {
	return sort.SearchFloat64s(b.breaks, v)
}

// Label returns the bin label for a value.
func (b QuantileBins) Label(v float64) string {
	return b.labels[b.BinIndex(v)]
}

// Score maps a value onto an ascending 1..maxScore scale by bin position.
// With the full bin count this is simply bin+1; with reduced bins the
// positions are spread across the scale so downstream consumers always
// see scores in [1, maxScore].
func (b QuantileBins) Score(v float64, maxScore int) int {
	k := len(b.labels)
	if k == 1 {
		return (maxScore + 1) / 2
	}
	idx := b.BinIndex(v)
	scaled := 1 + float64(idx)*float64(maxScore-1)/float64(k-1)
	return int(math.Round(scaled))
}

// quantile computes the q-th quantile of sorted values with linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// reduceLabels picks n labels from the original set by relative position.
func reduceLabels(labels []string, n int) []string {
	k := len(labels)
	if n >= k {
		return labels
	}
	if n == 1 {
		return []string{labels[k/2]}
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		pos := float64(i) * float64(k-1) / float64(n-1)
		out[i] = labels[int(math.Round(pos))]
	}
	return out
}
