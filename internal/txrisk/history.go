package txrisk

import (
	"math"

	"github.com/mikey/upi-risk-engine/internal/core"
)

// amountAnomaly is |amount-mean|/stddev over past amounts, scaled by 1/6 and
// capped at 1. It needs at least two past amounts; otherwise it returns the
// moderate default and ok=false.
func amountAnomaly(amount float64, history []core.Transaction) (anomaly, mean float64, ok bool) {
	amounts := make([]float64, 0, len(history))
	for _, h := range history {
		if h.Amount > 0 && !math.IsInf(h.Amount, 0) && !math.IsNaN(h.Amount) {
			amounts = append(amounts, h.Amount)
		}
	}
	if len(amounts) < 2 {
		return defaultModerate, 0, false
	}

	for _, a := range amounts {
		mean += a
	}
	mean /= float64(len(amounts))

	var variance float64
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	stddev := math.Sqrt(variance / float64(len(amounts)-1))
	if stddev == 0 {
		stddev = max(0.1*mean, 1)
	}

	z := math.Abs(amount-mean) / stddev
	return min(z/6, 1), mean, true
}

// temporalAnomaly is 1 - min(10*P(hour), 1) where P is the share of past
// transactions made in the same hour of day. Hours are read in the zone of
// the scored transaction so history serialised in UTC buckets the same way.
func temporalAnomaly(tx core.Transaction, history []core.Transaction) (float64, bool) {
	if tx.Timestamp.IsZero() {
		return defaultModerate, false
	}
	loc := tx.Timestamp.Location()

	var counts [24]int
	total := 0
	for _, h := range history {
		if h.Timestamp.IsZero() {
			continue
		}
		counts[h.Timestamp.In(loc).Hour()]++
		total++
	}
	if total == 0 {
		return defaultModerate, false
	}

	p := float64(counts[tx.Timestamp.Hour()]) / float64(total)
	return 1 - min(10*p, 1), true
}
