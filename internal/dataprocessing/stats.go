package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"deliverydash/pkg/contracts/domain"
)

// groupKey identifies a group by up to two categorical values
type groupKey [2]string

func (k groupKey) less(other groupKey) bool {
	if k[0] != other[0] {
		return k[0] < other[0]
	}
	return k[1] < other[1]
}

// groupValues collects value(o) per key(o), skipping orders for which
// either callback reports false. Keys with no collected values are still
// returned when the key callback accepted at least one order.
func groupValues(orders []domain.Order, key func(domain.Order) (groupKey, bool), value func(domain.Order) (float64, bool)) ([]groupKey, map[groupKey][]float64) {
	groups := make(map[groupKey][]float64)
	for _, o := range orders {
		k, ok := key(o)
		if !ok {
			continue
		}
		values := groups[k]
		if v, ok := value(o); ok {
			values = append(values, v)
		}
		groups[k] = values
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys, groups
}

// groupStats computes mean and sample deviation per group. width is the
// number of meaningful key parts.
func groupStats(orders []domain.Order, width int, key func(domain.Order) (groupKey, bool), value func(domain.Order) (float64, bool)) []domain.GroupStat {
	keys, groups := groupValues(orders, key, value)

	out := make([]domain.GroupStat, 0, len(keys))
	for _, k := range keys {
		values := groups[k]
		out = append(out, domain.GroupStat{
			Keys:  append([]string{}, k[:width]...),
			Count: len(values),
			Mean:  meanOf(values),
			Std:   sampleStdOf(values),
		})
	}
	return out
}

func meanOf(values []float64) domain.Metric {
	if len(values) == 0 {
		return domain.Metric{}
	}
	return domain.SomeMetric(stat.Mean(values, nil))
}

// sampleStdOf uses the n-1 denominator; fewer than two values is undefined
func sampleStdOf(values []float64) domain.Metric {
	if len(values) < 2 {
		return domain.Metric{}
	}
	return domain.SomeMetric(stat.StdDev(values, nil))
}

// medianOf averages the two middle values for even-length input
func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// round2 rounds half to even at two decimals
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func roundMetric(m domain.Metric) domain.Metric {
	if !m.Valid {
		return m
	}
	return domain.SomeMetric(round2(m.Value))
}

func elapsedMinutes(o domain.Order) (float64, bool) {
	return float64(o.TimeTakenMinutes), true
}

func courierRating(o domain.Order) (float64, bool) {
	if o.CourierRating == nil {
		return 0, false
	}
	return *o.CourierRating, true
}

func byCity(o domain.Order) (groupKey, bool) {
	return groupKey{o.City}, true
}
