package dataprocessing

import (
	"sort"

	"deliverydash/pkg/contracts/domain"
)

// DefaultTopN is how many couriers per city the rankings show
const DefaultTopN = 10

// TopCouriers ranks couriers by mean elapsed delivery time within each city.
// fastest selects ascending order, otherwise descending. The first n
// couriers of Metropolitian, Urban and Semi-Urban are concatenated in that
// order; ties are broken by courier ID.
func TopCouriers(orders []domain.Order, fastest bool, n int) []domain.CourierSpeed {
	if n <= 0 {
		n = DefaultTopN
	}
	keys, groups := groupValues(orders, func(o domain.Order) (groupKey, bool) {
		return groupKey{o.City, o.CourierID}, true
	}, elapsedMinutes)

	perCity := make(map[string][]domain.CourierSpeed)
	for _, k := range keys {
		m := meanOf(groups[k])
		if !m.Valid {
			continue
		}
		perCity[k[0]] = append(perCity[k[0]], domain.CourierSpeed{
			City:      k[0],
			CourierID: k[1],
			MeanTime:  m.Value,
		})
	}

	out := make([]domain.CourierSpeed, 0, n*len(domain.RankedCities))
	for _, city := range domain.RankedCities {
		ranked := perCity[city]
		sort.SliceStable(ranked, func(i, j int) bool {
			a, b := ranked[i], ranked[j]
			if a.MeanTime != b.MeanTime {
				if fastest {
					return a.MeanTime < b.MeanTime
				}
				return a.MeanTime > b.MeanTime
			}
			return a.CourierID < b.CourierID
		})
		if len(ranked) > n {
			ranked = ranked[:n]
		}
		out = append(out, ranked...)
	}
	return out
}

// AgeRange returns the oldest and youngest courier ages
func AgeRange(orders []domain.Order) domain.Range {
	return rangeOf(orders, func(o domain.Order) float64 { return float64(o.CourierAge) })
}

// VehicleConditionRange returns the best (max) and worst (min) vehicle condition
func VehicleConditionRange(orders []domain.Order) domain.Range {
	return rangeOf(orders, func(o domain.Order) float64 { return float64(o.VehicleCondition) })
}

func rangeOf(orders []domain.Order, value func(domain.Order) float64) domain.Range {
	if len(orders) == 0 {
		return domain.Range{}
	}
	lo, hi := value(orders[0]), value(orders[0])
	for _, o := range orders[1:] {
		v := value(o)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return domain.Range{Max: domain.SomeMetric(hi), Min: domain.SomeMetric(lo)}
}

// RatingByCourier returns the mean rating of every courier. Missing ratings
// are skipped; a courier without any rating has an undefined mean.
func RatingByCourier(orders []domain.Order) []domain.CourierRating {
	keys, groups := groupValues(orders, func(o domain.Order) (groupKey, bool) {
		return groupKey{o.CourierID}, true
	}, courierRating)

	out := make([]domain.CourierRating, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.CourierRating{
			CourierID:  k[0],
			MeanRating: meanOf(groups[k]),
			Ratings:    len(groups[k]),
		})
	}
	return out
}

// RatingByTraffic returns mean and deviation of ratings per traffic density
func RatingByTraffic(orders []domain.Order) []domain.GroupStat {
	return groupStats(orders, 1, func(o domain.Order) (groupKey, bool) {
		return groupKey{o.TrafficDensity}, true
	}, courierRating)
}

// RatingByWeather returns mean and deviation of ratings per weather condition
func RatingByWeather(orders []domain.Order) []domain.GroupStat {
	return groupStats(orders, 1, func(o domain.Order) (groupKey, bool) {
		return groupKey{o.Weather}, true
	}, courierRating)
}
