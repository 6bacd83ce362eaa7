package dataprocessing

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"deliverydash/pkg/contracts/domain"
)

// MeanEarthRadiusKm is the IUGG mean earth radius used for delivery distances
const MeanEarthRadiusKm = 6371.0088

// TimeStatistic selects the statistic computed by FestivalTime
type TimeStatistic string

const (
	AvgTime TimeStatistic = "avg_time"
	StdTime TimeStatistic = "std_time"
)

// Point converts a coordinate to an orb point (longitude first)
func Point(c domain.Coordinate) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// Haversine returns the great-circle distance between a and b in kilometres
func Haversine(a, b domain.Coordinate) float64 {
	// geo scales the central angle by its own equatorial radius
	return geo.DistanceHaversine(Point(a), Point(b)) / orb.EarthRadius * MeanEarthRadiusKm
}

// DeliveryDistance is the distance from the restaurant to the delivery location
func DeliveryDistance(o domain.Order) float64 {
	return Haversine(o.Restaurant, o.Delivery)
}

// UniqueCouriers counts distinct courier IDs
func UniqueCouriers(orders []domain.Order) int {
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seen[o.CourierID] = struct{}{}
	}
	return len(seen)
}

// MeanDistance is the mean delivery distance rounded to two decimals
func MeanDistance(orders []domain.Order) domain.Metric {
	distances := make([]float64, len(orders))
	for i, o := range orders {
		distances[i] = DeliveryDistance(o)
	}
	return roundMetric(meanOf(distances))
}

// MeanDistanceByCity returns the mean delivery distance per city and each
// city's share of the summed means
func MeanDistanceByCity(orders []domain.Order) []domain.CityDistance {
	keys, groups := groupValues(orders, byCity, func(o domain.Order) (float64, bool) {
		return DeliveryDistance(o), true
	})

	out := make([]domain.CityDistance, 0, len(keys))
	total := 0.0
	for _, k := range keys {
		m := meanOf(groups[k]).OrZero()
		total += m
		out = append(out, domain.CityDistance{City: k[0], MeanKm: m})
	}
	if total > 0 {
		for i := range out {
			out[i].Share = out[i].MeanKm / total
		}
	}
	return out
}

// FestivalTime returns the mean or sample deviation of elapsed time over
// orders whose festival flag equals flag, rounded to two decimals. The
// metric is undefined when no order carries the flag.
func FestivalTime(orders []domain.Order, flag string, statistic TimeStatistic) (domain.Metric, error) {
	var minutes []float64
	for _, o := range orders {
		if o.Festival == flag {
			minutes = append(minutes, float64(o.TimeTakenMinutes))
		}
	}

	switch statistic {
	case AvgTime:
		return roundMetric(meanOf(minutes)), nil
	case StdTime:
		return roundMetric(sampleStdOf(minutes)), nil
	default:
		return domain.Metric{}, fmt.Errorf("%w: %q", ErrUnknownStatistic, statistic)
	}
}

// TimeByCity returns mean and deviation of elapsed time per city
func TimeByCity(orders []domain.Order) []domain.GroupStat {
	return groupStats(orders, 1, byCity, elapsedMinutes)
}

// TimeByCityAndTraffic returns mean and deviation of elapsed time per (city, traffic)
func TimeByCityAndTraffic(orders []domain.Order) []domain.GroupStat {
	return groupStats(orders, 2, func(o domain.Order) (groupKey, bool) {
		return groupKey{o.City, o.TrafficDensity}, true
	}, elapsedMinutes)
}

// TimeByCityAndOrderType returns mean and deviation of elapsed time per (city, order type)
func TimeByCityAndOrderType(orders []domain.Order) []domain.GroupStat {
	return groupStats(orders, 2, func(o domain.Order) (groupKey, bool) {
		return groupKey{o.City, o.OrderType}, true
	}, elapsedMinutes)
}
