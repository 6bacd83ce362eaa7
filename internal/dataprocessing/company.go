package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	"deliverydash/pkg/contracts/domain"
)

// OrdersByDay counts distinct order IDs per order date, oldest first
func OrdersByDay(orders []domain.Order) []domain.DailyCount {
	ids := make(map[time.Time]map[string]struct{})
	for _, o := range orders {
		day := o.OrderDate
		if ids[day] == nil {
			ids[day] = make(map[string]struct{})
		}
		ids[day][o.ID] = struct{}{}
	}

	out := make([]domain.DailyCount, 0, len(ids))
	for day, set := range ids {
		out = append(out, domain.DailyCount{Date: day, Orders: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// TrafficOrderShare returns the fraction of orders per traffic density,
// ignoring the missing category. Shares sum to 1 for non-empty input.
func TrafficOrderShare(orders []domain.Order) []domain.TrafficShare {
	counts := make(map[string]int)
	total := 0
	for _, o := range orders {
		if o.TrafficDensity == domain.MissingCategory {
			continue
		}
		counts[o.TrafficDensity]++
		total++
	}

	out := make([]domain.TrafficShare, 0, len(counts))
	for traffic, n := range counts {
		out = append(out, domain.TrafficShare{
			Traffic: traffic,
			Orders:  n,
			Share:   float64(n) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Traffic < out[j].Traffic })
	return out
}

// TrafficOrderCity counts orders per (city, traffic) pair
func TrafficOrderCity(orders []domain.Order) []domain.CityTrafficCount {
	counts := make(map[groupKey]int)
	for _, o := range orders {
		counts[groupKey{o.City, o.TrafficDensity}]++
	}

	out := make([]domain.CityTrafficCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.CityTrafficCount{City: k[0], Traffic: k[1], Orders: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return groupKey{out[i].City, out[i].Traffic}.less(groupKey{out[j].City, out[j].Traffic})
	})
	return out
}

// WeekOfYear labels t with its two-digit week number. Weeks start on
// Sunday; days before the first Sunday of the year fall in week "00".
func WeekOfYear(t time.Time) string {
	week := (t.YearDay() + 6 - int(t.Weekday())) / 7
	return fmt.Sprintf("%02d", week)
}

// OrdersByWeek counts orders per week label
func OrdersByWeek(orders []domain.Order) []domain.WeeklyCount {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[WeekOfYear(o.OrderDate)]++
	}

	out := make([]domain.WeeklyCount, 0, len(counts))
	for week, n := range counts {
		out = append(out, domain.WeeklyCount{Week: week, Orders: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// OrdersPerCourierByWeek divides each week's order count by the number of
// distinct couriers active that week. Weeks without couriers are skipped.
func OrdersPerCourierByWeek(orders []domain.Order) []domain.WeeklyOrdersPerCourier {
	counts := make(map[string]int)
	couriers := make(map[string]map[string]struct{})
	for _, o := range orders {
		week := WeekOfYear(o.OrderDate)
		counts[week]++
		if couriers[week] == nil {
			couriers[week] = make(map[string]struct{})
		}
		couriers[week][o.CourierID] = struct{}{}
	}

	out := make([]domain.WeeklyOrdersPerCourier, 0, len(counts))
	for week, n := range counts {
		active := len(couriers[week])
		if active == 0 {
			continue
		}
		out = append(out, domain.WeeklyOrdersPerCourier{
			Week:             week,
			Orders:           n,
			Couriers:         active,
			OrdersPerCourier: float64(n) / float64(active),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// MedianDeliveryLocations returns the median delivery coordinate of every
// (city, traffic) pair, skipping the missing category
func MedianDeliveryLocations(orders []domain.Order) []domain.MapMarker {
	key := func(o domain.Order) (groupKey, bool) {
		if o.City == domain.MissingCategory || o.TrafficDensity == domain.MissingCategory {
			return groupKey{}, false
		}
		return groupKey{o.City, o.TrafficDensity}, true
	}
	keys, lats := groupValues(orders, key, func(o domain.Order) (float64, bool) { return o.Delivery.Lat, true })
	_, lons := groupValues(orders, key, func(o domain.Order) (float64, bool) { return o.Delivery.Lon, true })

	out := make([]domain.MapMarker, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.MapMarker{
			City:    k[0],
			Traffic: k[1],
			Location: domain.Coordinate{
				Lat: medianOf(lats[k]),
				Lon: medianOf(lons[k]),
			},
		})
	}
	return out
}
