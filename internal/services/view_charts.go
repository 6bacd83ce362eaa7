package services

import (
	"deliverydash/internal/config"
	"deliverydash/pkg/contracts/domain"
)

// Chart ids, stable across requests so pages can link to /api/charts/{view}/{id}
const (
	ChartOrdersByDay            = "orders_by_day"
	ChartTrafficShare           = "traffic_share"
	ChartTrafficByCity          = "traffic_by_city"
	ChartOrdersByWeek           = "orders_by_week"
	ChartOrdersPerCourierByWeek = "orders_per_courier_by_week"
	ChartRatingByTraffic        = "rating_by_traffic"
	ChartRatingByWeather        = "rating_by_weather"
	ChartTimeByCity             = "time_by_city"
	ChartDistanceByCity         = "distance_by_city"
	ChartTimeByCityAndTraffic   = "time_by_city_and_traffic"
)

// CompanyCharts describes the charts of the company view
func CompanyCharts(v *domain.CompanyView) []domain.Chart {
	daily := domain.ChartSeries{Name: "orders"}
	for _, d := range v.OrdersByDay {
		daily.Labels = append(daily.Labels, d.Date.Format(config.DateLayout))
		daily.Values = append(daily.Values, float64(d.Orders))
	}

	share := domain.ChartSeries{Name: "share"}
	for _, t := range v.TrafficShare {
		share.Labels = append(share.Labels, t.Traffic)
		share.Values = append(share.Values, t.Share)
	}

	weekly := domain.ChartSeries{Name: "orders"}
	for _, w := range v.OrdersByWeek {
		weekly.Labels = append(weekly.Labels, w.Week)
		weekly.Values = append(weekly.Values, float64(w.Orders))
	}

	perCourier := domain.ChartSeries{Name: "orders per courier"}
	for _, w := range v.OrdersPerCourierByWeek {
		perCourier.Labels = append(perCourier.Labels, w.Week)
		perCourier.Values = append(perCourier.Values, w.OrdersPerCourier)
	}

	return []domain.Chart{
		{ID: ChartOrdersByDay, Title: "Orders by day", Kind: domain.ChartBar, XLabel: "date", YLabel: "orders", Series: []domain.ChartSeries{daily}},
		{ID: ChartTrafficShare, Title: "Orders by traffic density", Kind: domain.ChartPie, Series: []domain.ChartSeries{share}},
		{ID: ChartTrafficByCity, Title: "Orders by city and traffic", Kind: domain.ChartScatter, XLabel: "city", YLabel: "orders", Series: trafficByCitySeries(v.TrafficByCity)},
		{ID: ChartOrdersByWeek, Title: "Orders by week", Kind: domain.ChartLine, XLabel: "week", YLabel: "orders", Series: []domain.ChartSeries{weekly}},
		{ID: ChartOrdersPerCourierByWeek, Title: "Orders per courier by week", Kind: domain.ChartLine, XLabel: "week", YLabel: "orders per courier", Series: []domain.ChartSeries{perCourier}},
	}
}

// trafficByCitySeries returns one series per traffic level in display
// order, dots sized by order count
func trafficByCitySeries(counts []domain.CityTrafficCount) []domain.ChartSeries {
	byTraffic := make(map[string]*domain.ChartSeries)
	for _, c := range counts {
		s, ok := byTraffic[c.Traffic]
		if !ok {
			s = &domain.ChartSeries{Name: c.Traffic}
			byTraffic[c.Traffic] = s
		}
		s.Labels = append(s.Labels, c.City)
		s.Values = append(s.Values, float64(c.Orders))
		s.Sizes = append(s.Sizes, float64(c.Orders))
	}

	out := make([]domain.ChartSeries, 0, len(byTraffic))
	for _, level := range domain.TrafficLevels {
		if s, ok := byTraffic[level]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// CourierCharts describes the charts of the courier view
func CourierCharts(v *domain.CourierView) []domain.Chart {
	return []domain.Chart{
		{ID: ChartRatingByTraffic, Title: "Rating by traffic density", Kind: domain.ChartBar, YLabel: "rating", Series: []domain.ChartSeries{groupSeries("mean rating", v.RatingByTraffic)}},
		{ID: ChartRatingByWeather, Title: "Rating by weather", Kind: domain.ChartBar, YLabel: "rating", Series: []domain.ChartSeries{groupSeries("mean rating", v.RatingByWeather)}},
	}
}

// RestaurantCharts describes the charts of the restaurant view
func RestaurantCharts(v *domain.RestaurantView) []domain.Chart {
	distance := domain.ChartSeries{Name: "mean km"}
	for _, d := range v.DistanceByCity {
		distance.Labels = append(distance.Labels, d.City)
		distance.Values = append(distance.Values, d.MeanKm)
	}

	return []domain.Chart{
		{ID: ChartTimeByCity, Title: "Delivery time by city", Kind: domain.ChartBar, XLabel: "city", YLabel: "minutes", Series: []domain.ChartSeries{groupSeries("mean minutes", v.TimeByCity)}},
		{ID: ChartDistanceByCity, Title: "Mean distance by city", Kind: domain.ChartPie, Series: []domain.ChartSeries{distance}},
		{ID: ChartTimeByCityAndTraffic, Title: "Delivery time by city and traffic", Kind: domain.ChartSunburst, Series: []domain.ChartSeries{groupSeries("mean minutes", v.TimeByCityAndTraffic)}},
	}
}

// groupSeries plots group means with their standard deviation as error.
// Undefined metrics plot as zero.
func groupSeries(name string, groups []domain.GroupStat) domain.ChartSeries {
	s := domain.ChartSeries{Name: name}
	for _, g := range groups {
		s.Labels = append(s.Labels, g.Label())
		s.Values = append(s.Values, g.Mean.OrZero())
		s.Errors = append(s.Errors, g.Std.OrZero())
	}
	return s
}
