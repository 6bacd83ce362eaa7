package domain

import (
	"time"
)

// DailyCount is the number of distinct orders placed on one date
type DailyCount struct {
	Date   time.Time `json:"date"`
	Orders int       `json:"orders"`
}

// TrafficShare is the fraction of orders placed under one traffic density
type TrafficShare struct {
	Traffic string  `json:"traffic"`
	Orders  int     `json:"orders"`
	Share   float64 `json:"share"`
}

// CityTrafficCount counts orders for a (city, traffic) pair
type CityTrafficCount struct {
	City    string `json:"city"`
	Traffic string `json:"traffic"`
	Orders  int    `json:"orders"`
}

// WeeklyCount counts orders in one week-of-year bucket
type WeeklyCount struct {
	Week   string `json:"week"`
	Orders int    `json:"orders"`
}

// WeeklyOrdersPerCourier relates weekly order volume to active couriers
type WeeklyOrdersPerCourier struct {
	Week             string  `json:"week"`
	Orders           int     `json:"orders"`
	Couriers         int     `json:"couriers"`
	OrdersPerCourier float64 `json:"orders_per_courier"`
}

// MapMarker is the median delivery location of a (city, traffic) pair
type MapMarker struct {
	City     string     `json:"city"`
	Traffic  string     `json:"traffic"`
	Location Coordinate `json:"location"`
}

// CourierSpeed is the mean elapsed delivery time of a courier within a city
type CourierSpeed struct {
	City      string  `json:"city"`
	CourierID string  `json:"courier_id"`
	MeanTime  float64 `json:"mean_time_min"`
}

// CourierRating is the mean rating of one courier
type CourierRating struct {
	CourierID  string `json:"courier_id"`
	MeanRating Metric `json:"mean_rating"`
	Ratings    int    `json:"ratings"`
}

// GroupStat holds the mean and sample standard deviation of a value over
// the rows sharing the grouping keys
type GroupStat struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
	Mean  Metric   `json:"mean"`
	Std   Metric   `json:"std"`
}

// Label joins the grouping keys for display
func (g GroupStat) Label() string {
	label := ""
	for i, k := range g.Keys {
		if i > 0 {
			label += " / "
		}
		label += k
	}
	return label
}

// CityDistance is the mean restaurant-to-delivery distance within a city
type CityDistance struct {
	City   string  `json:"city"`
	MeanKm float64 `json:"mean_km"`
	Share  float64 `json:"share"`
}

// Range holds the extremes of a numeric column
type Range struct {
	Max Metric `json:"max"`
	Min Metric `json:"min"`
}
