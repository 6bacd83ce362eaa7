package domain

import (
	"time"
)

// View names
const (
	ViewCompany     = "company"
	ViewCouriers    = "couriers"
	ViewRestaurants = "restaurants"
)

// Views lists every dashboard view
var Views = []string{ViewCompany, ViewCouriers, ViewRestaurants}

// ViewMeta describes the pipeline run that produced a view
type ViewMeta struct {
	View         string    `json:"view"`
	Filter       Filter    `json:"filter"`
	RowsLoaded   int       `json:"rows_loaded"`
	RowsCleaned  int       `json:"rows_cleaned"`
	RowsFiltered int       `json:"rows_filtered"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// CompanyView is the management view of order volume and traffic
type CompanyView struct {
	ViewMeta
	OrdersByDay            []DailyCount             `json:"orders_by_day"`
	TrafficShare           []TrafficShare           `json:"traffic_share"`
	TrafficByCity          []CityTrafficCount       `json:"traffic_by_city"`
	OrdersByWeek           []WeeklyCount            `json:"orders_by_week"`
	OrdersPerCourierByWeek []WeeklyOrdersPerCourier `json:"orders_per_courier_by_week"`
	Map                    []MapMarker              `json:"map"`
	Charts                 []Chart                  `json:"charts"`
}

// CourierView is the view of courier demographics, ratings and speed
type CourierView struct {
	ViewMeta
	Age              Range           `json:"age"`
	VehicleCondition Range           `json:"vehicle_condition"`
	RatingByCourier  []CourierRating `json:"rating_by_courier"`
	RatingByTraffic  []GroupStat     `json:"rating_by_traffic"`
	RatingByWeather  []GroupStat     `json:"rating_by_weather"`
	Fastest          []CourierSpeed  `json:"fastest"`
	Slowest          []CourierSpeed  `json:"slowest"`
	Charts           []Chart         `json:"charts"`
}

// RestaurantView is the view of distance and delivery time
type RestaurantView struct {
	ViewMeta
	UniqueCouriers         int            `json:"unique_couriers"`
	MeanDistanceKm         Metric         `json:"mean_distance_km"`
	FestivalMeanTime       Metric         `json:"festival_mean_time"`
	FestivalStdTime        Metric         `json:"festival_std_time"`
	RegularMeanTime        Metric         `json:"regular_mean_time"`
	RegularStdTime         Metric         `json:"regular_std_time"`
	TimeByCity             []GroupStat    `json:"time_by_city"`
	TimeByCityAndOrderType []GroupStat    `json:"time_by_city_and_order_type"`
	DistanceByCity         []CityDistance `json:"distance_by_city"`
	TimeByCityAndTraffic   []GroupStat    `json:"time_by_city_and_traffic"`
	Charts                 []Chart        `json:"charts"`
}
