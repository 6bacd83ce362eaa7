package domain

import (
	"time"
)

// Column names of the delivery dataset header, spelled as in the source file
const (
	ColumnID                 = "ID"
	ColumnCourierID          = "Delivery_person_ID"
	ColumnCourierAge         = "Delivery_person_Age"
	ColumnCourierRating      = "Delivery_person_Ratings"
	ColumnRestaurantLat      = "Restaurant_latitude"
	ColumnRestaurantLon      = "Restaurant_longitude"
	ColumnDeliveryLat        = "Delivery_location_latitude"
	ColumnDeliveryLon        = "Delivery_location_longitude"
	ColumnOrderDate          = "Order_Date"
	ColumnTimeOrdered        = "Time_Orderd"
	ColumnTimePicked         = "Time_Order_picked"
	ColumnWeather            = "Weatherconditions"
	ColumnTrafficDensity     = "Road_traffic_density"
	ColumnVehicleCondition   = "Vehicle_condition"
	ColumnOrderType          = "Type_of_order"
	ColumnVehicleType        = "Type_of_vehicle"
	ColumnMultipleDeliveries = "multiple_deliveries"
	ColumnFestival           = "Festival"
	ColumnCity               = "City"
	ColumnTimeTaken          = "Time_taken(min)"
)

// Columns lists the dataset columns in file order
var Columns = []string{
	ColumnID,
	ColumnCourierID,
	ColumnCourierAge,
	ColumnCourierRating,
	ColumnRestaurantLat,
	ColumnRestaurantLon,
	ColumnDeliveryLat,
	ColumnDeliveryLon,
	ColumnOrderDate,
	ColumnTimeOrdered,
	ColumnTimePicked,
	ColumnWeather,
	ColumnTrafficDensity,
	ColumnVehicleCondition,
	ColumnOrderType,
	ColumnVehicleType,
	ColumnMultipleDeliveries,
	ColumnFestival,
	ColumnCity,
	ColumnTimeTaken,
}

// MissingCategory is the literal the dataset uses for an absent categorical value
const MissingCategory = "NaN"

// Traffic density levels
const (
	TrafficLow    = "Low"
	TrafficMedium = "Medium"
	TrafficHigh   = "High"
	TrafficJam    = "Jam"
)

// TrafficLevels lists every valid traffic density in display order
var TrafficLevels = []string{TrafficLow, TrafficMedium, TrafficHigh, TrafficJam}

// City types. "Metropolitian" is the dataset's spelling and must match exactly.
const (
	CityMetropolitan = "Metropolitian"
	CityUrban        = "Urban"
	CitySemiUrban    = "Semi-Urban"
)

// RankedCities is the city order used when ranking couriers
var RankedCities = []string{CityMetropolitan, CityUrban, CitySemiUrban}

// Festival flags
const (
	FestivalYes = "Yes"
	FestivalNo  = "No"
)

// Coordinate is a latitude/longitude pair in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Order is one cleaned delivery event
type Order struct {
	ID                 string     `json:"id"`
	CourierID          string     `json:"courier_id"`
	CourierAge         int        `json:"courier_age"`
	CourierRating      *float64   `json:"courier_rating,omitempty"`
	Restaurant         Coordinate `json:"restaurant"`
	Delivery           Coordinate `json:"delivery"`
	OrderDate          time.Time  `json:"order_date"`
	TimeOrdered        string     `json:"time_ordered,omitempty"`
	TimePicked         string     `json:"time_picked,omitempty"`
	Weather            string     `json:"weather"`
	TrafficDensity     string     `json:"traffic_density"`
	VehicleCondition   int        `json:"vehicle_condition"`
	OrderType          string     `json:"order_type"`
	VehicleType        string     `json:"vehicle_type"`
	MultipleDeliveries int        `json:"multiple_deliveries"`
	Festival           string     `json:"festival"`
	City               string     `json:"city"`
	TimeTakenMinutes   int        `json:"time_taken_min"`
}

// HasRating reports whether the courier rating is present
func (o Order) HasRating() bool {
	return o.CourierRating != nil
}

// Filter holds the user-selected restrictions applied after cleaning
type Filter struct {
	// Before is an exclusive upper bound on the order date
	Before  time.Time `json:"before"`
	Traffic []string  `json:"traffic"`
}
