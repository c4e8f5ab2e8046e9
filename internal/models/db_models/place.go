package db_models

import "github.com/lib/pq"

// PlaceKind discriminates the catalog's place variants. Attractions are the
// base case; dining and stay records carry an extra sub-record.
type PlaceKind string

const (
	PlaceKindAttraction PlaceKind = "attraction"
	PlaceKindDining     PlaceKind = "dining"
	PlaceKindStay       PlaceKind = "stay"
)

// Place is one catalog entry. Coordinates are optional; consumers must treat
// a missing pair as "location unknown" rather than (0, 0).
type Place struct {
	ID          string         `gorm:"column:place_id;primaryKey" json:"place_id"`
	Name        string         `gorm:"column:place_name" json:"place_name"`
	Address     string         `gorm:"column:address" json:"address,omitempty"`
	Category    string         `gorm:"column:category" json:"category"`
	Latitude    *float64       `gorm:"column:latitude" json:"lat,omitempty"`
	Longitude   *float64       `gorm:"column:longitude" json:"lon,omitempty"`
	CostTier    int            `gorm:"column:cost_tier" json:"cost"`
	Rating      float64        `gorm:"column:rating" json:"rating"`
	ReviewCount int            `gorm:"column:review_count" json:"user_ratings_total"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags,omitempty"`
	Kind        PlaceKind      `gorm:"column:kind" json:"kind"`

	Dining *DiningInfo `gorm:"embedded;embeddedPrefix:dining_" json:"dining,omitempty"`
	Stay   *StayInfo   `gorm:"embedded;embeddedPrefix:stay_" json:"accommodation,omitempty"`
}

// DiningInfo is the restaurant-specific sub-record.
type DiningInfo struct {
	Cuisine string `gorm:"column:cuisine" json:"cuisine"`
	City    string `gorm:"column:city" json:"city,omitempty"`
}

// StayInfo is the accommodation-specific sub-record.
type StayInfo struct {
	RoomType      string  `gorm:"column:room_type" json:"room_type,omitempty"`
	PricePerNight float64 `gorm:"column:price_per_night" json:"price_per_night,omitempty"`
}

func (Place) TableName() string {
	return "places"
}

func (p Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
