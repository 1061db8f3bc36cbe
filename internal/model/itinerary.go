package model

import "time"

// Itinerary is a user-named, dated collection of places
type Itinerary struct {
	ID        int64            `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Date      string           `json:"date" db:"date"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
	Places    []ItineraryPlace `json:"places" db:"-"`
}

// ItineraryPlace is a place scheduled inside an itinerary
type ItineraryPlace struct {
	Position  int    `json:"position"`
	VisitTime string `json:"visit_time,omitempty"`
	Note      string `json:"note,omitempty"`
	Place     Place  `json:"place"`
}
