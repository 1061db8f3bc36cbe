package model

import "encoding/json"

// Place is a point of interest as returned by the places search API.
// Optional nested objects are pointers; collections may be empty.
type Place struct {
	ID          int64   `json:"-" db:"id"`
	FsqID       string  `json:"fsq_id" db:"fsq_id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description,omitempty" db:"description"`
	Distance    int     `json:"distance,omitempty" db:"distance"`
	Email       string  `json:"email,omitempty" db:"email"`
	Tel         string  `json:"tel,omitempty" db:"tel"`
	Fax         string  `json:"fax,omitempty" db:"fax"`
	Website     string  `json:"website,omitempty" db:"website"`
	Popularity  float64 `json:"popularity,omitempty" db:"popularity"`
	Price       int     `json:"price,omitempty" db:"price"`
	Rating      float64 `json:"rating,omitempty" db:"rating"`
	Verified    bool    `json:"verified,omitempty" db:"verified"`
	Timezone    string  `json:"timezone,omitempty" db:"timezone"`

	Categories  []Category          `json:"categories" db:"-"`
	Chains      []Chain             `json:"chains" db:"-"`
	Geocodes    map[string]GeoPoint `json:"geocodes" db:"-"`
	Hours       *Hours              `json:"hours,omitempty" db:"-"`
	Location    *Location           `json:"location,omitempty" db:"-"`
	Photos      []Photo             `json:"photos" db:"-"`
	SocialMedia *SocialMedia        `json:"social_media,omitempty" db:"-"`
	Stats       *PlaceStats         `json:"stats,omitempty" db:"-"`
	Tastes      []string            `json:"tastes" db:"-"`
	Tips        []Tip               `json:"tips" db:"-"`
	Features    Features            `json:"features" db:"-"`
}

// Category is a place category with its icon descriptor
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon Icon   `json:"icon"`
}

// Icon is split into URL prefix and suffix around the requested size
type Icon struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

// Chain identifies a brand the place belongs to
type Chain struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GeoPoint represents geographic coordinates
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hours holds opening hours of a place
type Hours struct {
	Display        string         `json:"display,omitempty"`
	IsLocalHoliday bool           `json:"is_local_holiday"`
	OpenNow        bool           `json:"open_now"`
	Regular        []RegularHours `json:"regular"`
}

// RegularHours is one opening window; Day is 1 (Monday) to 7 (Sunday)
type RegularHours struct {
	Day   int    `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Location is the postal address of a place
type Location struct {
	Address          string   `json:"address,omitempty"`
	AddressExtended  string   `json:"address_extended,omitempty"`
	AdminRegion      string   `json:"admin_region,omitempty"`
	CensusBlock      string   `json:"census_block,omitempty"`
	Country          string   `json:"country,omitempty"`
	CrossStreet      string   `json:"cross_street,omitempty"`
	DMA              string   `json:"dma,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Locality         string   `json:"locality,omitempty"`
	Neighborhood     []string `json:"neighborhood"`
	POBox            string   `json:"po_box,omitempty"`
	PostTown         string   `json:"post_town,omitempty"`
	Postcode         string   `json:"postcode,omitempty"`
	Region           string   `json:"region,omitempty"`
}

// Photo references an image hosted by the places provider
type Photo struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at,omitempty"`
	Prefix    string `json:"prefix"`
	Suffix    string `json:"suffix"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// SocialMedia holds the social handles of a place
type SocialMedia struct {
	FacebookID string `json:"facebook_id,omitempty"`
	Instagram  string `json:"instagram,omitempty"`
	Twitter    string `json:"twitter,omitempty"`
}

// PlaceStats holds aggregate counters reported by the provider
type PlaceStats struct {
	TotalPhotos  int `json:"total_photos"`
	TotalRatings int `json:"total_ratings"`
	TotalTips    int `json:"total_tips"`
}

// Tip is a short user review
type Tip struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at,omitempty"`
	Text          string `json:"text"`
	URL           string `json:"url,omitempty"`
	Lang          string `json:"lang,omitempty"`
	AgreeCount    int    `json:"agree_count"`
	DisagreeCount int    `json:"disagree_count"`
}

// Features maps feature type to feature name to an opaque value,
// e.g. features["payment"]["credit_cards"] = {"accepts_credit_cards": true}
type Features map[string]map[string]json.RawMessage
