package model

// DiscoverRequest represents the parameters of an activity search in a city
type DiscoverRequest struct {
	City       string
	Activities []string
	Refresh    bool
}

// Result sources reported by discovery
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
)

// DiscoverResponse represents the places found for a city and activities
type DiscoverResponse struct {
	City       string   `json:"city"`
	Activities []string `json:"activities"`
	Source     string   `json:"source"`
	Places     []Place  `json:"places"`
}

// CityInfo is a resolved locality
type CityInfo struct {
	Name             string   `json:"name"`
	Region           string   `json:"region,omitempty"`
	Country          string   `json:"country,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Location         GeoPoint `json:"location"`

	// NearestSupported is the closest catalog city when Name is not one
	NearestSupported string  `json:"nearest_supported,omitempty"`
	DistanceKm       float64 `json:"distance_km,omitempty"`
}

// CityDescription is a short blurb about a city
type CityDescription struct {
	City        string `json:"city"`
	Description string `json:"description"`
	Generated   bool   `json:"generated"`
}

// Activity is a kind of outing a user can pick
type Activity struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	CategoryIDs []int  `json:"category_ids" yaml:"category_ids"`
}

// ItineraryRequest represents the body of itinerary create and update calls
type ItineraryRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// ItineraryPlaceRequest represents the body of an add-place call
type ItineraryPlaceRequest struct {
	FsqID     string `json:"fsq_id"`
	VisitTime string `json:"visit_time"`
	Note      string `json:"note"`
}
