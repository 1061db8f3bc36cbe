// Package catalog holds the supported cities and activity kinds.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/alexivanou/findfun-api/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultDescription is shown for cities without a curated description
const DefaultDescription = "A wonderful place to visit!"

//go:embed catalog.yaml
var defaultData []byte

// City is a supported destination
type City struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Latitude    float64 `yaml:"latitude" json:"latitude"`
	Longitude   float64 `yaml:"longitude" json:"longitude"`
}

// LL formats the city centre as a "lat,lng" pair
func (c City) LL() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Catalog is an immutable lookup of cities and activities
type Catalog struct {
	cities     []City
	activities []model.Activity
	byCity     map[string]int
	byActivity map[string]int
}

type document struct {
	Cities     []City           `yaml:"cities"`
	Activities []model.Activity `yaml:"activities"`
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(defaultData)
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		cities:     doc.Cities,
		activities: doc.Activities,
		byCity:     make(map[string]int, len(doc.Cities)),
		byActivity: make(map[string]int, len(doc.Activities)),
	}
	for i, city := range doc.Cities {
		key := Normalize(city.Name)
		if key == "" {
			return nil, fmt.Errorf("catalog city %d has no name", i)
		}
		if _, dup := c.byCity[key]; dup {
			return nil, fmt.Errorf("duplicate catalog city %q", city.Name)
		}
		c.byCity[key] = i
	}
	for i, a := range doc.Activities {
		key := Normalize(a.Key)
		if key == "" {
			return nil, fmt.Errorf("catalog activity %d has no key", i)
		}
		if len(a.CategoryIDs) == 0 {
			return nil, fmt.Errorf("catalog activity %q has no categories", a.Key)
		}
		if _, dup := c.byActivity[key]; dup {
			return nil, fmt.Errorf("duplicate catalog activity %q", a.Key)
		}
		c.byActivity[key] = i
	}
	return c, nil
}

// Normalize lower-cases and collapses whitespace
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SuggestCities returns the cities whose name starts with prefix, ignoring
// case, in catalog order. An empty prefix suggests nothing.
func (c *Catalog) SuggestCities(prefix string) []string {
	p := strings.ToLower(strings.TrimSpace(prefix))
	result := []string{}
	if p == "" {
		return result
	}
	for _, city := range c.cities {
		if strings.HasPrefix(strings.ToLower(city.Name), p) {
			result = append(result, city.Name)
		}
	}
	return result
}

// Cities returns every supported city
func (c *Catalog) Cities() []City {
	out := make([]City, len(c.cities))
	copy(out, c.cities)
	return out
}

// City looks a city up by name, ignoring case
func (c *Catalog) City(name string) (City, bool) {
	i, ok := c.byCity[Normalize(name)]
	if !ok {
		return City{}, false
	}
	return c.cities[i], true
}

// Description returns the curated description of a city or the default text
func (c *Catalog) Description(name string) string {
	if city, ok := c.City(name); ok && city.Description != "" {
		return city.Description
	}
	return DefaultDescription
}

// Activity looks an activity up by key, ignoring case
func (c *Catalog) Activity(key string) (model.Activity, bool) {
	i, ok := c.byActivity[Normalize(key)]
	if !ok {
		return model.Activity{}, false
	}
	return c.activities[i], true
}

// Activities returns every activity kind in catalog order
func (c *Catalog) Activities() []model.Activity {
	out := make([]model.Activity, len(c.activities))
	copy(out, c.activities)
	return out
}

// ActivityKeys normalizes, de-duplicates and sorts keys. Unknown keys are
// returned separately.
func (c *Catalog) ActivityKeys(keys []string) (known, unknown []string) {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		n := Normalize(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		if _, ok := c.byActivity[n]; ok {
			known = append(known, n)
		} else {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(known)
	return known, unknown
}

// NearestCity returns the supported city closest to a point and its
// distance in kilometres
func (c *Catalog) NearestCity(lat, lon float64) (City, float64, bool) {
	var nearest City
	minDist := math.MaxFloat64
	found := false
	for _, city := range c.cities {
		dist := calculateDistance(lat, lon, city.Latitude, city.Longitude)
		if dist < minDist {
			minDist = dist
			nearest = city
			found = true
		}
	}
	if !found {
		return City{}, 0, false
	}
	return nearest, minDist, true
}

// calculateDistance is the haversine distance in kilometres
func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)
	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
