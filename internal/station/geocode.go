package station

import (
	"log"
	"sync"

	"github.com/kelvins/geocoder"
)

// Coordinates is a resolved station position.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Geocoder resolves station addresses from the metadata records into
// coordinates for the catalog. Disabled when no API key is configured;
// resolved addresses are cached for the process lifetime since station
// addresses effectively never change.
type Geocoder struct {
	enabled bool

	mu    sync.Mutex
	cache map[string]*Coordinates
}

// NewGeocoder creates a Geocoder. An empty apiKey disables resolution.
func NewGeocoder(apiKey string) *Geocoder {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &Geocoder{
		enabled: apiKey != "",
		cache:   make(map[string]*Coordinates),
	}
}

// Resolve returns coordinates for a free-form address, or nil when
// resolution is disabled, the address is empty, or the lookup fails.
// Failures are logged and cached as misses to avoid hammering the API.
func (g *Geocoder) Resolve(address string) *Coordinates {
	if !g.enabled || address == "" {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if coords, ok := g.cache[address]; ok {
		return coords
	}

	loc, err := geocoder.Geocoding(geocoder.Address{Street: address})
	if err != nil {
		log.Printf("geocoding failed for %q: %v", address, err)
		g.cache[address] = nil
		return nil
	}

	coords := &Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}
	g.cache[address] = coords
	return coords
}
