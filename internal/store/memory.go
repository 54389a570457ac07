package store

import (
	"errors"
	"sync"
	"time"

	"github.com/amsilva/stationview/internal/station"
)

var (
	// ErrNotFound is returned when no cached readings exist for a station.
	ErrNotFound = errors.New("no cached readings for station")
)

// readingHistory holds a time-ordered list of readings for one station.
type readingHistory struct {
	readings []station.Reading
}

// MemoryCache is a concurrency-safe in-memory cache of recent readings per
// station, populated by the background refresher. The data access layer
// never reads or writes it; only the live-view endpoint does.
type MemoryCache struct {
	mu sync.RWMutex

	// key: station id, value: history
	data map[string]*readingHistory

	// retention configuration
	maxHistory int           // max number of readings per station
	maxAge     time.Duration // optional max age for readings
}

// NewMemoryCache creates a MemoryCache with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryCache(maxHistory int, maxAge time.Duration) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]*readingHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Record appends a reading for a station and enforces retention. A reading
// not newer than the newest one held is rejected, so writes from
// superseded refresh runs cannot roll the series backwards. Returns
// whether the reading was stored.
func (c *MemoryCache) Record(stationID string, r station.Reading) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	history, ok := c.data[stationID]
	if !ok {
		history = &readingHistory{}
		c.data[stationID] = history
	}

	if n := len(history.readings); n > 0 && r.Timestamp <= history.readings[n-1].Timestamp {
		return false
	}

	history.readings = append(history.readings, r)

	// Enforce retention by count.
	if c.maxHistory > 0 && len(history.readings) > c.maxHistory {
		over := len(history.readings) - c.maxHistory
		history.readings = history.readings[over:]
	}

	// Enforce retention by age.
	if c.maxAge > 0 {
		cutoff := time.Now().Add(-c.maxAge).Unix()
		i := 0
		for ; i < len(history.readings); i++ {
			if history.readings[i].Timestamp >= cutoff {
				break
			}
		}
		if i > 0 && i < len(history.readings) {
			history.readings = history.readings[i:]
		}
	}

	return true
}

// Latest returns the most recent cached reading for a station.
func (c *MemoryCache) Latest(stationID string) (station.Reading, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history, ok := c.data[stationID]
	if !ok || len(history.readings) == 0 {
		return station.Reading{}, ErrNotFound
	}
	return history.readings[len(history.readings)-1], nil
}

// Series returns all cached readings for a station, oldest first.
func (c *MemoryCache) Series(stationID string) ([]station.Reading, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history, ok := c.data[stationID]
	if !ok || len(history.readings) == 0 {
		return nil, ErrNotFound
	}

	out := make([]station.Reading, len(history.readings))
	copy(out, history.readings)
	return out, nil
}
