package station

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/amsilva/stationview/internal/firebase"
)

// indexPath is the well-known record listing station identifiers.
const indexPath = "stations"

var (
	// ErrNotFound means no qualifying record exists for the request.
	ErrNotFound = errors.New("no readings for station")

	// ErrUnavailable means the remote store could not be reached or the
	// query failed. Callers rendering a UI typically present this the
	// same way as empty data, with a retry affordance.
	ErrUnavailable = errors.New("station store unavailable")
)

// Service is the data access layer over the remote document store.
// It performs single request/response reads; it keeps no cache and never
// retries on its own.
type Service struct {
	db        *firebase.Client
	geo       *Geocoder
	allowlist map[string]bool
}

// NewService creates a Service. A non-empty allowlist restricts the catalog
// and all per-station operations to the listed station ids.
func NewService(db *firebase.Client, geo *Geocoder, allowlist []string) *Service {
	allowed := make(map[string]bool, len(allowlist))
	for _, id := range allowlist {
		allowed[id] = true
	}
	return &Service{db: db, geo: geo, allowlist: allowed}
}

// ListStations reads the station index record and returns the catalog,
// sorted by id. An absent index yields an empty catalog; a transport
// failure yields ErrUnavailable.
func (s *Service) ListStations(ctx context.Context) ([]Info, error) {
	var index map[string]indexDoc
	if err := s.db.Get(ctx, indexPath, &index); err != nil {
		if errors.Is(err, firebase.ErrNullSnapshot) {
			return []Info{}, nil
		}
		log.Printf("station index fetch failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	infos := make([]Info, 0, len(index))
	for id, doc := range index {
		if !s.allowed(id) {
			continue
		}
		info := Info{ID: id, Name: doc.Nome, Address: doc.Morada}
		if s.geo != nil {
			info.Coords = s.geo.Resolve(doc.Morada)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// LatestReading fetches the most recent reading for a station. When the
// top record by timestamp is the reserved metadata record, it re-queries
// for the top two and returns the first non-reserved one.
func (s *Service) LatestReading(ctx context.Context, stationID string) (Reading, error) {
	if err := s.checkStation(stationID); err != nil {
		return Reading{}, err
	}

	docs, err := s.db.QueryLatest(ctx, stationID, 1)
	if err != nil {
		log.Printf("latest reading fetch failed for %s: %v", stationID, err)
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	readings := decodeReadings(stationID, docs)
	if len(readings) == 0 && containsReserved(docs) {
		docs, err = s.db.QueryLatest(ctx, stationID, 2)
		if err != nil {
			log.Printf("latest reading re-query failed for %s: %v", stationID, err)
			return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		readings = decodeReadings(stationID, docs)
	}

	if len(readings) == 0 {
		return Reading{}, ErrNotFound
	}
	return readings[len(readings)-1], nil
}

// Readings fetches up to maxCount most recent readings for a station and
// returns them in chronological order, oldest first, with the reserved
// metadata record excluded.
func (s *Service) Readings(ctx context.Context, stationID string, maxCount int) ([]Reading, error) {
	if err := s.checkStation(stationID); err != nil {
		return nil, err
	}
	if maxCount < 1 {
		return nil, fmt.Errorf("maxCount must be at least 1, got %d", maxCount)
	}

	docs, err := s.db.QueryLatest(ctx, stationID, maxCount)
	if err != nil {
		log.Printf("readings fetch failed for %s: %v", stationID, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return decodeReadings(stationID, docs), nil
}

// ReadingsSince fetches up to maxCount readings with timestamp at or after
// fromUnix, ascending. This backs time-windowed history views.
func (s *Service) ReadingsSince(ctx context.Context, stationID string, fromUnix int64, maxCount int) ([]Reading, error) {
	if err := s.checkStation(stationID); err != nil {
		return nil, err
	}
	if maxCount < 1 {
		return nil, fmt.Errorf("maxCount must be at least 1, got %d", maxCount)
	}

	docs, err := s.db.QuerySince(ctx, stationID, fromUnix, maxCount)
	if err != nil {
		log.Printf("windowed readings fetch failed for %s: %v", stationID, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return decodeReadings(stationID, docs), nil
}

func (s *Service) checkStation(stationID string) error {
	if stationID == "" {
		return fmt.Errorf("station id must not be empty")
	}
	if stationID == indexPath || IsReservedKey(stationID) {
		return ErrNotFound
	}
	if len(s.allowlist) > 0 && !s.allowlist[stationID] {
		return ErrNotFound
	}
	return nil
}

func (s *Service) allowed(id string) bool {
	return len(s.allowlist) == 0 || s.allowlist[id]
}

// decodeReadings turns a key→document map into readings sorted by
// timestamp ascending. The reserved metadata record and documents that do
// not decode as readings are skipped.
func decodeReadings(stationID string, docs map[string]json.RawMessage) []Reading {
	readings := make([]Reading, 0, len(docs))
	for key, raw := range docs {
		if IsReservedKey(key) {
			continue
		}
		var doc readingDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("skipping malformed reading %s/%s: %v", stationID, key, err)
			continue
		}
		readings = append(readings, doc.toReading())
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp < readings[j].Timestamp
	})
	return readings
}

func containsReserved(docs map[string]json.RawMessage) bool {
	_, ok := docs[ReservedKey]
	return ok
}
