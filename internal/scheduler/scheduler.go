package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/amsilva/stationview/internal/station"
	"github.com/amsilva/stationview/internal/store"
)

// Refresher periodically pulls the latest reading for every known station
// into the live cache. Runs are tagged with a fetch-guard token; a run that
// was superseded while its fetches were in flight discards its writes, so
// the cache only ever advances with the most recently issued run.
type Refresher struct {
	scheduler *gocron.Scheduler
	service   *station.Service
	cache     *store.MemoryCache
	guard     *station.FetchGuard
	interval  time.Duration
}

// New creates a Refresher.
func New(service *station.Service, cache *store.MemoryCache, interval time.Duration) *Refresher {
	s := gocron.NewScheduler(time.UTC)
	return &Refresher{
		scheduler: s,
		service:   service,
		cache:     cache,
		guard:     station.NewFetchGuard(),
		interval:  interval,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (r *Refresher) Start() error {
	interval := r.interval
	if interval <= 0 {
		interval = time.Minute
	}

	_, err := r.scheduler.Every(interval).Do(r.runOnce)
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future runs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

func (r *Refresher) runOnce() {
	runID := uuid.NewString()
	token := r.guard.Next()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stations, err := r.service.ListStations(ctx)
	if err != nil {
		log.Printf("refresh %s: station listing failed: %v", runID, err)
		return
	}
	if len(stations) == 0 {
		log.Printf("refresh %s: no stations to refresh", runID)
		return
	}

	var wg sync.WaitGroup
	for _, info := range stations {
		info := info
		wg.Add(1)
		go func() {
			defer wg.Done()

			reading, err := r.service.LatestReading(ctx, info.ID)
			if err != nil {
				if !errors.Is(err, station.ErrNotFound) {
					log.Printf("refresh %s: latest reading failed for %s: %v", runID, info.ID, err)
				}
				return
			}

			if !r.guard.Current(token) {
				log.Printf("refresh %s: superseded, dropping result for %s", runID, info.ID)
				return
			}
			r.cache.Record(info.ID, reading)
		}()
	}
	wg.Wait()
}
