package geocode

import (
	"context"
	"time"

	"github.com/klanec/pic2pin/internal/logger"
	"github.com/klanec/pic2pin/pkg/models"
)

// Enricher fills the address slot of scanned records. Remote lookups are
// paced at one per interval; cache hits are free.
type Enricher struct {
	geocoder Geocoder
	cache    *Cache
	interval time.Duration
}

// NewEnricher creates an Enricher. cache may be nil to disable caching.
func NewEnricher(geocoder Geocoder, cache *Cache) *Enricher {
	return &Enricher{
		geocoder: geocoder,
		cache:    cache,
		interval: time.Second,
	}
}

// Enrich resolves an address for every record in the aggregate, in place.
// Lookup failures leave the slot empty and are logged; the report is still
// produced. Returns the number of resolved and failed lookups.
func (e *Enricher) Enrich(ctx context.Context, outcomes []models.Outcome) (resolved, failed int) {
	var lastLookup time.Time

	for i := range outcomes {
		rec := outcomes[i].Record
		if rec == nil {
			continue
		}
		if ctx.Err() != nil {
			logger.Warn("Enrichment canceled with %d records remaining", len(outcomes)-i)
			return resolved, failed
		}

		if e.cache != nil {
			if addr, ok := e.cache.Get(rec.Coordinate); ok {
				rec.Address = addr
				resolved++
				continue
			}
		}

		if wait := e.interval - time.Since(lastLookup); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return resolved, failed
			}
		}
		lastLookup = time.Now()

		addr, err := e.geocoder.Reverse(ctx, rec.Coordinate)
		if err != nil {
			logger.Warn("Could not resolve address for %s: %v", rec.Path, err)
			failed++
			continue
		}

		rec.Address = addr.DisplayName
		resolved++
		if e.cache != nil {
			e.cache.Put(rec.Coordinate, addr.DisplayName)
		}
	}

	return resolved, failed
}
