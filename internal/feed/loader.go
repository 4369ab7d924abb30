package feed

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"posada/internal/events"
	"posada/internal/metrics"
	"posada/internal/models"
)

// Loader owns the single snapshot slot. Each Load is tagged with a
// monotonically increasing generation at issue time; only the result of the
// latest issued generation is applied, so a rapid double month-change can
// never leave a stale response in the slot.
type Loader struct {
	source Source
	rooms  []models.RoomConfig
	bus    *events.Bus
	logger *zerolog.Logger

	gen  atomic.Uint64
	mu   sync.Mutex
	snap *models.AvailabilitySnapshot
}

// NewLoader builds a loader. bus may be nil.
func NewLoader(source Source, rooms []models.RoomConfig, bus *events.Bus, logger *zerolog.Logger) *Loader {
	return &Loader{source: source, rooms: rooms, bus: bus, logger: logger}
}

// Snapshot returns the current snapshot, or nil before the first Load.
func (l *Loader) Snapshot() *models.AvailabilitySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Load fetches the two-month window starting at k, both months in parallel,
// and applies it unless a newer Load was issued meanwhile. The snapshot built
// by this call is returned either way so the caller sees its own result.
// Fetch errors fail closed: the affected month resolves to full occupancy.
func (l *Loader) Load(ctx context.Context, k models.MonthKey) *models.AvailabilitySnapshot {
	gen := l.gen.Add(1)

	months := [2]models.MonthKey{k, k.Next()}
	results := make([][]models.RoomAvailabilityRecord, len(months))

	var wg sync.WaitGroup
	for i, month := range months {
		wg.Add(1)
		go func(i int, month models.MonthKey) {
			defer wg.Done()
			records, err := l.source.FetchMonth(ctx, month)
			if err != nil {
				l.logger.Warn().Err(err).
					Int("year", month.Year).Int("month", month.Month).
					Msg("feed fetch failed, month treated as fully occupied")
				records = SynthesizeClosedMonth(l.rooms, month)
			}
			results[i] = records
		}(i, month)
	}
	wg.Wait()

	snap := &models.AvailabilitySnapshot{Start: k}
	for _, records := range results {
		snap.Records = append(snap.Records, records...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen.Load() {
		// A newer load was issued while this one was in flight.
		metrics.IncSnapshotDiscarded()
		if l.bus != nil {
			l.bus.Publish(events.TypeSnapshotDiscarded, k)
		}
		return snap
	}
	l.snap = snap
	if l.bus != nil {
		l.bus.Publish(events.TypeSnapshotReplaced, k)
	}
	return snap
}
