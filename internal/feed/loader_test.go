package feed

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posada/internal/events"
	"posada/internal/models"
)

// fakeSource serves canned records per month and can be made to block or fail.
type fakeSource struct {
	mu      sync.Mutex
	records map[models.MonthKey][]models.RoomAvailabilityRecord
	errs    map[models.MonthKey]error
	gate    chan struct{} // when set, FetchMonth blocks until the gate closes
	started chan struct{} // signalled before blocking on the gate
}

func (f *fakeSource) FetchMonth(_ context.Context, k models.MonthKey) ([]models.RoomAvailabilityRecord, error) {
	f.mu.Lock()
	gate := f.gate
	started := f.started
	f.mu.Unlock()
	if gate != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	return f.records[k], nil
}

func (f *fakeSource) setGate(gate chan struct{}) {
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
}

func openRecord(room int, k models.MonthKey, days []int) models.RoomAvailabilityRecord {
	title := "tab"
	return models.RoomAvailabilityRecord{
		RoomNumber: room, RoomName: "Room", AvailableDates: days,
		Year: k.Year, Month: k.Month, TabTitle: &title,
	}
}

func discardLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestLoaderLoadsBothMonths(t *testing.T) {
	june := models.MonthKey{Year: 2025, Month: 6}
	july := june.Next()
	src := &fakeSource{records: map[models.MonthKey][]models.RoomAvailabilityRecord{
		june: {openRecord(1, june, []int{5})},
		july: {openRecord(1, july, []int{1})},
	}}

	loader := NewLoader(src, feedTestRooms, nil, discardLogger())
	snap := loader.Load(context.Background(), june)

	require.NotNil(t, snap)
	assert.Equal(t, june, snap.Start)
	assert.Len(t, snap.Records, 2)
	assert.Same(t, snap, loader.Snapshot())
}

func TestLoaderFailsClosedOnError(t *testing.T) {
	june := models.MonthKey{Year: 2025, Month: 6}
	july := june.Next()
	src := &fakeSource{
		records: map[models.MonthKey][]models.RoomAvailabilityRecord{
			june: {openRecord(1, june, []int{5})},
		},
		errs: map[models.MonthKey]error{july: errors.New("network down")},
	}

	loader := NewLoader(src, feedTestRooms, nil, discardLogger())
	snap := loader.Load(context.Background(), june)

	// The failed month resolves to synthesized full occupancy for every
	// configured room; no error surfaces.
	julyRecords := snap.RecordsForMonth(july)
	require.Len(t, julyRecords, len(feedTestRooms))
	for _, rec := range julyRecords {
		assert.Empty(t, rec.AvailableDates)
		assert.Nil(t, rec.TabTitle)
	}
}

// A stale in-flight load must never overwrite the snapshot of a newer one.
func TestLoaderDiscardsStaleGeneration(t *testing.T) {
	june := models.MonthKey{Year: 2025, Month: 6}
	july := models.MonthKey{Year: 2025, Month: 7}
	src := &fakeSource{records: map[models.MonthKey][]models.RoomAvailabilityRecord{
		june: {openRecord(1, june, []int{5})},
		july: {openRecord(1, july, []int{9})},
	}}

	bus := events.NewBus()
	var mu sync.Mutex
	var discarded, replaced int
	bus.Subscribe(events.TypeSnapshotDiscarded, func(events.Event) error {
		mu.Lock()
		discarded++
		mu.Unlock()
		return nil
	})
	bus.Subscribe(events.TypeSnapshotReplaced, func(events.Event) error {
		mu.Lock()
		replaced++
		mu.Unlock()
		return nil
	})

	loader := NewLoader(src, feedTestRooms, bus, discardLogger())

	// First load blocks in flight while a second, newer load completes.
	gate := make(chan struct{})
	src.mu.Lock()
	src.gate = gate
	src.started = make(chan struct{}, 2)
	src.mu.Unlock()

	firstDone := make(chan *models.AvailabilitySnapshot)
	go func() {
		firstDone <- loader.Load(context.Background(), june)
	}()

	// Wait for both of the first load's fetches to be in flight.
	<-src.started
	<-src.started
	src.setGate(nil)
	second := loader.Load(context.Background(), july)
	assert.Equal(t, july, loader.Snapshot().Start)

	close(gate)
	first := <-firstDone

	// The stale result was returned to its caller but not applied.
	assert.Equal(t, june, first.Start)
	assert.Same(t, second, loader.Snapshot())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, discarded)
	assert.Equal(t, 1, replaced)
}
