// Package store defines the boundary to the platform-managed health-record
// store: the heterogeneous native record shape, paged reads with opaque
// continuation cursors, window aggregates, and the permission grant set.
package store

import (
	"context"
	"time"
)

// RecordKind identifies a native record stream.
type RecordKind string

const (
	KindSteps        RecordKind = "steps"
	KindDistance     RecordKind = "distance"
	KindActiveEnergy RecordKind = "active_energy"
	KindTotalEnergy  RecordKind = "total_energy"
	KindHeartRate    RecordKind = "heart_rate"
	KindWeight       RecordKind = "weight"
	KindHeight       RecordKind = "height"
	KindExercise     RecordKind = "exercise"
	KindSleep        RecordKind = "sleep"
	KindHydration    RecordKind = "hydration"
)

// Device describes the hardware a record was captured on, when known.
type Device struct {
	Manufacturer string
	Model        string
}

// Origin identifies the application (and optionally device) that produced a
// record.
type Origin struct {
	PackageName string
	Device      Device
}

// SeriesPoint is one reading inside a series record (heart-rate beats).
type SeriesPoint struct {
	Time  time.Time
	Value float64
}

// StageInterval is one native sleep stage interval. Code is the store's own
// stage enumeration.
type StageInterval struct {
	Code      int
	StartTime time.Time
	EndTime   time.Time
}

// Record is the native row shape shared by all record kinds. Scalar kinds use
// Value/Unit; exercise sessions use ExerciseCode and Title; heart-rate
// records carry Series; sleep sessions carry Stages.
type Record struct {
	ID           string
	Kind         RecordKind
	StartTime    time.Time
	EndTime      time.Time
	Value        float64
	Unit         string
	ExerciseCode int
	Title        string
	Series       []SeriesPoint
	Stages       []StageInterval
	Metadata     map[string]string
	Origin       Origin
}

// TimeWindow bounds a query. Records overlapping [Start, End] match.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Page is one bounded slice of records. NextCursor is an opaque continuation
// token; empty means the read is exhausted. No ordering is guaranteed within
// or across pages.
type Page struct {
	Records    []Record
	NextCursor string
}

// Aggregate is the result of a window sum. Count distinguishes a genuine zero
// sum from the absence of matching records.
type Aggregate struct {
	Sum   float64
	Count int
}

// Store is the shared, reentrant handle to the native record store. All
// methods are safe for concurrent use.
type Store interface {
	// Available reports whether the store can serve requests, with a
	// human-readable reason when it cannot.
	Available(ctx context.Context) (bool, string)

	// ReadPage fetches up to pageSize records of one kind overlapping the
	// window, resuming from cursor (empty for the first page).
	ReadPage(ctx context.Context, kind RecordKind, window TimeWindow, pageSize int, cursor string) (Page, error)

	// AggregateValue sums Value over all records of the kind overlapping the
	// window.
	AggregateValue(ctx context.Context, kind RecordKind, window TimeWindow) (Aggregate, error)

	// Insert persists a new record and returns its assigned ID.
	Insert(ctx context.Context, rec Record) (string, error)

	// Grants returns the currently granted permission tokens.
	Grants(ctx context.Context) (map[string]struct{}, error)

	// Grant adds permission tokens to the granted set.
	Grant(ctx context.Context, tokens []string) error

	// Revoke removes permission tokens from the granted set.
	Revoke(ctx context.Context, tokens []string) error
}
