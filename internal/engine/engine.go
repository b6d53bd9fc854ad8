// Package engine implements the unified health-metrics query, normalization,
// and aggregation engine over a native record store: permission resolution,
// cursor-paginated reads, canonical projection, workout aggregation, and the
// single-sample write path.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"example.com/healthbridge/internal/consent"
	"example.com/healthbridge/internal/domain"
	"example.com/healthbridge/internal/events"
	"example.com/healthbridge/internal/observability"
	"example.com/healthbridge/internal/registry"
	"example.com/healthbridge/internal/store"
)

// ChangePublisher receives change events after successful writes.
type ChangePublisher interface {
	SampleSaved(ctx context.Context, ev events.SampleSaved) error
}

// Engine executes canonical health operations against a shared store handle.
// Safe for concurrent use; each call is independent.
type Engine struct {
	store     store.Store
	flow      consent.Flow
	publisher ChangePublisher
	log       *zap.Logger
	now       func() time.Time
	platform  string
	origin    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPlatform sets the platform label reported by Availability.
func WithPlatform(platform string) Option {
	return func(e *Engine) { e.platform = platform }
}

// WithOriginPackage sets the data-origin package recorded on writes.
func WithOriginPackage(pkg string) Option {
	return func(e *Engine) { e.origin = pkg }
}

// WithPublisher attaches a change-event publisher.
func WithPublisher(p ChangePublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// New constructs an Engine over the store and consent flow.
func New(s store.Store, flow consent.Flow, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		flow:     flow,
		log:      zap.NewNop(),
		now:      time.Now,
		platform: "healthconnect",
		origin:   "example.healthbridge",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QueryOptions are the window/ordering/limit parameters shared by all query
// operations. Zero dates default to the last 24 hours; Limit <= 0 means
// unlimited; Ascending defaults to false.
type QueryOptions struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Ascending bool
}

// window resolves defaults and validates the date range.
func (e *Engine) window(opts QueryOptions) (store.TimeWindow, error) {
	now := e.now().UTC()
	start, end := opts.StartDate, opts.EndDate
	if start.IsZero() {
		start = now.Add(-24 * time.Hour)
	}
	if end.IsZero() {
		end = now
	}
	if end.Before(start) {
		return store.TimeWindow{}, domain.Validationf("endDate %s is before startDate %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return store.TimeWindow{Start: start, End: end}, nil
}

// grantedSet checks availability and loads the current grant set.
func (e *Engine) grantedSet(ctx context.Context) (map[string]struct{}, error) {
	if ok, reason := e.store.Available(ctx); !ok {
		return nil, domain.Permissionf("record store unavailable: %s", reason)
	}
	granted, err := e.store.Grants(ctx)
	if err != nil {
		return nil, domain.Platformf("read permission grants", err)
	}
	return granted, nil
}

func requireGranted(granted map[string]struct{}, token, capability string) error {
	if _, ok := granted[token]; !ok {
		return domain.Permissionf("permission %s required for %s is not granted", token, capability)
	}
	return nil
}

// Availability reports whether the underlying store is usable.
func (e *Engine) Availability(ctx context.Context) domain.Availability {
	ok, reason := e.store.Available(ctx)
	return domain.Availability{Available: ok, Platform: e.platform, Reason: reason}
}

// ReadSamples reads one data type over the window and projects the native
// records into canonical samples.
func (e *Engine) ReadSamples(ctx context.Context, dataType string, opts QueryOptions) ([]domain.Sample, error) {
	desc, ok := registry.Lookup(dataType)
	if !ok {
		return nil, domain.Validationf("unknown data type %q", dataType)
	}
	window, err := e.window(opts)
	if err != nil {
		return nil, err
	}
	granted, err := e.grantedSet(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireGranted(granted, desc.ReadToken, desc.Identifier); err != nil {
		return nil, err
	}

	records, err := e.readAll(ctx, desc.Kind, window, opts.Limit)
	if err != nil {
		return nil, err
	}

	samples := make([]domain.Sample, 0, len(records))
	for _, rec := range records {
		samples = append(samples, mapSamples(desc, rec)...)
	}
	observability.RecordRecordsMapped(string(desc.Kind), len(samples))

	return sortLimit(samples, func(s domain.Sample) time.Time { return s.StartDate }, opts.Ascending, opts.Limit), nil
}

// QueryWorkouts reads exercise sessions, optionally filtered by canonical
// workout type, and runs the secondary energy/distance aggregation for each
// surviving session.
func (e *Engine) QueryWorkouts(ctx context.Context, workoutType string, opts QueryOptions) ([]domain.Workout, error) {
	window, err := e.window(opts)
	if err != nil {
		return nil, err
	}
	granted, err := e.grantedSet(ctx)
	if err != nil {
		return nil, err
	}
	token, _ := registry.ReadToken(registry.CapabilityWorkouts)
	if err := requireGranted(granted, token, registry.CapabilityWorkouts); err != nil {
		return nil, err
	}

	records, err := e.readAll(ctx, store.KindExercise, window, opts.Limit)
	if err != nil {
		return nil, err
	}

	workouts := make([]domain.Workout, 0, len(records))
	for _, rec := range records {
		mapped := registry.WorkoutTypeForCode(rec.ExerciseCode)
		if workoutType != "" && mapped != workoutType {
			continue
		}
		w := mapWorkout(rec, mapped)
		e.aggregateWorkout(ctx, granted, &w)
		workouts = append(workouts, w)
	}
	observability.RecordRecordsMapped(string(store.KindExercise), len(workouts))

	return sortLimit(workouts, func(w domain.Workout) time.Time { return w.StartDate }, opts.Ascending, opts.Limit), nil
}

// QuerySleep reads sleep sessions over the window.
func (e *Engine) QuerySleep(ctx context.Context, opts QueryOptions) ([]domain.SleepSession, error) {
	window, err := e.window(opts)
	if err != nil {
		return nil, err
	}
	granted, err := e.grantedSet(ctx)
	if err != nil {
		return nil, err
	}
	token, _ := registry.ReadToken(registry.CapabilitySleep)
	if err := requireGranted(granted, token, registry.CapabilitySleep); err != nil {
		return nil, err
	}

	records, err := e.readAll(ctx, store.KindSleep, window, opts.Limit)
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.SleepSession, 0, len(records))
	for _, rec := range records {
		sessions = append(sessions, mapSleep(rec))
	}
	observability.RecordRecordsMapped(string(store.KindSleep), len(sessions))

	return sortLimit(sessions, func(s domain.SleepSession) time.Time { return s.StartDate }, opts.Ascending, opts.Limit), nil
}

// QueryHydration reads hydration records over the window.
func (e *Engine) QueryHydration(ctx context.Context, opts QueryOptions) ([]domain.HydrationRecord, error) {
	window, err := e.window(opts)
	if err != nil {
		return nil, err
	}
	granted, err := e.grantedSet(ctx)
	if err != nil {
		return nil, err
	}
	token, _ := registry.ReadToken(registry.CapabilityHydration)
	if err := requireGranted(granted, token, registry.CapabilityHydration); err != nil {
		return nil, err
	}

	records, err := e.readAll(ctx, store.KindHydration, window, opts.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.HydrationRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, mapHydration(rec))
	}
	observability.RecordRecordsMapped(string(store.KindHydration), len(out))

	return sortLimit(out, func(h domain.HydrationRecord) time.Time { return h.StartDate }, opts.Ascending, opts.Limit), nil
}
