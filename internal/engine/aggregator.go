package engine

import (
	"context"

	"go.uber.org/zap"

	"example.com/healthbridge/internal/domain"
	"example.com/healthbridge/internal/observability"
	"example.com/healthbridge/internal/registry"
	"example.com/healthbridge/internal/store"
)

// aggValue is the explicit optional result of one aggregate sub-query. No
// errors cross the aggregation boundary: a failed, unpermitted, or empty sum
// is simply not ok.
type aggValue struct {
	sum float64
	ok  bool
}

// sumInWindow runs one permission-scoped aggregate sub-query. The window is
// the session's exact time range and the sum spans all data origins, so
// records from other sources count toward the session's totals.
func (e *Engine) sumInWindow(ctx context.Context, granted map[string]struct{}, dataType string, window store.TimeWindow) aggValue {
	desc, ok := registry.Lookup(dataType)
	if !ok {
		return aggValue{}
	}
	if _, ok := granted[desc.ReadToken]; !ok {
		observability.RecordAggregationGap(dataType)
		return aggValue{}
	}
	agg, err := e.store.AggregateValue(ctx, desc.Kind, window)
	if err != nil {
		e.log.Warn("aggregate sub-query failed",
			zap.String("dataType", dataType),
			zap.Error(err),
		)
		observability.RecordAggregationGap(dataType)
		return aggValue{}
	}
	if agg.Count == 0 {
		return aggValue{}
	}
	return aggValue{sum: agg.Sum, ok: true}
}

// aggregateWorkout fills the optional totals on a workout from two
// independent aggregate sub-queries over the session window.
//
// Energy policy: the active-energy sum is used when present and positive;
// otherwise the total-energy sum is tried under the same rule. A zero sum is
// deliberately treated the same as no data, so a genuine zero-calorie session
// reports an absent total. This mirrors the documented fallback policy.
func (e *Engine) aggregateWorkout(ctx context.Context, granted map[string]struct{}, w *domain.Workout) {
	window := store.TimeWindow{Start: w.StartDate, End: w.EndDate}

	if distance := e.sumInWindow(ctx, granted, registry.TypeDistance, window); distance.ok {
		v := distance.sum
		w.TotalDistance = &v
	}

	energy := e.sumInWindow(ctx, granted, registry.TypeEnergyActive, window)
	if !energy.ok || energy.sum <= 0 {
		energy = e.sumInWindow(ctx, granted, registry.TypeEnergyTotal, window)
	}
	if energy.ok && energy.sum > 0 {
		v := energy.sum
		w.TotalEnergyBurned = &v
	}
}
