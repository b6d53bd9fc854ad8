package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"example.com/healthbridge/internal/domain"
	"example.com/healthbridge/internal/events"
	"example.com/healthbridge/internal/observability"
	"example.com/healthbridge/internal/registry"
	"example.com/healthbridge/internal/store"
)

// SaveSampleInput is the payload for a single-sample insert. Value is a
// pointer so a missing value can be told apart from zero.
type SaveSampleInput struct {
	DataType  string
	Value     *float64
	Unit      string
	StartDate time.Time
	EndDate   time.Time
	Metadata  map[string]string
}

// SaveSample validates and inserts one sample. An explicitly supplied unit
// must equal the canonical default unit for the data type; no conversion is
// performed. EndDate defaults to StartDate, StartDate to now.
func (e *Engine) SaveSample(ctx context.Context, in SaveSampleInput) error {
	desc, ok := registry.Lookup(in.DataType)
	if !ok {
		return domain.Validationf("unknown data type %q", in.DataType)
	}
	if in.Value == nil {
		return domain.Validationf("value is required")
	}
	if in.Unit != "" && in.Unit != desc.Unit {
		return domain.Validationf("unit %q does not match default unit %q for %s", in.Unit, desc.Unit, desc.Identifier)
	}

	start := in.StartDate
	if start.IsZero() {
		start = e.now()
	}
	end := in.EndDate
	if end.IsZero() {
		end = start
	}
	if end.Before(start) {
		return domain.Validationf("endDate %s is before startDate %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if desc.Instantaneous {
		end = start
	}

	granted, err := e.grantedSet(ctx)
	if err != nil {
		return err
	}
	if err := requireGranted(granted, desc.WriteToken, desc.Identifier); err != nil {
		return err
	}

	rec := store.Record{
		Kind:      desc.Kind,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Value:     *in.Value,
		Unit:      desc.Unit,
		Metadata:  in.Metadata,
		Origin:    store.Origin{PackageName: e.origin},
	}
	id, err := e.store.Insert(ctx, rec)
	if err != nil {
		return domain.Platformf("insert sample", err)
	}
	observability.RecordSampleSaved(e.now())

	if e.publisher != nil {
		ev := events.SampleSaved{
			RecordID:  id,
			DataType:  desc.Identifier,
			Value:     *in.Value,
			Unit:      desc.Unit,
			StartDate: rec.StartTime,
			EndDate:   rec.EndTime,
			SourceID:  e.origin,
			SavedAt:   e.now().UTC(),
		}
		if err := e.publisher.SampleSaved(ctx, ev); err != nil {
			// Change events are best effort; the write already succeeded.
			e.log.Warn("sample.saved publish failed",
				zap.String("recordId", id),
				zap.Error(err),
			)
		}
	}
	return nil
}
