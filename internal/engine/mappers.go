package engine

import (
	"strings"

	"example.com/healthbridge/internal/domain"
	"example.com/healthbridge/internal/registry"
	"example.com/healthbridge/internal/store"
)

// sourceLabels resolves provenance for a record. sourceId is always the
// origin package; sourceName is the "<manufacturer> <model>" device label
// when present and non-blank, otherwise the package id.
func sourceLabels(origin store.Origin) (name, id string) {
	id = origin.PackageName
	name = id
	label := strings.TrimSpace(strings.TrimSpace(origin.Device.Manufacturer) + " " + strings.TrimSpace(origin.Device.Model))
	if label != "" {
		name = label
	}
	return name, id
}

// mapSamples projects one native record into canonical samples. Heart-rate
// records expand into one sample per beat reading, each inheriting the parent
// record's provenance. Instantaneous metrics collapse to a single timestamp.
func mapSamples(desc registry.Descriptor, rec store.Record) []domain.Sample {
	name, id := sourceLabels(rec.Origin)

	if desc.Kind == store.KindHeartRate {
		out := make([]domain.Sample, 0, len(rec.Series))
		for _, point := range rec.Series {
			out = append(out, domain.Sample{
				DataType:   desc.Identifier,
				Value:      point.Value,
				Unit:       desc.Unit,
				StartDate:  point.Time,
				EndDate:    point.Time,
				SourceName: name,
				SourceID:   id,
			})
		}
		return out
	}

	start, end := rec.StartTime, rec.EndTime
	if desc.Instantaneous {
		end = start
	}
	return []domain.Sample{{
		DataType:   desc.Identifier,
		Value:      rec.Value,
		Unit:       desc.Unit,
		StartDate:  start,
		EndDate:    end,
		SourceName: name,
		SourceID:   id,
	}}
}

// mapWorkout projects an exercise session. The aggregated totals are filled
// in separately by the workout aggregator.
func mapWorkout(rec store.Record, workoutType string) domain.Workout {
	name, id := sourceLabels(rec.Origin)
	return domain.Workout{
		WorkoutType: workoutType,
		Duration:    int64(rec.EndTime.Sub(rec.StartTime).Seconds()),
		StartDate:   rec.StartTime,
		EndDate:     rec.EndTime,
		SourceName:  name,
		SourceID:    id,
		Metadata:    rec.Metadata,
	}
}

// mapSleep projects a sleep session, emitting the stage array only when the
// native record carries stages. Unrecognized stage codes map to unknown.
func mapSleep(rec store.Record) domain.SleepSession {
	name, id := sourceLabels(rec.Origin)
	session := domain.SleepSession{
		Title:      rec.Title,
		Duration:   int64(rec.EndTime.Sub(rec.StartTime).Seconds()),
		StartDate:  rec.StartTime,
		EndDate:    rec.EndTime,
		SourceName: name,
		SourceID:   id,
		Metadata:   rec.Metadata,
	}
	if len(rec.Stages) > 0 {
		stages := make([]domain.SleepStageRecord, 0, len(rec.Stages))
		for _, interval := range rec.Stages {
			stages = append(stages, domain.SleepStageRecord{
				Stage:     registry.SleepStageForCode(interval.Code),
				StartDate: interval.StartTime,
				EndDate:   interval.EndTime,
			})
		}
		session.Stages = stages
	}
	return session
}

// mapHydration projects a hydration record, normalizing volume to liters
// from the store's internal unit.
func mapHydration(rec store.Record) domain.HydrationRecord {
	name, id := sourceLabels(rec.Origin)
	return domain.HydrationRecord{
		Volume:     litersFrom(rec.Value, rec.Unit),
		StartDate:  rec.StartTime,
		EndDate:    rec.EndTime,
		SourceName: name,
		SourceID:   id,
		Metadata:   rec.Metadata,
	}
}

// litersFrom converts a volume from the store's internal unit to liters. An
// empty unit is treated as liters.
func litersFrom(value float64, unit string) float64 {
	switch unit {
	case "milliliter":
		return value / 1000
	case "us-fluid-ounce":
		return value * 0.0295735295625
	default:
		return value
	}
}
