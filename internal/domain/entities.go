// Package domain defines the canonical health entities returned by the engine.
package domain

import "time"

// Sample is the unified projection of a scalar native record.
type Sample struct {
	DataType   string    `json:"dataType"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	SourceName string    `json:"sourceName"`
	SourceID   string    `json:"sourceId"`
}

// Workout is the canonical view of an exercise session. TotalEnergyBurned and
// TotalDistance come from the secondary aggregation and are nil when the
// aggregate sub-query failed, was not permitted, or matched no records.
type Workout struct {
	WorkoutType       string            `json:"workoutType"`
	Duration          int64             `json:"duration"`
	StartDate         time.Time         `json:"startDate"`
	EndDate           time.Time         `json:"endDate"`
	TotalEnergyBurned *float64          `json:"totalEnergyBurned,omitempty"`
	TotalDistance     *float64          `json:"totalDistance,omitempty"`
	SourceName        string            `json:"sourceName"`
	SourceID          string            `json:"sourceId"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Canonical sleep stage names.
const (
	SleepStageUnknown    = "unknown"
	SleepStageAwake      = "awake"
	SleepStageSleeping   = "sleeping"
	SleepStageOutOfBed   = "outOfBed"
	SleepStageAwakeInBed = "awakeInBed"
	SleepStageLight      = "light"
	SleepStageDeep       = "deep"
	SleepStageREM        = "rem"
)

// SleepStageRecord is a single stage interval inside a sleep session.
type SleepStageRecord struct {
	Stage     string    `json:"stage"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// SleepSession is the canonical view of a sleep session record.
type SleepSession struct {
	Title      string             `json:"title,omitempty"`
	Duration   int64              `json:"duration"`
	StartDate  time.Time          `json:"startDate"`
	EndDate    time.Time          `json:"endDate"`
	Stages     []SleepStageRecord `json:"stages,omitempty"`
	SourceName string             `json:"sourceName"`
	SourceID   string             `json:"sourceId"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
}

// HydrationRecord is the canonical view of a hydration record. Volume is
// always expressed in liters.
type HydrationRecord struct {
	Volume     float64           `json:"volume"`
	StartDate  time.Time         `json:"startDate"`
	EndDate    time.Time         `json:"endDate"`
	SourceName string            `json:"sourceName"`
	SourceID   string            `json:"sourceId"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// AuthorizationStatus partitions the requested capabilities by grant state.
// A capability appears in exactly one of the read lists and, when requested
// for write, exactly one of the write lists.
type AuthorizationStatus struct {
	ReadAuthorized  []string `json:"readAuthorized"`
	ReadDenied      []string `json:"readDenied"`
	WriteAuthorized []string `json:"writeAuthorized"`
	WriteDenied     []string `json:"writeDenied"`
}

// Availability reports whether the underlying record store is usable.
type Availability struct {
	Available bool   `json:"available"`
	Platform  string `json:"platform"`
	Reason    string `json:"reason,omitempty"`
}
