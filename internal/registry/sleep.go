package registry

import "example.com/healthbridge/internal/domain"

// Native sleep stage codes used by the record store.
const (
	StageCodeUnknown    = 0
	StageCodeAwake      = 1
	StageCodeSleeping   = 2
	StageCodeOutOfBed   = 3
	StageCodeLight      = 4
	StageCodeDeep       = 5
	StageCodeREM        = 6
	StageCodeAwakeInBed = 7
)

var sleepStageByCode = map[int]string{
	StageCodeUnknown:    domain.SleepStageUnknown,
	StageCodeAwake:      domain.SleepStageAwake,
	StageCodeSleeping:   domain.SleepStageSleeping,
	StageCodeOutOfBed:   domain.SleepStageOutOfBed,
	StageCodeLight:      domain.SleepStageLight,
	StageCodeDeep:       domain.SleepStageDeep,
	StageCodeREM:        domain.SleepStageREM,
	StageCodeAwakeInBed: domain.SleepStageAwakeInBed,
}

// SleepStageForCode maps a native stage code to its canonical name,
// defaulting to unknown for unrecognized codes.
func SleepStageForCode(code int) string {
	if name, ok := sleepStageByCode[code]; ok {
		return name
	}
	return domain.SleepStageUnknown
}
