package registry

// WorkoutTypeOther is emitted for native exercise codes with no canonical
// mapping, keeping the output forward-compatible with codes added by newer
// store versions.
const WorkoutTypeOther = "other"

// workoutTypeByCode maps native exercise session codes to canonical workout
// type names.
var workoutTypeByCode = map[int]string{
	2:  "badminton",
	4:  "baseball",
	5:  "basketball",
	8:  "biking",
	13: "calisthenics",
	25: "dancing",
	26: "elliptical",
	37: "hiking",
	44: "martialArts",
	48: "pilates",
	53: "rowing",
	56: "running",
	61: "soccer",
	66: "stairClimbing",
	70: "strengthTraining",
	73: "swimming",
	75: "tennis",
	79: "walking",
	82: "wheelchair",
	83: "yoga",
}

var codeByWorkoutType = func() map[string]int {
	out := make(map[string]int, len(workoutTypeByCode))
	for code, name := range workoutTypeByCode {
		out[name] = code
	}
	return out
}()

// WorkoutTypeForCode maps a native exercise code to its canonical name,
// defaulting to WorkoutTypeOther.
func WorkoutTypeForCode(code int) string {
	if name, ok := workoutTypeByCode[code]; ok {
		return name
	}
	return WorkoutTypeOther
}

// CodeForWorkoutType is the reverse mapping. It reports false for
// WorkoutTypeOther and unrecognized names, which have no single native code.
func CodeForWorkoutType(name string) (int, bool) {
	code, ok := codeByWorkoutType[name]
	return code, ok
}
