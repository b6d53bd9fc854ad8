// Package registry is the static table of canonical data types: identifiers,
// default units, native record kinds, and permission token mappings. It is
// read-only after package initialization.
package registry

import (
	"sort"

	"example.com/healthbridge/internal/store"
)

// Canonical data-type identifiers.
const (
	TypeSteps        = "steps"
	TypeDistance     = "distance"
	TypeEnergyActive = "energy-active"
	TypeEnergyTotal  = "energy-total"
	TypeWeight       = "weight"
	TypeHeartRate    = "heart-rate"
	TypeHeight       = "height"
)

// Special read-only capabilities. They have no writable counterpart.
const (
	CapabilityWorkouts  = "workouts"
	CapabilitySleep     = "sleep"
	CapabilityHydration = "hydration"
)

// Canonical unit identifiers.
const (
	UnitCount          = "count"
	UnitMeter          = "meter"
	UnitKilocalorie    = "kilocalorie"
	UnitKilogram       = "kilogram"
	UnitBeatsPerMinute = "beats-per-minute"
	UnitLiter          = "liter"
)

// Descriptor describes one canonical sample data type.
type Descriptor struct {
	Identifier string
	Unit       string
	Kind       store.RecordKind
	ReadToken  string
	WriteToken string
	// Instantaneous metrics collapse to a single point in time.
	Instantaneous bool
}

var dataTypes = map[string]Descriptor{
	TypeSteps:        {Identifier: TypeSteps, Unit: UnitCount, Kind: store.KindSteps, ReadToken: "steps:read", WriteToken: "steps:write"},
	TypeDistance:     {Identifier: TypeDistance, Unit: UnitMeter, Kind: store.KindDistance, ReadToken: "distance:read", WriteToken: "distance:write"},
	TypeEnergyActive: {Identifier: TypeEnergyActive, Unit: UnitKilocalorie, Kind: store.KindActiveEnergy, ReadToken: "active_energy:read", WriteToken: "active_energy:write"},
	TypeEnergyTotal:  {Identifier: TypeEnergyTotal, Unit: UnitKilocalorie, Kind: store.KindTotalEnergy, ReadToken: "total_energy:read", WriteToken: "total_energy:write"},
	TypeWeight:       {Identifier: TypeWeight, Unit: UnitKilogram, Kind: store.KindWeight, ReadToken: "weight:read", WriteToken: "weight:write", Instantaneous: true},
	TypeHeartRate:    {Identifier: TypeHeartRate, Unit: UnitBeatsPerMinute, Kind: store.KindHeartRate, ReadToken: "heart_rate:read", WriteToken: "heart_rate:write"},
	TypeHeight:       {Identifier: TypeHeight, Unit: UnitMeter, Kind: store.KindHeight, ReadToken: "height:read", WriteToken: "height:write", Instantaneous: true},
}

// special maps read-only capabilities to their record kind and read token.
type special struct {
	Kind      store.RecordKind
	ReadToken string
}

var specials = map[string]special{
	CapabilityWorkouts:  {Kind: store.KindExercise, ReadToken: "exercise:read"},
	CapabilitySleep:     {Kind: store.KindSleep, ReadToken: "sleep:read"},
	CapabilityHydration: {Kind: store.KindHydration, ReadToken: "hydration:read"},
}

// Lookup returns the descriptor for a canonical data-type identifier.
func Lookup(identifier string) (Descriptor, bool) {
	d, ok := dataTypes[identifier]
	return d, ok
}

// ReadToken resolves the permission token required to read a capability,
// accepting both data-type identifiers and special read-only capabilities.
func ReadToken(capability string) (string, bool) {
	if d, ok := dataTypes[capability]; ok {
		return d.ReadToken, true
	}
	if s, ok := specials[capability]; ok {
		return s.ReadToken, true
	}
	return "", false
}

// WriteToken resolves the permission token required to write a capability.
// Special read-only capabilities are not writable.
func WriteToken(capability string) (string, bool) {
	if d, ok := dataTypes[capability]; ok {
		return d.WriteToken, true
	}
	return "", false
}

// IsSpecial reports whether the capability is one of the read-only tokens.
func IsSpecial(capability string) bool {
	_, ok := specials[capability]
	return ok
}

// Identifiers returns all canonical data-type identifiers, sorted.
func Identifiers() []string {
	out := make([]string, 0, len(dataTypes))
	for id := range dataTypes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
