// Station factory helpers: small builder constructors wiring DelayFunc
// choices to a Kind, shared by config.Scenario.BuildNetwork and tests. Grounded on
// spec §6's "station factory contract" (type -> station class, type ->
// construction args).

package sim

import "math/rand"

// DelaySpec describes how to build a DelayFunc from a scenario file: one of
// "exponential", "deterministic", "uniform", or "identity" (the informational
// station's instantaneous pass-through: departure time == arrival time).
type DelaySpec struct {
	Kind  string // "exponential" | "deterministic" | "uniform" | "identity"
	Rate  float64
	Value float64
	Low   float64
	High  float64
}

// Build returns the DelayFunc described by s, drawing randomness from rng
// where needed. Returns nil for a zero-value DelaySpec (no self-generated
// stream), matching KindInformational/KindNullSink stations that never
// schedule one.
func (s DelaySpec) Build(rng *rand.Rand) DelayFunc {
	switch s.Kind {
	case "exponential":
		return ExponentialDelay(s.Rate, rng)
	case "deterministic":
		return DeterministicDelay(s.Value)
	case "uniform":
		return UniformDelay(s.Low, s.High, rng)
	case "identity":
		return IdentityDelay
	default:
		return nil
	}
}

// StationSpec is the declarative description of one station, as read from
// a scenario file and turned into a StationBuilder by NewStationBuilder.
type StationSpec struct {
	Kind       Kind
	NumServers int
	Buffer     int
	Arrival    DelaySpec
	Service    DelaySpec
}

// NewStationBuilder closes over spec, returning a StationBuilder usable
// directly in NewNetwork's builders map.
func NewStationBuilder(spec StationSpec) StationBuilder {
	return func(edge Edge, rng *rand.Rand, newAgentID func() uint64) *Station {
		arrivalF := spec.Arrival.Build(rng)
		serviceF := spec.Service.Build(rng)
		return NewStation(edge, spec.Kind, spec.NumServers, spec.Buffer, arrivalF, serviceF, newAgentID)
	}
}
