// Delay functions supply the next-event timestamp for a station given its
// current local time. Grounded on queues_agents.py's fArrival/fDepart
// closures (exponential(rate) by default) and on the teacher's pattern of
// passing small stateless closures around (sim/admission.go's AlwaysAdmit).

package sim

import (
	"fmt"
	"math/rand"
)

// DelayFunc computes the next event time given the current time t. Per the
// contract in spec §6, it must satisfy next >= t; a function returning
// next < t is a contract violation (see CheckDelay).
type DelayFunc func(t float64) float64

// CheckDelay panics if next < t, per the "delay-function contract
// violation" error class: this is fatal because the monotone-time
// invariant cannot be restored once violated.
func CheckDelay(t, next float64) {
	if next < t {
		panic(fmt.Sprintf("sim: delay function produced non-increasing time: %g -> %g", t, next))
	}
}

// ExponentialDelay returns a DelayFunc that advances time by an
// Exp(rate) increment, rate in events per unit time. Panics on rate <= 0.
func ExponentialDelay(rate float64, rng *rand.Rand) DelayFunc {
	if rate <= 0 {
		panic("sim: ExponentialDelay requires rate > 0")
	}
	return func(t float64) float64 {
		next := t + rng.ExpFloat64()/rate
		CheckDelay(t, next)
		return next
	}
}

// DeterministicDelay returns a DelayFunc that always advances by a fixed
// increment. Panics on increment < 0.
func DeterministicDelay(increment float64) DelayFunc {
	if increment < 0 {
		panic("sim: DeterministicDelay requires increment >= 0")
	}
	return func(t float64) float64 {
		return t + increment
	}
}

// IdentityDelay is the instantaneous pass-through DelayFunc used by
// informational stations: the next event time equals the current time, so
// service never adds delay (spec §4.1 "Informational station").
func IdentityDelay(t float64) float64 {
	return t
}

// UniformDelay returns a DelayFunc that advances time by an increment drawn
// uniformly from [lo, hi]. Panics if hi < lo or lo < 0.
func UniformDelay(lo, hi float64, rng *rand.Rand) DelayFunc {
	if hi < lo || lo < 0 {
		panic("sim: UniformDelay requires 0 <= lo <= hi")
	}
	return func(t float64) float64 {
		next := t + lo + rng.Float64()*(hi-lo)
		CheckDelay(t, next)
		return next
	}
}
