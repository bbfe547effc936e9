package sim

import (
	"math/rand"
	"testing"
)

func TestDelaySpec_BuildDeterministic(t *testing.T) {
	spec := DelaySpec{Kind: "deterministic", Value: 3}
	f := spec.Build(nil)
	if f == nil {
		t.Fatalf("Build returned nil for a deterministic spec")
	}
	if got := f(10); got != 13 {
		t.Errorf("f(10) = %v, want 13", got)
	}
}

func TestDelaySpec_BuildExponential(t *testing.T) {
	spec := DelaySpec{Kind: "exponential", Rate: 2}
	f := spec.Build(rand.New(rand.NewSource(1)))
	if got := f(5); got < 5 {
		t.Errorf("exponential delay produced %v < base 5", got)
	}
}

func TestDelaySpec_BuildUnknownKindReturnsNil(t *testing.T) {
	spec := DelaySpec{Kind: "bogus"}
	if f := spec.Build(nil); f != nil {
		t.Errorf("Build with an unrecognized kind should return nil, got %v", f)
	}
}

func TestNewStationBuilder_WiresSpecIntoStation(t *testing.T) {
	builder := NewStationBuilder(StationSpec{
		Kind:       KindLoss,
		NumServers: 2,
		Buffer:     3,
		Service:    DelaySpec{Kind: "deterministic", Value: 1},
	})
	edge := Edge{Source: 0, Target: 1, Index: 0, Type: 0}
	s := builder(edge, rand.New(rand.NewSource(1)), nil)

	if s.Kind != KindLoss || s.NumServers != 2 || s.Buffer != 3 {
		t.Errorf("built station = %+v, want Kind=loss NumServers=2 Buffer=3", s)
	}
	if s.ArrivalF != nil {
		t.Errorf("a zero-value arrival DelaySpec should build a nil ArrivalF")
	}
}
