package sim

import (
	"math"
	"math/rand"
	"testing"
)

// selfLoopNetwork builds a single self-looping station (one edge, source
// and target both vertex 0): the canonical way to model a standalone queue
// as a Network (spec §4.3 examples).
func selfLoopNetwork(t *testing.T) *Network {
	t.Helper()
	topo := Topology{
		NumVertices: 1,
		Edges:       []EdgeDef{{Source: 0, Target: 0, Type: 0}},
	}
	builders := map[int]StationBuilder{
		0: func(edge Edge, rng *rand.Rand, newAgentID func() uint64) *Station {
			return NewStation(edge, KindBasic, 1, -1, DeterministicDelay(1), DeterministicDelay(0.5), newAgentID)
		},
	}
	net, err := NewNetwork(topo, builders, -1, 1)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	if err := net.Initialize(Selector{EdgeIndices: []int{0}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return net
}

// tandemNetwork builds two stations in series: 0 -> 1 -> 2, edges {e0: 0->1,
// e1: 1->2}, so transfers exercise completeTransfer/reinsertPair.
func tandemNetwork(t *testing.T) *Network {
	t.Helper()
	topo := Topology{
		NumVertices: 3,
		Edges: []EdgeDef{
			{Source: 0, Target: 1, Type: 0},
			{Source: 1, Target: 2, Type: 1}, // no builder registered for type 1
		},
	}
	builders := map[int]StationBuilder{
		0: func(edge Edge, rng *rand.Rand, newAgentID func() uint64) *Station {
			return NewStation(edge, KindBasic, 1, -1, DeterministicDelay(1), DeterministicDelay(0.5), newAgentID)
		},
	}
	net, err := NewNetwork(topo, builders, -1, 1)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	if err := net.Initialize(Selector{EdgeIndices: []int{0}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return net
}

func TestNetwork_AdvanceOneEvent_RequiresInitialize(t *testing.T) {
	topo := Topology{NumVertices: 1, Edges: []EdgeDef{{Source: 0, Target: 0, Type: 0}}}
	net, err := NewNetwork(topo, nil, -1, 1)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	if err := net.AdvanceOneEvent(); err != ErrNotInitialized {
		t.Errorf("AdvanceOneEvent before Initialize = %v, want ErrNotInitialized", err)
	}
}

func TestNetwork_SelfLoop_AdvancesThroughArrivalAndDeparture(t *testing.T) {
	net := selfLoopNetwork(t)

	if err := net.AdvanceOneEvent(); err != nil {
		t.Fatalf("AdvanceOneEvent: %v", err)
	}
	if net.NumEvents != 1 {
		t.Fatalf("NumEvents = %d, want 1", net.NumEvents)
	}
	if net.CurrentTime != 1 {
		t.Fatalf("CurrentTime after first event = %v, want 1 (the scheduled arrival)", net.CurrentTime)
	}

	if err := net.AdvanceOneEvent(); err != nil {
		t.Fatalf("AdvanceOneEvent: %v", err)
	}
	// Second event is the departure of the agent admitted at t=1, feeding
	// back into the same edge as a self-loop transfer.
	if net.Edge2Station[0].NumDepartures+net.Edge2Station[0].NumArrivals == 0 {
		t.Errorf("expected station counters to have advanced")
	}
}

func TestNetwork_Simulate_BudgetByEventCount(t *testing.T) {
	net := selfLoopNetwork(t)
	if err := net.Simulate(SimulateOpts{N: 10}); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if net.NumEvents != 10 {
		t.Errorf("NumEvents after Simulate(N:10) = %d, want 10", net.NumEvents)
	}
}

func TestNetwork_Simulate_BudgetByDuration(t *testing.T) {
	net := selfLoopNetwork(t)
	if err := net.Simulate(SimulateOpts{T: 5}); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if net.CurrentTime < 5 {
		t.Errorf("CurrentTime after Simulate(T:5) = %v, want >= 5", net.CurrentTime)
	}
}

func TestNetwork_TandemTransferRoutesToDownstreamStation(t *testing.T) {
	net := tandemNetwork(t)
	if err := net.Simulate(SimulateOpts{N: 4}); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	// Edge 1 (station 1->2) has no registered builder, so it is a
	// null-sink; it should have absorbed at least one transferred agent
	// once the upstream station's first agent departs.
	if net.Edge2Station[1].NumArrivals == 0 {
		t.Errorf("downstream null-sink station should have received at least one transfer")
	}
}

func TestNetwork_UnknownEdgeType_BecomesNullSink(t *testing.T) {
	topo := Topology{NumVertices: 2, Edges: []EdgeDef{{Source: 0, Target: 1, Type: 99}}}
	net, err := NewNetwork(topo, nil, -1, 1)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	if net.Edge2Station[0].Kind != KindNullSink {
		t.Errorf("edge with no registered builder should become KindNullSink, got %v", net.Edge2Station[0].Kind)
	}
}

func TestNetwork_Initialize_UnknownEdgeIndex(t *testing.T) {
	topo := Topology{NumVertices: 1, Edges: []EdgeDef{{Source: 0, Target: 0, Type: 0}}}
	net, _ := NewNetwork(topo, nil, -1, 1)
	if err := net.Initialize(Selector{EdgeIndices: []int{5}}); err != ErrUnknownEdge {
		t.Errorf("Initialize with an out-of-range edge index = %v, want ErrUnknownEdge", err)
	}
}

func TestNetwork_Initialize_NoSelectorIsInvalid(t *testing.T) {
	topo := Topology{NumVertices: 1, Edges: []EdgeDef{{Source: 0, Target: 0, Type: 0}}}
	net, _ := NewNetwork(topo, nil, -1, 1)
	if err := net.Initialize(Selector{}); err != ErrInvalidActiveSelector {
		t.Errorf("Initialize with an empty selector = %v, want ErrInvalidActiveSelector", err)
	}
}

func TestNetwork_AgentCap_DeactivatesStationsOverCap(t *testing.T) {
	net := selfLoopNetwork(t)
	net.AgentCap = 1 // brake almost immediately

	for i := 0; i < 20 && net.Edge2Station[0].Active; i++ {
		if err := net.AdvanceOneEvent(); err != nil {
			t.Fatalf("AdvanceOneEvent: %v", err)
		}
	}
	if net.Edge2Station[0].Active {
		t.Errorf("a tight agent_cap should eventually deactivate the only station")
	}
}

func TestNetwork_CongestionPolicy_HoldsBackInsteadOfTransferring(t *testing.T) {
	topo := Topology{
		NumVertices: 2,
		Edges: []EdgeDef{
			{Source: 0, Target: 1, Type: 0}, // upstream, always has an agent ready
			{Source: 1, Target: 1, Type: 1}, // downstream self-loop, loss variant at capacity
		},
	}
	builders := map[int]StationBuilder{
		0: func(edge Edge, rng *rand.Rand, newAgentID func() uint64) *Station {
			return NewStation(edge, KindBasic, 1, -1, DeterministicDelay(10), DeterministicDelay(1), newAgentID)
		},
		1: func(edge Edge, rng *rand.Rand, newAgentID func() uint64) *Station {
			return NewStation(edge, KindLoss, 1, 0, nil, DeterministicDelay(100), newAgentID)
		},
	}
	net, err := NewNetwork(topo, builders, -1, 1)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	net.Blocking = BlockingCongestion

	// Saturate the downstream loss station so it is AtCapacity before the
	// upstream station ever fires.
	net.Edge2Station[1].AdmitExternal(&Agent{ID: 1000, Time: 0}, 0)
	net.Edge2Station[1].NextEvent()
	if !net.Edge2Station[1].AtCapacity() {
		t.Fatalf("setup failed: downstream station should be at capacity")
	}

	if err := net.Initialize(Selector{EdgeIndices: []int{0}}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	upBefore := net.Edge2Station[0].NumDepartures
	if err := net.AdvanceOneEvent(); err != nil { // exogenous arrival at upstream
		t.Fatalf("AdvanceOneEvent: %v", err)
	}
	if err := net.AdvanceOneEvent(); err != nil { // would-be departure, held back
		t.Fatalf("AdvanceOneEvent: %v", err)
	}

	if net.Edge2Station[0].NumDepartures != upBefore {
		t.Errorf("held-back blocking should not let the upstream departure actually fire")
	}
	if net.Edge2Station[1].NumBlocked == 0 {
		t.Errorf("downstream station should record the held-back attempt as blocked")
	}
}

func TestNetwork_SetRoutingMatrix_ProjectsRowsOntoOutEdges(t *testing.T) {
	net := tandemNetwork(t)
	// Vertices 0 and 1 each have one out-edge; vertex 2 has none.
	mat := [][]float64{
		{0, 1, 0},
		{0, 0, 1},
		{0, 0, 1},
	}
	if err := net.SetRoutingMatrix(mat); err != nil {
		t.Fatalf("SetRoutingMatrix: %v", err)
	}
	mr := net.Router.(*MatrixRouter)
	w := mr.VertexWeights(0)
	if len(w) != 1 || w[0] != 1 {
		t.Errorf("vertex 0's single out-edge should carry probability 1, got %v", w)
	}
}

func TestNetwork_ClearAndCopy(t *testing.T) {
	net := selfLoopNetwork(t)
	net.Simulate(SimulateOpts{N: 5})

	cp := net.Copy()
	cp.Simulate(SimulateOpts{N: 5})

	if cp.NumEvents == net.NumEvents {
		t.Errorf("advancing the copy should not leave NumEvents identical to the original after more events")
	}

	net.Clear()
	if net.NumEvents != 0 || net.CurrentTime != 0 {
		t.Errorf("Clear() should reset NumEvents and CurrentTime")
	}
	if err := net.AdvanceOneEvent(); err != ErrNotInitialized {
		t.Errorf("AdvanceOneEvent after Clear() = %v, want ErrNotInitialized", err)
	}
}

func TestTopology_InvalidVertexReference(t *testing.T) {
	topo := Topology{NumVertices: 1, Edges: []EdgeDef{{Source: 0, Target: 5, Type: 0}}}
	if _, err := NewNetwork(topo, nil, -1, 1); err != ErrTopology {
		t.Errorf("NewNetwork with an out-of-range target = %v, want ErrTopology", err)
	}
}

func TestAdvanceOneEvent_EmptySchedulerAdvancesTimeToInfinity(t *testing.T) {
	net := selfLoopNetwork(t)
	net.Edge2Station[0].Deactivate()
	net.stations = nil // simulate a drained scheduler directly

	if err := net.AdvanceOneEvent(); err != nil {
		t.Fatalf("AdvanceOneEvent on an empty scheduler: %v", err)
	}
	if !math.IsInf(net.CurrentTime, 1) {
		t.Errorf("CurrentTime after draining the scheduler = %v, want +Inf", net.CurrentTime)
	}
}
