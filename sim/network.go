// Network owns the graph topology, the stations living on each edge, and
// the global event scheduler that drives them. Grounded on
// queue_network.py's QueueNetwork/_CongestionNetwork pair: the descending
// time-ordered station list plus the bisect/twoSort/oneSort reinsertion
// helpers in ordering.go replace a from-scratch resort on every event, and
// AdvanceOneEvent mirrors _simulate_next_event's branch structure (zero-lag
// transfer, congestion hold-back, population-cap deactivation).

package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// EdgeDef describes one directed edge of a network's topology before
// stations are attached: its endpoints and a type tag used to look up a
// StationBuilder.
type EdgeDef struct {
	Source int
	Target int
	Type   int
}

// Topology is the graph a Network is built from: NumVertices vertices and
// a list of directed edges, each assigned a type. Self-loops (Source ==
// Target) are the canonical way to place a station at a vertex with no
// further routing choice.
type Topology struct {
	NumVertices int
	Edges       []EdgeDef
}

func (t Topology) adjacency() (out, in [][]int, err error) {
	out = make([][]int, t.NumVertices)
	in = make([][]int, t.NumVertices)
	for i, e := range t.Edges {
		if e.Source < 0 || e.Source >= t.NumVertices || e.Target < 0 || e.Target >= t.NumVertices {
			return nil, nil, ErrTopology
		}
		out[e.Source] = append(out[e.Source], i)
		in[e.Target] = append(in[e.Target], i)
	}
	return out, in, nil
}

// StationBuilder constructs the station that should sit on edge, drawing
// randomness (if any) from rng and minting agent identities through
// newAgentID. Registered per edge type in NewNetwork's builders map.
type StationBuilder func(edge Edge, rng *rand.Rand, newAgentID func() uint64) *Station

// BlockingPolicy selects how a station at capacity is handled by an
// incoming transfer.
type BlockingPolicy int

const (
	// BlockingLoss lets the departure fire unconditionally; a station at
	// capacity (KindLoss) rejects the arrival itself (spec §4.2).
	BlockingLoss BlockingPolicy = iota
	// BlockingCongestion peeks the departing agent before committing the
	// departure, holding the source station's service back (delay_service)
	// instead of transferring if the destination is at capacity (spec §4.5).
	BlockingCongestion
)

// Selector identifies a subset of edges for Network.Initialize, in one of
// four mutually exclusive forms (spec §4.3 "Initialization selector").
// Exactly one non-empty/non-zero field is expected; EdgeIndices is checked
// first, then EdgePairs, then EdgeTypes, then Count.
type Selector struct {
	EdgeIndices []int
	EdgePairs   [][2]int
	EdgeTypes   []int
	Count       int
}

// Network ties a Topology's stations together into a single discrete-event
// scheduler.
type Network struct {
	NumVertices  int
	OutEdges     [][]int
	InEdges      [][]int
	Edge2Station []*Station
	Router       Router
	Blocking     BlockingPolicy

	stations []*Station // live (finite Time) stations, sorted descending by Time

	NumEvents   int
	CurrentTime float64
	AgentCap    int // soft population brake (spec §4.6); negative means unbounded

	initialized  bool
	previousEdge Edge

	lastEdgeIndex int
	lastEventKind EventKind

	rng         *PartitionedRNG
	nextAgentID uint64
}

// LastEvent reports the edge index and kind of the most recently fired
// event, i.e. the one processed by the last AdvanceOneEvent call. Together
// with CurrentTime this is the (current_time, edge_index, event_kind) tuple
// spec §8's deterministic-replay scenario compares across two Network
// instances. Meaningless before the first event fires.
func (net *Network) LastEvent() (edgeIndex int, kind EventKind) {
	return net.lastEdgeIndex, net.lastEventKind
}

// NewNetwork builds a Network from topo, attaching a station to every edge
// via the builder registered for its Type in builders. An edge whose type
// has no registered builder gets a null-sink station (spec §6 "station
// factory contract": unmapped edge types silently absorb instead of
// erroring). agentCap is the soft population brake (spec §4.6); seed feeds
// a PartitionedRNG so every station and the router draw from independent,
// reproducible streams.
func NewNetwork(topo Topology, builders map[int]StationBuilder, agentCap int, seed int64) (*Network, error) {
	out, in, err := topo.adjacency()
	if err != nil {
		return nil, err
	}

	net := &Network{
		NumVertices: topo.NumVertices,
		OutEdges:    out,
		InEdges:     in,
		AgentCap:    agentCap,
		rng:         NewPartitionedRNG(seed),
	}

	net.Edge2Station = make([]*Station, len(topo.Edges))
	for i, ed := range topo.Edges {
		edge := Edge{Source: ed.Source, Target: ed.Target, Index: i, Type: ed.Type}
		build, ok := builders[ed.Type]
		var st *Station
		if ok {
			st = build(edge, net.rng.ForStation(i), net.newAgentID)
		} else {
			st = NewNullSinkStation(edge)
		}
		net.Edge2Station[i] = st
	}

	net.Router = NewMatrixRouter(net, net.rng.ForRouter())
	return net, nil
}

func (net *Network) newAgentID() uint64 {
	net.nextAgentID++
	return net.nextAgentID
}

// Initialize activates the edges named by sel, making those stations
// eligible to generate exogenous arrivals, then (re)builds the global
// scheduler from every station whose Time is finite. Must be called
// before AdvanceOneEvent/Simulate.
func (net *Network) Initialize(sel Selector) error {
	edges, err := net.resolveSelector(sel)
	if err != nil {
		return err
	}
	for _, idx := range edges {
		if idx < 0 || idx >= len(net.Edge2Station) {
			return ErrUnknownEdge
		}
		net.Edge2Station[idx].Activate()
	}

	net.stations = net.stations[:0]
	for _, st := range net.Edge2Station {
		if !math.IsInf(st.Time, 1) {
			net.stations = bisectInsert(net.stations, st)
		}
	}
	net.initialized = true
	return nil
}

func (net *Network) resolveSelector(sel Selector) ([]int, error) {
	switch {
	case len(sel.EdgeIndices) > 0:
		return sel.EdgeIndices, nil
	case len(sel.EdgePairs) > 0:
		edges := make([]int, 0, len(sel.EdgePairs))
		for _, pair := range sel.EdgePairs {
			found := -1
			for _, idx := range net.OutEdges[pair[0]] {
				if net.Edge2Station[idx].Edge.Target == pair[1] {
					found = idx
					break
				}
			}
			if found < 0 {
				return nil, ErrUnknownEdge
			}
			edges = append(edges, found)
		}
		return edges, nil
	case len(sel.EdgeTypes) > 0:
		wanted := make(map[int]bool, len(sel.EdgeTypes))
		for _, t := range sel.EdgeTypes {
			wanted[t] = true
		}
		var edges []int
		for i, st := range net.Edge2Station {
			if wanted[st.Edge.Type] {
				edges = append(edges, i)
			}
		}
		return edges, nil
	case sel.Count >= 1:
		rng := net.rng.ForSubsystem("init-selector")
		all := make([]int, len(net.Edge2Station))
		for i := range all {
			all[i] = i
		}
		rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		if sel.Count > len(all) {
			return nil, ErrInvalidActiveSelector
		}
		return all[:sel.Count], nil
	default:
		return nil, ErrInvalidActiveSelector
	}
}

// totalAgents sums every station's NumTotalSeen: agents waiting or in
// service plus arrivals already scheduled but not yet fired. Used by the
// agent_cap deactivation check (spec §4.6).
func (net *Network) totalAgents() int {
	total := 0
	for _, st := range net.Edge2Station {
		total += st.NumTotalSeen
	}
	return total
}

// AdvanceOneEvent pops the globally earliest station, fires its next
// event, and (for a departure) performs the zero-lag transfer into the
// destination station chosen by net.Router — both the departure and the
// resulting arrival count as a single global event (spec §3, §4.3).
func (net *Network) AdvanceOneEvent() error {
	if !net.initialized {
		return ErrNotInitialized
	}
	if len(net.stations) == 0 {
		net.CurrentTime = math.Inf(1)
		return nil
	}

	n := len(net.stations)
	q1 := net.stations[n-1]
	net.stations = net.stations[:n-1]
	t1 := q1.Time
	net.CurrentTime = t1

	switch q1.NextEventDescription() {
	case EventArrival:
		return net.fireArrivalEvent(q1)
	case EventDeparture:
		return net.fireDepartureEvent(q1, t1)
	default:
		// Both pool heads are the infinity sentinel: nothing is pending.
		// NextEvent sets q1.Time to +Inf, and the station stays out of the
		// scheduler.
		q1.NextEvent()
		net.lastEdgeIndex, net.lastEventKind = q1.Edge.Index, EventNone
		return nil
	}
}

func (net *Network) fireArrivalEvent(q1 *Station) error {
	if q1.Active && net.AgentCap >= 0 && net.totalAgents() > net.AgentCap-1 {
		q1.Active = false
	}
	q1.NextEvent()
	net.NumEvents++
	net.previousEdge = q1.Edge
	net.lastEdgeIndex, net.lastEventKind = q1.Edge.Index, EventArrival
	if !math.IsInf(q1.Time, 1) {
		net.stations = bisectInsert(net.stations, q1)
	}
	return nil
}

func (net *Network) fireDepartureEvent(q1 *Station, t1 float64) error {
	if net.Blocking == BlockingCongestion {
		peek := q1.PeekDeparture()
		if peek == nil {
			return fmt.Errorf("sim: departure event fired with no departing agent")
		}
		e2, err := peek.DesiredDestination(net, q1.Edge)
		if err != nil {
			return err
		}
		q2 := net.Edge2Station[e2]
		if q2.AtCapacity() {
			q2.NumBlocked++
			peek.Blocked++
			q1.DelayService(t1)
			net.NumEvents++
			net.lastEdgeIndex, net.lastEventKind = q1.Edge.Index, EventDeparture
			if !math.IsInf(q1.Time, 1) {
				net.stations = bisectInsert(net.stations, q1)
			}
			return nil
		}
		_, agent := q1.NextEvent()
		net.NumEvents++
		net.lastEdgeIndex, net.lastEventKind = q1.Edge.Index, EventDeparture
		return net.completeTransfer(q1, q2, agent, t1)
	}

	_, agent := q1.NextEvent()
	net.NumEvents++
	net.lastEdgeIndex, net.lastEventKind = q1.Edge.Index, EventDeparture
	e2, err := agent.DesiredDestination(net, q1.Edge)
	if err != nil {
		return err
	}
	q2 := net.Edge2Station[e2]
	return net.completeTransfer(q1, q2, agent, t1)
}

// completeTransfer hands agent (already popped from q1's departures) to q2
// as an arrival timestamped t1, applies the population cap, fires q2's
// resulting event, and reinserts q1/q2 into the scheduler.
func (net *Network) completeTransfer(q1, q2 *Station, agent *Agent, t1 float64) error {
	t2Before := q2.Time
	agent.Trips++

	q2.AdmitExternal(agent, t1)
	if q2.Active && net.AgentCap >= 0 && net.totalAgents() > net.AgentCap-1 {
		q2.Active = false
	}
	q2.NextEvent()

	net.previousEdge = q2.Edge
	net.reinsertPair(q1, q2, t2Before)
	return nil
}

// reinsertPair restores the scheduler invariant after a transfer between
// q1 (just fired, removed from the collection before firing) and q2
// (possibly already present at t2Before). Mirrors
// _simulate_next_event's bisectSort/oneBisectSort/twoSort/oneSort choice.
func (net *Network) reinsertPair(q1, q2 *Station, t2Before float64) {
	q1Finite := !math.IsInf(q1.Time, 1)
	q2Finite := !math.IsInf(q2.Time, 1)
	q2WasFinite := !math.IsInf(t2Before, 1)
	sameStation := q1 == q2

	if sameStation {
		if q1Finite {
			net.stations = bisectInsert(net.stations, q1)
		}
		return
	}

	if q1Finite {
		switch {
		case q2Finite && q2.Time < t2Before && q2WasFinite:
			net.stations = oneBisectSort(net.stations, q1, q2, t2Before)
		case q2Finite && q2.Time < t2Before:
			net.stations = twoSort(net.stations, q1, q2)
		default:
			net.stations = bisectInsert(net.stations, q1)
		}
		return
	}

	switch {
	case q2Finite && q2.Time < t2Before && q2WasFinite:
		net.stations = oneSort(net.stations, q2, t2Before)
	case q2Finite && q2.Time < t2Before:
		net.stations = bisectInsert(net.stations, q2)
	}
}

// SimulateOpts bounds a Network.Simulate run. Exactly one of N or T is
// expected to be nonzero; N takes priority if both are set (spec §4.3
// "simulate(n=...) and simulate(t=...) compose").
type SimulateOpts struct {
	N int
	T float64
}

// Simulate advances the network event by event until the requested budget
// is exhausted or the scheduler runs dry.
func (net *Network) Simulate(opts SimulateOpts) error {
	if !net.initialized {
		return ErrNotInitialized
	}
	switch {
	case opts.N > 0:
		for i := 0; i < opts.N; i++ {
			if len(net.stations) == 0 {
				return nil
			}
			if err := net.AdvanceOneEvent(); err != nil {
				return err
			}
		}
	case opts.T > 0:
		target := net.CurrentTime + opts.T
		for net.CurrentTime < target {
			if len(net.stations) == 0 {
				return nil
			}
			if err := net.AdvanceOneEvent(); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetRouting installs per-vertex out-edge probability vectors on the
// network's router, which must be a *MatrixRouter (the default). Every
// vector is validated before any is applied, so a single invalid entry
// leaves the whole call without effect (spec §6 "routing control surface").
func (net *Network) SetRouting(vectors map[int][]float64) error {
	mr, ok := net.Router.(*MatrixRouter)
	if !ok {
		return fmt.Errorf("sim: SetRouting requires a MatrixRouter, got %T", net.Router)
	}
	for v, w := range vectors {
		if err := mr.validateVertexWeights(net, v, w); err != nil {
			return err
		}
	}
	for v, w := range vectors {
		mr.applyVertexWeights(v, w)
	}
	return nil
}

// SetRoutingMatrix installs a full VxV routing matrix: mat[origin][dest]
// is the probability of the origin vertex routing to the dest vertex.
// Rows are projected onto each vertex's out-edge order via the out-edge's
// Target vertex. A vertex with no out-edges has nothing to route to, so
// its row is not projected.
func (net *Network) SetRoutingMatrix(mat [][]float64) error {
	if len(mat) != net.NumVertices {
		return ErrInvalidRouting
	}
	vectors := make(map[int][]float64, net.NumVertices)
	for v := 0; v < net.NumVertices; v++ {
		if len(mat[v]) != net.NumVertices {
			return ErrInvalidRouting
		}
		out := net.OutEdges[v]
		if len(out) == 0 {
			continue
		}
		vec := make([]float64, len(out))
		for i, e := range out {
			vec[i] = mat[v][net.Edge2Station[e].Edge.Target]
		}
		vectors[v] = vec
	}
	return net.SetRouting(vectors)
}

// FetchData aggregates every station's collected records.
func (net *Network) FetchData() []Record {
	var all []Record
	for _, st := range net.Edge2Station {
		all = append(all, st.FetchData()...)
	}
	return all
}

// FetchDataByAgent returns only the records belonging to agentID, across
// every station.
func (net *Network) FetchDataByAgent(agentID uint64) []Record {
	var out []Record
	for _, r := range net.FetchData() {
		if r.AgentID == agentID {
			out = append(out, r)
		}
	}
	return out
}

// ClearData empties every station's record log, independent of simulation
// state.
func (net *Network) ClearData() {
	for _, st := range net.Edge2Station {
		st.ClearData()
	}
}

// Clear resets every station's counters, pools and waiting line (see
// Station.Clear; collected records are kept until ClearData) and empties
// the scheduler; Initialize must be called again before advancing events.
func (net *Network) Clear() {
	for _, st := range net.Edge2Station {
		st.Clear()
	}
	net.stations = nil
	net.NumEvents = 0
	net.CurrentTime = 0
	net.initialized = false
}

// Copy returns a snapshot of the network with its own stations, pools,
// queues, counters and scheduler order: advancing either network does not
// change the other's station state. The Router (with its routing vectors)
// and the random streams are not duplicated: both networks share them, so
// random draws made by one advance the streams the other sees, and
// SetRouting on one changes both. Agent identities minted after
// the copy are drawn from the copy's own counter, seeded to continue past
// the original's highest-issued ID.
func (net *Network) Copy() *Network {
	cp := &Network{
		NumVertices:  net.NumVertices,
		AgentCap:     net.AgentCap,
		NumEvents:    net.NumEvents,
		CurrentTime:  net.CurrentTime,
		initialized:   net.initialized,
		previousEdge:  net.previousEdge,
		lastEdgeIndex: net.lastEdgeIndex,
		lastEventKind: net.lastEventKind,
		nextAgentID:   net.nextAgentID,
		rng:          net.rng,
		Blocking:     net.Blocking,
	}
	cp.OutEdges = make([][]int, len(net.OutEdges))
	for i, e := range net.OutEdges {
		cp.OutEdges[i] = append([]int(nil), e...)
	}
	cp.InEdges = make([][]int, len(net.InEdges))
	for i, e := range net.InEdges {
		cp.InEdges[i] = append([]int(nil), e...)
	}

	cp.Edge2Station = make([]*Station, len(net.Edge2Station))
	for i, st := range net.Edge2Station {
		cp.Edge2Station[i] = st.Copy(cp.newAgentID)
	}

	cp.stations = make([]*Station, 0, len(net.stations))
	for _, st := range net.stations {
		for _, cpst := range cp.Edge2Station {
			if cpst.Edge.Index == st.Edge.Index {
				cp.stations = append(cp.stations, cpst)
				break
			}
		}
	}

	cp.Router = net.Router
	return cp
}
