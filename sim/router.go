// Router policies decide which out-edge an agent takes when entering a
// vertex. Grounded on the teacher's RoutingPolicy interface family
// (sim/routing.go: RoundRobin, LeastLoaded, WeightedScoring's argmax/tie
// rule), reinterpreted for per-vertex out-edge selection instead of
// per-request instance selection.

package sim

import "math/rand"

// Router selects the out-edge a departing agent takes next, given the edge
// it just departed from. Implementations receive the network so they can
// read out-edge lists and station state; agents and stations hold only
// indices (spec §9 Design Note: re-architect cyclic back-references as
// message-passing).
type Router interface {
	Route(net *Network, fromEdge Edge, agent *Agent) (int, error)
}

// UniformRouter picks uniformly among the entered vertex's out-edges. This
// is the spec's default policy.
type UniformRouter struct {
	rng *rand.Rand
}

// NewUniformRouter builds a UniformRouter drawing from rng.
func NewUniformRouter(rng *rand.Rand) *UniformRouter {
	return &UniformRouter{rng: rng}
}

// Route implements Router for UniformRouter.
func (r *UniformRouter) Route(net *Network, fromEdge Edge, _ *Agent) (int, error) {
	out := net.OutEdges[fromEdge.Target]
	if len(out) == 0 {
		return 0, ErrNoOutEdges
	}
	return out[r.rng.Intn(len(out))], nil
}

// MatrixRouter routes according to an explicit per-vertex probability
// vector over out-edges, set via Network.SetRouting. The k-th entry of a
// vertex's vector is the probability of taking the k-th listed out-edge.
type MatrixRouter struct {
	rng     *rand.Rand
	weights [][]float64 // weights[vertex][k] aligned with Network.OutEdges[vertex][k]
}

// NewMatrixRouter builds a MatrixRouter with a uniform vector per vertex,
// matching the spec default until SetRouting overrides it.
func NewMatrixRouter(net *Network, rng *rand.Rand) *MatrixRouter {
	mr := &MatrixRouter{rng: rng, weights: make([][]float64, net.NumVertices)}
	for v, out := range net.OutEdges {
		if len(out) == 0 {
			continue
		}
		w := make([]float64, len(out))
		p := 1.0 / float64(len(out))
		for i := range w {
			w[i] = p
		}
		mr.weights[v] = w
	}
	return mr
}

// Route implements Router for MatrixRouter.
func (r *MatrixRouter) Route(net *Network, fromEdge Edge, _ *Agent) (int, error) {
	out := net.OutEdges[fromEdge.Target]
	if len(out) == 0 {
		return 0, ErrNoOutEdges
	}
	w := r.weights[fromEdge.Target]
	u := r.rng.Float64()
	cum := 0.0
	for i, p := range w {
		cum += p
		if u < cum {
			return out[i], nil
		}
	}
	// Floating-point rounding may leave a sliver of mass unassigned;
	// fall through to the last out-edge rather than erroring.
	return out[len(out)-1], nil
}

// validateVertexWeights checks (without installing) that weights is a
// legal probability vector for vertex: length matches out-degree and
// entries sum to 1 within routingTolerance.
func (r *MatrixRouter) validateVertexWeights(net *Network, vertex int, weights []float64) error {
	if vertex < 0 || vertex >= len(net.OutEdges) {
		return ErrInvalidRouting
	}
	out := net.OutEdges[vertex]
	if len(weights) != len(out) {
		return ErrInvalidRouting
	}
	sum := 0.0
	for _, p := range weights {
		sum += p
	}
	if diff := sum - 1.0; diff > routingTolerance || diff < -routingTolerance {
		return ErrInvalidRouting
	}
	return nil
}

// applyVertexWeights installs an already-validated probability vector.
func (r *MatrixRouter) applyVertexWeights(vertex int, weights []float64) {
	cp := make([]float64, len(weights))
	copy(cp, weights)
	r.weights[vertex] = cp
}

// VertexWeights returns a copy of the current routing vector for vertex
// (spec §6 control surface: reading back routing_probs).
func (r *MatrixRouter) VertexWeights(vertex int) []float64 {
	w := r.weights[vertex]
	cp := make([]float64, len(w))
	copy(cp, w)
	return cp
}

// RoundRobinRouter cycles a vertex's out-edges in listed order, independent
// per vertex. Grounded on the teacher's RoundRobin.Route counter-modulo
// approach.
type RoundRobinRouter struct {
	counters map[int]int
}

// NewRoundRobinRouter builds an empty RoundRobinRouter.
func NewRoundRobinRouter() *RoundRobinRouter {
	return &RoundRobinRouter{counters: make(map[int]int)}
}

// Route implements Router for RoundRobinRouter.
func (r *RoundRobinRouter) Route(net *Network, fromEdge Edge, _ *Agent) (int, error) {
	out := net.OutEdges[fromEdge.Target]
	if len(out) == 0 {
		return 0, ErrNoOutEdges
	}
	i := r.counters[fromEdge.Target]
	r.counters[fromEdge.Target] = i + 1
	return out[i%len(out)], nil
}

// LeastQueuedRouter routes to the out-edge station with the smallest
// NumInSystem, ties broken by out-edge listing order. Grounded on the
// teacher's LeastLoaded.Route effective-load argmin and tie rule.
type LeastQueuedRouter struct{}

// Route implements Router for LeastQueuedRouter.
func (r *LeastQueuedRouter) Route(net *Network, fromEdge Edge, _ *Agent) (int, error) {
	out := net.OutEdges[fromEdge.Target]
	if len(out) == 0 {
		return 0, ErrNoOutEdges
	}
	best := out[0]
	bestLoad := net.Edge2Station[best].NumInSystem
	for _, e := range out[1:] {
		load := net.Edge2Station[e].NumInSystem
		if load < bestLoad {
			bestLoad = load
			best = e
		}
	}
	return best, nil
}
