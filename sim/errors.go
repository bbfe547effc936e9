package sim

import "errors"

// Sentinel errors surfaced by the public operations in this package.
// Wrap with fmt.Errorf("...: %w", err) at call sites that need more context;
// callers can unwrap with errors.Is against these values.
var (
	// ErrNotInitialized is returned by AdvanceOneEvent/Simulate when called
	// before Initialize.
	ErrNotInitialized = errors.New("sim: network not initialized")

	// ErrInvalidActiveSelector is returned by Initialize when the selector
	// names no edges, pairs or types and Count <= 0 (nActive <= 0 with no
	// explicit selector), or when Count exceeds the number of edges.
	ErrInvalidActiveSelector = errors.New("sim: invalid active-station selector")

	// ErrInvalidRouting is returned by SetRouting when a routing vector's
	// entries don't sum to 1 within tolerance, a vector's length doesn't
	// match the vertex's out-degree, or a matrix isn't V x V.
	ErrInvalidRouting = errors.New("sim: invalid routing probabilities")

	// ErrInvalidServerCount is returned when setting num_servers <= 0.
	ErrInvalidServerCount = errors.New("sim: server count must be positive")

	// ErrUnknownEdge is returned by Initialize when a selector names an edge
	// index outside the network's edge set, or a (source, target) pair with
	// no matching edge.
	ErrUnknownEdge = errors.New("sim: unknown edge index")

	// ErrNoOutEdges is returned when a router must pick an out-edge for a
	// vertex that has none, and no null-sink fallback applies.
	ErrNoOutEdges = errors.New("sim: vertex has no out-edges to route to")

	// ErrTopology is raised at network construction for a malformed graph.
	ErrTopology = errors.New("sim: malformed topology")
)

// routingTolerance is the absolute tolerance used when checking that a
// routing vector's entries sum to 1 (spec: 1e-9).
const routingTolerance = 1e-9
