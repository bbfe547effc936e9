// Defines the Agent type, the mobile record that flows through a network of
// stations. Grounded on queues_agents.py's Agent/InftyAgent pair, reworked
// so an empty pool's "head" is just math.Inf(1) instead of a tagged object.

package sim

import "math"

// Agent is a lightweight record that moves between stations. It carries
// identity, the time of its next scheduled event, trip counters, and the
// paired timestamps used for per-visit accounting.
//
// Invariant: Time is monotone non-decreasing along a single agent's
// trajectory, except that an arrival time assigned on transfer equals the
// donor station's departure time (no rewind).
type Agent struct {
	ID   uint64 // stable identity
	Time float64
	Type int

	Trips   int // number of stations visited so far
	Blocked int // number of times this agent has been blocked or held back

	// ArrSer holds [arrival_time, service_start_time] for the current visit.
	ArrSer [2]float64

	// RestT holds [rest_start, rest_total]; no station variant in this
	// package reads or writes it.
	RestT [2]float64

	// OD holds [origin_vertex, destination_vertex], set by the caller that
	// admits the agent into the network; purely informational.
	OD [2]int

	// seq breaks ties between agents with equal Time inside a pool,
	// preserving FIFO order among simultaneous events.
	seq uint64

	// queueLenAtArrival is the waiting-line length this agent observed on
	// admission, recorded into the station's data sink at departure.
	queueLenAtArrival int
}

// infinityTime is the sentinel for "no event pending" on an empty pool.
var infinityTime = math.Inf(1)

// newSentinel returns an agent that never leaves a pool's head position
// until a real agent with a finite time is pushed in front of it.
func newSentinel() *Agent {
	return &Agent{Time: infinityTime}
}

// isSentinel reports whether a is the infinity placeholder.
func (a *Agent) isSentinel() bool {
	return a != nil && math.IsInf(a.Time, 1)
}

// SetArrival records t as the agent's next scheduled time on arrival.
func (a *Agent) SetArrival(t float64) {
	a.Time = t
}

// SetDeparture records t as the agent's next scheduled time on departure.
func (a *Agent) SetDeparture(t float64) {
	a.Time = t
}

// AddLoss increments the agent's blocked counter; called when a loss
// station drops the agent instead of serving it.
func (a *Agent) AddLoss() {
	a.Blocked++
}

// DesiredDestination asks the network's router which out-edge this agent
// should take next, given the edge it just departed from. Agents hold only
// indices; all policy lives in the Router.
func (a *Agent) DesiredDestination(net *Network, fromEdge Edge) (int, error) {
	return net.Router.Route(net, fromEdge, a)
}
