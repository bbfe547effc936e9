// pool is the time-ordered min-priority structure backing a station's
// arrivals and departures. Grounded on the teacher's container/heap usage
// in sim/simulator.go's EventQueue and sim/cluster/event_heap.go's
// EventHeap, adapted to order *Agent by Time with a stable FIFO tie-break
// (spec §4.1: "ties between two agents within the same pool break by
// insertion order").
//
// A pool always contains the infinity sentinel so its head is defined even
// when empty; this mirrors queues_agents.py's InftyAgent without a
// separate type.

package sim

import "container/heap"

type pool struct {
	agents   agentHeap
	nextSeq  uint64
}

func newPool() *pool {
	p := &pool{}
	heap.Init(&p.agents)
	p.push(newSentinel())
	return p
}

// head returns the agent at the front of the pool (never popped implicitly).
func (p *pool) head() *Agent {
	return p.agents[0]
}

// push inserts an agent, assigning it a sequence number for stable ordering.
func (p *pool) push(a *Agent) {
	p.nextSeq++
	a.seq = p.nextSeq
	heap.Push(&p.agents, a)
}

// pop removes and returns the head agent. Never called when the only
// remaining element is the sentinel, since the sentinel's Time is always
// +Inf and is therefore only ever the head of an otherwise-empty pool.
func (p *pool) pop() *Agent {
	return heap.Pop(&p.agents).(*Agent)
}

// count returns the number of real (non-sentinel) agents held.
func (p *pool) count() int {
	return len(p.agents) - 1
}

// deepCopy returns an independent pool holding copies of every agent.
func (p *pool) deepCopy() *pool {
	cp := &pool{nextSeq: p.nextSeq}
	cp.agents = make(agentHeap, len(p.agents))
	for i, a := range p.agents {
		na := *a
		cp.agents[i] = &na
	}
	return cp
}

type agentHeap []*Agent

func (h agentHeap) Len() int { return len(h) }

func (h agentHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h agentHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *agentHeap) Push(x any) {
	*h = append(*h, x.(*Agent))
}

func (h *agentHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
