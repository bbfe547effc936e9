// Station is the per-edge event processor: two time-ordered agent pools
// (arrivals, departures), a FIFO waiting line, a server count, and the
// single "next event time" that summarises its state to the network
// scheduler. Grounded on queues_agents.py's QueueServer/LossQueue pair,
// collapsed into one struct with a Kind enum instead of subclasses (per
// the capability-table Design Note in spec §9), in the style of the
// teacher's interface-dispatched policy families (sim/routing.go).

package sim

import "fmt"

// Kind selects a station's event-machine variant.
type Kind int

const (
	KindBasic Kind = iota
	KindLoss
	KindResource
	KindInformational
	KindNullSink
)

// Unbounded marks a station's NumServers as having no finite server count.
const Unbounded = -1

// Edge identifies the graph edge a station sits on.
type Edge struct {
	Source int
	Target int
	Index  int
	Type   int
}

// EventKind is the outcome of inspecting or firing a station's next event.
type EventKind int

const (
	EventNone EventKind = iota
	EventArrival
	EventDeparture
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventDeparture:
		return "departure"
	default:
		return "none"
	}
}

// Station owns its pools, queue, and counters exclusively; only the
// Network that holds it may mutate it, and only between event ticks or
// from within AdvanceOneEvent.
type Station struct {
	Edge Edge
	Kind Kind

	NumServers int // positive, or Unbounded
	Buffer     int // loss variant: max agents beyond servers; negative = unbounded (never blocks)

	arrivals   *pool
	departures *pool
	queue      []*Agent

	NumArrivals   int
	NumDepartures int
	NumInSystem   int
	NumTotalSeen  int
	NumBlocked    int

	LocalTime        float64
	Time             float64
	Active           bool
	NextCreationTime float64

	ArrivalF DelayFunc
	ServiceF DelayFunc

	// newAgentID assigns identity to agents this station creates itself
	// (exogenous arrivals); injected by the owning Network so identities
	// are unique network-wide.
	newAgentID func() uint64

	sink *dataSink
}

// NewStation constructs a station for the given edge. arrivalF is ignored
// for KindNullSink and KindInformational stations that never self-generate
// arrivals, but may still be nil in that case.
func NewStation(edge Edge, kind Kind, numServers, buffer int, arrivalF, serviceF DelayFunc, newAgentID func() uint64) *Station {
	s := &Station{
		Edge:       edge,
		Kind:       kind,
		NumServers: numServers,
		Buffer:     buffer,
		arrivals:   newPool(),
		departures: newPool(),
		Time:       infinityTime,
		ArrivalF:   arrivalF,
		ServiceF:   serviceF,
		newAgentID: newAgentID,
		sink:       newDataSink(),
	}
	if kind == KindInformational {
		s.sink.collecting = true
	}
	return s
}

// NewNullSinkStation builds the station used for edge types with no
// registered station class (spec §6 "station factory contract"): it
// silently absorbs every agent routed to it.
func NewNullSinkStation(edge Edge) *Station {
	return NewStation(edge, KindNullSink, Unbounded, -1, nil, nil, nil)
}

// Activate marks the station as able to admit exogenous arrivals and
// schedules the first one if the arrival stream is due.
func (s *Station) Activate() {
	s.Active = true
	s.maybeScheduleArrival()
}

// Deactivate stops exogenous arrival generation; in-flight agents continue
// to be served.
func (s *Station) Deactivate() {
	s.Active = false
}

// SetNumServers changes the server count. Rejected (ErrInvalidServerCount)
// if n <= 0; the station is left unchanged.
func (s *Station) SetNumServers(n int) error {
	if n <= 0 {
		return ErrInvalidServerCount
	}
	s.NumServers = n
	return nil
}

// Preempt temporarily withholds n servers from a KindResource station
// (e.g. an external resource manager reclaiming capacity). Returns an
// error if the station isn't KindResource or n would drop the effective
// count to zero or below.
func (s *Station) Preempt(n int) error {
	if s.Kind != KindResource {
		return fmt.Errorf("sim: Preempt only valid on KindResource stations")
	}
	if n <= 0 || s.NumServers-n <= 0 {
		return ErrInvalidServerCount
	}
	s.NumServers -= n
	return nil
}

// Release returns n previously preempted servers to a KindResource station.
func (s *Station) Release(n int) error {
	if s.Kind != KindResource {
		return fmt.Errorf("sim: Release only valid on KindResource stations")
	}
	if n <= 0 {
		return ErrInvalidServerCount
	}
	s.NumServers += n
	return nil
}

// CollectData turns record collection on or off (spec §6 collect_data /
// stop_collecting_data).
func (s *Station) CollectData(on bool) {
	s.sink.collecting = on
}

// FetchData returns the records appended since the last ClearData.
func (s *Station) FetchData() []Record {
	return s.sink.fetch()
}

// ClearData empties the station's record log without touching simulation
// state.
func (s *Station) ClearData() {
	s.sink.clear()
}

// AtCapacity reports whether this station would reject (loss variant) or
// hold back (congestion policy) the next arrival. Always false for
// variants other than KindLoss, and false for a loss station with an
// unbounded buffer.
func (s *Station) AtCapacity() bool {
	if s.Kind != KindLoss || s.Buffer < 0 {
		return false
	}
	return s.NumInSystem >= s.NumServers+s.Buffer
}

// BlockRatio returns NumBlocked / NumArrivals, or 0 if no arrivals yet.
func (s *Station) BlockRatio() float64 {
	if s.NumArrivals == 0 {
		return 0
	}
	return float64(s.NumBlocked) / float64(s.NumArrivals)
}

func (s *Station) withinServerCapacity() bool {
	return s.NumServers == Unbounded || s.NumInSystem <= s.NumServers
}

func (s *Station) recomputeTime() {
	a, d := s.arrivals.head().Time, s.departures.head().Time
	if a < d {
		s.Time = a
	} else {
		s.Time = d
	}
}

// maybeScheduleArrival draws the next exogenous arrival if one is due,
// per spec §4.1 "Exogenous arrival scheduling".
func (s *Station) maybeScheduleArrival() {
	if !s.Active || s.Kind == KindNullSink || s.Kind == KindInformational || s.ArrivalF == nil {
		return
	}
	if s.LocalTime < s.NextCreationTime {
		return
	}
	next := s.ArrivalF(s.LocalTime)
	CheckDelay(s.LocalTime, next)
	s.NextCreationTime = next

	a := &Agent{Time: next}
	if s.newAgentID != nil {
		a.ID = s.newAgentID()
	}
	s.NumTotalSeen++
	s.arrivals.push(a)
	s.recomputeTime()
}

// NextEventDescription reports which kind of event would fire next without
// mutating station state. When both pool heads hold the same finite time
// the arrival fires first; EventNone only when both pools are empty.
func (s *Station) NextEventDescription() EventKind {
	a, d := s.arrivals.head().Time, s.departures.head().Time
	switch {
	case d < a:
		return EventDeparture
	case a < infinityTime:
		return EventArrival
	default:
		return EventNone
	}
}

// PeekDeparture returns the agent at the head of the departures pool
// without removing it, or nil if the pool is empty. Used by the network's
// congestion (held-back blocking) policy to inspect the would-be
// transferring agent before deciding whether to let the departure fire.
func (s *Station) PeekDeparture() *Agent {
	h := s.departures.head()
	if h.isSentinel() {
		return nil
	}
	return h
}

// DelayService extends the head departure's service time by resampling it
// via ServiceF(now), then reinserts it. Used by the network's congestion
// policy when the head departure cannot be released because its
// destination is at capacity.
func (s *Station) DelayService(now float64) {
	a := s.departures.pop()
	next := s.ServiceF(now)
	CheckDelay(now, next)
	a.SetDeparture(next)
	s.departures.push(a)
	s.recomputeTime()
}

// AdmitExternal records an agent transferred from another station.
// It records t as the agent's arrival time and deposits it into the
// arrivals pool; the caller (Network.AdvanceOneEvent) must immediately
// call NextEvent so the transfer is processed through the same
// admission logic as an exogenous arrival (spec §4.3 step 3).
func (s *Station) AdmitExternal(agent *Agent, t float64) {
	agent.SetArrival(t)
	if s.Kind == KindNullSink {
		s.NumArrivals++
		s.NumTotalSeen++
		return
	}
	s.NumTotalSeen++
	s.arrivals.push(agent)
	s.recomputeTime()
}

// NextEvent fires whichever pool head is earlier and returns the kind of
// event that fired. On EventDeparture the departed agent is returned as
// the one to transfer to its next station; in every other case the
// returned agent is nil.
func (s *Station) NextEvent() (EventKind, *Agent) {
	a, d := s.arrivals.head().Time, s.departures.head().Time
	switch {
	case d < a:
		return EventDeparture, s.fireDeparture()
	case a < infinityTime:
		s.fireArrival()
		return EventArrival, nil
	default:
		s.Time = infinityTime
		return EventNone, nil
	}
}

func (s *Station) fireArrival() {
	a := s.arrivals.pop()
	s.LocalTime = a.Time
	s.maybeScheduleArrival()

	if s.AtCapacity() {
		// Arrival blocked (loss variant): immediate release, no service.
		s.NumBlocked++
		s.NumArrivals++
		s.NumInSystem++
		a.AddLoss()
		a.ArrSer[0] = s.LocalTime
		a.ArrSer[1] = s.LocalTime
		a.queueLenAtArrival = 0
		a.SetDeparture(s.LocalTime)
		s.departures.push(a)
	} else {
		s.NumInSystem++
		s.NumArrivals++
		a.ArrSer[0] = a.Time
		a.queueLenAtArrival = len(s.queue)
		if s.withinServerCapacity() {
			a.ArrSer[1] = a.Time
			next := s.ServiceF(a.Time)
			CheckDelay(a.Time, next)
			a.SetDeparture(next)
			s.departures.push(a)
		} else {
			s.queue = append(s.queue, a)
		}
	}
	s.recomputeTime()
}

func (s *Station) fireDeparture() *Agent {
	d := s.departures.pop()
	s.LocalTime = d.Time
	s.NumDepartures++
	s.NumTotalSeen--
	s.NumInSystem--

	if len(s.queue) > 0 {
		w := s.queue[0]
		s.queue = s.queue[1:]
		w.ArrSer[1] = s.LocalTime
		next := s.ServiceF(s.LocalTime)
		CheckDelay(s.LocalTime, next)
		w.SetDeparture(next)
		s.departures.push(w)
	}
	s.recomputeTime()

	s.sink.append(Record{
		AgentID:              d.ID,
		ArrivalTime:          d.ArrSer[0],
		ServiceStartTime:     d.ArrSer[1],
		DepartureTime:        d.Time,
		QueueLengthOnArrival: d.queueLenAtArrival,
		EdgeIndex:            s.Edge.Index,
	})
	return d
}

// Clear resets all counters, empties both pools, and clears the waiting
// line. Leaves Edge, Kind, NumServers, Buffer, and delay functions intact.
func (s *Station) Clear() {
	s.NumArrivals = 0
	s.NumDepartures = 0
	s.NumInSystem = 0
	s.NumTotalSeen = 0
	s.NumBlocked = 0
	s.LocalTime = 0
	s.Time = infinityTime
	s.Active = false
	s.NextCreationTime = 0
	s.queue = nil
	s.arrivals = newPool()
	s.departures = newPool()
}

// StationSimulateOpts bounds a standalone Station.Simulate run. Zero fields
// are unset; when more than one field is set, the run stops as soon as any
// one of those budgets is reached.
type StationSimulateOpts struct {
	N                int
	Departures       int
	ExternalArrivals int
	T                float64
}

// Simulate drives this station in isolation, firing events one at a time
// until the requested budget is exhausted. Useful for exercising a single
// station's admission and service logic without a surrounding Network;
// departures simply leave the station (there is nowhere to route them).
func (s *Station) Simulate(opts StationSimulateOpts) {
	startArrivals := s.NumArrivals
	startDepartures := s.NumDepartures
	startTime := s.LocalTime
	fired := 0
	for {
		switch {
		case opts.N > 0 && fired >= opts.N:
			return
		case opts.Departures > 0 && s.NumDepartures-startDepartures >= opts.Departures:
			return
		case opts.ExternalArrivals > 0 && s.NumArrivals-startArrivals >= opts.ExternalArrivals:
			return
		case opts.T > 0 && s.LocalTime >= startTime+opts.T:
			return
		case opts.N == 0 && opts.Departures == 0 && opts.ExternalArrivals == 0 && opts.T == 0:
			return
		}
		ev, _ := s.NextEvent()
		if ev == EventNone {
			return
		}
		fired++
	}
}

// Copy returns a deep copy of the station's pools, waiting line, counters
// and records: advancing either does not change the other's state. The
// ArrivalF/ServiceF functions are shared, so a random delay function draws
// from the same stream for both stations.
func (s *Station) Copy(newAgentID func() uint64) *Station {
	cp := *s
	cp.arrivals = s.arrivals.deepCopy()
	cp.departures = s.departures.deepCopy()
	cp.queue = make([]*Agent, len(s.queue))
	for i, a := range s.queue {
		qa := *a
		cp.queue[i] = &qa
	}
	recs := s.sink.fetch()
	cp.sink = newDataSink()
	cp.sink.collecting = s.sink.collecting
	cp.sink.records = recs
	cp.newAgentID = newAgentID
	return &cp
}
