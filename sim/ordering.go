// Ordering helpers for the network's global station collection, sorted
// descending by Time so the earliest station to fire is the tail element.
// At most two stations change position per event; these helpers avoid a
// full resort by exploiting that, per the Design Note in spec §4.4.
//
// Grounded on queue_network.py's bisectSort / oneBisectSort / twoSort /
// oneSort free functions. The reference locates a station's old slot by
// re-scanning for its previous time key; since Go stations are unique
// pointers rather than value-compared list entries, removal here is done
// by pointer identity instead — same O(n) cost, no key ambiguity.

package sim

import "sort"

// bisectInsert inserts q into stations (sorted descending by Time),
// assuming q is not already present. O(log n) compare, O(n) shift.
func bisectInsert(stations []*Station, q *Station) []*Station {
	i := sort.Search(len(stations), func(i int) bool { return stations[i].Time <= q.Time })
	stations = append(stations, nil)
	copy(stations[i+1:], stations[i:])
	stations[i] = q
	return stations
}

// removeStation removes q from stations by pointer identity, if present.
func removeStation(stations []*Station, q *Station) []*Station {
	for i, s := range stations {
		if s == q {
			return append(stations[:i], stations[i+1:]...)
		}
	}
	return stations
}

// oneBisectSort handles the case where q1 changed and another station q2,
// already present, moved from t2Before to a new smaller time.
func oneBisectSort(stations []*Station, q1, q2 *Station, t2Before float64) []*Station {
	stations = removeStation(stations, q2)
	stations = bisectInsert(stations, q1)
	stations = bisectInsert(stations, q2)
	return stations
}

// twoSort handles the case where both q1 and q2 changed and q2 was
// previously absent (its time was infinite).
func twoSort(stations []*Station, q1, q2 *Station) []*Station {
	stations = bisectInsert(stations, q1)
	stations = bisectInsert(stations, q2)
	return stations
}

// oneSort handles the case where only q2 changed (q1 became infinite and
// is excluded from the collection); removes q2 from its old slot and
// reinserts it.
func oneSort(stations []*Station, q2 *Station, t2Before float64) []*Station {
	stations = removeStation(stations, q2)
	stations = bisectInsert(stations, q2)
	return stations
}
