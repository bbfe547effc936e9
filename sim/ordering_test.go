package sim

import "testing"

func stTime(t float64) *Station {
	return &Station{Time: t}
}

func times(stations []*Station) []float64 {
	out := make([]float64, len(stations))
	for i, s := range stations {
		out[i] = s.Time
	}
	return out
}

func TestBisectInsert_KeepsDescendingOrder(t *testing.T) {
	stations := []*Station{stTime(10), stTime(7), stTime(3)}
	stations = bisectInsert(stations, stTime(5))

	got := times(stations)
	want := []float64{10, 7, 5, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bisectInsert order = %v, want %v", got, want)
		}
	}
}

func TestBisectInsert_IntoEmpty(t *testing.T) {
	stations := bisectInsert(nil, stTime(1))
	if len(stations) != 1 || stations[0].Time != 1 {
		t.Fatalf("bisectInsert into empty slice = %v", stations)
	}
}

func TestRemoveStation_ByPointerIdentity(t *testing.T) {
	a, b, c := stTime(3), stTime(3), stTime(1) // a and b share a Time value
	stations := []*Station{a, b, c}

	stations = removeStation(stations, b)
	if len(stations) != 2 || stations[0] != a || stations[1] != c {
		t.Fatalf("removeStation should remove b specifically even with a tied Time, got %v", stations)
	}
}

func TestTwoSort_InsertsBothNewStations(t *testing.T) {
	stations := []*Station{stTime(9)}
	q1, q2 := stTime(5), stTime(7)
	stations = twoSort(stations, q1, q2)

	got := times(stations)
	want := []float64{9, 7, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("twoSort order = %v, want %v", got, want)
		}
	}
}

func TestOneBisectSort_RelocatesQ2AndInsertsQ1(t *testing.T) {
	q2 := stTime(8)
	stations := []*Station{stTime(10), q2, stTime(2)}

	q2.Time = 4 // q2 moved down from 8 to 4
	q1 := stTime(6)
	stations = oneBisectSort(stations, q1, q2, 8)

	got := times(stations)
	want := []float64{10, 6, 4, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("oneBisectSort order = %v, want %v", got, want)
		}
	}
}

func TestOneSort_RelocatesQ2Only(t *testing.T) {
	q2 := stTime(8)
	stations := []*Station{stTime(10), q2, stTime(2)}

	q2.Time = 3
	stations = oneSort(stations, q2, 8)

	got := times(stations)
	want := []float64{10, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("oneSort order = %v, want %v", got, want)
		}
	}
}
