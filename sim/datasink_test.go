package sim

import "testing"

func TestDataSink_AppendNoOpUnlessCollecting(t *testing.T) {
	d := newDataSink()
	d.append(Record{AgentID: 1})
	if len(d.fetch()) != 0 {
		t.Errorf("append before CollectData(true) should be a no-op")
	}

	d.collecting = true
	d.append(Record{AgentID: 2})
	got := d.fetch()
	if len(got) != 1 || got[0].AgentID != 2 {
		t.Errorf("fetch() = %v, want one record with AgentID 2", got)
	}
}

func TestDataSink_FetchReturnsACopy(t *testing.T) {
	d := newDataSink()
	d.collecting = true
	d.append(Record{AgentID: 1})

	got := d.fetch()
	got[0].AgentID = 999

	again := d.fetch()
	if again[0].AgentID != 1 {
		t.Errorf("mutating a fetched slice should not affect the sink's internal records")
	}
}

func TestDataSink_Clear(t *testing.T) {
	d := newDataSink()
	d.collecting = true
	d.append(Record{AgentID: 1})
	d.clear()
	if len(d.fetch()) != 0 {
		t.Errorf("clear() should empty the record log")
	}
}
