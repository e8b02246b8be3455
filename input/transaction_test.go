package input

import "testing"

func TestRequireShiftUpdateMaxMerge(t *testing.T) {
	sequences := [][]ShiftUpdate{
		{ShiftUpdateNow, ShiftUpdateLater},
		{ShiftUpdateLater, ShiftUpdateNow},
		{ShiftNoUpdate, ShiftUpdateLater, ShiftUpdateNow, ShiftNoUpdate},
	}
	for _, seq := range sequences {
		tr := NewTransaction(nil)
		for _, u := range seq {
			tr.RequireShiftUpdate(u)
		}
		if got := tr.RequiredShiftUpdate(); got != ShiftUpdateLater {
			t.Errorf("sequence %v merged to %v, want ShiftUpdateLater", seq, got)
		}
	}
}

func TestRequireShiftUpdateNowOnly(t *testing.T) {
	tr := NewTransaction(nil)
	tr.RequireShiftUpdate(ShiftUpdateNow)
	tr.RequireShiftUpdate(ShiftNoUpdate)
	if got := tr.RequiredShiftUpdate(); got != ShiftUpdateNow {
		t.Errorf("merged requirement = %v, want ShiftUpdateNow", got)
	}
}

func TestTransactionStartsWithNoUpdate(t *testing.T) {
	tr := NewTransaction(nil)
	if tr.RequiredShiftUpdate() != ShiftNoUpdate {
		t.Error("fresh transaction must require no update")
	}
}
