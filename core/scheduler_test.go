package core

import "testing"

func TestSchedulerFiresInCycleThenSeqOrder(t *testing.T) {
	s := NewScheduler()
	var order []int

	s.Schedule(EventTimerOverflow, EventPayload{Index: 1}, 10, func(EventPayload) { order = append(order, 1) })
	s.Schedule(EventTimerOverflow, EventPayload{Index: 0}, 5, func(EventPayload) { order = append(order, 0) })
	s.Schedule(EventTimerOverflow, EventPayload{Index: 2}, 5, func(EventPayload) { order = append(order, 2) })

	s.RunUntil(10)

	want := []int{0, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	fired := false
	s.Schedule(EventDMAKick, EventPayload{Advanced: true, Index: 0}, 5, func(EventPayload) { fired = true })
	s.Cancel(EventDMAKick, EventPayload{Advanced: true, Index: 0})
	s.RunUntil(100)
	if fired {
		t.Fatalf("canceled event fired")
	}
}

func TestSchedulerCascadingHandlerObservedWithinSameRunUntil(t *testing.T) {
	s := NewScheduler()
	count := 0
	var reschedule func(EventPayload)
	reschedule = func(EventPayload) {
		count++
		if count < 3 {
			s.Schedule(EventNextScanline, EventPayload{}, 1, reschedule)
		}
	}
	s.Schedule(EventNextScanline, EventPayload{}, 1, reschedule)
	s.RunUntil(3)
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestSchedulerNextEventCycleSkipsCanceled(t *testing.T) {
	s := NewScheduler()
	s.Schedule(EventHBlankStart, EventPayload{}, 5, func(EventPayload) {})
	s.Schedule(EventVBlankStart, EventPayload{}, 10, func(EventPayload) {})
	s.Cancel(EventHBlankStart, EventPayload{})

	next, ok := s.NextEventCycle()
	if !ok || next != 10 {
		t.Fatalf("NextEventCycle = (%d, %v), want (10, true)", next, ok)
	}
}
