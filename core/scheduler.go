// scheduler.go - Absolute-cycle event priority queue

/*
scheduler.go implements the min-heap described in spec.md §4.5: events are
keyed by absolute cycle count with a monotone sequence number breaking
ties in enqueue order, so that same-cycle events fire deterministically
(spec.md §5's ordering guarantee). Handlers receive the tag's payload and
may themselves schedule further events; RunUntil keeps draining the heap
until the next event is past the requested limit, so a cascading handler
chain never leaves an already-due event unprocessed within one tick.

Grounded on original_source hw/scheduler.rs, generalised from its
PriorityQueue<EventWrapper, Reverse<usize>> into container/heap.
*/

package core

import "container/heap"

// EventTag is the closed enumeration from spec.md §4.5.
type EventTag int

const (
	EventHBlankStart EventTag = iota
	EventVBlankStart
	EventNextScanline
	EventTimerOverflow
	EventDMAKick
	EventCartWordTransferred
	EventCartBlockFinished
	EventAudioSampleDue
	EventAudioChannelStep
	EventAudioChannelReset
	EventGeometryCommandDone
)

// EventPayload carries the tag-specific parameters named in spec.md §4.5:
// (cpu, index) for timer overflow, (cpu, channel) for DMA kick, (cpu) for
// cartridge block finished, and a channel spec for audio events.
type EventPayload struct {
	Advanced bool // which CPU's clock domain this event belongs to
	Index    int  // timer index, DMA channel, or audio channel
}

// EventHandler is invoked when its event's cycle is reached. It may call
// Scheduler.Schedule/Cancel to chain further events.
type EventHandler func(payload EventPayload)

type scheduledEvent struct {
	cycle    uint64
	seq      uint64
	tag      EventTag
	payload  EventPayload
	handler  EventHandler
	canceled bool
	index    int // heap.Interface bookkeeping
}

type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].cycle != h[j].cycle {
		return h[i].cycle < h[j].cycle
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x interface{}) {
	e := x.(*scheduledEvent)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler is the single min-heap driving every time-based subsystem.
type Scheduler struct {
	Cycle uint64
	queue eventHeap
	seq   uint64
}

// NewScheduler returns an empty scheduler at cycle 0.
func NewScheduler() *Scheduler {
	s := &Scheduler{queue: make(eventHeap, 0, 64)}
	heap.Init(&s.queue)
	return s
}

// Schedule enqueues an event at Cycle+delay. It returns nothing; a
// pending event is removed with Cancel, by its tag and payload.
func (s *Scheduler) Schedule(tag EventTag, payload EventPayload, delay uint64, handler EventHandler) {
	e := &scheduledEvent{
		cycle:   s.Cycle + delay,
		seq:     s.seq,
		tag:     tag,
		payload: payload,
		handler: handler,
	}
	s.seq++
	heap.Push(&s.queue, e)
}

// Cancel removes the first pending event matching tag and payload. Per
// spec.md §9's resolved open question, a timer control-register write
// always cancels any pending overflow for that (cpu, index) before
// scheduling a new one, regardless of whether the new event ends up
// being scheduled.
func (s *Scheduler) Cancel(tag EventTag, payload EventPayload) {
	for _, e := range s.queue {
		if !e.canceled && e.tag == tag && e.payload == payload {
			e.canceled = true
			return
		}
	}
}

// NextEventCycle returns the absolute cycle of the earliest pending,
// non-canceled event, or (0, false) if the queue is empty.
func (s *Scheduler) NextEventCycle() (uint64, bool) {
	for len(s.queue) > 0 {
		top := s.queue[0]
		if top.canceled {
			heap.Pop(&s.queue)
			continue
		}
		return top.cycle, true
	}
	return 0, false
}

// RunUntil advances Cycle to limit, firing every event due at or before
// limit (advancing Cycle to each event's own cycle first, so a handler
// observes the scheduler's clock exactly at its own firing time).
// Handlers may schedule further events, including ones due within this
// same call; RunUntil keeps draining until nothing more is due.
func (s *Scheduler) RunUntil(limit uint64) {
	for {
		if len(s.queue) == 0 {
			break
		}
		top := s.queue[0]
		if top.canceled {
			heap.Pop(&s.queue)
			continue
		}
		if top.cycle > limit {
			break
		}
		heap.Pop(&s.queue)
		s.Cycle = top.cycle
		top.handler(top.payload)
	}
	if s.Cycle < limit {
		s.Cycle = limit
	}
}
