package domain

import "container/heap"

// EventQueue is a tag-ordered min-heap of events with duplicate coalescing:
// inserting an event that shares both trigger and tag with an already
// queued event is a no-op. Ties in tag are broken by insertion order (§3).
//
// EventQueue is not safe for concurrent use; the explorer that owns one
// runs single-threaded per §5.
type EventQueue struct {
	items []queuedEvent
	seq   int
}

type queuedEvent struct {
	event Event
	seq   int
}

// NewEventQueue returns an empty event queue.
func NewEventQueue() *EventQueue { return &EventQueue{} }

// Len reports the number of distinct queued events.
func (q *EventQueue) Len() int { return len(q.items) }

// Push inserts an event, coalescing it with an existing entry that shares
// both trigger and tag. It returns true if the event was newly inserted.
func (q *EventQueue) Push(e Event) bool {
	for i := range q.items {
		if q.items[i].event == e {
			return false
		}
	}
	heap.Push((*eventHeap)(q), queuedEvent{event: e, seq: q.seq})
	q.seq++
	return true
}

// PeekTag returns the smallest tag currently queued and whether the queue
// is non-empty.
func (q *EventQueue) PeekTag() (Tag, bool) {
	if len(q.items) == 0 {
		return Tag{}, false
	}
	return q.items[0].event.Tag, true
}

// PopAllAtMinTag removes and returns every event sharing the smallest
// queued tag (§4.2 step 1), in stable insertion order.
func (q *EventQueue) PopAllAtMinTag() []Event {
	if len(q.items) == 0 {
		return nil
	}
	minTag, _ := q.PeekTag()
	var out []Event
	for len(q.items) > 0 && q.items[0].event.Tag.Equal(minTag) {
		item := heap.Pop((*eventHeap)(q)).(queuedEvent)
		out = append(out, item.event)
	}
	return out
}

// Snapshot returns the multiset of currently queued events' trigger
// references, sorted deterministically, for state-space node hashing
// (§3: "hash on ... multiset of queued triggers").
func (q *EventQueue) Snapshot() []TriggerRef {
	refs := make([]TriggerRef, len(q.items))
	for i, it := range q.items {
		refs[i] = it.event.Trigger
	}
	sortTriggerRefs(refs)
	return refs
}

// eventHeap adapts EventQueue to container/heap.Interface without exposing
// heap mechanics on the public type.
type eventHeap EventQueue

func (h *eventHeap) Len() int { return len(h.items) }

func (h *eventHeap) Less(i, j int) bool {
	cmp := h.items[i].event.Tag.Compare(h.items[j].event.Tag)
	if cmp != 0 {
		return cmp < 0
	}
	return h.items[i].seq < h.items[j].seq
}

func (h *eventHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *eventHeap) Push(x any) { h.items = append(h.items, x.(queuedEvent)) }

func (h *eventHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

func sortTriggerRefs(refs []TriggerRef) {
	// Simple insertion sort: queues are small (one compilation unit's
	// worth of in-flight events), and this keeps the dependency-free
	// domain package free of a sort.Slice closure allocation per hash.
	for i := 1; i < len(refs); i++ {
		for j := i; j > 0 && less(refs[j], refs[j-1]); j-- {
			refs[j], refs[j-1] = refs[j-1], refs[j]
		}
	}
}

func less(a, b TriggerRef) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Path < b.Path
}
