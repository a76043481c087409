// Package domain contains pure, dependency-free models for the reactor
// static-scheduling backend: the runtime instance tree, the state-space
// diagram, DAG nodes, and the PretVM instruction set. Nothing in this
// package imports application or infrastructure code.
package domain

import (
	"fmt"
	"math"
)

// Timestamp is a nonnegative logical-time coordinate in nanoseconds.
type Timestamp int64

// ForeverTimestamp is the reserved sentinel that compares greater than any
// finite timestamp. It is used as a horizon value meaning "run until a
// loop is detected" (§3, §4.2).
const ForeverTimestamp Timestamp = math.MaxInt64

// Tag is the pair (timestamp, microstep) that forms a total order over
// logical time. Comparison is lexicographic: timestamp first, microstep
// to break ties within the same timestamp.
type Tag struct {
	Timestamp Timestamp
	Microstep uint32
}

// ForeverTag is the reserved "forever" horizon. It compares greater than
// any finite tag.
var ForeverTag = Tag{Timestamp: ForeverTimestamp, Microstep: math.MaxUint32}

// ZeroTag is the tag at startup: (0, 0).
var ZeroTag = Tag{Timestamp: 0, Microstep: 0}

// Compare returns -1, 0, or 1 as t is less than, equal to, or greater than
// other, using lexicographic order on (Timestamp, Microstep).
func (t Tag) Compare(other Tag) int {
	switch {
	case t.Timestamp < other.Timestamp:
		return -1
	case t.Timestamp > other.Timestamp:
		return 1
	case t.Microstep < other.Microstep:
		return -1
	case t.Microstep > other.Microstep:
		return 1
	default:
		return 0
	}
}

// Before reports whether t strictly precedes other.
func (t Tag) Before(other Tag) bool { return t.Compare(other) < 0 }

// After reports whether t strictly follows other.
func (t Tag) After(other Tag) bool { return t.Compare(other) > 0 }

// Equal reports whether t and other denote the same logical instant.
func (t Tag) Equal(other Tag) bool { return t.Compare(other) == 0 }

// IsForever reports whether t is the reserved forever sentinel.
func (t Tag) IsForever() bool { return t.Timestamp == ForeverTimestamp }

// WithMicrostepIncrement returns a new tag at the same timestamp with the
// microstep advanced by one, used when an action with zero minimum delay
// schedules itself again at the same instant (§4.2 step 3).
func (t Tag) WithMicrostepIncrement() Tag {
	return Tag{Timestamp: t.Timestamp, Microstep: t.Microstep + 1}
}

// String renders the tag as "(timestamp, microstep)", or "(forever)" for
// the sentinel, for diagnostics and test failure messages.
func (t Tag) String() string {
	if t.IsForever() {
		return "(forever)"
	}
	return fmt.Sprintf("(%dns, %d)", t.Timestamp, t.Microstep)
}

// TriggerKind distinguishes the origin of an event's trigger for hashing
// and for the explorer's initial-event construction (§4.2).
type TriggerKind int

const (
	// TriggerStartup denotes the implicit startup trigger.
	TriggerStartup TriggerKind = iota
	// TriggerShutdown denotes the implicit shutdown trigger.
	TriggerShutdown
	// TriggerTimer denotes a timer firing.
	TriggerTimer
	// TriggerPort denotes a value arriving on a port.
	TriggerPort
	// TriggerAction denotes a logical or physical action firing.
	TriggerAction
)

// TriggerRef identifies the trigger of an Event without owning it; it
// borrows into the instance tree via a stable path string built from the
// trigger's owning reactor path and local name. Using a value (not a
// pointer) keeps Event comparable and hashable for duplicate coalescing.
type TriggerRef struct {
	Kind TriggerKind
	// Path is the fully-qualified instance path, e.g. "main.sensor.tick".
	Path string
}

// String renders the trigger reference for diagnostics.
func (r TriggerRef) String() string { return r.Path }

// Event is a (trigger, tag) pair queued for future processing (§3).
type Event struct {
	Trigger TriggerRef
	Tag     Tag
}

// String renders the event for diagnostics and test failure messages.
func (e Event) String() string { return fmt.Sprintf("%s@%s", e.Trigger, e.Tag) }
