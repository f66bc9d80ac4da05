package entities

// ResourceKind names the kind of native allocation an event refers to.
type ResourceKind string

const (
	ResourceBook             ResourceKind = "book"
	ResourceVec              ResourceKind = "vec"
	ResourceEvaluationResult ResourceKind = "evaluation_result"
	ResourceCString          ResourceKind = "cstring"
)

// LifecycleEventType is the transition a native allocation went through.
type LifecycleEventType string

const (
	// EventAllocated is emitted when a boundary call hands the host a new
	// allocation it now owns.
	EventAllocated LifecycleEventType = "allocated"

	// EventReleased is emitted after the matching free call returned.
	EventReleased LifecycleEventType = "released"

	// EventFinalized is emitted when the garbage collector, not an explicit
	// Close, triggered the release. It always follows an EventReleased.
	EventFinalized LifecycleEventType = "finalized"
)

// LifecycleEvent describes one ownership transition of a native allocation.
type LifecycleEvent struct {
	Kind ResourceKind
	Type LifecycleEventType
}
