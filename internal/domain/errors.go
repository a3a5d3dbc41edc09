package domain

import (
	"errors"
	"fmt"
	"strings"
)

// The engine distinguishes two failure classes. Structural errors mean the
// persisted graph is malformed (dangling references, cycles) and no schedule
// can be computed for it. Input errors mean a single field value is invalid
// (negative duration, non-finite lag). Both abort a recompute without
// touching previously persisted dates.

// StructuralError is implemented by errors caused by the shape of the
// schedule data rather than a single field value.
type StructuralError interface {
	error
	structural()
}

// InputError is implemented by errors caused by an invalid field value.
type InputError interface {
	error
	invalidInput()
}

// IsStructural reports whether any error in the chain is a StructuralError.
func IsStructural(err error) bool {
	var se StructuralError
	return errors.As(err, &se)
}

// IsInvalidInput reports whether any error in the chain is an InputError.
func IsInvalidInput(err error) bool {
	var ie InputError
	return errors.As(err, &ie)
}

// DanglingReferenceError reports an edge or assignment pointing at an entity
// that does not exist in the loaded schedule.
type DanglingReferenceError struct {
	Kind  string // what kind of entity is missing: "activity", "wbs node", "resource"
	RefID string // the id that failed to resolve
	Via   string // the referencing entity, for context
}

func (e DanglingReferenceError) Error() string {
	if e.Via == "" {
		return fmt.Sprintf("dangling reference: %s %q does not exist", e.Kind, e.RefID)
	}
	return fmt.Sprintf("dangling reference: %s %q referenced by %s does not exist", e.Kind, e.RefID, e.Via)
}

func (DanglingReferenceError) structural() {}

// CyclicDependencyError reports a relationship cycle in the activity network.
// Cycle lists the participating activity ids in walk order with the starting
// id repeated at the end to show closure, e.g. ["A", "B", "C", "A"].
type CyclicDependencyError struct {
	Cycle []string
}

func (e CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (CyclicDependencyError) structural() {}

// WbsCycleError reports a parent chain in the WBS that loops back on itself.
type WbsCycleError struct {
	Cycle []string
}

func (e WbsCycleError) Error() string {
	return fmt.Sprintf("wbs hierarchy cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (WbsCycleError) structural() {}

// UnscheduledPredecessorError reports activities left unscheduled after a
// topological walk exhausted its ready queue. With the cycle gate in front
// of the scheduler this should be unreachable; it exists so a walk can never
// silently drop activities.
type UnscheduledPredecessorError struct {
	IDs []string
}

func (e UnscheduledPredecessorError) Error() string {
	return fmt.Sprintf("%d activities left unscheduled (unresolvable predecessor chain): %s",
		len(e.IDs), strings.Join(e.IDs, ", "))
}

func (UnscheduledPredecessorError) structural() {}

// InvalidDurationError reports a duration value the engine cannot schedule.
type InvalidDurationError struct {
	Activity string // activity code if known, else id
	Value    float64
	Reason   string
}

func (e InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %g on activity %s: %s", e.Value, e.Activity, e.Reason)
}

func (InvalidDurationError) invalidInput() {}

// InvalidLagError reports a lag value the engine cannot schedule. Negative
// lags are valid; this fires for non-finite values only.
type InvalidLagError struct {
	Predecessor string
	Successor   string
	Value       float64
}

func (e InvalidLagError) Error() string {
	return fmt.Sprintf("invalid lag %g on relationship %s -> %s", e.Value, e.Predecessor, e.Successor)
}

func (InvalidLagError) invalidInput() {}

// InvalidTransitionError reports a schedule lifecycle move that is not
// permitted from the current status.
type InvalidTransitionError struct {
	From ScheduleStatus
	To   ScheduleStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition schedule from %s to %s", e.From, e.To)
}
