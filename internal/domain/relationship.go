package domain

import (
	"math"
	"time"
)

type Relationship struct {
	ID            string
	ScheduleID    string
	PredecessorID string
	SuccessorID   string
	Type          RelationshipType
	Lag           float64 // signed; negative lag is a lead
	LagUnit       DurationUnit
	CreatedAt     time.Time
}

// Validate rejects self-links and non-finite lags. Negative lags are valid.
// A self-link is the degenerate one-node cycle and reports as such.
func (r *Relationship) Validate() error {
	if r.PredecessorID == r.SuccessorID {
		return CyclicDependencyError{Cycle: []string{r.PredecessorID, r.PredecessorID}}
	}
	if math.IsNaN(r.Lag) || math.IsInf(r.Lag, 0) {
		return InvalidLagError{Predecessor: r.PredecessorID, Successor: r.SuccessorID, Value: r.Lag}
	}
	return nil
}
