package pipeline

import "github.com/hpitta26/locflow/internal/segment"

// Transition is emitted every time a batch changes state.
type Transition struct {
	JobID     string
	BatchID   string
	From      segment.Status
	To        segment.Status
	Iteration int
	Detail    string
}

// Observer receives structured events from the convergence loop. Emission
// points are fixed by the state machine; implementations decide how to log
// them. Implementations must be safe for concurrent use, since batch
// workers run in parallel.
type Observer interface {
	BatchTransition(t Transition)
	Warning(jobID, detail string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) BatchTransition(Transition) {}
func (NopObserver) Warning(string, string)     {}
