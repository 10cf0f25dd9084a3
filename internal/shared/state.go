// internal/shared/state.go
package shared

// State owns every cell shared between the capture engine and the
// resilience controller. One instance per device, built once in main.
//
// Locking rule: each cell has its own mutex and no code path holds two
// of them at once. Network and serial I/O never run under a cell lock.
type State struct {
	Buffer      *Buffer
	Mailbox     *Mailbox
	Annotations *Annotations
}

// NewState allocates the shared cells.
func NewState(bufferSize, annotationCap int) *State {
	return &State{
		Buffer:      NewBuffer(bufferSize),
		Mailbox:     &Mailbox{},
		Annotations: NewAnnotations(annotationCap),
	}
}
