package scheduler

import "sync"

// InFlightSet tracks execution IDs currently running in this engine. The
// execution ID is derived from workflow ID and event ID, so redelivered or
// duplicated trigger events collapse onto the same entry and are dropped.
type InFlightSet struct {
	mu      sync.Mutex
	entries map[string]string // execution ID -> workflow ID
}

func NewInFlightSet() *InFlightSet {
	return &InFlightSet{entries: make(map[string]string)}
}

// TryAdd claims the execution ID. It returns false when the ID is already
// claimed, which means the same workflow/event pair is already running.
func (s *InFlightSet) TryAdd(executionID, workflowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[executionID]; exists {
		return false
	}

	s.entries[executionID] = workflowID

	return true
}

func (s *InFlightSet) Remove(executionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, executionID)
}

// HasWorkflow reports whether any execution of the given workflow is in
// flight.
func (s *InFlightSet) HasWorkflow(workflowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, wfID := range s.entries {
		if wfID == workflowID {
			return true
		}
	}

	return false
}

func (s *InFlightSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
