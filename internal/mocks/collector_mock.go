package mocks

import "sync"

// Collector call names as recorded by MockCollector
const (
	CallReset      = "Reset"
	CallStartTimer = "StartTimer"
	CallStopTimer  = "StopTimer"
	CallComparison = "IncrementComparisons"
	CallAssignment = "IncrementAssignments"
	CallIteration  = "IncrementIterations"
)

// MockCollector is a mock implementation of metrics.Collector that keeps the order of calls
type MockCollector struct {
	mu    sync.Mutex
	Calls []string

	Comparisons int
	Assignments int
	Iterations  int
}

// NewMockCollector creates a new mock collector
func NewMockCollector() *MockCollector {
	return &MockCollector{
		Calls: make([]string, 0),
	}
}

func (m *MockCollector) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	switch call {
	case CallComparison:
		m.Comparisons++
	case CallAssignment:
		m.Assignments++
	case CallIteration:
		m.Iterations++
	}
}

func (m *MockCollector) Reset()                { m.record(CallReset) }
func (m *MockCollector) StartTimer()           { m.record(CallStartTimer) }
func (m *MockCollector) StopTimer()            { m.record(CallStopTimer) }
func (m *MockCollector) IncrementComparisons() { m.record(CallComparison) }
func (m *MockCollector) IncrementAssignments() { m.record(CallAssignment) }
func (m *MockCollector) IncrementIterations()  { m.record(CallIteration) }

// First returns the first recorded call, or "" if none
func (m *MockCollector) First() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ""
	}
	return m.Calls[0]
}

// Last returns the last recorded call, or "" if none
func (m *MockCollector) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ""
	}
	return m.Calls[len(m.Calls)-1]
}
