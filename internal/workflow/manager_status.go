package workflow

import "gostjobs/internal/queue"

// StatusSummary represents lightweight worker diagnostics.
type StatusSummary struct {
	Processed int
	Failed    int
	LastError string
	LastTask  *queue.Task
}

// Status returns the latest worker counters.
func (m *Manager) Status() StatusSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := StatusSummary{Processed: m.processed, Failed: m.failed}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.lastTask != nil {
		copy := *m.lastTask
		summary.LastTask = &copy
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastTask(task queue.Task) {
	m.mu.Lock()
	m.lastTask = &task
	m.mu.Unlock()
}

func (m *Manager) recordSuccess() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *Manager) recordFailure(err error) {
	m.mu.Lock()
	m.failed++
	m.lastErr = err
	m.mu.Unlock()
}
