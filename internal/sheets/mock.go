package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	Err       error
	Schedules []model.Loan
	Budgets   []budget.Summary
	mu        sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteSchedule records the loan and returns the configured error.
func (m *MockWriter) WriteSchedule(_ context.Context, loan model.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Schedules = append(m.Schedules, loan)
	return nil
}

// WriteBudget records the summary and returns the configured error.
func (m *MockWriter) WriteBudget(_ context.Context, summary budget.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Budgets = append(m.Budgets, summary)
	return nil
}

// Calls returns how many schedules and budgets were written.
func (m *MockWriter) Calls() (schedules, budgets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Schedules), len(m.Budgets)
}
