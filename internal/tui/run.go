// Package tui provides the interactive terminal views.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// RunSchedule opens the schedule viewer for loan and blocks until the user quits.
func RunSchedule(ctx context.Context, loan model.Loan) error {
	if len(loan.Schedule) == 0 {
		return fmt.Errorf("%w: loan %s has no schedule", common.ErrInvalidInput, loan.Name)
	}

	// Restore the terminal even when the program is killed by its context.
	cleanupTerminal := func() {
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}
	defer cleanupTerminal()

	p := tea.NewProgram(
		NewScheduleModel(loan, model.TruncateDay(time.Now())),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("schedule viewer failed: %w", err)
	}
	return nil
}
