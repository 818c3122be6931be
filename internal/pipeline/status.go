package pipeline

import (
	"errors"
	"fmt"

	"github.com/ppiankov/fundscrape/internal/model"
)

// Exporter writes the accumulated tables
type Exporter interface {
	Write(tables []*model.Table) error
}

// Status is how a run ended
type Status int

const (
	StatusCompleted   Status = iota // All projects processed and exported
	StatusInterrupted               // Cancelled, partial results exported
	StatusFlushFailed               // Cancelled, and exporting partial results failed
	StatusFailed                    // Fatal error, nothing exported
)

// ExitCode maps the status to the process exit code
func (s Status) ExitCode() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusInterrupted:
		return 1
	case StatusFlushFailed:
		return 2
	default:
		return 3
	}
}

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusInterrupted:
		return "interrupted, partial results saved"
	case StatusFlushFailed:
		return "interrupted, saving partial results failed"
	default:
		return "failed"
	}
}

// Finish exports acc according to how the run ended. A fatal run error
// exports nothing. After an interrupt the tables accumulated so far are
// flushed once; a failing flush is final and is not retried.
func Finish(acc *Accumulator, runErr error, exporter Exporter) (Status, error) {
	switch {
	case runErr == nil:
		if err := exporter.Write(acc.Tables()); err != nil {
			return StatusFailed, fmt.Errorf("export: %w", err)
		}
		return StatusCompleted, nil

	case errors.Is(runErr, ErrInterrupted):
		if err := exporter.Write(acc.Tables()); err != nil {
			return StatusFlushFailed, fmt.Errorf("flush partial results: %w", err)
		}
		return StatusInterrupted, runErr

	default:
		return StatusFailed, runErr
	}
}
