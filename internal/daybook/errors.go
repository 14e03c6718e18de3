package daybook

import (
	"errors"
	"fmt"
	"time"
)

// ErrFetchTimeout is wrapped by the DataSourceError returned when a day's
// reads do not finish within the engine's fetch timeout.
var ErrFetchTimeout = errors.New("daybook fetch timed out")

// DataSourceError is returned when any read from the Source fails. The whole
// report fails with it; nothing is replaced by zero.
type DataSourceError struct {
	Source string // e.g. "receipts", "purchase items"
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("daybook: reading %s: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// InvalidRangeError is returned when from is after to.
type InvalidRangeError struct {
	From time.Time
	To   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("daybook: invalid range, from %s is after to %s",
		e.From.Format("2006-01-02"), e.To.Format("2006-01-02"))
}
