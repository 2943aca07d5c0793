package firm

import "errors"

// StallReason is the typed non-production outcome of an hourly cycle.
// A stalled hour is expected and recoverable — the caller retries next tick.
type StallReason string

const (
	StallInsufficientInput StallReason = "insufficient-input"
	StallDowntime          StallReason = "downtime"
	StallNoReserves        StallReason = "no-reserves"
)

// ProductionResult is what one hourly production cycle yielded.
// Produced is false for stalled hours and for service firms (retailer,
// lender) whose hourly work moves cash rather than goods.
type ProductionResult struct {
	Produced  bool
	ProductID string
	Quantity  float64
	Quality   float64
	Stall     StallReason // set only when a producing firm could not run

	// Retailer-only: consumer sales made this hour.
	Sales   int
	Revenue float64
}

// stalled builds a non-production result.
func stalled(reason StallReason) ProductionResult {
	return ProductionResult{Stall: reason}
}

// Loan failure modes. Expected outcomes, not faults.
var (
	ErrCreditScoreTooLow = errors.New("credit-score-too-low")
	ErrExceedsExposure   = errors.New("exceeds-exposure-limit")
	ErrInsufficientCap   = errors.New("insufficient-capital")
)
