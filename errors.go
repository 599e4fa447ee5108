package trading

import (
	"errors"
	"fmt"
)

// Expected failure conditions of the ledger and registry operations.
// All of them are recoverable by retrying with different input.
var (
	// ErrInvalidParameters is returned when an operation receives a
	// non-positive price, volume or fill amount.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrMalformedSymbol is returned when a market symbol does not
	// contain a pair separator.
	ErrMalformedSymbol = errors.New("malformed market symbol")

	// ErrNoBalanceForMarket is returned when the trader has no balance
	// row for one side of the market's currency pair.
	ErrNoBalanceForMarket = errors.New("no balance for market")

	// ErrInsufficientFunds is returned when a reservation exceeds the
	// available part of a balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOrderNotOpen is returned when a fill or cancellation targets
	// an already closed order.
	ErrOrderNotOpen = errors.New("order is not open")

	// ErrUnavailable is returned by a market data provider which could
	// not deliver a ticker snapshot. The caller may retry; the market
	// snapshot stays unchanged.
	ErrUnavailable = errors.New("market data provider unavailable")
)

// InvariantViolationError signals that an operation would drive a balance
// negative. It indicates ledger corruption rather than bad user input and
// must be surfaced as an internal-consistency alarm.
type InvariantViolationError struct {
	BalanceID ID
	Detail    string
}

func (ive *InvariantViolationError) Error() string {
	return fmt.Sprintf(
		"invariant violation on balance [%v]: %s",
		ive.BalanceID,
		ive.Detail,
	)
}

// IsInvariantViolation tells whether the error chain contains an
// InvariantViolationError.
func IsInvariantViolation(err error) bool {
	var target *InvariantViolationError
	return errors.As(err, &target)
}

// IsUnavailable tells whether the error chain signals a retryable
// provider failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
