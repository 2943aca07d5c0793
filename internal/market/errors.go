package market

import "errors"

// Typed market failures. All expected and recoverable: the caller skips
// the operation or retries next tick — none abort the simulation.
var (
	ErrOrderNotFound         = errors.New("order-not-found")
	ErrOrderNotInBidding     = errors.New("order-not-in-bidding")
	ErrBelowMinimumOrderSize = errors.New("below-minimum-order-size")
	ErrProductNotFound       = errors.New("product-not-found")
	ErrInsufficientFunds     = errors.New("insufficient-funds")
	ErrMarketDisabled        = errors.New("market-disabled")
	ErrInsufficientInventory = errors.New("insufficient-inventory")
)
