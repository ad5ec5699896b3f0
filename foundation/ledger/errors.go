package ledger

import "errors"

// Set of error variables for terminal call outcomes. Every rejection leaves
// the ledger exactly as it was before the call.
var (
	ErrInsufficientContribution = errors.New("contribution below the minimum usd threshold")
	ErrUnauthorized             = errors.New("caller is not the ledger owner")
	ErrTransferFailed           = errors.New("transport failed to settle the withdrawal")
	ErrStaleQuote               = errors.New("oracle quote is too old")
)
