package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Failure kinds of the checkout pipeline. Any of these aborts the remaining
// steps; the caller is expected to restart the whole flow rather than retry
// a single step.
var (
	ErrWalletUnavailable   = errorsmod.Register(ModuleName, 2, "wallet has no signing capability")
	ErrUserRejected        = errorsmod.Register(ModuleName, 3, "wallet authorization rejected by user")
	ErrAddressResolution   = errorsmod.Register(ModuleName, 4, "failed to resolve user address")
	ErrMissingFeeInfo      = errorsmod.Register(ModuleName, 5, "no fee info for chain")
	ErrQuoteService        = errorsmod.Register(ModuleName, 6, "quote service failure")
	ErrNoConvergence       = errorsmod.Register(ModuleName, 7, "amount search exceeded iteration bound")
	ErrBroadcastFailure    = errorsmod.Register(ModuleName, 8, "failed to broadcast transaction")
	ErrConfirmationTimeout = errorsmod.Register(ModuleName, 9, "timed out waiting for funds to arrive")
	ErrChainNotFound       = errorsmod.Register(ModuleName, 10, "chain not found in registry")
)
