package checkout

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/stargazehq/checkout-client/config"
	"github.com/stargazehq/checkout-client/types"
)

// WalletKey is the user's identity on one chain.
type WalletKey struct {
	Name    string
	Address string
}

// Wallet is the signing capability injected into the submitter. Enable must
// be called with the full chain set before keys are used; interactive
// implementations surface ErrUserRejected when the user declines.
type Wallet interface {
	Enable(ctx context.Context, chainIDs ...string) error
	Key(ctx context.Context, chainID string) (WalletKey, error)
}

// keyringWallet resolves keys from the local keyring through the per-chain
// clients, re-encoding the account address with each chain's bech32 prefix.
type keyringWallet struct {
	accountName string
	cfg         config.Config
	pool        *chainPool
}

func newKeyringWallet(cfg config.Config, pool *chainPool) *keyringWallet {
	return &keyringWallet{
		accountName: cfg.Account.Name,
		cfg:         cfg,
		pool:        pool,
	}
}

func (w *keyringWallet) Enable(ctx context.Context, chainIDs ...string) error {
	if w.accountName == "" {
		return errorsmod.Wrap(types.ErrWalletUnavailable, "no account configured")
	}
	for _, chainID := range chainIDs {
		if _, err := w.Key(ctx, chainID); err != nil {
			return err
		}
	}
	return nil
}

func (w *keyringWallet) Key(_ context.Context, chainID string) (WalletKey, error) {
	chain, ok := w.cfg.Chain(chainID)
	if !ok {
		return WalletKey{}, errorsmod.Wrap(types.ErrChainNotFound, chainID)
	}

	c, err := w.pool.get(chainID)
	if err != nil {
		return WalletKey{}, err
	}

	addr, err := c.Address(w.accountName)
	if err != nil {
		return WalletKey{}, errorsmod.Wrapf(types.ErrWalletUnavailable,
			"no key %q for chain %s: %v", w.accountName, chainID, err)
	}

	bech, err := sdk.Bech32ifyAddressBytes(chain.AddressPrefix, addr)
	if err != nil {
		return WalletKey{}, errorsmod.Wrapf(types.ErrAddressResolution,
			"chain %s: %v", chainID, err)
	}

	return WalletKey{Name: w.accountName, Address: bech}, nil
}
