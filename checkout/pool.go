package checkout

import (
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"github.com/cosmos/cosmos-sdk/client"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/dymensionxyz/cosmosclient/cosmosclient"

	"github.com/stargazehq/checkout-client/config"
	"github.com/stargazehq/checkout-client/types"
)

// chainClient is the slice of cosmosclient.Client the checkout flow needs.
type chainClient interface {
	BroadcastTx(accountName string, msgs ...sdk.Msg) (cosmosclient.Response, error)
	Context() client.Context
	Address(accountName string) (sdk.AccAddress, error)
}

// chainPool owns one signing connection per chain, created on first use and
// reused for the rest of the session.
type chainPool struct {
	cfg config.Config

	mu      sync.Mutex
	clients map[string]chainClient
	dial    func(chain config.ChainConfig) (chainClient, error)
}

func newChainPool(cfg config.Config) *chainPool {
	p := &chainPool{
		cfg:     cfg,
		clients: make(map[string]chainClient),
	}
	p.dial = p.dialChain
	return p
}

func (p *chainPool) get(chainID string) (chainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[chainID]; ok {
		return c, nil
	}

	chain, ok := p.cfg.Chain(chainID)
	if !ok {
		return nil, errorsmod.Wrap(types.ErrChainNotFound, chainID)
	}

	c, err := p.dial(chain)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for chain %s: %w", chainID, err)
	}
	p.clients[chainID] = c
	return c, nil
}

func (p *chainPool) dialChain(chain config.ChainConfig) (chainClient, error) {
	gasPrices, _ := chain.FeeInfo()

	clientCfg := config.ClientConfig{
		HomeDir:        p.cfg.Account.KeyringDir,
		NodeAddress:    chain.NodeAddress,
		AddressPrefix:  chain.AddressPrefix,
		GasFees:        chain.GasFees,
		GasPrices:      gasPrices,
		KeyringBackend: p.cfg.Account.KeyringBackend,
	}

	c, err := cosmosclient.New(config.GetCosmosClientOptions(clientCfg)...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// close drops all cached connections. The underlying clients hold no
// resources beyond HTTP transports.
func (p *chainPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients = make(map[string]chainClient)
}
