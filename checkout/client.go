package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	"go.uber.org/zap"

	"github.com/stargazehq/checkout-client/config"
	"github.com/stargazehq/checkout-client/marketplace"
	"github.com/stargazehq/checkout-client/pricefeed"
	"github.com/stargazehq/checkout-client/router"
	"github.com/stargazehq/checkout-client/types"
)

// Client is the top-level checkout flow: it quotes the source amount for a
// listing, routes funds to the home chain and executes the purchase.
type Client struct {
	cfg    config.Config
	logger *zap.Logger

	pool      *chainPool
	wallet    Wallet
	solver    *amountSolver
	submitter *submitter
	market    *marketplace.Client
	routes    *router.Client

	settlement Asset
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	settlementCfg, ok := cfg.Asset(cfg.SettlementDenom)
	if !ok {
		return nil, fmt.Errorf("settlement denom %s not in asset list", cfg.SettlementDenom)
	}
	settlement := newAsset(settlementCfg)

	pool := newChainPool(cfg)
	wallet := newKeyringWallet(cfg, pool)

	routes := router.NewClient(cfg.Router.BaseURL)
	prices := pricefeed.NewClient(cfg.PriceFeed.BaseURL)

	c := &Client{
		cfg:        cfg,
		logger:     logger.With(zap.String("module", "checkout")),
		pool:       pool,
		wallet:     wallet,
		solver:     newAmountSolver(routes, prices, cfg.Solver, cfg.Router.AffiliateFeeBps, settlement, logger),
		submitter:  newSubmitter(wallet, pool, routes, cfg, settlement, logger),
		market:     marketplace.NewClient(cfg.Marketplace.GraphQLURL),
		routes:     routes,
		settlement: settlement,
	}
	return c, nil
}

// Asset resolves a configured asset by denom.
func (c *Client) Asset(denom string) (Asset, error) {
	assetCfg, ok := c.cfg.Asset(denom)
	if !ok {
		return Asset{}, fmt.Errorf("asset %s not in asset list", denom)
	}
	return newAsset(assetCfg), nil
}

// SolveAmount returns how much of the source asset (display units) is needed
// to net at least target units of the settlement asset.
func (c *Client) SolveAmount(ctx context.Context, target float64, sourceDenom string) (float64, error) {
	source, err := c.Asset(sourceDenom)
	if err != nil {
		return 0, err
	}
	return c.solver.solve(ctx, target, source)
}

// Collection fetches collection metadata from the marketplace indexer.
func (c *Client) Collection(ctx context.Context, address string) (*marketplace.Collection, error) {
	return c.market.Collection(ctx, address)
}

// BuyToken buys a listed token, paying with the given source asset. When the
// source is not the settlement asset the payment is first routed to the home
// chain hop by hop.
func (c *Client) BuyToken(ctx context.Context, collectionAddr, tokenID, sourceDenom string) (*Receipt, error) {
	source, err := c.Asset(sourceDenom)
	if err != nil {
		return nil, err
	}

	token, err := c.market.Token(ctx, collectionAddr, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Price == "" {
		return nil, fmt.Errorf("token %s/%s is not listed", collectionAddr, tokenID)
	}

	price, err := fromBaseUnits(token.Price, c.settlement.Exponent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing price: %w", err)
	}

	amountIn, err := c.solver.solve(ctx, price, source)
	if err != nil {
		return nil, err
	}

	c.logger.Info("amount solved",
		zap.String("collection", collectionAddr),
		zap.String("token_id", tokenID),
		zap.Float64("price", price),
		zap.String("source", source.Symbol),
		zap.Float64("amount_in", amountIn))

	var route *router.RouteResponse
	if source.Denom != c.settlement.Denom {
		route, err = c.routes.Route(ctx, router.RouteRequest{
			AmountIn: toBaseUnits(amountIn, source.Exponent),
			SourceAsset: router.AssetRef{
				Denom:   source.Denom,
				ChainID: source.ChainID,
			},
			DestAsset: router.AssetRef{
				Denom:   c.settlement.Denom,
				ChainID: c.settlement.ChainID,
			},
			CumulativeAffiliateFeeBps: c.cfg.Router.AffiliateFeeBps,
		})
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrQuoteService, err.Error())
		}
	}

	return c.submitter.Submit(ctx, route, Purchase{
		CollectionAddress: collectionAddr,
		TokenID:           tokenID,
		PriceAmount:       token.Price,
	})
}

// Ask reads the live listing straight from the marketplace contract, bypassing
// the indexer.
func (c *Client) Ask(ctx context.Context, collectionAddr string, tokenID int) (*marketplace.Ask, error) {
	cl, err := c.pool.get(c.cfg.HomeChainID)
	if err != nil {
		return nil, err
	}

	query, err := json.Marshal(map[string]any{
		"ask": map[string]any{
			"collection": collectionAddr,
			"token_id":   tokenID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ask query: %w", err)
	}

	wasmClient := wasmtypes.NewQueryClient(cl.Context())
	rsp, err := wasmClient.SmartContractState(ctx, &wasmtypes.QuerySmartContractStateRequest{
		Address:   c.cfg.Marketplace.Address,
		QueryData: query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query marketplace contract: %w", err)
	}

	var out struct {
		Ask *marketplace.Ask `json:"ask"`
	}
	if err := json.Unmarshal(rsp.Data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode ask: %w", err)
	}
	if out.Ask == nil {
		return nil, fmt.Errorf("no active ask for %s/%d", collectionAddr, tokenID)
	}
	return out.Ask, nil
}

// Pending reports whether a submission is in flight.
func (c *Client) Pending() bool {
	return c.submitter.Pending()
}

func (c *Client) Close() {
	c.pool.close()
}

func newAsset(cfg config.AssetConfig) Asset {
	exponent := cfg.Exponent
	if exponent == 0 {
		exponent = 6
	}
	return Asset{
		Denom:       cfg.Denom,
		Symbol:      cfg.Symbol,
		ChainID:     cfg.ChainID,
		CoinGeckoID: cfg.CoinGeckoID,
		Exponent:    exponent,
	}
}
