package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	transfertypes "github.com/cosmos/ibc-go/v6/modules/apps/transfer/types"
	clienttypes "github.com/cosmos/ibc-go/v6/modules/core/02-client/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"

	"github.com/stargazehq/checkout-client/config"
	"github.com/stargazehq/checkout-client/router"
	"github.com/stargazehq/checkout-client/types"
)

type msgBuilder interface {
	Msgs(ctx context.Context, req router.MsgsRequest) (*router.MsgsResponse, error)
}

// submitter executes a quoted route: it signs and broadcasts each hop on its
// origin chain, waits for the funds to land on the home chain, then executes
// the marketplace purchase. Hops are strictly sequential; a failure at any
// step aborts the rest of the pipeline with no retry.
type submitter struct {
	wallet  Wallet
	pool    *chainPool
	builder msgBuilder
	cfg     config.Config
	logger  *zap.Logger

	settlement Asset
	pending    atomic.Bool
	state      submissionState

	getBalance func(ctx context.Context, chainID, address, denom string) (math.Int, error)
}

func newSubmitter(
	wallet Wallet,
	pool *chainPool,
	builder msgBuilder,
	cfg config.Config,
	settlement Asset,
	logger *zap.Logger,
) *submitter {
	s := &submitter{
		wallet:     wallet,
		pool:       pool,
		builder:    builder,
		cfg:        cfg,
		settlement: settlement,
		logger:     logger.With(zap.String("module", "submitter")),
		state:      stateIdle,
	}
	s.getBalance = s.queryBalance
	return s
}

// Pending reports whether a submission is currently in flight.
func (s *submitter) Pending() bool {
	return s.pending.Load()
}

// Submit runs the whole flow for one purchase. A nil route (or one without
// hops) skips straight to the purchase; the caller uses that for payments
// already denominated in the settlement asset.
func (s *submitter) Submit(ctx context.Context, route *router.RouteResponse, purchase Purchase) (*Receipt, error) {
	if !s.pending.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("another submission is in progress")
	}
	defer s.pending.Store(false)

	logger := s.logger.With(zap.String("submission", uuid.New().String()[0:8]))

	receipt, err := s.run(ctx, route, purchase, logger)
	if err != nil {
		s.setState(logger, stateFailed)
		return nil, err
	}
	s.setState(logger, stateDone)
	return receipt, nil
}

func (s *submitter) run(ctx context.Context, route *router.RouteResponse, purchase Purchase, logger *zap.Logger) (*Receipt, error) {
	chainIDs := submissionChains(route, s.cfg.HomeChainID)

	s.setState(logger, stateAwaitingWalletAuth)
	if err := s.wallet.Enable(ctx, chainIDs...); err != nil {
		return nil, err
	}

	addresses := make(map[string]string, len(chainIDs))
	for _, chainID := range chainIDs {
		key, err := s.wallet.Key(ctx, chainID)
		if err != nil {
			if errors.Is(err, types.ErrWalletUnavailable) || errors.Is(err, types.ErrUserRejected) {
				return nil, err
			}
			return nil, errorsmod.Wrapf(types.ErrAddressResolution, "chain %s: %v", chainID, err)
		}
		addresses[chainID] = key.Address
	}

	receipt := &Receipt{}

	if route != nil && len(route.ChainIDs) > 0 {
		plan, err := s.builder.Msgs(ctx, router.NewMsgsRequest(route, addresses, s.cfg.Submit.SlippagePercent))
		if err != nil {
			return nil, fmt.Errorf("failed to build message plan: %w", err)
		}

		for i, hop := range plan.Requested {
			hash, err := s.submitHop(ctx, logger, i, hop, addresses)
			if err != nil {
				return nil, err
			}
			receipt.HopTxHashes = append(receipt.HopTxHashes, hash)
		}
	}

	// every upstream hop has settled; pay for the listing
	hash, err := s.executePurchase(ctx, logger, purchase, addresses[s.cfg.HomeChainID])
	if err != nil {
		return nil, err
	}
	receipt.PurchaseTxHash = hash

	return receipt, nil
}

func (s *submitter) submitHop(ctx context.Context, logger *zap.Logger, idx int, hop router.MultiHopMsg, addresses map[string]string) (string, error) {
	s.setState(logger, stateSigning)

	msg, err := buildTransferMsg(hop)
	if err != nil {
		return "", fmt.Errorf("failed to rebuild hop %d message: %w", idx, err)
	}

	chain, ok := s.cfg.Chain(hop.ChainID)
	if !ok {
		return "", errorsmod.Wrap(types.ErrChainNotFound, hop.ChainID)
	}
	if _, ok := chain.FeeInfo(); !ok {
		return "", errorsmod.Wrap(types.ErrMissingFeeInfo, hop.ChainID)
	}

	c, err := s.pool.get(hop.ChainID)
	if err != nil {
		return "", err
	}

	// snapshot before broadcasting so a fast relay cannot slip between the
	// broadcast and the first poll
	destAddr := addresses[s.cfg.HomeChainID]
	before, err := s.getBalance(ctx, s.cfg.HomeChainID, destAddr, s.settlement.Denom)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot settlement balance: %w", err)
	}

	s.setState(logger, stateBroadcasting)
	rsp, err := c.BroadcastTx(s.cfg.Account.Name, msg)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrBroadcastFailure, "hop %d on %s: %v", idx, hop.ChainID, err)
	}

	logger.Info("hop broadcast",
		zap.Int("hop", idx),
		zap.String("chain_id", hop.ChainID),
		zap.String("tx_hash", rsp.TxHash))

	s.setState(logger, stateConfirming)
	if err := s.waitForFunds(ctx, logger, destAddr, before); err != nil {
		return "", err
	}
	return rsp.TxHash, nil
}

// waitForFunds polls the home-chain settlement balance until it exceeds the
// pre-broadcast snapshot, which is the only signal that the IBC transfer has
// been relayed all the way through.
func (s *submitter) waitForFunds(ctx context.Context, logger *zap.Logger, address string, before math.Int) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Submit.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.Submit.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errorsmod.Wrapf(types.ErrConfirmationTimeout,
					"no balance increase within %s", s.cfg.Submit.ConfirmationTimeout)
			}
			return ctx.Err()
		case <-ticker.C:
			balance, err := s.getBalance(ctx, s.cfg.HomeChainID, address, s.settlement.Denom)
			if err != nil {
				logger.Warn("failed to poll settlement balance", zap.Error(err))
				continue
			}
			if balance.GT(before) {
				logger.Info("funds arrived",
					zap.String("balance", balance.String()),
					zap.String("before", before.String()))
				return nil
			}
		}
	}
}

type buyNow struct {
	Collection string `json:"collection"`
	TokenID    int    `json:"token_id"`
	Expires    string `json:"expires"`
}

type buyNowMsg struct {
	BuyNow buyNow `json:"buy_now"`
}

func (s *submitter) executePurchase(ctx context.Context, logger *zap.Logger, purchase Purchase, sender string) (string, error) {
	s.setState(logger, statePurchasing)

	chain, ok := s.cfg.Chain(s.cfg.HomeChainID)
	if !ok {
		return "", errorsmod.Wrap(types.ErrChainNotFound, s.cfg.HomeChainID)
	}
	if _, ok := chain.FeeInfo(); !ok {
		return "", errorsmod.Wrap(types.ErrMissingFeeInfo, s.cfg.HomeChainID)
	}

	c, err := s.pool.get(s.cfg.HomeChainID)
	if err != nil {
		return "", err
	}

	tokenID, err := strconv.Atoi(purchase.TokenID)
	if err != nil {
		return "", fmt.Errorf("failed to parse token id %q: %w", purchase.TokenID, err)
	}

	price, ok := sdk.NewIntFromString(purchase.PriceAmount)
	if !ok {
		return "", fmt.Errorf("failed to parse price %q", purchase.PriceAmount)
	}

	// expiry in the chain's native time unit, nanoseconds
	expires := time.Now().Add(s.cfg.Submit.PurchaseExpiry).UnixNano()

	body, err := json.Marshal(buyNowMsg{BuyNow: buyNow{
		Collection: purchase.CollectionAddress,
		TokenID:    tokenID,
		Expires:    strconv.FormatInt(expires, 10),
	}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal buy_now msg: %w", err)
	}

	msg := &wasmtypes.MsgExecuteContract{
		Sender:   sender,
		Contract: s.cfg.Marketplace.Address,
		Msg:      body,
		Funds:    sdk.NewCoins(sdk.NewCoin(s.settlement.Denom, price)),
	}

	rsp, err := c.BroadcastTx(s.cfg.Account.Name, msg)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrBroadcastFailure, "purchase on %s: %v", s.cfg.HomeChainID, err)
	}

	logger.Info("purchase broadcast",
		zap.String("collection", purchase.CollectionAddress),
		zap.String("token_id", purchase.TokenID),
		zap.String("tx_hash", rsp.TxHash))

	return rsp.TxHash, nil
}

func (s *submitter) queryBalance(ctx context.Context, chainID, address, denom string) (math.Int, error) {
	c, err := s.pool.get(chainID)
	if err != nil {
		return math.Int{}, err
	}

	bankClient := banktypes.NewQueryClient(c.Context())
	rsp, err := bankClient.Balance(ctx, &banktypes.QueryBalanceRequest{
		Address: address,
		Denom:   denom,
	})
	if err != nil {
		if grpcErrorCode(err) == "NotFound" {
			return math.ZeroInt(), nil
		}
		return math.Int{}, fmt.Errorf("failed to query balance: %w", err)
	}
	return rsp.Balance.Amount, nil
}

func (s *submitter) setState(logger *zap.Logger, next submissionState) {
	s.state = next
	logger.Debug("submission state", zap.String("state", string(next)))
}

// submissionChains returns the chains touched by the route plus the home
// chain, deduplicated, in route order.
func submissionChains(route *router.RouteResponse, homeChainID string) []string {
	seen := make(map[string]struct{})
	var chainIDs []string

	if route != nil {
		for _, chainID := range route.ChainIDs {
			if _, ok := seen[chainID]; ok {
				continue
			}
			seen[chainID] = struct{}{}
			chainIDs = append(chainIDs, chainID)
		}
	}
	if _, ok := seen[homeChainID]; !ok {
		chainIDs = append(chainIDs, homeChainID)
	}
	return chainIDs
}

type transferMsgJSON struct {
	SourcePort    string `json:"source_port"`
	SourceChannel string `json:"source_channel"`
	Token         struct {
		Denom  string `json:"denom"`
		Amount string `json:"amount"`
	} `json:"token"`
	Sender        string `json:"sender"`
	Receiver      string `json:"receiver"`
	TimeoutHeight struct {
		RevisionNumber json.Number `json:"revision_number"`
		RevisionHeight json.Number `json:"revision_height"`
	} `json:"timeout_height"`
	TimeoutTimestamp json.Number `json:"timeout_timestamp"`
	Memo             string      `json:"memo"`
}

const transferMsgTypeURL = "/ibc.applications.transfer.v1.MsgTransfer"

// buildTransferMsg reconstructs the chain-native IBC transfer from the
// message builder's JSON payload.
func buildTransferMsg(hop router.MultiHopMsg) (sdk.Msg, error) {
	if hop.MsgTypeURL != transferMsgTypeURL {
		return nil, fmt.Errorf("unsupported message type %q", hop.MsgTypeURL)
	}

	var raw transferMsgJSON
	if err := json.Unmarshal([]byte(hop.Msg), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal msg: %w", err)
	}

	amount, ok := sdk.NewIntFromString(raw.Token.Amount)
	if !ok {
		return nil, fmt.Errorf("failed to parse token amount %q", raw.Token.Amount)
	}

	revNumber, err := parseUint(raw.TimeoutHeight.RevisionNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to parse revision number: %w", err)
	}
	revHeight, err := parseUint(raw.TimeoutHeight.RevisionHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to parse revision height: %w", err)
	}
	timeoutTimestamp, err := parseUint(raw.TimeoutTimestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timeout timestamp: %w", err)
	}

	return &transfertypes.MsgTransfer{
		SourcePort:       raw.SourcePort,
		SourceChannel:    raw.SourceChannel,
		Token:            sdk.NewCoin(raw.Token.Denom, amount),
		Sender:           raw.Sender,
		Receiver:         raw.Receiver,
		TimeoutHeight:    clienttypes.NewHeight(revNumber, revHeight),
		TimeoutTimestamp: timeoutTimestamp,
		Memo:             raw.Memo,
	}, nil
}

func parseUint(n json.Number) (uint64, error) {
	if n.String() == "" {
		return 0, nil
	}
	return strconv.ParseUint(n.String(), 10, 64)
}

func grpcErrorCode(err error) string {
	if grpcStatus, ok := status.FromError(err); ok {
		return grpcStatus.Code().String()
	}
	return ""
}
