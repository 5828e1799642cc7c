package checkout

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stargazehq/checkout-client/config"
	"github.com/stargazehq/checkout-client/router"
	"github.com/stargazehq/checkout-client/types"
)

type quoteService interface {
	Route(ctx context.Context, req router.RouteRequest) (*router.RouteResponse, error)
}

type priceService interface {
	Price(ctx context.Context, coinGeckoID string) (decimal.Decimal, error)
}

// amountSolver finds the smallest source amount whose quoted swap output
// meets a target amount of the settlement asset. The external quote service
// is the only oracle: every refinement step costs one network round trip, so
// the search is bounded by cfg.MaxIterations and aborted through ctx.
type amountSolver struct {
	quotes          quoteService
	prices          priceService
	cfg             config.SolverConfig
	affiliateFeeBps string
	settlement      Asset
	logger          *zap.Logger
}

func newAmountSolver(
	quotes quoteService,
	prices priceService,
	cfg config.SolverConfig,
	affiliateFeeBps string,
	settlement Asset,
	logger *zap.Logger,
) *amountSolver {
	return &amountSolver{
		quotes:          quotes,
		prices:          prices,
		cfg:             cfg,
		affiliateFeeBps: affiliateFeeBps,
		settlement:      settlement,
		logger:          logger.With(zap.String("module", "amount-solver")),
	}
}

// solve returns the source amount (in display units) needed to net at least
// target units of the settlement asset. A non-positive target and the
// settlement asset itself are answered without any quote.
func (s *amountSolver) solve(ctx context.Context, target float64, source Asset) (float64, error) {
	if target <= 0 {
		return 0, nil
	}
	if source.Denom == s.settlement.Denom {
		return target, nil
	}

	switch s.cfg.Strategy {
	case config.StrategyLinear:
		return s.solveLinear(ctx, target, source)
	default:
		return s.solveBisection(ctx, target, source)
	}
}

// solveBisection bisects on the source amount until the bounds cross, then
// walks the lower bound up until its quote clears the target. An exact-match
// quote terminates the search immediately.
func (s *amountSolver) solveBisection(ctx context.Context, target float64, source Asset) (float64, error) {
	low, high := s.cfg.LowBound, s.cfg.HighBound
	step := s.cfg.Precision

	iterations := 0
	for low <= high {
		iterations++
		if iterations > s.cfg.MaxIterations {
			return 0, errorsmod.Wrapf(types.ErrNoConvergence,
				"bisection exceeded %d iterations", s.cfg.MaxIterations)
		}

		mid := (low + high) / 2
		out, err := s.quoteOutput(ctx, mid, source)
		if err != nil {
			return 0, err
		}

		s.logger.Debug("bisection step",
			zap.Float64("amount_in", mid), zap.Float64("amount_out", out))

		if out == target {
			return mid, nil
		}
		if out < target {
			low = mid + step
		} else {
			high = mid - step
		}
	}

	// low is a lower-bound estimate; verify it and nudge upward until the
	// quote actually clears the target.
	candidate := low
	for i := 0; i < s.cfg.MaxIterations; i++ {
		out, err := s.quoteOutput(ctx, candidate, source)
		if err != nil {
			return 0, err
		}
		if out >= target {
			return candidate, nil
		}
		candidate += step
	}

	return 0, errorsmod.Wrapf(types.ErrNoConvergence,
		"refinement exceeded %d iterations", s.cfg.MaxIterations)
}

// solveLinear seeds a candidate from the price-feed ratio of the two assets,
// inflated by the safety margin, then steps it up by one cent of settlement
// value until the quote clears the target.
func (s *amountSolver) solveLinear(ctx context.Context, target float64, source Asset) (float64, error) {
	sourcePrice, err := s.prices.Price(ctx, source.CoinGeckoID)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrQuoteService, "source price: %v", err)
	}
	settlementPrice, err := s.prices.Price(ctx, s.settlement.CoinGeckoID)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrQuoteService, "settlement price: %v", err)
	}
	if sourcePrice.IsZero() {
		return 0, errorsmod.Wrapf(types.ErrQuoteService, "zero price for %s", source.Symbol)
	}

	// source units per settlement unit
	ratio := settlementPrice.Div(sourcePrice)
	margin := decimal.NewFromFloat(1 + s.cfg.SafetyMargin)

	candidate, _ := decimal.NewFromFloat(target).Mul(ratio).Mul(margin).Float64()
	step, _ := ratio.Div(decimal.NewFromInt(100)).Float64()
	if step < s.cfg.Precision {
		step = s.cfg.Precision
	}

	for i := 0; i < s.cfg.MaxIterations; i++ {
		out, err := s.quoteOutput(ctx, candidate, source)
		if err != nil {
			return 0, err
		}

		s.logger.Debug("linear step",
			zap.Float64("amount_in", candidate), zap.Float64("amount_out", out))

		if out >= target {
			return candidate, nil
		}
		candidate += step
	}

	return 0, errorsmod.Wrapf(types.ErrNoConvergence,
		"linear search exceeded %d iterations", s.cfg.MaxIterations)
}

func (s *amountSolver) quoteOutput(ctx context.Context, amountIn float64, source Asset) (float64, error) {
	rsp, err := s.quotes.Route(ctx, router.RouteRequest{
		AmountIn: toBaseUnits(amountIn, source.Exponent),
		SourceAsset: router.AssetRef{
			Denom:   source.Denom,
			ChainID: source.ChainID,
		},
		DestAsset: router.AssetRef{
			Denom:   s.settlement.Denom,
			ChainID: s.settlement.ChainID,
		},
		CumulativeAffiliateFeeBps: s.affiliateFeeBps,
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, errorsmod.Wrap(types.ErrQuoteService, err.Error())
	}

	out, err := fromBaseUnits(rsp.UserSwapAmountOut, s.settlement.Exponent)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrQuoteService, "bad quote output: %v", err)
	}
	return out, nil
}
