package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stargazehq/checkout-client/config"
	"github.com/stargazehq/checkout-client/router"
	"github.com/stargazehq/checkout-client/types"
)

var (
	testSettlement = Asset{
		Denom:       "ustars",
		Symbol:      "STARS",
		ChainID:     "stargaze-1",
		CoinGeckoID: "stargaze",
		Exponent:    6,
	}

	testSource = Asset{
		Denom:       "uosmo",
		Symbol:      "OSMO",
		ChainID:     "osmosis-1",
		CoinGeckoID: "osmosis",
		Exponent:    6,
	}
)

type fakeQuotes struct {
	fn    func(amountIn float64) float64
	err   error
	calls int
}

func (f *fakeQuotes) Route(_ context.Context, req router.RouteRequest) (*router.RouteResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	in, err := fromBaseUnits(req.AmountIn, 6)
	if err != nil {
		return nil, err
	}
	return &router.RouteResponse{
		UserSwapAmountOut: toBaseUnits(f.fn(in), 6),
	}, nil
}

type fakePrices map[string]decimal.Decimal

func (f fakePrices) Price(_ context.Context, coinGeckoID string) (decimal.Decimal, error) {
	price, ok := f[coinGeckoID]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("no price for %s", coinGeckoID)
	}
	return price, nil
}

func defaultSolverConfig() config.SolverConfig {
	return config.SolverConfig{
		Strategy:      config.StrategyBisection,
		Precision:     0.001,
		MaxIterations: 100,
		LowBound:      0.000001,
		HighBound:     9999999.999999,
		SafetyMargin:  0.01,
	}
}

func newTestSolver(quotes quoteService, prices priceService, cfg config.SolverConfig) *amountSolver {
	return newAmountSolver(quotes, prices, cfg, "0", testSettlement, zap.NewNop())
}

func Test_amountSolver_solve_identity(t *testing.T) {
	quotes := &fakeQuotes{fn: func(in float64) float64 { return in }}
	s := newTestSolver(quotes, fakePrices{}, defaultSolverConfig())

	got, err := s.solve(context.Background(), 123.45, testSettlement)
	require.NoError(t, err)
	assert.Equal(t, 123.45, got)
	assert.Zero(t, quotes.calls, "identity asset must not be quoted")
}

func Test_amountSolver_solve_zeroTarget(t *testing.T) {
	quotes := &fakeQuotes{fn: func(in float64) float64 { return in }}
	s := newTestSolver(quotes, fakePrices{}, defaultSolverConfig())

	got, err := s.solve(context.Background(), 0, testSource)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Zero(t, quotes.calls)
}

func Test_amountSolver_solveBisection(t *testing.T) {
	// swap nets 95% of the input
	quotes := &fakeQuotes{fn: func(in float64) float64 { return in * 0.95 }}
	s := newTestSolver(quotes, fakePrices{}, defaultSolverConfig())

	target := 80000.0
	got, err := s.solve(context.Background(), target, testSource)
	require.NoError(t, err)

	assert.InDelta(t, target/0.95, got, 0.01)
	assert.GreaterOrEqual(t, got*0.95, target, "solved amount must clear the target")
}

func Test_amountSolver_solveBisection_exactMatch(t *testing.T) {
	target := 500.0
	quotes := &fakeQuotes{fn: func(in float64) float64 { return target }}
	s := newTestSolver(quotes, fakePrices{}, defaultSolverConfig())

	got, err := s.solve(context.Background(), target, testSource)
	require.NoError(t, err)
	assert.Equal(t, 1, quotes.calls, "exact match must end the search")
	assert.Positive(t, got)
}

func Test_amountSolver_solveBisection_noConvergence(t *testing.T) {
	quotes := &fakeQuotes{fn: func(in float64) float64 { return 0 }}
	cfg := defaultSolverConfig()
	cfg.MaxIterations = 8
	s := newTestSolver(quotes, fakePrices{}, cfg)

	_, err := s.solve(context.Background(), 100, testSource)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoConvergence)
}

func Test_amountSolver_solveBisection_quoteError(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("route service down")}
	s := newTestSolver(quotes, fakePrices{}, defaultSolverConfig())

	_, err := s.solve(context.Background(), 100, testSource)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrQuoteService)
}

func Test_amountSolver_solve_contextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	quotes := &fakeQuotes{err: errors.New("canceled by transport")}
	s := newTestSolver(quotes, fakePrices{}, defaultSolverConfig())

	cancel()
	_, err := s.solve(ctx, 100, testSource)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_amountSolver_solveLinear(t *testing.T) {
	// true rate is 49 STARS per OSMO, feed says 50
	quotes := &fakeQuotes{fn: func(in float64) float64 { return in * 49 }}
	prices := fakePrices{
		"osmosis":  decimal.NewFromFloat(0.5),
		"stargaze": decimal.NewFromFloat(0.01),
	}
	cfg := defaultSolverConfig()
	cfg.Strategy = config.StrategyLinear
	s := newTestSolver(quotes, prices, cfg)

	target := 100.0
	got, err := s.solve(context.Background(), target, testSource)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, got*49, target, "solved amount must clear the target")
	assert.Less(t, got, 2.1, "solved amount should stay near the true rate")
}

func Test_amountSolver_solveLinear_missingPrice(t *testing.T) {
	quotes := &fakeQuotes{fn: func(in float64) float64 { return in }}
	cfg := defaultSolverConfig()
	cfg.Strategy = config.StrategyLinear
	s := newTestSolver(quotes, fakePrices{}, cfg)

	_, err := s.solve(context.Background(), 100, testSource)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrQuoteService)
	assert.Zero(t, quotes.calls)
}

func Test_amountSolver_solveLinear_noConvergence(t *testing.T) {
	quotes := &fakeQuotes{fn: func(in float64) float64 { return 0 }}
	prices := fakePrices{
		"osmosis":  decimal.NewFromFloat(0.5),
		"stargaze": decimal.NewFromFloat(0.01),
	}
	cfg := defaultSolverConfig()
	cfg.Strategy = config.StrategyLinear
	cfg.MaxIterations = 5
	s := newTestSolver(quotes, prices, cfg)

	_, err := s.solve(context.Background(), 100, testSource)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNoConvergence)
}
