package config

import (
	"log"
	"time"

	"github.com/ignite/cli/ignite/pkg/cosmosaccount"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/dymensionxyz/cosmosclient/cosmosclient"
)

type Config struct {
	HomeChainID     string `mapstructure:"home_chain_id"`
	SettlementDenom string `mapstructure:"settlement_denom"`

	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Router      RouterConfig      `mapstructure:"router"`
	PriceFeed   PriceFeedConfig   `mapstructure:"price_feed"`
	Solver      SolverConfig      `mapstructure:"solver"`
	Submit      SubmitConfig      `mapstructure:"submit"`
	Account     AccountConfig     `mapstructure:"account"`

	Chains []ChainConfig `mapstructure:"chains"`
	Assets []AssetConfig `mapstructure:"assets"`

	LogLevel string `mapstructure:"log_level"`
}

type MarketplaceConfig struct {
	Address    string `mapstructure:"address"`
	GraphQLURL string `mapstructure:"graphql_url"`
}

type RouterConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	AffiliateFeeBps string `mapstructure:"affiliate_fee_bps"`
}

type PriceFeedConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type SolverConfig struct {
	Strategy      Strategy `mapstructure:"strategy"`
	Precision     float64  `mapstructure:"precision"`
	MaxIterations int      `mapstructure:"max_iterations"`
	LowBound      float64  `mapstructure:"low_bound"`
	HighBound     float64  `mapstructure:"high_bound"`
	SafetyMargin  float64  `mapstructure:"safety_margin"`
}

type SubmitConfig struct {
	SlippagePercent     string        `mapstructure:"slippage_percent"`
	PollInterval        time.Duration `mapstructure:"poll_interval"`
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
	PurchaseExpiry      time.Duration `mapstructure:"purchase_expiry"`
}

type AccountConfig struct {
	Name           string                       `mapstructure:"name"`
	KeyringBackend cosmosaccount.KeyringBackend `mapstructure:"keyring_backend"`
	KeyringDir     string                       `mapstructure:"keyring_dir"`
}

// ChainConfig is the static registry entry for one chain: where to reach it
// and how to pay for gas on it.
type ChainConfig struct {
	ChainID       string `mapstructure:"chain_id"`
	NodeAddress   string `mapstructure:"node_address"`
	AddressPrefix string `mapstructure:"address_prefix"`
	FeeDenom      string `mapstructure:"fee_denom"`
	GasPrice      string `mapstructure:"gas_price"`
	GasFees       string `mapstructure:"gas_fees"`
}

type AssetConfig struct {
	Denom       string `mapstructure:"denom"`
	Symbol      string `mapstructure:"symbol"`
	ChainID     string `mapstructure:"chain_id"`
	CoinGeckoID string `mapstructure:"coingecko_id"`
	Exponent    int32  `mapstructure:"exponent"`
}

type Strategy string

const (
	StrategyBisection Strategy = "bisection"
	StrategyLinear    Strategy = "linear"
)

func (s Strategy) Validate() bool {
	return s == StrategyBisection || s == StrategyLinear
}

const (
	defaultLogLevel            = "info"
	defaultHomeChainID         = "stargaze-1"
	defaultSettlementDenom     = "ustars"
	defaultMarketplaceAddress  = "stars1fvhcnyddukcqfnt7nlwv3thm5we22lyxyxylr9h77cvgkcn43xfsvgv0pl"
	defaultGraphQLURL          = "https://graphql.mainnet.stargaze-apis.com/graphql"
	defaultRouterURL           = "https://ibc.fun/solve"
	defaultPriceFeedURL        = "https://coins.llama.fi"
	defaultAccountName         = "checkout"
	testKeyringBackend         = "test"
	defaultAffiliateFeeBps     = "0"
	defaultSlippagePercent     = "5.0"
	defaultPrecision           = 0.001
	defaultMaxIterations       = 100
	defaultLowBound            = 0.000001
	defaultHighBound           = 9999999.999999
	defaultSafetyMargin        = 0.01
	defaultPollInterval        = time.Second
	defaultConfirmationTimeout = 5 * time.Minute
	defaultPurchaseExpiry      = 7 * 24 * time.Hour
)

// Chain looks up the registry entry for a chain id.
func (c Config) Chain(chainID string) (ChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.ChainID == chainID {
			return chain, true
		}
	}
	return ChainConfig{}, false
}

// Asset looks up a configured asset by denom.
func (c Config) Asset(denom string) (AssetConfig, bool) {
	for _, asset := range c.Assets {
		if asset.Denom == denom {
			return asset, true
		}
	}
	return AssetConfig{}, false
}

// FeeInfo returns the gas price string for the chain, e.g. "0.025uosmo".
// The second return is false when the registry entry carries no fee metadata.
func (cc ChainConfig) FeeInfo() (string, bool) {
	if cc.GasPrice == "" || cc.FeeDenom == "" {
		return "", false
	}
	return cc.GasPrice + cc.FeeDenom, true
}

func InitConfig() {
	// Set default values
	// Find home directory.
	home, err := homedir.Dir()
	if err != nil {
		log.Fatalf("failed to get home directory: %v", err)
	}
	defaultHomeDir := home + "/.checkout-client"

	viper.SetDefault("log_level", defaultLogLevel)
	viper.SetDefault("home_chain_id", defaultHomeChainID)
	viper.SetDefault("settlement_denom", defaultSettlementDenom)

	viper.SetDefault("marketplace.address", defaultMarketplaceAddress)
	viper.SetDefault("marketplace.graphql_url", defaultGraphQLURL)

	viper.SetDefault("router.base_url", defaultRouterURL)
	viper.SetDefault("router.affiliate_fee_bps", defaultAffiliateFeeBps)

	viper.SetDefault("price_feed.base_url", defaultPriceFeedURL)

	viper.SetDefault("solver.strategy", string(StrategyBisection))
	viper.SetDefault("solver.precision", defaultPrecision)
	viper.SetDefault("solver.max_iterations", defaultMaxIterations)
	viper.SetDefault("solver.low_bound", defaultLowBound)
	viper.SetDefault("solver.high_bound", defaultHighBound)
	viper.SetDefault("solver.safety_margin", defaultSafetyMargin)

	viper.SetDefault("submit.slippage_percent", defaultSlippagePercent)
	viper.SetDefault("submit.poll_interval", defaultPollInterval)
	viper.SetDefault("submit.confirmation_timeout", defaultConfirmationTimeout)
	viper.SetDefault("submit.purchase_expiry", defaultPurchaseExpiry)

	viper.SetDefault("account.name", defaultAccountName)
	viper.SetDefault("account.keyring_backend", testKeyringBackend)
	viper.SetDefault("account.keyring_dir", defaultHomeDir)

	viper.SetDefault("chains", defaultChains())
	viper.SetDefault("assets", defaultAssets())

	viper.SetConfigType("yaml")
	if CfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(CfgFile)
	} else {
		CfgFile = defaultHomeDir + "/config.yaml"
		viper.AddConfigPath(defaultHomeDir)
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}
}

var CfgFile string

func defaultChains() []map[string]any {
	return []map[string]any{
		{
			"chain_id":       "stargaze-1",
			"node_address":   "https://ibc.fun/nodes/stargaze-1",
			"address_prefix": "stars",
			"fee_denom":      "ustars",
			"gas_price":      "1",
		}, {
			"chain_id":       "cosmoshub-4",
			"node_address":   "https://ibc.fun/nodes/cosmoshub-4",
			"address_prefix": "cosmos",
			"fee_denom":      "uatom",
			"gas_price":      "0.025",
		}, {
			"chain_id":       "osmosis-1",
			"node_address":   "https://ibc.fun/nodes/osmosis-1",
			"address_prefix": "osmo",
			"fee_denom":      "uosmo",
			"gas_price":      "0.025",
		}, {
			"chain_id":       "axelar-dojo-1",
			"node_address":   "https://ibc.fun/nodes/axelar-dojo-1",
			"address_prefix": "axelar",
			"fee_denom":      "uaxl",
			"gas_price":      "0.007",
		},
	}
}

func defaultAssets() []map[string]any {
	return []map[string]any{
		{
			"denom":        "ustars",
			"symbol":       "STARS",
			"chain_id":     "stargaze-1",
			"coingecko_id": "stargaze",
			"exponent":     6,
		}, {
			"denom":        "uatom",
			"symbol":       "ATOM",
			"chain_id":     "cosmoshub-4",
			"coingecko_id": "cosmos",
			"exponent":     6,
		}, {
			"denom":        "uosmo",
			"symbol":       "OSMO",
			"chain_id":     "osmosis-1",
			"coingecko_id": "osmosis",
			"exponent":     6,
		}, {
			"denom":        "uusdc",
			"symbol":       "axlUSDC",
			"chain_id":     "axelar-dojo-1",
			"coingecko_id": "usd-coin",
			"exponent":     6,
		},
	}
}

type ClientConfig struct {
	HomeDir        string
	NodeAddress    string
	AddressPrefix  string
	GasFees        string
	GasPrices      string
	KeyringBackend cosmosaccount.KeyringBackend
}

func GetCosmosClientOptions(config ClientConfig) []cosmosclient.Option {
	options := []cosmosclient.Option{
		cosmosclient.WithAddressPrefix(config.AddressPrefix),
		cosmosclient.WithHome(config.HomeDir),
		cosmosclient.WithNodeAddress(config.NodeAddress),
		cosmosclient.WithFees(config.GasFees),
		cosmosclient.WithGas(cosmosclient.GasAuto),
		cosmosclient.WithGasPrices(config.GasPrices),
		cosmosclient.WithKeyringBackend(config.KeyringBackend),
		cosmosclient.WithKeyringDir(config.HomeDir),
	}
	return options
}
