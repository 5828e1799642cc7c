package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stargazehq/checkout-client/checkout"
	versioncmd "github.com/stargazehq/checkout-client/cmd/version"
	"github.com/stargazehq/checkout-client/config"
	utils "github.com/stargazehq/checkout-client/utils/viper"
)

var RootCmd = &cobra.Command{
	Use:   "checkout-client",
	Short: "Cross-chain checkout client for the Stargaze marketplace",
	Long:  `Checkout client that solves the source amount for a listing, routes funds across chains and executes the purchase.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no arguments are provided, print usage information
		if len(args) == 0 {
			if err := cmd.Usage(); err != nil {
				log.Fatalf("Error printing usage: %v", err)
			}
		}
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the checkout client",
	Long:  `Initialize the checkout client by generating a config file with default values.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Config{}
		if err := viper.Unmarshal(&cfg); err != nil {
			log.Fatalf("failed to unmarshal config: %v", err)
		}

		// if the keyring dir doesn't exist, create it
		if _, err := os.Stat(cfg.Account.KeyringDir); os.IsNotExist(err) {
			if err := os.MkdirAll(cfg.Account.KeyringDir, 0o755); err != nil {
				log.Fatalf("failed to create keyring directory: %v", err)
			}
		}

		if err := viper.WriteConfigAs(config.CfgFile); err != nil {
			log.Fatalf("failed to write config file: %v", err)
		}

		fmt.Printf("Config file created: %s\n", config.CfgFile)
		fmt.Println()
		fmt.Println("Edit the config file to set the correct values for your environment.")
	},
}

var solveAsset string

var solveCmd = &cobra.Command{
	Use:   "solve [target]",
	Short: "Solve the source amount for a settlement target",
	Long:  `Solve how much of the source asset is needed to net the given amount of the settlement asset after routing.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			log.Fatalf("invalid target amount: %v", err)
		}

		cfg, logger := loadConfig()
		defer logger.Sync() // nolint: errcheck

		c, err := checkout.NewClient(cfg, logger)
		if err != nil {
			log.Fatalf("failed to create checkout client: %v", err)
		}
		defer c.Close()

		amount, err := c.SolveAmount(cmd.Context(), target, solveAsset)
		if err != nil {
			log.Fatalf("failed to solve amount: %v", err)
		}

		fmt.Printf("%f %s\n", amount, solveAsset)
	},
}

var buyAsset string

var buyCmd = &cobra.Command{
	Use:   "buy [collection] [token-id]",
	Short: "Buy a listed token",
	Long:  `Buy a listed token, routing the payment from the source asset's chain to the home chain first when needed.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := loadConfig()
		defer logger.Sync() // nolint: errcheck

		c, err := checkout.NewClient(cfg, logger)
		if err != nil {
			log.Fatalf("failed to create checkout client: %v", err)
		}
		defer c.Close()

		receipt, err := c.BuyToken(cmd.Context(), args[0], args[1], buyAsset)
		if err != nil {
			log.Fatalf("failed to buy token: %v", err)
		}

		for i, hash := range receipt.HopTxHashes {
			fmt.Printf("hop %d: %s\n", i, hash)
		}
		fmt.Printf("purchase: %s\n", receipt.PurchaseTxHash)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [collection] [token-id]",
	Short: "Show the live ask for a token",
	Long:  `Query the marketplace contract for the current ask of a token.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		tokenID, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("invalid token id: %v", err)
		}

		cfg, logger := loadConfig()
		defer logger.Sync() // nolint: errcheck

		c, err := checkout.NewClient(cfg, logger)
		if err != nil {
			log.Fatalf("failed to create checkout client: %v", err)
		}
		defer c.Close()

		ask, err := c.Ask(cmd.Context(), args[0], tokenID)
		if err != nil {
			log.Fatalf("failed to query ask: %v", err)
		}

		fmt.Printf("seller:  %s\n", ask.Seller)
		fmt.Printf("price:   %s\n", ask.Price)
		fmt.Printf("active:  %t\n", ask.IsActive)
		if ask.ExpiresAt != "" {
			fmt.Printf("expires: %s\n", ask.ExpiresAt)
		}
	},
}

var strategyCmd = &cobra.Command{
	Use:   "strategy [bisection|linear]",
	Short: "Set the amount solver strategy",
	Long:  `Set the search strategy the amount solver uses and persist it to the config file.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		strategy := config.Strategy(args[0])
		if !strategy.Validate() {
			log.Fatalf("invalid strategy: %s", args[0])
		}

		home, err := homedir.Dir()
		if err != nil {
			log.Fatalf("failed to get home directory: %v", err)
		}

		defaultHomeDir := home + "/.checkout-client"
		config.CfgFile = defaultHomeDir + "/config.yaml"

		viper.SetConfigFile(config.CfgFile)
		if err = viper.ReadInConfig(); err != nil {
			return
		}

		if err = utils.UpdateViperConfig("solver.strategy", string(strategy), viper.ConfigFileUsed()); err != nil {
			log.Fatalf("failed to update config: %v", err)
		}

		fmt.Printf("solver strategy set to %s\n", strategy)
	},
}

func loadConfig() (config.Config, *zap.Logger) {
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	cfg := config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	if !cfg.Solver.Strategy.Validate() {
		log.Fatalf("invalid solver strategy: %s", cfg.Solver.Strategy)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	return cfg, logger
}

func buildLogger(logLevel string) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.Set(logLevel); err != nil {
		return nil, fmt.Errorf("failed to set log level: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		level,
	))

	return logger, nil
}

func init() {
	RootCmd.CompletionOptions.DisableDefaultCmd = true
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(solveCmd)
	RootCmd.AddCommand(buyCmd)
	RootCmd.AddCommand(askCmd)
	RootCmd.AddCommand(strategyCmd)
	RootCmd.AddCommand(versioncmd.Cmd())

	cobra.OnInitialize(config.InitConfig)

	RootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", "", "config file")
	solveCmd.Flags().StringVar(&solveAsset, "asset", "ustars", "source asset denom")
	buyCmd.Flags().StringVar(&buyAsset, "asset", "ustars", "source asset denom")
}
