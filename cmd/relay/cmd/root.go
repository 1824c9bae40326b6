package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay drand beacon rounds into the nois drand contract",
	Long: `relay watches a drand beacon chain and submits every round eligible for the bot's shard
into the drand contract. Bots sharing a contract split the rounds between two shards
derived from their addresses.`,
	SilenceUsage: true,
	RunE:         run,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	bindFlags(rootCmd.Flags())
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	initViper(viper.GetViper(), rootCmd)
}

// initViper makes every flag of cmd readable from the environment, e.g. --gas-price from GAS_PRICE.
func initViper(v *viper.Viper, cmd *cobra.Command) {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Sprintf("could not bind flags: %v", err))
	}
}

func newLogger(cfg Config) zerolog.Logger {
	var log zerolog.Logger
	if cfg.LogFormat == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return log.Level(cfg.LogLevel).With().Timestamp().Logger()
}
