package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/noislabs/drand-relay/client/drand"
	"github.com/noislabs/drand-relay/engine/relay"
	"github.com/noislabs/drand-relay/model/beacon"
	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/module/broadcast"
)

const (
	flagPrefix           = "prefix"
	flagDenom            = "denom"
	flagEndpoint         = "endpoint"
	flagEndpoint2        = "endpoint2"
	flagEndpoint3        = "endpoint3"
	flagExtraEndpoints   = "extra-endpoints"
	flagContract         = "nois-contract"
	flagGasPrice         = "gas-price"
	flagGasLimit         = "gas-limit"
	flagMnemonic         = "mnemonic"
	flagFaucetEndpoint   = "faucet-endpoint"
	flagMoniker          = "moniker"
	flagDrandURLs        = "drand-urls"
	flagChainHash        = "chain-hash"
	flagDrandGenesis     = "drand-genesis"
	flagDrandPeriod      = "drand-period"
	flagDrandChained     = "drand-chained"
	flagBroadcastTimeout = "broadcast-timeout"
	flagMetricsAddr      = "metrics-addr"
	flagLogLevel         = "loglevel"
	flagLogFormat        = "log-format"
)

// Config is the configuration of the relay process. Every value is read from a flag or the
// environment variable of the same name, upper-cased with dashes replaced by underscores.
type Config struct {
	Prefix           string
	Denom            string
	Endpoints        []string // the first endpoint is used for queries and broadcasts, the rest for broadcasts
	Contract         string
	GasPrice         chain.GasPrice
	GasLimit         uint64
	Mnemonic         string
	FaucetEndpoint   string
	Moniker          string
	DrandURLs        []string
	Beacon           beacon.ChainInfo
	BroadcastTimeout time.Duration
	MetricsAddr      string
	LogLevel         zerolog.Level
	LogFormat        string
}

func bindFlags(flags *pflag.FlagSet) {
	flags.String(flagPrefix, "", "bech32 prefix of account addresses, e.g. nois")
	flags.String(flagDenom, "", "fee denom, e.g. unois")
	flags.String(flagEndpoint, "", "CometBFT RPC endpoint used for queries and broadcasts")
	flags.String(flagEndpoint2, "", "additional CometBFT RPC endpoint for broadcasts")
	flags.String(flagEndpoint3, "", "additional CometBFT RPC endpoint for broadcasts")
	flags.String(flagExtraEndpoints, "", "comma separated list of further broadcast endpoints")
	flags.String(flagContract, "", "address of the drand contract")
	flags.String(flagGasPrice, "", "gas price, e.g. 0.025unois")
	flags.Uint64(flagGasLimit, relay.DefaultGasLimit, "gas limit of every transaction")
	flags.String(flagMnemonic, "", "mnemonic of the bot account; a new account is generated if unset")
	flags.String(flagFaucetEndpoint, "", "faucet to credit a generated account")
	flags.String(flagMoniker, "", "register the bot under this moniker at startup")
	flags.String(flagDrandURLs, strings.Join(drand.DefaultURLs, ","), "comma separated drand HTTP endpoints")
	flags.String(flagChainHash, "", "hex encoded hash of the drand chain")
	flags.Int64(flagDrandGenesis, 0, "genesis time of the drand chain in unix seconds")
	flags.String(flagDrandPeriod, "", "round period of the drand chain, in seconds or as a duration")
	flags.Bool(flagDrandChained, false, "whether the drand chain is chained and previous signatures are submitted")
	flags.Duration(flagBroadcastTimeout, broadcast.DefaultConfig().Timeout, "timeout of a single broadcast including inclusion")
	flags.String(flagMetricsAddr, ":8080", "listen address of the metrics server; empty disables it")
	flags.String(flagLogLevel, "info", "log level (trace, debug, info, warn, error)")
	flags.String(flagLogFormat, "console", "log format (console or json)")
}

// loadConfig reads and validates the configuration. Nothing is contacted.
func loadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Prefix:           strings.TrimSpace(v.GetString(flagPrefix)),
		Denom:            strings.TrimSpace(v.GetString(flagDenom)),
		Contract:         strings.TrimSpace(v.GetString(flagContract)),
		GasLimit:         v.GetUint64(flagGasLimit),
		Mnemonic:         v.GetString(flagMnemonic),
		FaucetEndpoint:   strings.TrimSpace(v.GetString(flagFaucetEndpoint)),
		Moniker:          strings.TrimSpace(v.GetString(flagMoniker)),
		DrandURLs:        splitList(v.GetString(flagDrandURLs)),
		BroadcastTimeout: v.GetDuration(flagBroadcastTimeout),
		MetricsAddr:      strings.TrimSpace(v.GetString(flagMetricsAddr)),
		LogFormat:        strings.ToLower(strings.TrimSpace(v.GetString(flagLogFormat))),
		Beacon: beacon.ChainInfo{
			Hash:    strings.TrimSpace(v.GetString(flagChainHash)),
			Genesis: v.GetInt64(flagDrandGenesis),
			Chained: v.GetBool(flagDrandChained),
		},
	}

	for _, endpoint := range []string{v.GetString(flagEndpoint), v.GetString(flagEndpoint2), v.GetString(flagEndpoint3)} {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			cfg.Endpoints = append(cfg.Endpoints, endpoint)
		}
	}
	if strings.TrimSpace(v.GetString(flagEndpoint)) == "" {
		return Config{}, fmt.Errorf("--%s must be set", flagEndpoint)
	}
	cfg.Endpoints = append(cfg.Endpoints, splitList(v.GetString(flagExtraEndpoints))...)

	gasPrice := strings.TrimSpace(v.GetString(flagGasPrice))
	if gasPrice == "" {
		return Config{}, fmt.Errorf("--%s must be set, e.g. 0.025unois", flagGasPrice)
	}
	price, err := chain.ParseGasPrice(gasPrice)
	if err != nil {
		return Config{}, err
	}
	cfg.GasPrice = price

	period, err := parsePeriod(v.GetString(flagDrandPeriod))
	if err != nil {
		return Config{}, fmt.Errorf("invalid --%s: %w", flagDrandPeriod, err)
	}
	cfg.Beacon.Period = period

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v.GetString(flagLogLevel))))
	if err != nil {
		return Config{}, fmt.Errorf("invalid --%s: %w", flagLogLevel, err)
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that all required values are present and consistent.
func (c Config) Validate() error {
	for _, required := range []struct{ flag, value string }{
		{flagPrefix, c.Prefix},
		{flagDenom, c.Denom},
		{flagContract, c.Contract},
	} {
		if required.value == "" {
			return fmt.Errorf("--%s must be set", required.flag)
		}
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("--%s must be set", flagEndpoint)
	}
	seen := make(map[string]struct{}, len(c.Endpoints))
	for _, endpoint := range c.Endpoints {
		if _, ok := seen[endpoint]; ok {
			return fmt.Errorf("endpoint %s is configured more than once", endpoint)
		}
		seen[endpoint] = struct{}{}
	}
	if c.GasLimit == 0 {
		return fmt.Errorf("--%s must be positive", flagGasLimit)
	}
	if c.GasPrice.Denom != c.Denom {
		return fmt.Errorf("gas price denom %s does not match fee denom %s", c.GasPrice.Denom, c.Denom)
	}
	if len(c.DrandURLs) == 0 {
		return fmt.Errorf("--%s must not be empty", flagDrandURLs)
	}
	if err := c.Beacon.Validate(); err != nil {
		return fmt.Errorf("invalid drand chain (--%s, --%s, --%s): %w", flagChainHash, flagDrandGenesis, flagDrandPeriod, err)
	}
	if c.BroadcastTimeout <= 0 {
		return fmt.Errorf("--%s must be positive", flagBroadcastTimeout)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("--%s must be console or json, got %q", flagLogFormat, c.LogFormat)
	}
	return nil
}

// parsePeriod accepts whole seconds ("30") as well as durations ("30s").
func parsePeriod(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("round period must be set")
	}
	if seconds, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
