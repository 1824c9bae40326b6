package cmd

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noislabs/drand-relay/client/drand"
	"github.com/noislabs/drand-relay/utils/unittest"
)

// newTestViper returns a viper bound to a fresh set of relay flags parsed from args.
func newTestViper(t *testing.T, args ...string) *viper.Viper {
	cmd := &cobra.Command{Use: "relay"}
	bindFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))

	v := viper.New()
	initViper(v, cmd)
	return v
}

func setRequiredEnv(t *testing.T) {
	t.Setenv("PREFIX", "nois")
	t.Setenv("DENOM", "unois")
	t.Setenv("ENDPOINT", "https://rpc.nois.example:443")
	t.Setenv("NOIS_CONTRACT", "nois14xef285hz5cx5q9hh32p9nztu3cct4g44sxjgx")
	t.Setenv("GAS_PRICE", "0.05unois")
	t.Setenv("CHAIN_HASH", unittest.FastnetChainHash)
	t.Setenv("DRAND_GENESIS", "1677685200")
	t.Setenv("DRAND_PERIOD", "3")
}

func TestLoadConfig_FromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENDPOINT2", "https://rpc2.nois.example")
	t.Setenv("EXTRA_ENDPOINTS", " https://rpc3.nois.example, ,https://rpc4.nois.example")
	t.Setenv("MONIKER", "relay-1")
	t.Setenv("LOGLEVEL", "DEBUG")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, "nois", cfg.Prefix)
	assert.Equal(t, "unois", cfg.Denom)
	assert.Equal(t, []string{
		"https://rpc.nois.example:443",
		"https://rpc2.nois.example",
		"https://rpc3.nois.example",
		"https://rpc4.nois.example",
	}, cfg.Endpoints)
	assert.Equal(t, "0.05unois", cfg.GasPrice.String())
	assert.EqualValues(t, 700_000, cfg.GasLimit)
	assert.Equal(t, "relay-1", cfg.Moniker)
	assert.Equal(t, drand.DefaultURLs, cfg.DrandURLs)
	assert.Equal(t, unittest.FastnetChainInfo(), cfg.Beacon)
	assert.Equal(t, 20*time.Second, cfg.BroadcastTimeout)
	assert.Equal(t, ":8080", cfg.MetricsAddr)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.Mnemonic)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := loadConfig(newTestViper(t,
		"--drand-period=30s",
		"--drand-genesis=1595431050",
		"--chain-hash="+unittest.MainnetChainHash,
		"--drand-chained",
		"--gas-limit=500000",
		"--broadcast-timeout=5s",
		"--metrics-addr=",
		"--log-format=json",
		"--drand-urls=https://drand.example",
	))
	require.NoError(t, err)

	assert.Equal(t, unittest.MainnetChainInfo(), cfg.Beacon)
	assert.EqualValues(t, 500_000, cfg.GasLimit)
	assert.Equal(t, 5*time.Second, cfg.BroadcastTimeout)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"https://drand.example"}, cfg.DrandURLs)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing prefix":         {"PREFIX": ""},
		"missing endpoint":       {"ENDPOINT": ""},
		"secondary only":         {"ENDPOINT": "", "ENDPOINT2": "https://rpc2.nois.example"},
		"duplicate endpoint":     {"ENDPOINT2": "https://rpc.nois.example:443"},
		"missing contract":       {"NOIS_CONTRACT": ""},
		"missing gas price":      {"GAS_PRICE": ""},
		"invalid gas price":      {"GAS_PRICE": "cheap"},
		"gas price denom":        {"GAS_PRICE": "0.05ustake"},
		"zero gas limit":         {"GAS_LIMIT": "0"},
		"missing chain hash":     {"CHAIN_HASH": ""},
		"non hex chain hash":     {"CHAIN_HASH": "not-hex"},
		"missing genesis":        {"DRAND_GENESIS": ""},
		"missing period":         {"DRAND_PERIOD": ""},
		"invalid period":         {"DRAND_PERIOD": "often"},
		"sub second period":      {"DRAND_PERIOD": "500ms"},
		"empty drand urls":       {"DRAND_URLS": " , "},
		"invalid log level":      {"LOGLEVEL": "loud"},
		"invalid log format":     {"LOG_FORMAT": "xml"},
		"zero broadcast timeout": {"BROADCAST_TIMEOUT": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := loadConfig(newTestViper(t))
			assert.Error(t, err)
		})
	}
}

func TestParsePeriod(t *testing.T) {
	period, err := parsePeriod("30")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, period)

	period, err = parsePeriod("3s")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, period)

	_, err = parsePeriod("")
	assert.Error(t, err)
}
