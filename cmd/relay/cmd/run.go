package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noislabs/drand-relay/client/comet"
	"github.com/noislabs/drand-relay/client/drand"
	"github.com/noislabs/drand-relay/client/faucet"
	"github.com/noislabs/drand-relay/crypto/cosmos"
	"github.com/noislabs/drand-relay/engine/relay"
	"github.com/noislabs/drand-relay/module/broadcast"
	"github.com/noislabs/drand-relay/module/component"
	"github.com/noislabs/drand-relay/module/metrics"
	"github.com/noislabs/drand-relay/module/roundclock"
	"github.com/noislabs/drand-relay/module/sequence"
)

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := cmd.Context()

	wallet, err := loadWallet(ctx, log, cfg)
	if err != nil {
		return err
	}
	signer := cosmos.NewSigner(wallet)
	log = log.With().Str("address", wallet.Address()).Logger()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	relayMetrics := metrics.NewRelayCollector(registry)

	clients := make([]*comet.Client, 0, len(cfg.Endpoints))
	endpoints := make([]broadcast.Endpoint, 0, len(cfg.Endpoints))
	for _, endpoint := range cfg.Endpoints {
		client, err := comet.NewClient(log, endpoint, comet.DefaultConfig())
		if err != nil {
			return fmt.Errorf("could not create client for %s: %w", endpoint, err)
		}
		clients = append(clients, client)
		endpoints = append(endpoints, broadcast.Endpoint{ID: client.Endpoint(), Broadcaster: client})
	}
	query := clients[0]

	racerConfig := broadcast.DefaultConfig()
	racerConfig.Timeout = cfg.BroadcastTimeout
	racer, err := broadcast.New(log, endpoints, racerConfig, relayMetrics)
	if err != nil {
		return fmt.Errorf("could not create broadcast racer: %w", err)
	}

	sequences := sequence.NewCache(log, query, wallet.Address(), relayMetrics)
	signData, err := sequences.Initialize(ctx)
	if err != nil {
		return sequenceInitError(err, wallet.Address())
	}
	log.Info().
		Str("chain_id", signData.ChainID).
		Uint64("account_number", signData.AccountNumber).
		Uint64("sequence", signData.Sequence).
		Msg("account loaded")

	clock, err := roundclock.New(cfg.Beacon.Genesis, cfg.Beacon.Period)
	if err != nil {
		return fmt.Errorf("could not create round clock: %w", err)
	}
	drandConfig := drand.DefaultConfig()
	drandConfig.URLs = cfg.DrandURLs
	drandConfig.ChainHash = cfg.Beacon.Hash
	beacons, err := drand.NewClient(log, drandConfig, clock)
	if err != nil {
		return fmt.Errorf("could not create drand client: %w", err)
	}

	engine, err := relay.New(log, relay.Config{
		Contract:          cfg.Contract,
		GasLimit:          cfg.GasLimit,
		GasPrice:          cfg.GasPrice,
		Denom:             cfg.Denom,
		Chained:           cfg.Beacon.Chained,
		Moniker:           cfg.Moniker,
		BalanceCheckDelay: relay.DefaultBalanceCheckDelay,
	}, beacons, query, signer, sequences, racer, clock, relayMetrics)
	if err != nil {
		return fmt.Errorf("could not create relay engine: %w", err)
	}

	components := []component.Component{engine}
	if cfg.MetricsAddr != "" {
		components = append(components, metrics.NewServer(log, cfg.MetricsAddr, registry, engine))
	}

	return newRelayNode(log, components...).Run(ctx)
}

// sequenceInitError explains a failed startup query, pointing out accounts that were never funded.
func sequenceInitError(err error, address string) error {
	if comet.IsAccountNotFoundError(err) {
		return fmt.Errorf("account %s is unknown to the chain, fund it or set --%s: %w", address, flagFaucetEndpoint, err)
	}
	return fmt.Errorf("could not initialize account sequence: %w", err)
}

// loadWallet derives the bot account from the configured mnemonic, or generates a new account
// and asks the faucet to fund it.
func loadWallet(ctx context.Context, log zerolog.Logger, cfg Config) (*cosmos.Wallet, error) {
	if cfg.Mnemonic != "" {
		wallet, err := cosmos.NewWallet(cfg.Mnemonic, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("could not load wallet: %w", err)
		}
		return wallet, nil
	}

	mnemonic, err := cosmos.GenerateMnemonic()
	if err != nil {
		return nil, err
	}
	wallet, err := cosmos.NewWallet(mnemonic, cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("could not create wallet: %w", err)
	}
	log.Warn().
		Str("mnemonic", wallet.Mnemonic()).
		Str("address", wallet.Address()).
		Msg("generated new account, set --mnemonic to keep using it")

	if cfg.FaucetEndpoint == "" {
		log.Warn().Msg("mnemonic and faucet endpoint are unset, bot account probably has no funds")
		return wallet, nil
	}
	err = faucet.NewClient(log, cfg.FaucetEndpoint).Credit(ctx, wallet.Address(), cfg.Denom)
	if err != nil {
		return nil, fmt.Errorf("could not credit generated account: %w", err)
	}
	log.Info().Str("faucet", cfg.FaucetEndpoint).Msg("generated account credited")
	return wallet, nil
}
