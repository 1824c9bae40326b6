package relay

import (
	"context"
	"fmt"

	"github.com/noislabs/drand-relay/module/broadcast"
)

const registerMemo = "Register bot"

// register submits the register_bot call once at startup. A failed registration does not stop
// the relay; the moniker only labels the bot in the contract.
func (e *Engine) register(ctx context.Context) error {
	log := e.log.With().Str("moniker", e.cfg.Moniker).Logger()

	payload, err := registerBotPayload(e.cfg.Moniker)
	if err != nil {
		return fmt.Errorf("could not encode register_bot message: %w", err)
	}

	result, err := e.submit(ctx, payload, registerMemo)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Error().Err(err).Bool("all_endpoints_failed", broadcast.IsAllBroadcastsFailedError(err)).
			Msg("could not register bot")
		return e.recoverSequence(ctx)
	}

	log.Info().Str("tx_hash", result.TxHash).Int64("height", result.Height).Msg("bot registered")
	return nil
}
