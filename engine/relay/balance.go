package relay

import (
	"context"
	"time"
)

// scheduleBalanceCheck queries the account balance some time after a submission, when the
// relay is idle. At most one check is pending at a time.
func (e *Engine) scheduleBalanceCheck(ctx context.Context) {
	if !e.balancePending.CompareAndSwap(false, true) {
		return
	}
	e.balances.Submit(func() {
		defer e.balancePending.Store(false)

		timer := time.NewTimer(e.cfg.BalanceCheckDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		e.checkBalance(ctx)
	})
}

func (e *Engine) checkBalance(ctx context.Context) {
	balance, err := e.query.Balance(ctx, e.signer.Address(), e.cfg.Denom)
	if err != nil {
		e.log.Warn().Err(err).Msg("could not get bot balance")
		return
	}
	e.log.Info().Str("balance", balance.Printable()).Msg("bot balance")
	if units, ok := balance.Units(); ok {
		e.metrics.AccountBalance(units)
	}
}
