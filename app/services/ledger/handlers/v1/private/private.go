// Package private maintains the group of handlers for owner operations.
package private

import (
	"context"
	"fmt"
	"net/http"

	v1 "github.com/openfund/ledger/business/web/v1"
	"github.com/openfund/ledger/foundation/ledger"
	"github.com/openfund/ledger/foundation/ledger/account"
	"github.com/openfund/ledger/foundation/ledger/currency"
	"github.com/openfund/ledger/foundation/ledger/transport"
	"github.com/openfund/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of private ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Ledger *ledger.Ledger
	Bank   *transport.Bank
}

// Withdraw sweeps the entire held balance to the owner. The caller account
// must be the owner fixed at genesis.
func (h Handlers) Withdraw(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req struct {
		Account string `json:"account" validate:"required"`
	}
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToID(req.Account)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("withdraw", "traceid", v.TraceID, "caller", caller)
	swept, err := h.Ledger.Withdraw(caller)
	if err != nil {
		return err
	}

	resp := struct {
		Status  string `json:"status"`
		Swept   string `json:"swept"`
		Settled string `json:"settled_balance"`
	}{
		Status:  "withdrawal complete",
		Swept:   currency.Format(swept),
		Settled: currency.Format(h.Bank.Balance(caller)),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BankBalances returns the current settlement balances.
func (h Handlers) BankBalances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	type balance struct {
		Account string `json:"account"`
		Balance string `json:"balance"`
	}

	copied := h.Bank.Copy()
	balances := make([]balance, 0, len(copied))
	for accountID, amount := range copied {
		balances = append(balances, balance{
			Account: string(accountID),
			Balance: currency.Format(amount),
		})
	}

	return web.Respond(ctx, w, balances, http.StatusOK)
}
