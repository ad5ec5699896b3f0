// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	v1 "github.com/openfund/ledger/business/web/v1"
	"github.com/openfund/ledger/foundation/events"
	"github.com/openfund/ledger/foundation/ledger"
	"github.com/openfund/ledger/foundation/ledger/account"
	"github.com/openfund/ledger/foundation/ledger/currency"
	"github.com/openfund/ledger/foundation/ledger/genesis"
	"github.com/openfund/ledger/foundation/nameservice"
	"github.com/openfund/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Ledger *ledger.Ledger
	Gen    genesis.Genesis
	NS     *nameservice.NameService
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitContribution accepts a new contribution into the ledger.
func (h Handlers) SubmitContribution(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	sender, amount, err := h.decodeContribution(r)
	if err != nil {
		return err
	}

	h.Log.Infow("add contribution", "traceid", v.TraceID, "account", sender, "amount", currency.Format(amount))
	if err := h.Ledger.AcceptPayment(sender, amount); err != nil {
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "contribution accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Deposit accepts value delivered without an explicit contribution call.
// It runs the same acceptance logic as SubmitContribution.
func (h Handlers) Deposit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	sender, amount, err := h.decodeContribution(r)
	if err != nil {
		return err
	}

	h.Log.Infow("bare deposit", "traceid", v.TraceID, "account", sender, "amount", currency.Format(amount))
	if err := h.Ledger.Deposit(sender, amount); err != nil {
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "deposit accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Gen, http.StatusOK)
}

// Price returns the current oracle quote rescaled to 18 decimals.
func (h Handlers) Price(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	price, err := h.Ledger.Price()
	if err != nil {
		return err
	}

	pi := priceInfo{
		Price: currency.Format(price),
	}

	return web.Respond(ctx, w, pi, http.StatusOK)
}

// Convert returns the USD value of the specified amount at the current quote.
func (h Handlers) Convert(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	amount, err := currency.Parse(web.Param(r, "amount"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	usd, err := h.Ledger.ConversionRate(amount)
	if err != nil {
		return err
	}

	ci := conversionInfo{
		Amount: currency.Format(amount),
		USD:    currency.Format(usd),
	}

	return web.Respond(ctx, w, ci, http.StatusOK)
}

// Contributors returns the current contribution records, or the record for
// a single account when one is provided.
func (h Handlers) Contributors(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	price, err := h.Ledger.Price()
	if err != nil {
		return err
	}

	var ids []account.ID
	switch acct := web.Param(r, "account"); acct {
	case "":
		ids = h.Ledger.Contributors()

	default:
		id, err := account.ToID(acct)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		ids = []account.ID{id}
	}

	// Take one snapshot of the bookkeeping rather than locking per entry.
	contributions := h.Ledger.Copy()

	contributors := make([]contributor, 0, len(ids))
	for _, id := range ids {
		amount, exists := contributions[id]
		if !exists {
			amount = new(big.Int)
		}

		contributors = append(contributors, contributor{
			Account: string(id),
			Name:    h.NS.Lookup(id),
			Amount:  currency.Format(amount),
			USD:     currency.Format(currency.USDValue(amount, price)),
		})
	}

	ci := contribInfo{
		Owner:        string(h.Ledger.Owner()),
		MinimumUSD:   currency.Format(h.Ledger.MinimumUSD()),
		Balance:      currency.Format(h.Ledger.Balance()),
		Contributors: contributors,
	}

	return web.Respond(ctx, w, ci, http.StatusOK)
}

// decodeContribution reads and validates the contribution payload shared
// by the explicit and implicit payment paths.
func (h Handlers) decodeContribution(r *http.Request) (account.ID, *big.Int, error) {
	var sc submitContribution
	if err := web.Decode(r, &sc); err != nil {
		return "", nil, fmt.Errorf("unable to decode payload: %w", err)
	}

	sender, err := account.ToID(sc.Account)
	if err != nil {
		return "", nil, v1.NewRequestError(err, http.StatusBadRequest)
	}

	amount, err := currency.Parse(sc.Amount)
	if err != nil {
		return "", nil, v1.NewRequestError(err, http.StatusBadRequest)
	}
	if amount.Sign() < 0 {
		return "", nil, v1.NewRequestError(fmt.Errorf("amount %q is negative", sc.Amount), http.StatusBadRequest)
	}

	return sender, amount, nil
}
