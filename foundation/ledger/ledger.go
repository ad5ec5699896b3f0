// Package ledger is the core API for the funding ledger and implements all
// the business rules for accepting oracle-priced contributions and sweeping
// the held balance to the owner.
package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/openfund/ledger/foundation/ledger/account"
	"github.com/openfund/ledger/foundation/ledger/currency"
	"github.com/openfund/ledger/foundation/ledger/oracle"
	"github.com/openfund/ledger/foundation/ledger/transport"
)

// EventHandler defines a function that is called when events occur in the
// processing of contributions and withdrawals.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct the ledger.
type Config struct {
	Owner       account.ID
	MinimumUSD  *big.Int
	MaxQuoteAge time.Duration
	Oracle      oracle.Source
	Transport   transport.Transport
	EvHandler   EventHandler
}

// Ledger manages the funds held in custody and the per-contributor
// bookkeeping. Mutations are serialized by a mutex; the external settlement
// call during a withdrawal runs outside the lock, after all bookkeeping has
// been reset, so a reentrant caller always observes final state.
type Ledger struct {
	owner       account.ID
	minimumUSD  *big.Int
	maxQuoteAge time.Duration
	oracle      oracle.Source
	transport   transport.Transport
	evHandler   EventHandler

	mu            sync.Mutex
	balance       *big.Int
	contributions map[account.ID]*big.Int
	contributors  []account.ID
}

// New constructs a new ledger for managing contributions.
func New(cfg Config) (*Ledger, error) {
	if !cfg.Owner.IsID() {
		return nil, fmt.Errorf("owner %q is not a valid account", cfg.Owner)
	}
	if cfg.MinimumUSD == nil || cfg.MinimumUSD.Sign() < 0 {
		return nil, errors.New("minimum usd threshold must be zero or greater")
	}
	if cfg.Oracle == nil {
		return nil, errors.New("an oracle source is required")
	}
	if cfg.Transport == nil {
		return nil, errors.New("a payment transport is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	l := Ledger{
		owner:         cfg.Owner,
		minimumUSD:    new(big.Int).Set(cfg.MinimumUSD),
		maxQuoteAge:   cfg.MaxQuoteAge,
		oracle:        cfg.Oracle,
		transport:     cfg.Transport,
		evHandler:     ev,
		balance:       new(big.Int),
		contributions: make(map[account.ID]*big.Int),
	}

	return &l, nil
}

// AcceptPayment records a contribution from the specified sender when its
// USD value at the current oracle quote meets the minimum threshold. A
// rejected payment leaves the ledger unchanged.
func (l *Ledger) AcceptPayment(sender account.ID, amount *big.Int) error {
	return l.accept(sender, amount)
}

// Deposit handles value delivered to the ledger without an explicit
// contribution call. It routes through the same acceptance logic so no
// value can bypass the threshold check or the bookkeeping.
func (l *Ledger) Deposit(sender account.ID, amount *big.Int) error {
	return l.accept(sender, amount)
}

// accept is the single internal entry point for all incoming value.
func (l *Ledger) accept(sender account.ID, amount *big.Int) error {
	if !sender.IsID() {
		return fmt.Errorf("sender %q is not a valid account", sender)
	}
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be zero or greater")
	}

	// The oracle is consulted before taking the lock. The quote read is an
	// external call and must not hold up or reenter the bookkeeping.
	price, err := l.Price()
	if err != nil {
		return err
	}

	usd := currency.USDValue(amount, price)
	if usd.Cmp(l.minimumUSD) < 0 {
		return fmt.Errorf("%w: $%s of $%s", ErrInsufficientContribution, currency.Format(usd), currency.Format(l.minimumUSD))
	}

	l.mu.Lock()
	{
		cum, exists := l.contributions[sender]
		if !exists {
			cum = new(big.Int)
			l.contributors = append(l.contributors, sender)
		}

		l.contributions[sender] = new(big.Int).Add(cum, amount)
		l.balance = new(big.Int).Add(l.balance, amount)
	}
	l.mu.Unlock()

	l.evHandler("ledger: accept: sender[%s] amount[%s] usd[%s]", sender, currency.Format(amount), currency.Format(usd))

	return nil
}

// Withdraw sweeps the entire held balance to the owner, zeroing all
// contributor bookkeeping. Only the owner may withdraw. The bookkeeping
// reset completes before the transport is invoked; if the transport fails
// the reset is rolled back so the call is all-or-nothing.
func (l *Ledger) Withdraw(caller account.ID) (*big.Int, error) {
	if caller != l.owner {
		return nil, fmt.Errorf("%w: caller[%s]", ErrUnauthorized, caller)
	}

	// Reset all bookkeeping before any value moves. A transport that calls
	// back into the ledger during the send observes an empty ledger and
	// cannot trigger a second sweep of funds that no longer exist.
	l.mu.Lock()
	swept := l.balance
	contributions := l.contributions
	contributors := l.contributors

	l.balance = new(big.Int)
	l.contributions = make(map[account.ID]*big.Int)
	l.contributors = nil
	l.mu.Unlock()

	if err := l.transport.Send(l.owner, swept); err != nil {

		// Merge the snapshot back additively so contributions accepted
		// while the send was in flight are preserved.
		l.mu.Lock()
		for _, id := range contributors {
			cum, exists := l.contributions[id]
			if !exists {
				cum = new(big.Int)
				l.contributors = append(l.contributors, id)
			}
			l.contributions[id] = new(big.Int).Add(cum, contributions[id])
		}
		l.balance = new(big.Int).Add(l.balance, swept)
		l.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrTransferFailed, err)
	}

	l.evHandler("ledger: withdraw: owner[%s] amount[%s] contributors[%d]", l.owner, currency.Format(swept), len(contributors))

	return swept, nil
}

// Price returns the current oracle quote rescaled to 18 decimals.
func (l *Ledger) Price() (*big.Int, error) {
	quote, err := l.oracle.LatestQuote()
	if err != nil {
		return nil, fmt.Errorf("reading oracle quote: %w", err)
	}

	if l.maxQuoteAge > 0 {
		if age := time.Since(quote.Time); age > l.maxQuoteAge {
			return nil, fmt.Errorf("%w: age[%s] max[%s]", ErrStaleQuote, age, l.maxQuoteAge)
		}
	}

	return currency.Rescale(quote.Value, quote.Decimals), nil
}

// ConversionRate returns the USD value of the specified amount at the
// current oracle quote. It has no side effects.
func (l *Ledger) ConversionRate(amount *big.Int) (*big.Int, error) {
	price, err := l.Price()
	if err != nil {
		return nil, err
	}

	return currency.USDValue(amount, price), nil
}

// Owner returns the account fixed at construction as the only one
// authorized to withdraw.
func (l *Ledger) Owner() account.ID {
	return l.owner
}

// MinimumUSD returns the admission threshold.
func (l *Ledger) MinimumUSD() *big.Int {
	return new(big.Int).Set(l.minimumUSD)
}

// Balance returns the currently held balance.
func (l *Ledger) Balance() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return new(big.Int).Set(l.balance)
}

// Contribution returns the cumulative amount contributed by the specified
// account since the last withdrawal.
func (l *Ledger) Contribution(id account.ID) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cum, exists := l.contributions[id]
	if !exists {
		return new(big.Int)
	}
	return new(big.Int).Set(cum)
}

// Contributors returns the accounts with recorded contributions in the
// order of their first accepted contribution.
func (l *Ledger) Contributors() []account.ID {
	l.mu.Lock()
	defer l.mu.Unlock()

	contributors := make([]account.ID, len(l.contributors))
	copy(contributors, l.contributors)
	return contributors
}

// Copy makes a copy of the current contribution bookkeeping.
func (l *Ledger) Copy() map[account.ID]*big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	contributions := make(map[account.ID]*big.Int, len(l.contributions))
	for id, cum := range l.contributions {
		contributions[id] = new(big.Int).Set(cum)
	}
	return contributions
}
