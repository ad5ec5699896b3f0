// Package transport moves value between accounts on the host environment.
// The ledger only ever sends value out; receiving is the host's concern.
package transport

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/openfund/ledger/foundation/ledger/account"
	"github.com/openfund/ledger/foundation/ledger/currency"
)

// Transport interface represents the behavior required to be implemented
// by any package providing support for settling value out of the ledger.
type Transport interface {
	Send(to account.ID, amount *big.Int) error
}

// =============================================================================

// Bank maintains the external settlement balances for accounts known to
// the host environment. It is the in-process Transport implementation.
type Bank struct {
	balances map[account.ID]*big.Int
	mu       sync.RWMutex
}

// NewBank constructs a bank with the balances seeded from the genesis
// balance sheet.
func NewBank(seed map[string]string) (*Bank, error) {
	bank := Bank{
		balances: make(map[account.ID]*big.Int),
	}

	for accountStr, amountStr := range seed {
		accountID, err := account.ToID(accountStr)
		if err != nil {
			return nil, fmt.Errorf("seeding balance for %q: %w", accountStr, err)
		}

		amount, err := currency.Parse(amountStr)
		if err != nil {
			return nil, fmt.Errorf("seeding balance for %q: %w", accountStr, err)
		}

		bank.balances[accountID] = amount
	}

	return &bank, nil
}

// Send implements the Transport interface by crediting the specified
// account with the amount.
func (b *Bank) Send(to account.ID, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative amount")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balance, exists := b.balances[to]
	if !exists {
		balance = new(big.Int)
	}

	b.balances[to] = new(big.Int).Add(balance, amount)
	return nil
}

// Balance returns the settled balance for the specified account.
func (b *Bank) Balance(id account.ID) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	balance, exists := b.balances[id]
	if !exists {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

// Copy makes a copy of the current settlement balances.
func (b *Bank) Copy() map[account.ID]*big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	balances := make(map[account.ID]*big.Int, len(b.balances))
	for accountID, balance := range b.balances {
		balances[accountID] = new(big.Int).Set(balance)
	}
	return balances
}
