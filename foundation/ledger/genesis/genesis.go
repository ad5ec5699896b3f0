// Package genesis maintains access to the genesis file that fixes the
// funding ledger's owner, admission threshold, and seeded settlement
// balances.
package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/openfund/ledger/foundation/ledger/currency"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time         `json:"date"`
	Owner          string            `json:"owner"`             // The only account authorized to withdraw the held balance.
	MinimumUSD     string            `json:"minimum_usd"`       // Admission threshold as a decimal USD string.
	OraclePrice    string            `json:"oracle_price"`      // Pinned quote for the static oracle, decimal USD per unit.
	MaxQuoteAgeSec uint              `json:"max_quote_age_sec"` // Zero disables the staleness check.
	Balances       map[string]string `json:"balances"`          // Seeded external settlement balances.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// MinimumUSDValue returns the admission threshold as an 18 decimal
// fixed-point value.
func (g Genesis) MinimumUSDValue() (*big.Int, error) {
	v, err := currency.Parse(g.MinimumUSD)
	if err != nil {
		return nil, fmt.Errorf("parsing minimum usd: %w", err)
	}
	return v, nil
}

// MaxQuoteAge returns the staleness bound for oracle quotes. A zero
// duration disables the check.
func (g Genesis) MaxQuoteAge() time.Duration {
	return time.Duration(g.MaxQuoteAgeSec) * time.Second
}
