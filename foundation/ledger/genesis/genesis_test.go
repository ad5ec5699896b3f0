package genesis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openfund/ledger/foundation/ledger/currency"
	"github.com/openfund/ledger/foundation/ledger/genesis"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const doc = `{
    "date": "2026-01-01T00:00:00.000000000Z",
    "owner": "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
    "minimum_usd": "5",
    "oracle_price": "2000",
    "max_quote_age_sec": 60,
    "balances": {
        "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": "0"
    }
}`

func TestLoad(t *testing.T) {
	t.Log("Given the need to load a genesis file.")
	{
		t.Logf("\tTest 0:\tWhen loading a well formed document.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to write the file: %v", failed, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the file.", success)

			if gen.Owner != "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32" {
				t.Fatalf("\t%s\tTest 0:\tShould read the owner, got %q.", failed, gen.Owner)
			}

			minimum, err := gen.MinimumUSDValue()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould parse the threshold: %v", failed, err)
			}
			if exp, _ := currency.Parse("5"); minimum.Cmp(exp) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould read a $5 threshold, got %s.", failed, currency.Format(minimum))
			}
			t.Logf("\t%s\tTest 0:\tShould read a $5 threshold.", success)

			if gen.MaxQuoteAge() != time.Minute {
				t.Fatalf("\t%s\tTest 0:\tShould read a one minute quote age bound.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould read a one minute quote age bound.", success)
		}

		t.Logf("\tTest 1:\tWhen the file does not exist.")
		{
			if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a missing file.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a missing file.", success)
		}
	}
}
