package ledger_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/openfund/ledger/foundation/ledger"
	"github.com/openfund/ledger/foundation/ledger/account"
	"github.com/openfund/ledger/foundation/ledger/currency"
	"github.com/openfund/ledger/foundation/ledger/oracle"
	"github.com/openfund/ledger/foundation/ledger/transport"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	owner        = account.ID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	contributor1 = account.ID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	contributor2 = account.ID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")
	outsider     = account.ID("0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD9")
)

// stubOracle reports a fixed quote with a controllable timestamp.
type stubOracle struct {
	quote oracle.Quote
	err   error
}

func (s stubOracle) LatestQuote() (oracle.Quote, error) {
	return s.quote, s.err
}

// failingTransport refuses every send.
type failingTransport struct{}

func (failingTransport) Send(to account.ID, amount *big.Int) error {
	return errors.New("settlement refused")
}

// usd2000 is a $2000 per unit quote at 18 decimals.
func usd2000() oracle.Quote {
	price, _ := currency.Parse("2000")
	return oracle.Quote{Value: price, Decimals: 18, Time: time.Now()}
}

func newLedger(t *testing.T, tr transport.Transport) *ledger.Ledger {
	t.Helper()

	minimum, _ := currency.Parse("5")

	l, err := ledger.New(ledger.Config{
		Owner:      owner,
		MinimumUSD: minimum,
		Oracle:     stubOracle{quote: usd2000()},
		Transport:  tr,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %v", failed, err)
	}

	return l
}

func mustParse(t *testing.T, s string) *big.Int {
	t.Helper()

	v, err := currency.Parse(s)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse %q: %v", failed, s, err)
	}
	return v
}

func TestAcceptPayment(t *testing.T) {
	type table struct {
		name   string
		amount string
		accept bool
	}

	tt := []table{
		{name: "boundary", amount: "0.0025", accept: true},
		{name: "below", amount: "0.0024", accept: false},
		{name: "generous", amount: "1", accept: true},
		{name: "zero", amount: "0", accept: false},
	}

	t.Log("Given the need to gate contributions on their USD value.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen accepting %s units against a $5 minimum at $2000.", testID, tst.amount)
			{
				bank, _ := transport.NewBank(nil)
				l := newLedger(t, bank)
				amount := mustParse(t, tst.amount)

				err := l.AcceptPayment(contributor1, amount)
				switch {
				case tst.accept && err != nil:
					t.Fatalf("\t%s\tTest %d:\tShould accept the contribution: %v", failed, testID, err)
				case !tst.accept && !errors.Is(err, ledger.ErrInsufficientContribution):
					t.Fatalf("\t%s\tTest %d:\tShould reject with ErrInsufficientContribution, got %v.", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get the expected admission result.", success, testID)

				if !tst.accept {
					if l.Balance().Sign() != 0 || len(l.Contributors()) != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould leave the ledger unchanged on rejection.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould leave the ledger unchanged on rejection.", success, testID)
					continue
				}

				if l.Balance().Cmp(amount) != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould hold the contributed amount.", failed, testID)
				}
				if l.Contribution(contributor1).Cmp(amount) != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould record the contribution for the sender.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould record the contribution for the sender.", success, testID)
			}
		}
	}
}

func TestCumulativeContributions(t *testing.T) {
	t.Log("Given the need to accumulate repeat contributions per sender.")
	{
		t.Logf("\tTest 0:\tWhen the same sender contributes three times.")
		{
			bank, _ := transport.NewBank(nil)
			l := newLedger(t, bank)

			total := new(big.Int)
			for _, s := range []string{"0.0025", "0.01", "0.5"} {
				amount := mustParse(t, s)
				if err := l.AcceptPayment(contributor1, amount); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould accept the contribution of %s: %v", failed, s, err)
				}
				total.Add(total, amount)
			}
			t.Logf("\t%s\tTest 0:\tShould accept every contribution.", success)

			if got := l.Contribution(contributor1); got.Cmp(total) != 0 {
				t.Logf("\t%s\tTest 0:\tgot: %s", failed, currency.Format(got))
				t.Logf("\t%s\tTest 0:\texp: %s", failed, currency.Format(total))
				t.Fatalf("\t%s\tTest 0:\tShould record the sum of all contributions.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould record the sum of all contributions.", success)

			if got := len(l.Contributors()); got != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould list the sender once, got %d entries.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould list the sender once.", success)
		}
	}
}

func TestDepositRoutesThroughAcceptance(t *testing.T) {
	t.Log("Given the need to gate value delivered without an explicit call.")
	{
		t.Logf("\tTest 0:\tWhen a bare deposit is below the threshold.")
		{
			bank, _ := transport.NewBank(nil)
			l := newLedger(t, bank)

			err := l.Deposit(contributor1, mustParse(t, "0.0024"))
			if !errors.Is(err, ledger.ErrInsufficientContribution) {
				t.Fatalf("\t%s\tTest 0:\tShould reject the deposit, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the deposit.", success)
		}

		t.Logf("\tTest 1:\tWhen a bare deposit meets the threshold.")
		{
			bank, _ := transport.NewBank(nil)
			l := newLedger(t, bank)

			amount := mustParse(t, "0.0025")
			if err := l.Deposit(contributor1, amount); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould accept the deposit: %v", failed, err)
			}
			if l.Contribution(contributor1).Cmp(amount) != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould attribute the deposit to the sender.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould attribute the deposit to the sender.", success)
		}
	}
}

func TestWithdrawAccessControl(t *testing.T) {
	t.Log("Given the need to restrict withdrawal to the owner.")
	{
		t.Logf("\tTest 0:\tWhen a non-owner attempts to withdraw.")
		{
			bank, _ := transport.NewBank(nil)
			l := newLedger(t, bank)

			amount := mustParse(t, "1")
			if err := l.AcceptPayment(contributor1, amount); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the contribution: %v", failed, err)
			}

			if _, err := l.Withdraw(outsider); !errors.Is(err, ledger.ErrUnauthorized) {
				t.Fatalf("\t%s\tTest 0:\tShould reject with ErrUnauthorized, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject with ErrUnauthorized.", success)

			if l.Balance().Cmp(amount) != 0 || l.Contribution(contributor1).Cmp(amount) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave balances and records unchanged.", failed)
			}
			if bank.Balance(outsider).Sign() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould not settle any value.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave balances and records unchanged.", success)
		}
	}
}

func TestWithdraw(t *testing.T) {
	t.Log("Given the need to sweep the held balance to the owner.")
	{
		t.Logf("\tTest 0:\tWhen the owner withdraws after two contributors funded.")
		{
			bank, _ := transport.NewBank(nil)
			l := newLedger(t, bank)

			a1 := mustParse(t, "1")
			a2 := mustParse(t, "0.25")
			if err := l.AcceptPayment(contributor1, a1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the first contribution: %v", failed, err)
			}
			if err := l.AcceptPayment(contributor2, a2); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the second contribution: %v", failed, err)
			}

			held := l.Balance()
			swept, err := l.Withdraw(owner)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to withdraw: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to withdraw.", success)

			if swept.Cmp(held) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould sweep the full held balance.", failed)
			}
			if bank.Balance(owner).Cmp(held) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould credit the owner with exactly the held balance.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the owner with exactly the held balance.", success)

			if l.Balance().Sign() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould zero the held balance.", failed)
			}
			if len(l.Contributors()) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould empty the contributor list.", failed)
			}
			for _, id := range []account.ID{contributor1, contributor2} {
				if l.Contribution(id).Sign() != 0 {
					t.Fatalf("\t%s\tTest 0:\tShould zero the record for %s.", failed, id)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould zero all contributor records.", success)
		}

		t.Logf("\tTest 1:\tWhen the owner withdraws from an empty ledger.")
		{
			bank, _ := transport.NewBank(nil)
			l := newLedger(t, bank)

			swept, err := l.Withdraw(owner)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould succeed on an empty ledger: %v", failed, err)
			}
			if swept.Sign() != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould sweep zero value.", failed)
			}
			if bank.Balance(owner).Sign() != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould not change the owner's settled balance.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould succeed trivially, sweeping zero value.", success)
		}
	}
}

func TestWithdrawTransferFailure(t *testing.T) {
	t.Log("Given the need to keep withdrawal all-or-nothing.")
	{
		t.Logf("\tTest 0:\tWhen the transport refuses the settlement.")
		{
			l := newLedger(t, failingTransport{})

			amount := mustParse(t, "1")
			if err := l.AcceptPayment(contributor1, amount); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the contribution: %v", failed, err)
			}

			if _, err := l.Withdraw(owner); !errors.Is(err, ledger.ErrTransferFailed) {
				t.Fatalf("\t%s\tTest 0:\tShould reject with ErrTransferFailed, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject with ErrTransferFailed.", success)

			if l.Balance().Cmp(amount) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould restore the held balance.", failed)
			}
			if l.Contribution(contributor1).Cmp(amount) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould restore the contributor record.", failed)
			}
			if got := len(l.Contributors()); got != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould restore the contributor list, got %d entries.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould restore all bookkeeping.", success)
		}
	}
}

// reentrantTransport calls back into the ledger during the settlement the
// way an untrusted recipient could.
type reentrantTransport struct {
	ledger **ledger.Ledger
	bank   *transport.Bank

	reentered            bool
	observedBalance      *big.Int
	observedContributors int
	reentrantWithdraw    *big.Int
	reentrantErr         error
}

func (rt *reentrantTransport) Send(to account.ID, amount *big.Int) error {
	if rt.reentered {
		return rt.bank.Send(to, amount)
	}
	rt.reentered = true

	l := *rt.ledger

	// Record what a reentrant caller observes mid-settlement.
	rt.observedBalance = l.Balance()
	rt.observedContributors = len(l.Contributors())

	// A reentrant contribution must still be accepted on its own merits.
	mid, _ := currency.Parse("0.0025")
	rt.reentrantErr = l.AcceptPayment(contributor2, mid)

	// A reentrant withdraw sweeps only what arrived mid-settlement.
	rt.reentrantWithdraw, _ = l.Withdraw(to)

	return rt.bank.Send(to, amount)
}

func TestReentrantTransport(t *testing.T) {
	t.Log("Given the need to survive a transport that reenters the ledger.")
	{
		t.Logf("\tTest 0:\tWhen the settlement callback contributes and withdraws.")
		{
			bank, _ := transport.NewBank(nil)

			var l *ledger.Ledger
			rt := reentrantTransport{ledger: &l, bank: bank}

			minimum := mustParse(t, "5")
			var err error
			l, err = ledger.New(ledger.Config{
				Owner:      owner,
				MinimumUSD: minimum,
				Oracle:     stubOracle{quote: usd2000()},
				Transport:  &rt,
			})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the ledger: %v", failed, err)
			}

			amount := mustParse(t, "1")
			if err := l.AcceptPayment(contributor1, amount); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the contribution: %v", failed, err)
			}

			swept, err := l.Withdraw(owner)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to withdraw: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to withdraw.", success)

			if rt.observedBalance.Sign() != 0 || rt.observedContributors != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould expose only reset state to the reentrant caller.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould expose only reset state to the reentrant caller.", success)

			if rt.reentrantErr != nil {
				t.Fatalf("\t%s\tTest 0:\tShould still accept a valid reentrant contribution: %v", failed, rt.reentrantErr)
			}
			t.Logf("\t%s\tTest 0:\tShould still accept a valid reentrant contribution.", success)

			if rt.reentrantWithdraw.Cmp(swept) >= 0 {
				t.Fatalf("\t%s\tTest 0:\tShould not allow the reentrant withdraw to sweep the outer funds.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not allow the reentrant withdraw to sweep the outer funds.", success)

			// The outer sweep and the reentrant sweep together settle exactly
			// what was ever accepted.
			total := new(big.Int).Add(swept, rt.reentrantWithdraw)
			if bank.Balance(owner).Cmp(total) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould settle exactly the accepted value, no more.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould settle exactly the accepted value, no more.", success)
		}
	}
}

func TestStaleQuote(t *testing.T) {
	t.Log("Given the need to reject stale oracle quotes when a bound is set.")
	{
		t.Logf("\tTest 0:\tWhen the quote is older than the configured bound.")
		{
			price := mustParse(t, "2000")
			stale := oracle.Quote{Value: price, Decimals: 18, Time: time.Now().Add(-time.Hour)}

			bank, _ := transport.NewBank(nil)
			l, err := ledger.New(ledger.Config{
				Owner:       owner,
				MinimumUSD:  mustParse(t, "5"),
				MaxQuoteAge: time.Minute,
				Oracle:      stubOracle{quote: stale},
				Transport:   bank,
			})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the ledger: %v", failed, err)
			}

			err = l.AcceptPayment(contributor1, mustParse(t, "1"))
			if !errors.Is(err, ledger.ErrStaleQuote) {
				t.Fatalf("\t%s\tTest 0:\tShould reject with ErrStaleQuote, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject with ErrStaleQuote.", success)
		}
	}
}

func TestConversionRate(t *testing.T) {
	t.Log("Given the need to expose the conversion rule read-only.")
	{
		t.Logf("\tTest 0:\tWhen converting 0.0025 units at $2000.")
		{
			bank, _ := transport.NewBank(nil)
			l := newLedger(t, bank)

			usd, err := l.ConversionRate(mustParse(t, "0.0025"))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to convert: %v", failed, err)
			}

			if exp := mustParse(t, "5"); usd.Cmp(exp) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould value the amount at $5, got %s.", failed, currency.Format(usd))
			}
			t.Logf("\t%s\tTest 0:\tShould value the amount at $5.", success)

			if l.Balance().Sign() != 0 || len(l.Contributors()) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have no side effects.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have no side effects.", success)
		}
	}
}
