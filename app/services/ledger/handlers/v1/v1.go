// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/openfund/ledger/app/services/ledger/handlers/v1/private"
	"github.com/openfund/ledger/app/services/ledger/handlers/v1/public"
	"github.com/openfund/ledger/foundation/events"
	"github.com/openfund/ledger/foundation/ledger"
	"github.com/openfund/ledger/foundation/ledger/genesis"
	"github.com/openfund/ledger/foundation/ledger/transport"
	"github.com/openfund/ledger/foundation/nameservice"
	"github.com/openfund/ledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Ledger  *ledger.Ledger
	Genesis genesis.Genesis
	Bank    *transport.Bank
	NS      *nameservice.NameService
	Evts    *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:    cfg.Log,
		Ledger: cfg.Ledger,
		Gen:    cfg.Genesis,
		NS:     cfg.NS,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/price", pbl.Price)
	app.Handle(http.MethodGet, version, "/price/convert/:amount", pbl.Convert)
	app.Handle(http.MethodGet, version, "/contrib/list", pbl.Contributors)
	app.Handle(http.MethodGet, version, "/contrib/list/:account", pbl.Contributors)
	app.Handle(http.MethodPost, version, "/contrib/submit", pbl.SubmitContribution)
	app.Handle(http.MethodPost, version, "/contrib/deposit", pbl.Deposit)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:    cfg.Log,
		Ledger: cfg.Ledger,
		Bank:   cfg.Bank,
	}

	app.Handle(http.MethodPost, version, "/owner/withdraw", prv.Withdraw)
	app.Handle(http.MethodGet, version, "/owner/bank/list", prv.BankBalances)
}
