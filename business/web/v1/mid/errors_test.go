package mid_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/openfund/ledger/business/web/v1/mid"
	"github.com/openfund/ledger/foundation/ledger"
	"github.com/openfund/ledger/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestErrors(t *testing.T) {
	type table struct {
		name       string
		err        error
		statusCode int
		message    string
	}

	tt := []table{
		{
			name:       "transferfailed",
			err:        fmt.Errorf("%w: settlement refused", ledger.ErrTransferFailed),
			statusCode: http.StatusInternalServerError,
			message:    "transport failed to settle the withdrawal",
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("%w: caller[none]", ledger.ErrUnauthorized),
			statusCode: http.StatusUnauthorized,
			message:    "caller is not the ledger owner",
		},
		{
			name:       "insufficient",
			err:        fmt.Errorf("%w: $1 of $5", ledger.ErrInsufficientContribution),
			statusCode: http.StatusBadRequest,
			message:    "contribution below the minimum usd threshold",
		},
		{
			name:       "untrusted",
			err:        fmt.Errorf("broken invariant"),
			statusCode: http.StatusInternalServerError,
			message:    http.StatusText(http.StatusInternalServerError),
		},
	}

	t.Log("Given the need to map ledger errors to API responses.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen the handler fails with the %s error.", testID, tst.name)
			{
				shutdown := make(chan os.Signal, 1)
				app := web.NewApp(shutdown, mid.Errors(zap.NewNop().Sugar()))

				h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					return tst.err
				}
				app.Handle(http.MethodGet, "v1", "/fail", h)

				r := httptest.NewRequest(http.MethodGet, "/v1/fail", nil)
				rec := httptest.NewRecorder()
				app.ServeHTTP(rec, r)

				if rec.Code != tst.statusCode {
					t.Fatalf("\t%s\tTest %d:\tShould respond with %d, got %d.", failed, testID, tst.statusCode, rec.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould respond with %d.", success, testID, tst.statusCode)

				var er struct {
					Error string `json:"error"`
				}
				if err := json.NewDecoder(rec.Body).Decode(&er); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %v", failed, testID, err)
				}
				if !strings.Contains(er.Error, tst.message) {
					t.Fatalf("\t%s\tTest %d:\tShould carry the error text %q, got %q.", failed, testID, tst.message, er.Error)
				}
				t.Logf("\t%s\tTest %d:\tShould carry the expected error text.", success, testID)

				select {
				case <-shutdown:
					t.Fatalf("\t%s\tTest %d:\tShould not signal a shutdown.", failed, testID)
				default:
				}
				t.Logf("\t%s\tTest %d:\tShould not signal a shutdown.", success, testID)
			}
		}
	}
}
