package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/openfund/ledger/foundation/ledger/account"
	"github.com/spf13/cobra"
)

type contributorRecord struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	USD     string `json:"usd"`
}

type contribListing struct {
	Owner        string              `json:"owner"`
	MinimumUSD   string              `json:"minimum_usd"`
	Balance      string              `json:"balance"`
	Contributors []contributorRecord `json:"contributors"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your cumulative contribution.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the ledger node.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := account.PublicKeyToID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	resp, err := http.Get(fmt.Sprintf("%s/v1/contrib/list/%s", url, accountID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var listing contribListing
	if err := decoder.Decode(&listing); err != nil {
		log.Fatal(err)
	}

	if len(listing.Contributors) > 0 {
		fmt.Println(listing.Contributors[0].Amount, "units,", listing.Contributors[0].USD, "usd")
	}
}
