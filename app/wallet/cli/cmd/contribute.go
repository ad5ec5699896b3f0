package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/openfund/ledger/foundation/ledger/account"
	"github.com/spf13/cobra"
)

var (
	url    string
	amount string
)

// contributeCmd represents the contribute command
var contributeCmd = &cobra.Command{
	Use:   "contribute",
	Short: "Send a contribution to the funding ledger",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		contributeWithDetails(privateKey)
	},
}

func contributeWithDetails(privateKey *ecdsa.PrivateKey) {
	accountID := account.PublicKeyToID(privateKey.PublicKey)

	payload := struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
	}{
		Account: string(accountID),
		Amount:  amount,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/contrib/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var result struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	if result.Error != "" {
		fmt.Println("rejected:", result.Error)
		return
	}
	fmt.Println(result.Status)
}

func init() {
	rootCmd.AddCommand(contributeCmd)
	contributeCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the ledger node.")
	contributeCmd.Flags().StringVarP(&amount, "amount", "v", "0", "Amount of native units to contribute.")
}
