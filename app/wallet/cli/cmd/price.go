package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Print the current oracle quote.",
	Run:   priceRun,
}

func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the ledger node.")
}

func priceRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/price", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var pi struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pi); err != nil {
		log.Fatal(err)
	}

	fmt.Println(pi.Price, "usd/unit")
}
