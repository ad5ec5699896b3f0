package main

import "github.com/openfund/ledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
