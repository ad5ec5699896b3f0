package public

// submitContribution is what a contributor sends to fund the ledger.
type submitContribution struct {
	Account string `json:"account" validate:"required"`
	Amount  string `json:"amount" validate:"required"`
}

// contributor represents one contributor record in a listing.
type contributor struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	USD     string `json:"usd"`
}

// contribInfo is the full contribution listing.
type contribInfo struct {
	Owner        string        `json:"owner"`
	MinimumUSD   string        `json:"minimum_usd"`
	Balance      string        `json:"balance"`
	Contributors []contributor `json:"contributors"`
}

// priceInfo reports the current oracle quote rescaled to 18 decimals.
type priceInfo struct {
	Price string `json:"price"`
}

// conversionInfo reports the USD value of an amount at the current quote.
type conversionInfo struct {
	Amount string `json:"amount"`
	USD    string `json:"usd"`
}
