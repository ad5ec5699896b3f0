package oracle

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"
)

// HTTP is a quote source that reads the latest price from a remote feed
// endpoint returning a JSON document.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP constructs a quote source against the specified feed url.
func NewHTTP(url string) *HTTP {
	return &HTTP{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// LatestQuote implements the Source interface by querying the feed.
func (h *HTTP) LatestQuote() (Quote, error) {
	resp, err := h.client.Get(h.url)
	if err != nil {
		return Quote{}, fmt.Errorf("querying price feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var doc struct {
		Price     string `json:"price"`
		Decimals  uint8  `json:"decimals"`
		UpdatedAt int64  `json:"updated_at"`
	}

	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(&doc); err != nil {
		return Quote{}, fmt.Errorf("decoding price feed response: %w", err)
	}

	value, ok := new(big.Int).SetString(doc.Price, 10)
	if !ok {
		return Quote{}, fmt.Errorf("price %q is not an integer", doc.Price)
	}

	return Quote{
		Value:    value,
		Decimals: doc.Decimals,
		Time:     time.Unix(doc.UpdatedAt, 0),
	}, nil
}
