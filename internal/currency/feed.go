package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/borctakip/debt-tracker/internal/domain"
)

// Feed pulls spot rates from an exchangerate-api style endpoint quoted
// against the base currency: {"rates": {"USD": 0.031, "EUR": 0.028, ...}}
// where each value is units of the foreign currency per one TRY.
type Feed struct {
	url    string
	client *http.Client
}

func NewFeed(url string, timeout time.Duration) *Feed {
	return &Feed{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type feedPayload struct {
	Rates map[string]float64 `json:"rates"`
}

// Fetch returns the TRY value of one unit of each supported currency.
func (f *Feed) Fetch(ctx context.Context) (map[domain.Currency]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var payload feedPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding rate feed response: %w", err)
	}

	rates := map[domain.Currency]decimal.Decimal{
		domain.CurrencyTRY: decimal.NewFromInt(1),
	}

	// The feed quotes foreign-per-TRY; invert to TRY-per-unit.
	for _, code := range []domain.Currency{domain.CurrencyUSD, domain.CurrencyEUR} {
		quoted, ok := payload.Rates[string(code)]
		if !ok || quoted <= 0 {
			return nil, fmt.Errorf("rate feed is missing a usable %s quote", code)
		}
		rates[code] = decimal.NewFromInt(1).Div(decimal.NewFromFloat(quoted))
	}

	return rates, nil
}
