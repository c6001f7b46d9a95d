// Package fxclient is the out-of-scope HTTP collaborator that fetches FX
// rate ticks from the partner rate provider on demand. internal/gateway
// calls it from cmd/settlementd to attach an audit-trail reference rate to
// each settlement; cmd/fxingest does not use it, since that command
// receives rate ticks by subscription rather than by request/response.
package fxclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/settlementhub/nettinghub/internal/fx"
	"github.com/settlementhub/nettinghub/pkg/circuit"
)

// Client calls the FX-rate provider's GET /rates/{pair} endpoint behind a
// circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
}

func New(baseURL string, breakerCfg circuit.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	breakerCfg.Name = "fxclient"
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    circuit.NewBreaker(breakerCfg),
	}
}

type rateResponse struct {
	RateSetID     string `json:"rateSetId"`
	CurrencyPair  string `json:"currencyPair"`
	Rate          string `json:"rate"`
	DecimalPlaces int    `json:"decimalPlaces"`
	EndTime       string `json:"endTime"`
}

// Rate fetches the current tick for pair and maps it into fx.RateRecord.
func (c *Client) Rate(ctx context.Context, pair string) (fx.RateRecord, error) {
	var record fx.RateRecord
	err := c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rates/"+pair, nil)
		if err != nil {
			return fmt.Errorf("fxclient: building request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fxclient: calling /rates/%s: %w", pair, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fxclient: /rates/%s returned %d", pair, resp.StatusCode)
		}

		var body rateResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("fxclient: decoding /rates/%s response: %w", pair, err)
		}
		record = fx.RateRecord{
			RateSetID:     body.RateSetID,
			CurrencyPair:  body.CurrencyPair,
			Rate:          body.Rate,
			DecimalPlaces: body.DecimalPlaces,
			EndTime:       body.EndTime,
		}
		return nil
	})
	return record, err
}
