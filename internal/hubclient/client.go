// Package hubclient is the out-of-scope HTTP collaborator that fetches a
// closed settlement window's positions and the participant directory from
// the hub's admin API. Nothing in internal/settlement or internal/iso20022
// imports this package; cmd/settlementd wires it in front of the core.
package hubclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/settlementhub/nettinghub/internal/settlement"
	"github.com/settlementhub/nettinghub/pkg/circuit"
)

// Client calls the hub's admin API behind a circuit breaker, authenticating
// each request with a short-lived service-to-service JWT.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	authSecret []byte
}

// serviceClaims identifies settlementd to the hub; it carries no user
// identity, only the calling service's name.
type serviceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// New builds a Client. authSecret signs the bearer token settlementd
// presents on every request; breakerCfg configures the circuit breaker
// guarding the hub from a client-side retry storm.
func New(baseURL, authSecret string, breakerCfg circuit.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	breakerCfg.Name = "hubclient"
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    circuit.NewBreaker(breakerCfg),
		authSecret: []byte(authSecret),
	}
}

func (c *Client) serviceToken() (string, error) {
	claims := &serviceClaims{
		Service: "settlementd",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.authSecret)
}

func (c *Client) doJSON(ctx context.Context, path string, out interface{}) error {
	return c.breaker.Execute(ctx, func() error {
		token, err := c.serviceToken()
		if err != nil {
			return fmt.Errorf("hubclient: signing service token: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("hubclient: building request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("hubclient: calling %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("hubclient: %s returned %d", path, resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// WindowPositions fetches the net settlement positions for windowID.
func (c *Client) WindowPositions(ctx context.Context, windowID int64) (settlement.SettlementWindow, error) {
	var w settlement.SettlementWindow
	err := c.doJSON(ctx, fmt.Sprintf("/admin/windows/%d/positions", windowID), &w)
	return w, err
}

// Participants fetches the full participant directory. encoding/json
// natively marshals int64 map keys to and from their decimal string form, so
// the wire shape's string-keyed object decodes straight into DfspDirectory.
func (c *Client) Participants(ctx context.Context) (settlement.DfspDirectory, error) {
	directory := make(settlement.DfspDirectory)
	if err := c.doJSON(ctx, "/admin/participants", &directory); err != nil {
		return nil, err
	}
	return directory, nil
}
