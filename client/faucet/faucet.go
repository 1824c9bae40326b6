// Package faucet requests test tokens for a freshly generated relay account.
package faucet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to a CosmJS style faucet.
type Client struct {
	log      zerolog.Logger
	endpoint string
	hc       *http.Client
}

func NewClient(log zerolog.Logger, endpoint string) *Client {
	return &Client{
		log:      log.With().Str("component", "faucet").Logger(),
		endpoint: strings.TrimRight(endpoint, "/"),
		hc: &http.Client{
			// the faucet answers only after its transfer was included in a block
			Timeout: 60 * time.Second,
		},
	}
}

type creditRequest struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

// Credit asks the faucet to send tokens of denom to address.
func (c *Client) Credit(ctx context.Context, address string, denom string) error {
	body, err := json.Marshal(creditRequest{Address: address, Denom: denom})
	if err != nil {
		return fmt.Errorf("could not encode credit request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/credit", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("faucet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("faucet responded with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	c.log.Info().Str("address", address).Str("denom", denom).Msg("account credited by faucet")
	return nil
}
