// Package comet talks to a CometBFT node over its JSON-RPC HTTP interface.
//
// The client covers what the relay needs from a Cosmos SDK chain: chain id, account and
// balance queries through ABCI, block headers, and broadcasting transactions until their
// inclusion in a block.
package comet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

// Config configures a client.
type Config struct {
	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration
	// PollInterval is the interval at which a broadcast transaction is looked up until it is included.
	PollInterval time.Duration
	// MaxRetries is the number of retries of failed queries. Broadcasts are never retried.
	MaxRetries uint64
	// RetryDelay is the initial delay between retries, doubling on every retry.
	RetryDelay time.Duration
	// MaxRetryDelay caps the delay between retries.
	MaxRetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestTimeout: 10 * time.Second,
		PollInterval:   time.Second,
		MaxRetries:     3,
		RetryDelay:     200 * time.Millisecond,
		MaxRetryDelay:  2 * time.Second,
	}
}

// Client is a JSON-RPC client of one CometBFT node.
type Client struct {
	log      zerolog.Logger
	endpoint string
	cfg      Config
	hc       *http.Client
	nextID   *atomic.Int64
}

// NewClient returns a client for the node RPC at endpoint, e.g. "https://rpc.nois.network".
func NewClient(log zerolog.Logger, endpoint string, cfg Config) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid rpc endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid rpc endpoint %q: scheme must be http or https", endpoint)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.RetryDelay <= 0 {
		return nil, fmt.Errorf("retry delay must be positive, got %s", cfg.RetryDelay)
	}

	endpoint = strings.TrimRight(endpoint, "/")
	return &Client{
		log:      log.With().Str("component", "comet_client").Str("endpoint", endpoint).Logger(),
		endpoint: endpoint,
		cfg:      cfg,
		hc: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		nextID: atomic.NewInt64(0),
	}, nil
}

// Endpoint returns the node URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// query performs a JSON-RPC call, retrying on transport errors.
func (c *Client) query(ctx context.Context, method string, params interface{}, out interface{}) error {
	backoff := retry.NewExponential(c.cfg.RetryDelay)
	backoff = retry.WithCappedDuration(c.cfg.MaxRetryDelay, backoff)
	backoff = retry.WithJitterPercent(10, backoff)
	backoff = retry.WithMaxRetries(c.cfg.MaxRetries, backoff)

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.call(ctx, method, params, out)
		if err == nil {
			return nil
		}
		if IsRPCError(err) {
			// the node answered; asking again yields the same answer
			return err
		}
		c.log.Debug().Err(err).Str("method", method).Int("attempt", attempt).Msg("rpc call failed, retrying")
		return retry.RetryableError(err)
	})
}

// call performs a single JSON-RPC call and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if params == nil {
		params = map[string]interface{}{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Inc(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("could not encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read %s response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s request failed with status %d", method, resp.StatusCode)
		}
		return fmt.Errorf("could not decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return *rpcResp.Error
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s request failed with status %d", method, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("could not decode %s result: %w", method, err)
	}
	return nil
}
