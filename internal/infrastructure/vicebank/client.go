// Package vicebank is the HTTP client for the Vice Bank server. Each
// resource exposes list/add/update/delete over the server's
// /vice_bank/{resource} and /vice_bank/{add|update|delete}{Resource}
// endpoints. Every response is checked against the expected shape before a
// model is built; a mismatch fails the call with a domain.ValidationError.
package vicebank

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

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
	"github.com/vicebank/vicebank-client/internal/infrastructure/metrics"
	"github.com/vicebank/vicebank-client/internal/pkg/validation"
)

const (
	maxResponseBytes = 4 << 20
	maxErrorBody     = 256
)

var errResponseTooLarge = fmt.Errorf("response exceeds %d bytes", maxResponseBytes)

// Options configures a Client.
type Options struct {
	// BaseURL is prefixed to every endpoint path. An empty value yields
	// relative URLs, which only work behind a proxy.
	BaseURL string
	// HTTPClient defaults to a client without a timeout.
	HTTPClient *http.Client
	// Tokens supplies the authorization header value.
	Tokens ports.TokenSource
	Logger zerolog.Logger
}

// Client implements ports.ViceBankAPI.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   ports.TokenSource
	validate *validator.Validate
	log      zerolog.Logger

	users          *usersAPI
	tokensAPI      *tokensAPI
	actions        *resource[domain.Action, actionWire]
	tasks          *resource[domain.Task, taskWire]
	rewards        *resource[domain.Reward, rewardWire]
	purchases      *resource[domain.Purchase, purchaseWire]
	actionDeposits *resource[domain.ActionDeposit, actionDepositWire]
	taskDeposits   *resource[domain.TaskDeposit, taskDepositWire]
}

var _ ports.ViceBankAPI = (*Client)(nil)

// New builds a Client. Tokens is required.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     hc,
		tokens:   opts.Tokens,
		validate: validation.New(),
		log:      opts.Logger,
	}
	c.users = &usersAPI{c: c}
	c.tokensAPI = &tokensAPI{c: c}
	c.actions = &resource[domain.Action, actionWire]{c: c, spec: actionSpec}
	c.tasks = &resource[domain.Task, taskWire]{c: c, spec: taskSpec}
	c.rewards = &resource[domain.Reward, rewardWire]{c: c, spec: rewardSpec}
	c.purchases = &resource[domain.Purchase, purchaseWire]{c: c, spec: purchaseSpec}
	c.actionDeposits = &resource[domain.ActionDeposit, actionDepositWire]{c: c, spec: actionDepositSpec}
	c.taskDeposits = &resource[domain.TaskDeposit, taskDepositWire]{c: c, spec: taskDepositSpec}
	return c
}

func (c *Client) Users() ports.UsersAPI { return c.users }
func (c *Client) Tokens() ports.TokensAPI { return c.tokensAPI }
func (c *Client) Actions() ports.ResourceAPI[domain.Action] { return c.actions }
func (c *Client) Tasks() ports.ResourceAPI[domain.Task] { return c.tasks }
func (c *Client) Rewards() ports.ResourceAPI[domain.Reward] { return c.rewards }
func (c *Client) Purchases() ports.ResourceAPI[domain.Purchase] { return c.purchases }
func (c *Client) ActionDeposits() ports.ResourceAPI[domain.ActionDeposit] { return c.actionDeposits }
func (c *Client) TaskDeposits() ports.ResourceAPI[domain.TaskDeposit] { return c.taskDeposits }

// get issues a GET and returns the raw success body.
func (c *Client) get(ctx context.Context, op string, path string, query url.Values) ([]byte, error) {
	return c.call(ctx, op, http.MethodGet, path, query, nil)
}

// post issues a JSON POST and returns the raw success body.
func (c *Client) post(ctx context.Context, op string, path string, body any) ([]byte, error) {
	return c.call(ctx, op, http.MethodPost, path, nil, body)
}

func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body any) (raw []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveAPICall(op, time.Since(start), err)
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("authorization", token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if len(raw) > maxResponseBytes {
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Err: errResponseTooLarge}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		c.log.Warn().
			Str("op", op).
			Int("status", resp.StatusCode).
			Str("body", snippet).
			Msg("vice bank request failed")
		return nil, &domain.TransportError{Op: op, StatusCode: resp.StatusCode, Body: snippet}
	}

	c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("vice bank request")
	return raw, nil
}
