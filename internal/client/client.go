// Package client talks to a running admin API. Remote collections implement
// types.Collection, so the CLI and the dashboard can use a local store and a
// remote server interchangeably.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aihavenlabs/pathwei-admin/internal/httpapi"
	"github.com/aihavenlabs/pathwei-admin/internal/logger"
	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// ErrNoBaseURL is returned by New when the remote base URL is empty.
var ErrNoBaseURL = errors.New("remote base_url is required")

// Client is an admin API client.
type Client struct {
	r   *resty.Client
	log logger.Logger
}

// New builds a client for cfg.BaseURL. Zero timeout and retry settings take
// the defaults; a negative retry count disables retries.
func New(cfg types.RemoteConfig, log logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	if err := (types.Config{Backend: types.BackendSQLite, Remote: cfg}).Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultRemoteTimeout
	}
	retries := cfg.Retries
	if retries == 0 {
		retries = types.DefaultRemoteRetries
	}

	r := resty.New().
		SetBaseURL(cfg.BaseURL+httpapi.BasePath).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryCondition)
	if retries > 0 {
		r.SetRetryCount(retries)
	}
	return &Client{r: r, log: log}, nil
}

// retryCondition retries transport failures of idempotent requests and
// responses that signal a temporarily unavailable server. A transport failure
// on POST may follow a committed write, so it is not retried.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil {
		return false
	}
	if err != nil {
		return r.Request != nil && idempotent(r.Request.Method)
	}
	switch r.StatusCode() {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// do sends one request. Error bodies come back as *types.APIError, which
// unwraps to the store's sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	req := c.r.R().
		SetContext(ctx).
		SetError(&types.ErrorResponse{})
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debug("API request completed", "method", method, "path", path, "status", resp.StatusCode(), "duration", resp.Time())
	if !resp.IsError() {
		return nil
	}
	if e, ok := resp.Error().(*types.ErrorResponse); ok && e.Error.Code != "" {
		apiErr := e.Error
		apiErr.Status = resp.StatusCode()
		return &apiErr
	}
	return &types.APIError{
		Status:  resp.StatusCode(),
		Code:    types.CodeInternal,
		Message: fmt.Sprintf("unexpected response: %s", resp.Status()),
	}
}

// Users returns the remote users collection.
func (c *Client) Users() *Remote[types.User] {
	return Collection[types.User](c, types.CollectionUsers)
}

// Subscribers returns the remote subscribers collection.
func (c *Client) Subscribers() *Remote[types.Subscriber] {
	return Collection[types.Subscriber](c, types.CollectionSubscribers)
}

// Experiments returns the remote price experiments collection.
func (c *Client) Experiments() *Remote[types.PriceExperiment] {
	return Collection[types.PriceExperiment](c, types.CollectionExperiments)
}

// RecordExperiment adds views and conversions to an experiment variant.
func (c *Client) RecordExperiment(ctx context.Context, id string, views, conversions int) (types.PriceExperiment, error) {
	var out types.PriceExperiment
	body := httpapi.RecordRequest{Views: views, Conversions: conversions}
	err := c.do(ctx, http.MethodPost, "/"+types.CollectionExperiments+"/"+url.PathEscape(id)+"/record", nil, body, &out)
	return out, err
}

// Stats returns the headline summary.
func (c *Client) Stats(ctx context.Context) (types.Stats, error) {
	var out types.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out)
	return out, err
}

// LocaleStats returns per-locale totals.
func (c *Client) LocaleStats(ctx context.Context) ([]types.LocaleStat, error) {
	var out struct {
		Data []types.LocaleStat `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/stats/locales", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []types.LocaleStat{}
	}
	return out.Data, nil
}
