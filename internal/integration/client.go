// Package integration is a thin JSON client for the daemon's HTTP
// surface, used by end to end tests.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
)

type prefixRoundTripper struct {
	addr string
	rt   http.RoundTripper
}

func (p *prefixRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	u := r.URL
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		u.Host = p.addr
	}

	return p.rt.RoundTrip(r)
}

func NewClient(addr string) *Client {
	return &Client{client: &http.Client{Transport: &prefixRoundTripper{addr: addr, rt: http.DefaultTransport}}}
}

type Client struct {
	client *http.Client
}

func (c *Client) Validate(r Request) (*ValidateResponse, error) {
	b, err := json.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("unable marshal validate request: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "/validate", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error with sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("validate response %s: %s", resp.Status, body)
	}

	var out ValidateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unable unmarshal validate response: %w", err)
	}
	return &out, nil
}

func (c *Client) Reports(modelID string) (*ReportsResponse, error) {
	req, err := http.NewRequestWithContext(
		context.Background(),
		http.MethodGet,
		"/reports?model="+url.QueryEscape(modelID),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error with sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reports response %s: %s", resp.Status, body)
	}

	var out ReportsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unable unmarshal reports response: %w", err)
	}
	return &out, nil
}

func (c *Client) Health() (*http.Response, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return resp, nil
}
