// Package cep resolves Brazilian postal codes (CEP) to street addresses
// through the ViaCEP web service.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
)

const (
	// DefaultBaseURL is the public ViaCEP endpoint.
	DefaultBaseURL = "https://viacep.com.br/ws"
	// Length is the number of digits of a complete postal code.
	Length = 8

	defaultCacheSize = 512
	maxBodyBytes     = 64 << 10
)

var (
	ErrInvalidPostalCode = errors.New("postal code must have 8 digits")
	ErrNotFound          = errors.New("postal code not found")
)

// Address is the part of a ViaCEP answer the appointment form uses.
type Address struct {
	PostalCode   string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
}

// String formats the address the way it is stored on an appointment.
func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s - %s", a.Street, a.Neighborhood, a.City, a.State)
}

// Client is a ViaCEP client with an in-process LRU cache of resolved codes.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache[string, Address]
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for lookup failures and cache hits.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client. cacheSize <= 0 selects the default size.
func NewClient(baseURL string, cacheSize int, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	cache, err := lru.New[string, Address](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cep cache: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete reports whether raw holds exactly 8 digits once normalised,
// the point at which the form triggers a lookup.
func Complete(raw string) bool {
	return len(agenda.DigitsOnly(raw)) == Length
}

// viaCEPResponse mirrors the service answer. "erro" is a boolean on the old
// API and the string "true" on the current one.
type viaCEPResponse struct {
	Address
	Erro any `json:"erro"`
}

func (r viaCEPResponse) failed() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// Lookup resolves raw to an address.
func (c *Client) Lookup(ctx context.Context, raw string) (Address, error) {
	code := agenda.DigitsOnly(raw)
	if len(code) != Length {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidPostalCode, raw)
	}

	if addr, ok := c.cache.Get(code); ok {
		c.logger.Debug("cep cache hit", "cep", code)
		return addr, nil
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Address{}, fmt.Errorf("build cep request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("cep lookup %s: %w", code, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("closing cep response", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("cep lookup %s: unexpected status %d", code, resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return Address{}, fmt.Errorf("decode cep response: %w", err)
	}
	if body.failed() {
		return Address{}, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	addr := body.Address
	addr.PostalCode = code
	c.cache.Add(code, addr)
	return addr, nil
}

// Result is the outcome of an asynchronous lookup.
type Result struct {
	Address Address
	Err     error
}

// LookupAsync runs Lookup in its own goroutine. The channel receives exactly
// one Result and is then closed; cancelling ctx aborts the request.
func (c *Client) LookupAsync(ctx context.Context, raw string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		addr, err := c.Lookup(ctx, raw)
		if err != nil {
			c.logger.Warn("cep lookup failed", "cep", agenda.DigitsOnly(raw), "error", err)
		}
		ch <- Result{Address: addr, Err: err}
	}()
	return ch
}
