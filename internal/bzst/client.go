// Package bzst implements the request/response contract for VAT-ID
// confirmation against the Bundeszentralamt für Steuern. A simple check
// submits the VAT-ID alone; a qualified check adds company name, city and
// postal code and may yield the address-comparison status codes 216/217.
//
// The transport is an outbound synchronous call with a bounded timeout.
// Unreachability and timeouts surface as *model.ServiceUnavailableError,
// never as an invalid verdict: retry decisions belong to the caller.
package bzst

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/taxcheck/internal/model"
)

// CheckRequest carries the fields of a confirmation request. CompanyName,
// City and PostalCode are only sent on qualified checks.
type CheckRequest struct {
	OwnVATID    string `json:"own_vat_id"`
	VATID       string `json:"vat_id"`
	CompanyName string `json:"company_name,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

// Qualified reports whether the request carries address data for comparison.
func (r CheckRequest) Qualified() bool {
	return r.CompanyName != "" || r.City != "" || r.PostalCode != ""
}

// CheckResult is the mapped registry response.
type CheckResult struct {
	Status    model.Status `json:"status"`
	Qualified bool         `json:"qualified"`
	CheckedAt time.Time    `json:"checked_at"`
}

// Checker is the contract the VAT-ID validator depends on. The HTTP client
// below implements it; tests substitute an in-process fake.
type Checker interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)
}

// Client calls the confirmation endpoint over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithTimeout bounds the outbound call. Default is 10s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a confirmation client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireResponse struct {
	Status int `json:"status"`
}

// Check submits a confirmation request and maps the registry status into the
// fixed enumeration 200/201/202/203/204/216/217.
func (c *Client) Check(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if req.OwnVATID == "" || req.VATID == "" {
		return nil, fmt.Errorf("bzst: own_vat_id and vat_id are required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("bzst: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/confirmation", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("bzst: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts and connection failures are a distinct condition,
		// not an invalid VAT-ID.
		return nil, model.NewServiceUnavailableError("bzst", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, model.NewServiceUnavailableError("bzst", fmt.Errorf("registry returned HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bzst: unexpected HTTP %d", resp.StatusCode)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("bzst: decode response: %w", err)
	}

	status, err := mapStatus(wire.Status)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("vat_id", req.VATID).Int("status", wire.Status).Msg("bzst check complete")

	return &CheckResult{
		Status:    status,
		Qualified: req.Qualified(),
		CheckedAt: time.Now().UTC(),
	}, nil
}

func mapStatus(code int) (model.Status, error) {
	switch s := model.Status(code); s {
	case model.StatusValid,
		model.StatusInvalid,
		model.StatusNotRegistered,
		model.StatusCheckNotPossible,
		model.StatusCheckNotPossibleNow,
		model.StatusValidAddressDiffers,
		model.StatusValidNoAddressCheck:
		return s, nil
	default:
		return model.StatusNone, fmt.Errorf("bzst: unexpected status code %d", code)
	}
}
