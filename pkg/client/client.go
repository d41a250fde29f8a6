// Package client is a small Go client for the MedTrack API. Requests are
// retried on transport errors and 5xx responses with a linear backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithMaxAttempts sets the total number of attempts per request.
func WithMaxAttempts(n int) Option {
	return func(cl *Client) { cl.maxAttempts = n }
}

// WithRetryDelay sets the base backoff. The delay before attempt n is
// base * n, so the default 1s base waits 1s, 2s, 3s.
func WithRetryDelay(d time.Duration) Option {
	return func(cl *Client) { cl.retryDelay = d }
}

// Client talks to one MedTrack server.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxAttempts: 3,
		retryDelay:  time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details string          `json:"details"`
}

// do runs one request with retries and decodes the envelope's data field into
// out when out is non-nil. 4xx responses are not retried; the request is
// malformed and will stay malformed.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt-1)):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = apiErrorFrom(resp.StatusCode, respBody)
			continue
		}
		if resp.StatusCode >= 400 {
			return apiErrorFrom(resp.StatusCode, respBody)
		}

		if out == nil {
			return nil
		}
		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if env.Data == nil {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
		return nil
	}

	return fmt.Errorf("all %d attempts failed: %w", c.maxAttempts, lastErr)
}

func apiErrorFrom(code int, body []byte) *APIError {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return &APIError{StatusCode: code, Message: env.Error, Details: env.Details}
	}
	return &APIError{StatusCode: code, Message: http.StatusText(code)}
}

// -- Typed API surface --

// Patient mirrors the compliance listing rows.
type Patient struct {
	ID                   int64   `json:"id"`
	RMNumber             string  `json:"rm_number"`
	Name                 string  `json:"name"`
	Gender               string  `json:"gender"`
	CompliancePercentage float64 `json:"compliance_percentage"`
	TotalDoses           int     `json:"total_doses"`
	TakenDoses           int     `json:"taken_doses"`
	MedicineName         string  `json:"medicine_name"`
}

// Pagination is the page metadata returned by list endpoints.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalRecords int  `json:"totalRecords"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// PatientPage is one page of the compliance listing.
type PatientPage struct {
	Patients   []*Patient `json:"patients"`
	Pagination Pagination `json:"pagination"`
}

// CreatePatientRequest uses the legacy field names the server binds.
type CreatePatientRequest struct {
	Name      string  `json:"nama_lengkap"`
	BirthDate *string `json:"tanggal_lahir,omitempty"`
	Gender    string  `json:"jenis_kelamin,omitempty"`
	Password  string  `json:"password,omitempty"`
}

// CreatedPatient is the response to a successful registration.
type CreatedPatient struct {
	ID       int64  `json:"id"`
	RMNumber string `json:"rm_number"`
	Name     string `json:"nama_lengkap"`
	Gender   string `json:"gender"`
}

// Medicine is a catalog row.
type Medicine struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Dosage string `json:"dosage"`
}

// MedicinePage is one page of the medicine catalog.
type MedicinePage struct {
	Medicines  []*Medicine `json:"medicines"`
	Pagination Pagination  `json:"pagination"`
}

// Health is the server health report.
type Health struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	h := &Health{}
	// The health endpoint responds without the success envelope.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(h); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return h, nil
}

func (c *Client) ListPatients(ctx context.Context, page, limit int, search string) (*PatientPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/api/v1/patients"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	out := &PatientPage{}
	if err := c.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	out := &Patient{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/patients/"+strconv.FormatInt(id, 10), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePatient(ctx context.Context, req *CreatePatientRequest) (*CreatedPatient, error) {
	out := &CreatedPatient{}
	if err := c.do(ctx, http.MethodPost, "/api/v1/patients", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMedicines(ctx context.Context, page, limit int, search string) (*MedicinePage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/api/v1/medicines"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	out := &MedicinePage{}
	if err := c.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
