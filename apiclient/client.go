// Package apiclient talks to the donation platform REST backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/brayohmurithidev/donatehub-landing/models"
	"github.com/brayohmurithidev/donatehub-landing/operations"
)

// DefaultBaseURL is where the backend listens in development.
const DefaultBaseURL = "http://localhost:8000/api/v1"

// Client executes operations against the backend. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit caps outbound requests. A zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL with a 15-second timeout.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches the key sent with POST requests made under ctx.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// Do sends op and decodes the JSON response into result (which may be nil).
func (c *Client) Do(ctx context.Context, result interface{}, op operations.Operation) error {
	desc := op.Describe()
	name := desc.Method + " " + desc.Path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Op: name, Err: err}
		}
	}

	var body io.Reader
	if desc.Body != nil {
		buf, err := json.Marshal(desc.Body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", name, err)
		}
		body = bytes.NewReader(buf)
	}

	endpoint := c.baseURL + desc.Path
	if len(desc.Query) > 0 {
		endpoint += "?" + desc.Query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, desc.Method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if desc.Method == http.MethodPost {
		key, _ := ctx.Value(idempotencyKey{}).(string)
		if key == "" {
			key = uuid.NewString()
		}
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: name, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: name, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend returned error", "op", name, "status", resp.StatusCode)
		return &APIError{Op: name, StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if result == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("%s: unexpected response shape: %w", name, err)
	}
	return nil
}

// ----------------- Donations -----------------

// CreateDonation submits a one-click donation. The donor phone is
// normalized before it is sent.
func (c *Client) CreateDonation(ctx context.Context, req models.DonationRequest) (*models.CreateDonationResponse, error) {
	out := &models.CreateDonationResponse{}
	if err := c.Do(ctx, out, &operations.CreateDonation{Payload: req.Payload()}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, donationID string) (*models.PaymentStatus, error) {
	out := &models.PaymentStatus{}
	if err := c.Do(ctx, out, &operations.RetrievePaymentStatus{DonationID: donationID}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCampaignDonations(ctx context.Context, campaignID string) ([]models.DonationRecord, error) {
	var out []models.DonationRecord
	if err := c.Do(ctx, &out, &operations.ListCampaignDonations{CampaignID: campaignID}); err != nil {
		return nil, err
	}
	return out, nil
}

// Checkout starts the hosted card checkout and returns the redirect URL.
func (c *Client) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	out := &models.CheckoutResponse{}
	if err := c.Do(ctx, out, &operations.CreateCheckout{CheckoutRequest: req}); err != nil {
		return nil, err
	}
	if out.CheckoutURL == "" {
		return nil, fmt.Errorf("checkout: response has no checkout_url")
	}
	return out, nil
}

func (c *Client) ProcessStripePayment(ctx context.Context, donationID string, req models.StripePaymentRequest) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := c.Do(ctx, &out, &operations.ProcessStripePayment{DonationID: donationID, StripePaymentRequest: req}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StripeSession(ctx context.Context, sessionID string) (*models.StripeSession, error) {
	out := &models.StripeSession{}
	if err := c.Do(ctx, out, &operations.RetrieveStripeSession{SessionID: sessionID}); err != nil {
		return nil, err
	}
	return out, nil
}

// ----------------- Catalog -----------------

func (c *Client) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var out []models.Campaign
	if err := c.Do(ctx, &out, &operations.ListCampaigns{}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCampaign(ctx context.Context, campaignID string) (*models.Campaign, error) {
	out := &models.Campaign{}
	op := &operations.RetrieveCampaign{CampaignID: campaignID}
	if err := c.Do(ctx, out, op); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, notFound(op)
	}
	return out, nil
}

func (c *Client) ListTenants(ctx context.Context, q models.TenantQuery) ([]models.Tenant, error) {
	var out []models.Tenant
	if err := c.Do(ctx, &out, &operations.ListTenants{TenantQuery: q}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	out := &models.Tenant{}
	op := &operations.RetrieveTenant{TenantID: tenantID}
	if err := c.Do(ctx, out, op); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, notFound(op)
	}
	return out, nil
}

func (c *Client) ListTenantCampaigns(ctx context.Context, tenantID string) ([]models.Campaign, error) {
	var out []models.Campaign
	if err := c.Do(ctx, &out, &operations.ListTenantCampaigns{TenantID: tenantID}); err != nil {
		return nil, err
	}
	return out, nil
}

// notFound reports an empty lookup the same way as a backend 404.
func notFound(op operations.Operation) error {
	d := op.Describe()
	return &APIError{Op: d.Method + " " + d.Path, StatusCode: http.StatusNotFound, Detail: "no data"}
}
