package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brayohmurithidev/donatehub-landing/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithTimeout(2*time.Second))
}

func TestCreateDonationNormalizesPhone(t *testing.T) {
	var got models.CreateDonationPayload
	var headers http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/donations/one-click", r.URL.Path)
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"donation_id":"abc123","payment_status":"initiated","message":"STK push sent","donation":{"id":"abc123","status":"PENDING"}}`))
	})

	resp, err := c.CreateDonation(context.Background(), models.DonationRequest{
		CampaignID:  "camp-1",
		TenantID:    "tenant-1",
		Amount:      100,
		DonorPhone:  "+254 712 345 678",
		Method:      models.MethodMobileMoney,
		IsAnonymous: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.ID())
	assert.Equal(t, models.PaymentInitiated, resp.PaymentStatus)

	assert.Equal(t, "254712345678", got.DonorPhone)
	assert.Equal(t, "MPESA", got.Method)
	assert.Nil(t, got.DonorName)
	assert.NotEmpty(t, headers.Get("Idempotency-Key"))
	assert.NotEmpty(t, headers.Get("X-Request-ID"))
}

func TestIdempotencyKeyFromContext(t *testing.T) {
	var key string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		_, _ = w.Write([]byte(`{"donation_id":"d1","payment_status":"pending"}`))
	})

	ctx := WithIdempotencyKey(context.Background(), "submission-1")
	_, err := c.CreateDonation(ctx, models.DonationRequest{CampaignID: "c", Amount: 1, Method: models.MethodCard})
	require.NoError(t, err)
	assert.Equal(t, "submission-1", key)
}

func TestGetPaymentStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/donations/pay/abc123/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"PAID","transaction_code":"QJK123"}`))
	})

	st, err := c.GetPaymentStatus(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "PAID", st.Status)
	assert.Equal(t, "QJK123", st.TransactionCode)
}

func TestServerDetailIsPropagated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"Campaign is closed"}`))
	})

	_, err := c.CreateDonation(context.Background(), models.DonationRequest{CampaignID: "c", Amount: 1, Method: models.MethodCard})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.False(t, IsNetwork(err))
	assert.Equal(t, "Campaign is closed", Detail(err))
}

func TestServerDetailList(t *testing.T) {
	assert.Equal(t, "field required; value is not a valid email",
		parseDetail([]byte(`{"detail":[{"msg":"field required","loc":["body","amount"]},{"msg":"value is not a valid email"}]}`)))
	assert.Equal(t, "boom", parseDetail([]byte(`{"error":"boom"}`)))
	assert.Equal(t, "", parseDetail([]byte(`<html>`)))
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithTimeout(time.Second))
	_, err := c.GetPaymentStatus(context.Background(), "abc123")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestUnexpectedShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["not","an","object"]`))
	})

	_, err := c.GetPaymentStatus(context.Background(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response shape")
	assert.False(t, IsNetwork(err))
}

func TestGetCampaignNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/campaigns/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found"}`))
		case "/campaigns/empty":
			_, _ = w.Write([]byte(`null`))
		default:
			_, _ = w.Write([]byte(`{"id":"c1","name":"Clean Water"}`))
		}
	})

	_, err := c.GetCampaign(context.Background(), "missing")
	assert.True(t, IsNotFound(err))

	_, err = c.GetCampaign(context.Background(), "empty")
	assert.True(t, IsNotFound(err))

	camp, err := c.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Clean Water", camp.Name)
}

func TestListTenantsSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "water", r.URL.Query().Get("search"))
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`[{"id":"t1","name":"Maji","is_Verified":true}]`))
	})

	tenants, err := c.ListTenants(context.Background(), models.TenantQuery{Search: "water", Page: 3})
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.True(t, tenants[0].IsVerified)
}

func TestCheckoutRequiresURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Checkout(context.Background(), models.CheckoutRequest{CampaignID: "c1", Amount: 10})
	assert.Error(t, err)
}

func TestStripeSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cs_test_1", r.URL.Query().Get("session_id"))
		_, _ = w.Write([]byte(`{"amount_total":250000,"metadata":{"campaign_title":"Clean Water"}}`))
	})

	s, err := c.StripeSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, int64(250000), s.AmountTotal)
	assert.Equal(t, "Clean Water", s.CampaignTitle())
}

func TestRateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"PENDING"}`))
	})
	WithRateLimit(0.001, 1)(c)

	_, err := c.GetPaymentStatus(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.GetPaymentStatus(ctx, "a")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}
