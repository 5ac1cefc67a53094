// Package operations describes every backend call as a request object, in
// the style of a payment gateway SDK: the client executes any value that
// can Describe itself.
package operations

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/brayohmurithidev/donatehub-landing/models"
)

// Description tells the client how to send an operation.
type Description struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body interface{}
}

// Operation is implemented by every request object in this package.
type Operation interface {
	Describe() *Description
}

type CreateDonation struct {
	Payload models.CreateDonationPayload
}

func (req *CreateDonation) Describe() *Description {
	return &Description{Method: http.MethodPost, Path: "/donations/one-click", Body: req.Payload}
}

type CreateCheckout struct {
	models.CheckoutRequest
}

func (req *CreateCheckout) Describe() *Description {
	return &Description{Method: http.MethodPost, Path: "/donations/checkout", Body: req.CheckoutRequest}
}

type RetrievePaymentStatus struct {
	DonationID string
}

func (req *RetrievePaymentStatus) Describe() *Description {
	return &Description{
		Method: http.MethodGet,
		Path:   "/donations/pay/" + url.PathEscape(req.DonationID) + "/status",
	}
}

type ListCampaignDonations struct {
	CampaignID string
}

func (req *ListCampaignDonations) Describe() *Description {
	return &Description{
		Method: http.MethodGet,
		Path:   "/donations/campaigns/" + url.PathEscape(req.CampaignID),
	}
}

type ProcessStripePayment struct {
	DonationID string
	models.StripePaymentRequest
}

func (req *ProcessStripePayment) Describe() *Description {
	return &Description{
		Method: http.MethodPost,
		Path:   "/donations/" + url.PathEscape(req.DonationID) + "/stripe-payment",
		Body:   req.StripePaymentRequest,
	}
}

type RetrieveStripeSession struct {
	SessionID string
}

func (req *RetrieveStripeSession) Describe() *Description {
	return &Description{
		Method: http.MethodGet,
		Path:   "/stripe/session",
		Query:  url.Values{"session_id": {req.SessionID}},
	}
}

type ListCampaigns struct{}

func (req *ListCampaigns) Describe() *Description {
	return &Description{Method: http.MethodGet, Path: "/campaigns"}
}

type RetrieveCampaign struct {
	CampaignID string
}

func (req *RetrieveCampaign) Describe() *Description {
	return &Description{Method: http.MethodGet, Path: "/campaigns/" + url.PathEscape(req.CampaignID)}
}

type ListTenants struct {
	models.TenantQuery
}

func (req *ListTenants) Describe() *Description {
	q := url.Values{}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(req.PageSize))
	}
	return &Description{Method: http.MethodGet, Path: "/tenants", Query: q}
}

type RetrieveTenant struct {
	TenantID string
}

func (req *RetrieveTenant) Describe() *Description {
	return &Description{Method: http.MethodGet, Path: "/tenants/" + url.PathEscape(req.TenantID)}
}

type ListTenantCampaigns struct {
	TenantID string
}

func (req *ListTenantCampaigns) Describe() *Description {
	return &Description{
		Method: http.MethodGet,
		Path:   "/tenants/" + url.PathEscape(req.TenantID) + "/campaigns",
	}
}
