package models

import (
	"strings"
	"time"
)

// PaymentMethod is how the donor pays.
type PaymentMethod string

const (
	MethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	MethodCard        PaymentMethod = "CARD"
)

// Wire returns the method name the backend expects ("MPESA" | "CARD").
func (m PaymentMethod) Wire() string {
	if m == MethodMobileMoney {
		return "MPESA"
	}
	return "CARD"
}

// ParsePaymentMethod accepts both the internal and wire spellings.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MOBILE_MONEY", "MPESA", "M-PESA":
		return MethodMobileMoney, true
	case "CARD":
		return MethodCard, true
	}
	return "", false
}

// DonationRequest is what the donor filled in on the donation form.
// Amount is in KES.
type DonationRequest struct {
	CampaignID  string        `json:"campaign_id"`
	TenantID    string        `json:"tenant_id"`
	Amount      float64       `json:"amount"`
	DonorName   string        `json:"donor_name,omitempty"`
	DonorPhone  string        `json:"donor_phone,omitempty"`
	DonorEmail  string        `json:"donor_email,omitempty"`
	Message     string        `json:"message,omitempty"`
	Method      PaymentMethod `json:"method"`
	IsAnonymous bool          `json:"is_anonymous"`
}

// CreateDonationPayload is the body of POST /donations/one-click.
type CreateDonationPayload struct {
	CampaignID  string  `json:"campaign_id"`
	TenantID    string  `json:"tenant_id"`
	Amount      float64 `json:"amount"`
	DonorName   *string `json:"donor_name"`
	DonorPhone  string  `json:"donor_phone"`
	DonorEmail  *string `json:"donor_email"`
	Message     *string `json:"message"`
	Method      string  `json:"method"` // "MPESA" | "CARD"
	IsAnonymous bool    `json:"is_anonymous"`
}

// Payload converts the form into the wire payload. Anonymous donations
// send null name/email; the phone is normalized for every method.
func (r DonationRequest) Payload() CreateDonationPayload {
	p := CreateDonationPayload{
		CampaignID:  r.CampaignID,
		TenantID:    r.TenantID,
		Amount:      r.Amount,
		DonorPhone:  NormalizePhone(r.DonorPhone),
		Method:      r.Method.Wire(),
		IsAnonymous: r.IsAnonymous,
		Message:     optional(r.Message),
	}
	if !r.IsAnonymous {
		p.DonorName = optional(r.DonorName)
		p.DonorEmail = optional(r.DonorEmail)
	}
	return p
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// DonationRecord is the server-owned donation as returned by the backend.
type DonationRecord struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenant_id"`
	CampaignID       string    `json:"campaign_id"`
	Amount           float64   `json:"amount"`
	DonorName        *string   `json:"donor_name,omitempty"`
	DonorPhone       string    `json:"donor_phone"`
	DonorEmail       *string   `json:"donor_email,omitempty"`
	Message          *string   `json:"message,omitempty"`
	Method           string    `json:"method"`
	IsAnonymous      bool      `json:"is_anonymous"`
	Status           string    `json:"status"`
	PaymentReference *string   `json:"payment_reference,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Payment status values reported by create-donation.
const (
	PaymentInitiated = "initiated"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
)

// CreateDonationResponse is the response of POST /donations/one-click.
type CreateDonationResponse struct {
	DonationID            string                 `json:"donation_id"`
	Donation              DonationRecord         `json:"donation"`
	PaymentStatus         string                 `json:"payment_status"`
	PaymentData           map[string]interface{} `json:"payment_data,omitempty"`
	Message               string                 `json:"message"`
	RequiresStripePayment bool                   `json:"requires_stripe_payment,omitempty"`
}

// ID returns the donation identifier, falling back to the embedded record.
func (r *CreateDonationResponse) ID() string {
	if r.DonationID != "" {
		return r.DonationID
	}
	return r.Donation.ID
}

// PaymentStatus is the response of GET /donations/pay/{id}/status.
type PaymentStatus struct {
	Status          string `json:"status"`
	TransactionCode string `json:"transaction_code,omitempty"`
}

// CheckoutRequest starts the hosted card checkout (redirect flow).
type CheckoutRequest struct {
	CampaignID string  `json:"campaign_id"`
	Amount     float64 `json:"amount"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// StripePaymentRequest hands a confirmed PaymentIntent back to the backend.
type StripePaymentRequest struct {
	PaymentIntent map[string]interface{} `json:"payment_intent"`
}

// StripeSession is the checkout session summary shown after redirect.
// AmountTotal is in minor units.
type StripeSession struct {
	AmountTotal int64             `json:"amount_total"`
	Metadata    map[string]string `json:"metadata"`
}

// CampaignTitle returns the campaign title carried in session metadata.
func (s StripeSession) CampaignTitle() string {
	if t := s.Metadata["campaign_title"]; t != "" {
		return t
	}
	return "the campaign"
}
