package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMobileRequest() DonationRequest {
	return DonationRequest{
		CampaignID: "camp-1",
		TenantID:   "tenant-1",
		Amount:     500,
		DonorName:  "Wanjiku",
		DonorEmail: "wanjiku@example.com",
		DonorPhone: "0712345678",
		Method:     MethodMobileMoney,
	}
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	require.NoError(t, validMobileRequest().Validate())
}

func TestValidateRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -10} {
		req := validMobileRequest()
		req.Amount = amount

		err := req.Validate()
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "amount")
	}
}

func TestValidateRequiresDonorInfoUnlessAnonymous(t *testing.T) {
	req := validMobileRequest()
	req.DonorName = ""
	req.DonorEmail = ""

	var verrs ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	assert.Contains(t, verrs, "donor_name")
	assert.Contains(t, verrs, "donor_email")

	req.IsAnonymous = true
	assert.NoError(t, req.Validate())
}

func TestValidateMobileMoneyPhone(t *testing.T) {
	req := validMobileRequest()
	req.DonorPhone = ""
	var verrs ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	assert.Contains(t, verrs["donor_phone"], "Safaricom")

	req.DonorPhone = "12345"
	require.ErrorAs(t, req.Validate(), &verrs)
	assert.Contains(t, verrs, "donor_phone")

	req.Method = MethodCard
	req.DonorPhone = ""
	assert.NoError(t, req.Validate())
}

func TestPayloadAnonymousAndNormalized(t *testing.T) {
	req := validMobileRequest()
	req.IsAnonymous = true
	req.Message = "  "

	p := req.Payload()
	assert.Nil(t, p.DonorName)
	assert.Nil(t, p.DonorEmail)
	assert.Nil(t, p.Message)
	assert.Equal(t, "254712345678", p.DonorPhone)
	assert.Equal(t, "MPESA", p.Method)
	assert.True(t, p.IsAnonymous)
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod("mpesa")
	require.True(t, ok)
	assert.Equal(t, MethodMobileMoney, m)

	m, ok = ParsePaymentMethod("card")
	require.True(t, ok)
	assert.Equal(t, MethodCard, m)

	_, ok = ParsePaymentMethod("cash")
	assert.False(t, ok)
}

func TestCampaignProgress(t *testing.T) {
	c := Campaign{CurrentAmount: "2500", GoalAmount: "10000"}
	assert.InDelta(t, 25.0, c.Progress(), 0.001)

	c = Campaign{CurrentAmount: "50000", GoalAmount: "10000"}
	assert.Equal(t, 100.0, c.Progress())

	c = Campaign{CurrentAmount: "10", GoalAmount: ""}
	assert.Equal(t, 0.0, c.Progress())
}
