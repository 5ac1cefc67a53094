package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors maps a form field to the message shown next to it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the form before anything is sent to the backend.
func (r DonationRequest) Validate() error {
	errs := ValidationErrors{}

	if strings.TrimSpace(r.CampaignID) == "" {
		errs["campaign_id"] = "campaign is required"
	}
	if r.Amount <= 0 {
		errs["amount"] = "Please select a donation amount"
	}
	if r.Method != MethodMobileMoney && r.Method != MethodCard {
		errs["method"] = "unsupported payment method"
	}
	if !r.IsAnonymous {
		if strings.TrimSpace(r.DonorName) == "" {
			errs["donor_name"] = "Please provide your name, or select anonymous donation"
		}
		if strings.TrimSpace(r.DonorEmail) == "" {
			errs["donor_email"] = "Please provide your email, or select anonymous donation"
		}
	}
	if email := strings.TrimSpace(r.DonorEmail); email != "" && !strings.Contains(email, "@") {
		errs["donor_email"] = "email address is not valid"
	}
	if r.Method == MethodMobileMoney {
		switch {
		case strings.TrimSpace(r.DonorPhone) == "":
			errs["donor_phone"] = "Please provide your Safaricom phone number for M-Pesa payment"
		case !IsMobileMoneyPhone(NormalizePhone(r.DonorPhone)):
			errs["donor_phone"] = "phone number is not a valid M-Pesa number"
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
