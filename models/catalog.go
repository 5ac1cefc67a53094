package models

import "strconv"

// CampaignTenant is the NGO summary embedded in a campaign.
type CampaignTenant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Campaign mirrors the backend's campaign representation. Money fields
// arrive as decimal strings.
type Campaign struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Status            string         `json:"status"` // active | completed | cancelled
	GoalAmount        string         `json:"goal_amount"`
	GoalCurrency      string         `json:"goal_currency,omitempty"`
	CurrentAmount     string         `json:"current_amount"`
	CurrentCurrency   string         `json:"current_currency,omitempty"`
	StartDate         string         `json:"start_date"`
	EndDate           string         `json:"end_date"`
	ImageURL          string         `json:"image_url"`
	PercentageFunded  *float64       `json:"percentage_funded,omitempty"`
	DaysLeft          *int           `json:"days_left,omitempty"`
	TotalDonors       *int           `json:"total_donors,omitempty"`
	TotalAmountRaised *float64       `json:"total_amount_raised,omitempty"`
	Tenant            CampaignTenant `json:"tenant"`
}

// Progress returns the funded percentage capped at 100.
func (c Campaign) Progress() float64 {
	if c.PercentageFunded != nil {
		return clampPercent(*c.PercentageFunded)
	}
	raised, _ := strconv.ParseFloat(c.CurrentAmount, 64)
	goal, err := strconv.ParseFloat(c.GoalAmount, 64)
	if err != nil || goal <= 0 {
		return 0
	}
	return clampPercent(raised / goal * 100)
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Tenant is an NGO registered on the platform.
type Tenant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Location    string `json:"location,omitempty"`
	IsVerified  bool   `json:"is_Verified"`
	Website     string `json:"website,omitempty"`
}

// TenantQuery filters the tenant listing.
type TenantQuery struct {
	Search   string
	Page     int
	PageSize int
}
