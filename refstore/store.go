// Package refstore keeps the per-campaign reference to the donation whose
// payment is being followed, so tracking resumes after a restart.
package refstore

import (
	"context"

	"github.com/brayohmurithidev/donatehub-landing/models"
)

// Store maps a campaign id to the donation id being tracked for it.
// Removing an absent key is not an error.
type Store interface {
	Get(ctx context.Context, campaignID string) (donationID string, ok bool, err error)
	Set(ctx context.Context, campaignID, donationID string) error
	Remove(ctx context.Context, campaignID string) error
}

// StatusRecorder is implemented by stores that also keep the last status
// observed for a reference.
type StatusRecorder interface {
	RecordStatus(ctx context.Context, campaignID string, obs Observation) error
}

// Observation is one status reading for a tracked donation.
type Observation struct {
	DonationID      string
	Status          string
	TransactionCode string
	Tracking        bool
	Payload         map[string]interface{}
}

// Lister is implemented by stores that can enumerate their references.
type Lister interface {
	List(ctx context.Context) ([]models.TrackedPayment, error)
}

// Filter narrows a Search. Empty fields match everything.
type Filter struct {
	Status   string
	Tracking *bool
	Limit    int
	Offset   int
}

// DefaultLimit is the page size used when Filter.Limit is not positive.
const DefaultLimit = 50

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Searcher is implemented by stores that can page through their references.
// total counts every matching row, ignoring Limit and Offset.
type Searcher interface {
	Search(ctx context.Context, f Filter) (rows []models.TrackedPayment, total int64, err error)
}
