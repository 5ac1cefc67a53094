package refstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brayohmurithidev/donatehub-landing/models"
)

// MemoryStore is an in-process Store. It does not survive restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]models.TrackedPayment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]models.TrackedPayment)}
}

func (s *MemoryStore) Get(_ context.Context, campaignID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[campaignID]
	return row.DonationID, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, campaignID, donationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	created := now
	if old, ok := s.rows[campaignID]; ok {
		created = old.CreatedAt
	}
	s.rows[campaignID] = models.TrackedPayment{
		CreatedAt:  created,
		UpdatedAt:  now,
		CampaignID: campaignID,
		DonationID: donationID,
		Status:     "PENDING",
		Tracking:   true,
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, campaignID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, campaignID)
	return nil
}

func (s *MemoryStore) RecordStatus(_ context.Context, campaignID string, obs Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[campaignID]
	if !ok || row.DonationID != obs.DonationID {
		return nil
	}
	now := time.Now()
	row.Status = obs.Status
	row.Tracking = obs.Tracking
	row.CheckedAt = &now
	row.UpdatedAt = now
	if obs.TransactionCode != "" {
		code := obs.TransactionCode
		row.TransactionCode = &code
	}
	if obs.Payload != nil {
		row.LastPayload = obs.Payload
	}
	s.rows[campaignID] = row
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.TrackedPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TrackedPayment, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *MemoryStore) Search(ctx context.Context, f Filter) ([]models.TrackedPayment, int64, error) {
	all, _ := s.List(ctx)
	matched := all[:0]
	for _, row := range all {
		if f.Status != "" && row.Status != f.Status {
			continue
		}
		if f.Tracking != nil && row.Tracking != *f.Tracking {
			continue
		}
		matched = append(matched, row)
	}
	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []models.TrackedPayment{}, total, nil
	}
	matched = matched[f.Offset:]
	if len(matched) > f.limit() {
		matched = matched[:f.limit()]
	}
	return matched, total, nil
}
