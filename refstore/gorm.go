package refstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brayohmurithidev/donatehub-landing/models"
)

// GormStore persists references as models.TrackedPayment rows.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Migrate creates or updates the tracked_payments table.
func (s *GormStore) Migrate() error {
	return s.DB.AutoMigrate(&models.TrackedPayment{})
}

func (s *GormStore) Get(ctx context.Context, campaignID string) (string, bool, error) {
	var row models.TrackedPayment
	err := s.DB.WithContext(ctx).Where("campaign_id = ?", campaignID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.DonationID, true, nil
}

// Set stores the reference, replacing any earlier donation for the campaign.
func (s *GormStore) Set(ctx context.Context, campaignID, donationID string) error {
	row := models.TrackedPayment{
		CampaignID: campaignID,
		DonationID: donationID,
		Status:     "PENDING",
		Tracking:   true,
	}
	// A new donation resets everything learned about the previous one.
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "campaign_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"donation_id":      donationID,
			"status":           "PENDING",
			"tracking":         true,
			"transaction_code": nil,
			"checked_at":       nil,
			"last_payload":     nil,
			"updated_at":       time.Now(),
			"deleted_at":       nil,
		}),
	}).Create(&row).Error
}

// Remove hard-deletes the row so a later Set starts clean.
func (s *GormStore) Remove(ctx context.Context, campaignID string) error {
	return s.DB.WithContext(ctx).Unscoped().
		Where("campaign_id = ?", campaignID).
		Delete(&models.TrackedPayment{}).Error
}

// RecordStatus updates the last observed status. Observations for a
// donation other than the stored one are ignored.
func (s *GormStore) RecordStatus(ctx context.Context, campaignID string, obs Observation) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     obs.Status,
		"tracking":   obs.Tracking,
		"checked_at": &now,
	}
	if obs.TransactionCode != "" {
		updates["transaction_code"] = obs.TransactionCode
	}
	if obs.Payload != nil {
		updates["last_payload"] = datatypes.JSONMap(obs.Payload)
	}
	return s.DB.WithContext(ctx).Model(&models.TrackedPayment{}).
		Where("campaign_id = ? AND donation_id = ?", campaignID, obs.DonationID).
		Updates(updates).Error
}

// Find returns the full row for a campaign.
func (s *GormStore) Find(ctx context.Context, campaignID string) (*models.TrackedPayment, error) {
	var row models.TrackedPayment
	if err := s.DB.WithContext(ctx).Where("campaign_id = ?", campaignID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) List(ctx context.Context) ([]models.TrackedPayment, error) {
	var rows []models.TrackedPayment
	if err := s.DB.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) Search(ctx context.Context, f Filter) ([]models.TrackedPayment, int64, error) {
	scoped := func() *gorm.DB {
		q := s.DB.WithContext(ctx).Model(&models.TrackedPayment{})
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.Tracking != nil {
			q = q.Where("tracking = ?", *f.Tracking)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// fresh query, Count leaves state behind on the statement
	var rows []models.TrackedPayment
	if err := scoped().
		Order("updated_at DESC").
		Limit(f.limit()).Offset(f.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
