package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resourceshub/hub/pkg/hub/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the key-value backend behind Service
type Store interface {
	// Claim records a receipt under key until ttl elapses. It reports false
	// when an unexpired receipt already exists.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release removes a receipt
	Release(ctx context.Context, key string) error
	// Increment adds one to the counter and returns the new value
	Increment(ctx context.Context, resourceID string, t models.VoteType) (int64, error)
	// Counts returns every counter, keyed by resource ID
	Counts(ctx context.Context) (map[string]models.VoteCounts, error)
	// PurgeExpired deletes receipts that expired before now
	PurgeExpired(ctx context.Context) (int64, error)
}

// GormStore keeps counters and receipts in a SQL database
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a store over db. The vote tables must already be migrated.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := s.now()
	claimed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hash = ? AND expires_at <= ?", key, now).Delete(&models.VoteReceipt{}).Error; err != nil {
			return err
		}
		receipt := models.VoteReceipt{Hash: key, CreatedAt: now, ExpiresAt: now.Add(ttl)}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipt)
		if result.Error != nil {
			return result.Error
		}
		claimed = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("claim vote receipt: %w", err)
	}
	return claimed, nil
}

func (s *GormStore) Release(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("hash = ?", key).Delete(&models.VoteReceipt{}).Error
}

func (s *GormStore) Increment(ctx context.Context, resourceID string, t models.VoteType) (int64, error) {
	var row models.VoteCount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.VoteCount{ResourceID: resourceID, Type: t}).FirstOrCreate(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&row).Update("count", gorm.Expr("count + 1")).Error; err != nil {
			return err
		}
		return tx.First(&row, row.ID).Error
	})
	if err != nil {
		return 0, fmt.Errorf("increment %s votes for %s: %w", t, resourceID, err)
	}
	return row.Count, nil
}

func (s *GormStore) Counts(ctx context.Context) (map[string]models.VoteCounts, error) {
	var rows []models.VoteCount
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list vote counts: %w", err)
	}
	counts := make(map[string]models.VoteCounts, len(rows))
	for _, row := range rows {
		vc := counts[row.ResourceID]
		switch row.Type {
		case models.VoteUp:
			vc.Upvotes = row.Count
		case models.VoteDown:
			vc.Downvotes = row.Count
		}
		counts[row.ResourceID] = vc
	}
	return counts, nil
}

func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.VoteReceipt{})
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
