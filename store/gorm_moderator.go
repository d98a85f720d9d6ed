package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorhub/forum/models"
)

// GormModeratorStore keeps moderator grants in MySQL with a unique user_id.
type GormModeratorStore struct {
	db *gorm.DB
}

// NewGormModeratorStore wraps an initialised gorm handle.
func NewGormModeratorStore(db *gorm.DB) *GormModeratorStore {
	return &GormModeratorStore{db: db}
}

// FindByUserID loads the grant for userID, active or not.
func (s *GormModeratorStore) FindByUserID(ctx context.Context, userID string) (*models.Moderator, error) {
	var m models.Moderator
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find moderator %s: %w", userID, err)
	}
	return &m, nil
}

// Upsert relies on the unique user_id index so re-assignment never duplicates.
func (s *GormModeratorStore) Upsert(ctx context.Context, m *models.Moderator) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_name", "user_role", "assigned_categories", "permissions",
			"is_active", "assigned_by", "revoked_at", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert moderator %s: %w", m.UserID, err)
	}
	return nil
}

// Update saves the mutable grant fields.
func (s *GormModeratorStore) Update(ctx context.Context, m *models.Moderator) error {
	res := s.db.WithContext(ctx).Model(&models.Moderator{}).
		Where("user_id = ?", m.UserID).
		Select("user_name", "user_role", "assigned_categories", "permissions", "is_active", "assigned_by", "revoked_at", "updated_at").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("update moderator %s: %w", m.UserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns grants ordered by creation.
func (s *GormModeratorStore) List(ctx context.Context, activeOnly bool) ([]models.Moderator, error) {
	var out []models.Moderator
	tx := s.db.WithContext(ctx).Order("created_at ASC")
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if err := tx.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list moderators: %w", err)
	}
	return out, nil
}
