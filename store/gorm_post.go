package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentorhub/forum/models"
)

// mutableColumns are the only columns a post update may touch. Authorship,
// category and creation time are fixed at insert.
var mutableColumns = []string{
	"title", "content", "visibility",
	"edited", "edited_at", "edit_count",
	"is_deleted", "deleted_by", "deleted_at",
	"report_count", "reported_by", "upvoters", "replies",
	"version", "updated_at",
}

// GormPostStore keeps posts in MySQL, replies embedded as a JSON column.
type GormPostStore struct {
	db *gorm.DB
}

// NewGormPostStore wraps an initialised gorm handle.
func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func (s *GormPostStore) scope(q PostQuery) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if q.Empty {
			return tx.Where("1 = 0")
		}
		if !q.IncludeDeleted {
			tx = tx.Where("is_deleted = ?", false)
		}
		if q.Categories != nil {
			if len(q.Categories) == 0 {
				return tx.Where("1 = 0")
			}
			tx = tx.Where("category IN ?", q.Categories)
		}
		if q.AuthorID != "" {
			tx = tx.Where("author_id = ?", q.AuthorID)
		}
		if q.ReportedOnly {
			tx = tx.Where("report_count > ?", 0)
		}
		return tx
	}
}

// FindByID loads a post regardless of its deleted flag.
func (s *GormPostStore) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find post %s: %w", id, err)
	}
	return &post, nil
}

// FindMany returns posts matching q, newest first.
func (s *GormPostStore) FindMany(ctx context.Context, q PostQuery) ([]models.Post, error) {
	if q.Empty {
		return []models.Post{}, nil
	}
	var posts []models.Post
	tx := s.db.WithContext(ctx).Scopes(s.scope(q)).Order("created_at DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}
	if err := tx.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Count runs q as a count.
func (s *GormPostStore) Count(ctx context.Context, q PostQuery) (int64, error) {
	if q.Empty {
		return 0, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(s.scope(q)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Insert creates a new post row.
func (s *GormPostStore) Insert(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Update performs a compare-and-set on version plus the precondition.
func (s *GormPostStore) Update(ctx context.Context, post *models.Post, pre Precondition) error {
	next := pre.Version + 1
	post.Version = next

	tx := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND version = ?", post.ID, pre.Version)
	if pre.AuthorID != "" {
		tx = tx.Where("author_id = ?", pre.AuthorID)
	}
	if pre.RequireLive {
		tx = tx.Where("is_deleted = ?", false)
	}
	res := tx.Select(mutableColumns).Updates(post)
	if res.Error != nil {
		post.Version = pre.Version
		return fmt.Errorf("update post %s: %w", post.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		post.Version = pre.Version
		return ErrPreconditionFailed
	}
	return nil
}
