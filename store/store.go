// Package store is the persistence collaborator of the forum engine. It knows
// nothing about roles or ownership; callers express authorization conditions
// through PostQuery and Precondition.
package store

import (
	"context"
	"errors"

	"github.com/mentorhub/forum/models"
)

var (
	// ErrNotFound is returned when no record matches the id.
	ErrNotFound = errors.New("store: record not found")
	// ErrPreconditionFailed is returned by conditional writes whose predicate
	// no longer holds. Nothing is written.
	ErrPreconditionFailed = errors.New("store: precondition failed")
)

// PostQuery selects posts. A nil Categories slice means any category; Empty
// short-circuits to no results.
type PostQuery struct {
	Empty          bool
	Categories     []models.Category
	IncludeDeleted bool
	AuthorID       string
	ReportedOnly   bool
	Limit          int
	Offset         int
}

// MatchNothing returns a query that selects no posts.
func MatchNothing() PostQuery { return PostQuery{Empty: true} }

// Matches evaluates the query against a single post.
func (q PostQuery) Matches(p *models.Post) bool {
	if q.Empty || p == nil {
		return false
	}
	if !q.IncludeDeleted && p.IsDeleted {
		return false
	}
	if q.AuthorID != "" && p.AuthorID != q.AuthorID {
		return false
	}
	if q.ReportedOnly && p.ReportCount == 0 {
		return false
	}
	if q.Categories != nil {
		found := false
		for _, c := range q.Categories {
			if c == p.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Precondition restates the authorization decision inside a write so the
// store enforces it atomically. Version is the version the caller read.
type Precondition struct {
	Version     int64
	AuthorID    string
	RequireLive bool
}

// PostStore persists posts with their embedded replies.
type PostStore interface {
	FindByID(ctx context.Context, id string) (*models.Post, error)
	FindMany(ctx context.Context, q PostQuery) ([]models.Post, error)
	Count(ctx context.Context, q PostQuery) (int64, error)
	Insert(ctx context.Context, post *models.Post) error
	// Update writes the whole post when the stored row still satisfies pre,
	// then bumps post.Version. It returns ErrPreconditionFailed otherwise.
	Update(ctx context.Context, post *models.Post, pre Precondition) error
}

// ModeratorStore persists moderator grants keyed by user id.
type ModeratorStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Moderator, error)
	// Upsert inserts the grant or replaces categories, name, role and
	// active flag of the existing grant for the same user.
	Upsert(ctx context.Context, m *models.Moderator) error
	Update(ctx context.Context, m *models.Moderator) error
	List(ctx context.Context, activeOnly bool) ([]models.Moderator, error)
}
