package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/store"
	"github.com/mentorhub/forum/utils"
)

// maxWriteAttempts bounds how often a mutation is re-validated after losing a
// compare-and-set race.
const maxWriteAttempts = 3

// PostEdit is a partial update; nil fields are left untouched.
type PostEdit struct {
	Title      *string
	Content    *string
	Visibility *models.Visibility
}

// Empty reports whether the edit carries no fields.
func (e PostEdit) Empty() bool {
	return e.Title == nil && e.Content == nil && e.Visibility == nil
}

// applyEdit writes the provided fields and records the edit. Previous content
// is not versioned; only the fact and count of edits are kept.
func applyEdit(p *models.Post, e PostEdit, now time.Time) {
	if e.Title != nil {
		p.Title = *e.Title
	}
	if e.Content != nil {
		p.Content = *e.Content
	}
	if e.Visibility != nil {
		p.Visibility = *e.Visibility
	}
	p.Edited = true
	p.EditedAt = &now
	p.EditCount++
}

// softDeletePost tombstones the post. deletedBy is empty for author
// self-deletes and the acting id for authority deletes.
func softDeletePost(p *models.Post, deletedBy string, now time.Time) {
	p.IsDeleted = true
	p.DeletedAt = &now
	p.DeletedBy = deletedBy
}

func softDeleteReply(r *models.Reply, deletedBy string, now time.Time) {
	r.IsDeleted = true
	r.DeletedAt = &now
	r.DeletedBy = deletedBy
}

// mutation authorizes and applies a change to a freshly loaded post, and
// returns the precondition the write must carry.
type mutation func(post *models.Post) (store.Precondition, error)

// auditor runs every post mutation as load, decide, apply and a conditional
// write. A lost race writes nothing, so the whole cycle is re-run against the
// new state.
type auditor struct {
	posts store.PostStore
	now   func() time.Time
}

func (a *auditor) mutate(ctx context.Context, op, postID string, fn mutation) (*models.Post, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		post, err := a.posts.FindByID(ctx, postID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound(ReasonPostNotFound)
		}
		if err != nil {
			return nil, storeFailure(op+".load", err)
		}

		pre, err := fn(post)
		if err != nil {
			return nil, err
		}
		pre.Version = post.Version

		err = a.posts.Update(ctx, post, pre)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, store.ErrPreconditionFailed) {
			return nil, storeFailure(op+".update", err)
		}
		utils.Logger.Debug("forum write lost race, re-validating",
			zap.String("op", op), zap.String("post_id", postID), zap.Int("attempt", attempt))
	}
	return nil, storeFailure(op, errors.New("post kept changing under concurrent writes"))
}
