package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/store"
	"github.com/mentorhub/forum/utils"
)

// AssignRequest describes a grant to create or replace.
type AssignRequest struct {
	UserID     string
	UserName   string
	Role       models.Role
	Categories []string
}

// ModeratedListOptions narrows the moderation listing.
type ModeratedListOptions struct {
	ReportedOnly bool
	Limit        int
	Offset       int
}

// ModeratorRegistry owns moderator grants and the moderation path, which
// bypasses ownership but is scoped to the grant's categories.
type ModeratorRegistry struct {
	grants   store.ModeratorStore
	posts    store.PostStore
	audit    *auditor
	onChange func()
}

// NewModeratorRegistry wires the registry to its stores.
func NewModeratorRegistry(grants store.ModeratorStore, posts store.PostStore, now func() time.Time) *ModeratorRegistry {
	if now == nil {
		now = time.Now
	}
	return &ModeratorRegistry{
		grants: grants,
		posts:  posts,
		audit:  &auditor{posts: posts, now: now},
	}
}

// Assign upserts the grant for req.UserID: categories are replaced and the
// grant is reactivated. Only admins may assign.
func (r *ModeratorRegistry) Assign(ctx context.Context, admin models.Identity, req AssignRequest) (*models.Moderator, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, invalid("user id is required")
	}
	if !req.Role.CanHoldModeratorGrant() {
		return nil, invalid("moderator grants are only for student or mentor accounts, got %q", req.Role)
	}
	cats, err := parseCategories(req.Categories)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.UserName)
	if name == "" {
		name = userID
	}

	grant := &models.Moderator{
		UserID:             userID,
		UserName:           name,
		UserRole:           req.Role,
		AssignedCategories: cats,
		Permissions:        models.DefaultModeratorPermissions(),
		IsActive:           true,
		AssignedBy:         admin.UserID,
	}
	if err := r.grants.Upsert(ctx, grant); err != nil {
		return nil, storeFailure("moderator.assign", err)
	}
	utils.Logger.Info("moderator assigned",
		zap.String("user_id", userID), zap.String("by", admin.UserID), zap.Any("categories", cats))
	return grant, nil
}

// Revoke deactivates the grant. A missing grant is a no-op returning nil.
func (r *ModeratorRegistry) Revoke(ctx context.Context, admin models.Identity, userID string) (*models.Moderator, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	grant, err := r.grants.FindByUserID(ctx, strings.TrimSpace(userID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure("moderator.revoke.load", err)
	}
	if !grant.IsActive {
		return grant, nil
	}
	now := r.audit.now()
	grant.IsActive = false
	grant.RevokedAt = &now
	if err := r.grants.Update(ctx, grant); err != nil {
		return nil, storeFailure("moderator.revoke", err)
	}
	utils.Logger.Info("moderator revoked", zap.String("user_id", grant.UserID), zap.String("by", admin.UserID))
	return grant, nil
}

// ActiveGrant returns the caller's active grant or nil.
func (r *ModeratorRegistry) ActiveGrant(ctx context.Context, userID string) (*models.Moderator, error) {
	grant, err := r.grants.FindByUserID(ctx, strings.TrimSpace(userID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure("moderator.lookup", err)
	}
	if !grant.IsActive {
		return nil, nil
	}
	return grant, nil
}

// IsModerator reports whether userID holds an active grant.
func (r *ModeratorRegistry) IsModerator(ctx context.Context, userID string) (bool, error) {
	grant, err := r.ActiveGrant(ctx, userID)
	return grant != nil, err
}

// CanModerateCategory reports whether userID holds an active grant covering c.
func (r *ModeratorRegistry) CanModerateCategory(ctx context.Context, userID string, c models.Category) (bool, error) {
	grant, err := r.ActiveGrant(ctx, userID)
	if err != nil {
		return false, err
	}
	return grant.Covers(c), nil
}

// List returns grants for the admin console.
func (r *ModeratorRegistry) List(ctx context.Context, admin models.Identity, activeOnly bool) ([]models.Moderator, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	out, err := r.grants.List(ctx, activeOnly)
	if err != nil {
		return nil, storeFailure("moderator.list", err)
	}
	return out, nil
}

// moderatedCategories resolves the categories the caller may moderate.
// Admins moderate every category by role.
func (r *ModeratorRegistry) moderatedCategories(ctx context.Context, caller models.Identity) ([]models.Category, error) {
	if !caller.Authenticated() {
		return nil, unauthorized(CauseRole, ReasonLoginRequired)
	}
	if caller.Role == models.RoleAdmin {
		all := models.Categories()
		cats := make([]models.Category, len(all))
		for i, c := range all {
			cats[i] = c.ID
		}
		return cats, nil
	}
	grant, err := r.ActiveGrant(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, unauthorized(CauseRole, ReasonNoModeratorGrant)
	}
	return grant.AssignedCategories, nil
}

// ListModeratedContent returns every live post in the caller's assigned
// categories across all visibility tiers.
func (r *ModeratorRegistry) ListModeratedContent(ctx context.Context, caller models.Identity, opts ModeratedListOptions) ([]models.Post, error) {
	cats, err := r.moderatedCategories(ctx, caller)
	if err != nil {
		return nil, err
	}
	q := store.PostQuery{
		Categories:   cats,
		ReportedOnly: opts.ReportedOnly,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	}
	if len(cats) == 0 {
		q = store.MatchNothing()
	}
	posts, err := r.posts.FindMany(ctx, q)
	if err != nil {
		return nil, storeFailure("moderator.list_content", err)
	}
	return StripDeletedReplies(posts), nil
}

// ModeratorDelete soft-deletes a post, or one of its replies when replyID is
// set, on the authority of a grant. When the caller authored the target the
// ownership rule takes precedence and deletedBy is left empty.
func (r *ModeratorRegistry) ModeratorDelete(ctx context.Context, caller models.Identity, postID, replyID string) (*models.Post, error) {
	cats, err := r.moderatedCategories(ctx, caller)
	if err != nil {
		return nil, err
	}

	post, err := r.audit.mutate(ctx, "moderator.delete", postID, func(post *models.Post) (store.Precondition, error) {
		if post.IsDeleted {
			return store.Precondition{}, alreadyDeleted()
		}
		if replyID == "" {
			if SameID(post.AuthorID, caller.UserID) {
				softDeletePost(post, "", r.audit.now())
				return store.Precondition{AuthorID: post.AuthorID, RequireLive: true}, nil
			}
			if err := checkScope(cats, post.Category); err != nil {
				return store.Precondition{}, err
			}
			softDeletePost(post, caller.UserID, r.audit.now())
			return store.Precondition{RequireLive: true}, nil
		}

		idx := post.FindReply(replyID)
		if idx < 0 {
			return store.Precondition{}, notFound(ReasonReplyNotFound)
		}
		reply := &post.Replies[idx]
		if reply.IsDeleted {
			return store.Precondition{}, alreadyDeleted()
		}
		deletedBy := caller.UserID
		if SameID(reply.AuthorID, caller.UserID) {
			deletedBy = ""
		} else if err := checkScope(cats, post.Category); err != nil {
			return store.Precondition{}, err
		}
		softDeleteReply(reply, deletedBy, r.audit.now())
		return store.Precondition{RequireLive: true}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("moderation delete",
		zap.String("post_id", postID), zap.String("reply_id", replyID),
		zap.String("moderator", caller.UserID), zap.String("category", string(post.Category)))
	if r.onChange != nil {
		r.onChange()
	}
	return stripPost(post), nil
}

func checkScope(cats []models.Category, c models.Category) error {
	for _, mc := range cats {
		if mc == c {
			return nil
		}
	}
	return unauthorized(CauseCategoryScope, fmt.Sprintf("Not authorized to moderate category %q", c))
}

func requireAdmin(caller models.Identity) error {
	if !caller.Authenticated() {
		return unauthorized(CauseRole, ReasonLoginRequired)
	}
	if caller.Role != models.RoleAdmin {
		return unauthorized(CauseRole, ReasonAdminOnly)
	}
	return nil
}

// parseCategories validates that every category is known and de-duplicates.
func parseCategories(raw []string) ([]models.Category, error) {
	if len(raw) == 0 {
		return nil, invalid("at least one category is required")
	}
	cats := make([]models.Category, 0, len(raw))
	for _, s := range raw {
		c, ok := models.ParseCategory(s)
		if !ok {
			return nil, invalid("unknown category %q", s)
		}
		cats = append(cats, c)
	}
	return utils.Unique(cats), nil
}
