package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/store"
	"github.com/mentorhub/forum/utils"
)

const (
	maxTitleRunes   = 255
	maxContentRunes = 20000
	maxReplyRunes   = 5000
	countKeyPrefix  = "forum:counts:"
)

// Cache is the optional read-through cache for category counts.
type Cache interface {
	GetJSON(key string, v interface{}) bool
	SetJSON(key string, v interface{}, ttl time.Duration)
	InvalidatePrefix(prefix string)
}

type noCache struct{}

func (noCache) GetJSON(string, interface{}) bool { return false }

func (noCache) SetJSON(string, interface{}, time.Duration) {}

func (noCache) InvalidatePrefix(string) {}

// Option customises a Service.
type Option func(*Service)

// WithCache enables the category count cache.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.Forum.cache = c
			s.Forum.cacheTTL = ttl
		}
	}
}

// WithClock replaces time.Now, used for deterministic audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.Forum.audit.now = now
		s.Moderators.audit.now = now
	}
}

// Service bundles the forum operations and the moderator registry.
type Service struct {
	Forum      *ForumService
	Moderators *ModeratorRegistry
}

// New builds the forum engine over the given stores.
func New(posts store.PostStore, grants store.ModeratorStore, opts ...Option) *Service {
	registry := NewModeratorRegistry(grants, posts, time.Now)
	forum := &ForumService{
		posts:    posts,
		guard:    NewGuard(posts),
		registry: registry,
		audit:    &auditor{posts: posts, now: time.Now},
		cache:    noCache{},
	}
	registry.onChange = forum.invalidateCounts
	s := &Service{Forum: forum, Moderators: registry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForumService implements reads and author-initiated writes on posts.
type ForumService struct {
	posts    store.PostStore
	guard    *Guard
	registry *ModeratorRegistry
	audit    *auditor
	cache    Cache
	cacheTTL time.Duration
}

// Page selects a slice of a listing. Zero values mean "everything".
type Page struct {
	Page     int
	PageSize int
}

func (p Page) limitOffset() (int, int) {
	if p.PageSize <= 0 {
		return 0, 0
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return p.PageSize, (page - 1) * p.PageSize
}

// ListResult is a page of posts plus the total matching count.
type ListResult struct {
	Items []models.Post `json:"items"`
	Total int64         `json:"total"`
}

// CategorySummary is one row of the category overview.
type CategorySummary struct {
	models.CategoryInfo
	PostCount int64 `json:"post_count"`
}

// CreatePostInput carries the author-supplied fields of a new post.
type CreatePostInput struct {
	Category   string
	Visibility string
	Title      string
	Content    string
}

// ListPosts returns live posts readable by role, optionally narrowed to one
// category, with deleted replies removed.
func (f *ForumService) ListPosts(ctx context.Context, role models.Role, category string, page Page) (ListResult, error) {
	q := f.readQuery(role, category)
	total, err := f.posts.Count(ctx, q)
	if err != nil {
		return ListResult{}, storeFailure("forum.list.count", err)
	}
	q.Limit, q.Offset = page.limitOffset()
	posts, err := f.posts.FindMany(ctx, q)
	if err != nil {
		return ListResult{}, storeFailure("forum.list", err)
	}
	return ListResult{Items: StripDeletedReplies(posts), Total: total}, nil
}

func (f *ForumService) readQuery(role models.Role, category string) store.PostQuery {
	category = strings.TrimSpace(category)
	if category == "" {
		return ResolveQuery(role, nil)
	}
	c, ok := models.ParseCategory(category)
	if !ok {
		return store.MatchNothing()
	}
	return ResolveQuery(role, &c)
}

// GetPost returns a single live post readable by role.
func (f *ForumService) GetPost(ctx context.Context, role models.Role, postID string) (*models.Post, error) {
	post, err := f.loadReadable(ctx, role, postID, "forum.get")
	if err != nil {
		return nil, err
	}
	return stripPost(post), nil
}

// loadReadable hides deleted and unreadable posts behind the same NotFound.
func (f *ForumService) loadReadable(ctx context.Context, role models.Role, postID, op string) (*models.Post, error) {
	post, err := f.posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound(ReasonPostNotFound)
	}
	if err != nil {
		return nil, storeFailure(op, err)
	}
	if post.IsDeleted || !CanRead(role, post.Category) {
		return nil, notFound(ReasonPostNotFound)
	}
	return post, nil
}

// CategoryOverview returns every category role may read with its live post
// count. Counts run one store round-trip per category.
func (f *ForumService) CategoryOverview(ctx context.Context, role models.Role) ([]CategorySummary, error) {
	key := countKeyPrefix + roleKey(role)
	var cached []CategorySummary
	if f.cache.GetJSON(key, &cached) {
		return cached, nil
	}

	out := make([]CategorySummary, 0)
	for _, info := range models.Categories() {
		if !CanRead(role, info.ID) {
			continue
		}
		c := info.ID
		n, err := f.posts.Count(ctx, ResolveQuery(role, &c))
		if err != nil {
			return nil, storeFailure("forum.overview", err)
		}
		out = append(out, CategorySummary{CategoryInfo: info, PostCount: n})
	}
	f.cache.SetJSON(key, out, f.cacheTTL)
	return out, nil
}

func roleKey(role models.Role) string {
	if role == models.RoleAnonymous {
		return "anonymous"
	}
	return string(role)
}

func (f *ForumService) invalidateCounts() {
	f.cache.InvalidatePrefix(countKeyPrefix)
}

// CreatePost validates and stores a new post authored by author.
func (f *ForumService) CreatePost(ctx context.Context, author models.Identity, in CreatePostInput) (*models.Post, error) {
	if !author.Authenticated() || !author.Role.Valid() {
		return nil, unauthorized(CauseRole, ReasonLoginRequired)
	}
	category, ok := models.ParseCategory(in.Category)
	if !ok {
		return nil, invalid("invalid category %q", in.Category)
	}
	info, _ := models.LookupCategory(category)

	visibility := info.Tiers[0]
	if strings.TrimSpace(in.Visibility) != "" {
		v, ok := models.ParseVisibility(in.Visibility)
		if !ok {
			return nil, invalid("invalid visibility %q", in.Visibility)
		}
		visibility = v
	}
	if err := checkTier(author.Role, info, visibility); err != nil {
		return nil, err
	}
	if !CanRead(author.Role, category) {
		return nil, unauthorized(CauseRole, fmt.Sprintf("Your role cannot post in category %q", category))
	}

	title, err := cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}
	content, err := cleanContent(in.Content)
	if err != nil {
		return nil, err
	}

	authorRole := author.Role
	if authorRole == models.RoleStudent || authorRole == models.RoleMentor {
		moderates, err := f.registry.CanModerateCategory(ctx, author.UserID, category)
		if err != nil {
			return nil, err
		}
		if moderates {
			authorRole = models.RoleModerator
		}
	}

	now := f.audit.now()
	post := &models.Post{
		ID:         uuid.NewString(),
		AuthorID:   strings.TrimSpace(author.UserID),
		AuthorName: displayName(author),
		AuthorRole: authorRole,
		Title:      title,
		Content:    content,
		Category:   category,
		Visibility: visibility,
		Upvoters:   []string{},
		ReportedBy: []string{},
		Replies:    []models.Reply{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := f.posts.Insert(ctx, post); err != nil {
		return nil, storeFailure("forum.create", err)
	}
	f.invalidateCounts()
	utils.Logger.Info("post created",
		zap.String("post_id", post.ID), zap.String("author", post.AuthorID), zap.String("category", string(category)))
	return post, nil
}

// checkTier enforces that the tier belongs to the category and that only
// admins publish announcements.
func checkTier(role models.Role, info models.CategoryInfo, v models.Visibility) error {
	if !info.AllowsTier(v) {
		return invalid("visibility %q is not allowed in category %q", v, info.ID)
	}
	if v == models.VisibilityAnnouncement && role != models.RoleAdmin {
		return unauthorized(CauseRole, "Only administrators can publish announcements")
	}
	return nil
}

// CreateReply appends a reply to a live post the author can read.
func (f *ForumService) CreateReply(ctx context.Context, postID string, author models.Identity, message string) (*models.Post, error) {
	if !author.Authenticated() || !author.Role.Valid() {
		return nil, unauthorized(CauseRole, ReasonLoginRequired)
	}
	text := utils.SanitizePlain(message)
	if text == "" {
		return nil, invalid("reply message cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxReplyRunes {
		return nil, invalid("reply message exceeds %d characters", maxReplyRunes)
	}

	post, err := f.audit.mutate(ctx, "forum.reply", postID, func(post *models.Post) (store.Precondition, error) {
		if post.IsDeleted || !CanRead(author.Role, post.Category) {
			return store.Precondition{}, notFound(ReasonPostNotFound)
		}
		post.Replies = append(post.Replies, models.Reply{
			ID:         uuid.NewString(),
			AuthorID:   strings.TrimSpace(author.UserID),
			AuthorName: displayName(author),
			AuthorRole: author.Role,
			Message:    text,
			CreatedAt:  f.audit.now(),
		})
		return store.Precondition{RequireLive: true}, nil
	})
	if err != nil {
		return nil, err
	}
	return stripPost(post), nil
}

// ToggleUpvote flips caller's membership in the upvoter set and reports the
// new membership and count.
func (f *ForumService) ToggleUpvote(ctx context.Context, postID string, caller models.Identity) (bool, int, error) {
	if !caller.Authenticated() {
		return false, 0, unauthorized(CauseRole, ReasonLoginRequired)
	}
	var upvoted bool
	post, err := f.audit.mutate(ctx, "forum.upvote", postID, func(post *models.Post) (store.Precondition, error) {
		if post.IsDeleted || !CanRead(caller.Role, post.Category) {
			return store.Precondition{}, notFound(ReasonPostNotFound)
		}
		post.Upvoters, upvoted = utils.Toggle(post.Upvoters, strings.TrimSpace(caller.UserID))
		return store.Precondition{RequireLive: true}, nil
	})
	if err != nil {
		return false, 0, err
	}
	return upvoted, len(post.Upvoters), nil
}

// ReportPost flags a post for moderators. Reporting twice is a no-op.
func (f *ForumService) ReportPost(ctx context.Context, postID string, caller models.Identity) (*models.Post, error) {
	if !caller.Authenticated() {
		return nil, unauthorized(CauseRole, ReasonLoginRequired)
	}
	post, err := f.loadReadable(ctx, caller.Role, postID, "forum.report.load")
	if err != nil {
		return nil, err
	}
	if post.HasReported(caller.UserID) {
		return stripPost(post), nil
	}
	post, err = f.audit.mutate(ctx, "forum.report", postID, func(post *models.Post) (store.Precondition, error) {
		if post.IsDeleted || !CanRead(caller.Role, post.Category) {
			return store.Precondition{}, notFound(ReasonPostNotFound)
		}
		if !post.HasReported(caller.UserID) {
			post.ReportedBy = append(post.ReportedBy, strings.TrimSpace(caller.UserID))
			post.ReportCount++
		}
		return store.Precondition{RequireLive: true}, nil
	})
	if err != nil {
		return nil, err
	}
	return stripPost(post), nil
}

// CanManage exposes the ownership decision for a post.
func (f *ForumService) CanManage(ctx context.Context, postID string, caller models.Identity, origin models.RouteOrigin) (Decision, error) {
	return f.guard.CanManage(ctx, postID, caller, origin)
}

// CanManageReply exposes the ownership decision for a reply.
func (f *ForumService) CanManageReply(ctx context.Context, postID, replyID string, caller models.Identity, origin models.RouteOrigin) (Decision, error) {
	return f.guard.CanManageReply(ctx, postID, replyID, caller, origin)
}

// EditPost applies a partial edit when caller owns the post.
func (f *ForumService) EditPost(ctx context.Context, postID string, caller models.Identity, origin models.RouteOrigin, edit PostEdit) (*models.Post, error) {
	if edit.Empty() {
		return nil, invalid("no fields to update")
	}
	post, err := f.audit.mutate(ctx, "forum.edit", postID, func(post *models.Post) (store.Precondition, error) {
		d := DecidePost(post, caller, origin)
		if !d.CanEdit {
			return store.Precondition{}, d.Err()
		}
		clean, err := f.cleanEdit(caller.Role, post, edit)
		if err != nil {
			return store.Precondition{}, err
		}
		applyEdit(post, clean, f.audit.now())
		return store.Precondition{AuthorID: post.AuthorID, RequireLive: true}, nil
	})
	if err != nil {
		return nil, err
	}
	utils.Logger.Info("post edited", zap.String("post_id", postID), zap.Int("edit_count", post.EditCount))
	return stripPost(post), nil
}

func (f *ForumService) cleanEdit(role models.Role, post *models.Post, edit PostEdit) (PostEdit, error) {
	var out PostEdit
	if edit.Title != nil {
		t, err := cleanTitle(*edit.Title)
		if err != nil {
			return out, err
		}
		out.Title = &t
	}
	if edit.Content != nil {
		c, err := cleanContent(*edit.Content)
		if err != nil {
			return out, err
		}
		out.Content = &c
	}
	if edit.Visibility != nil {
		info, ok := models.LookupCategory(post.Category)
		if !ok {
			return out, invalid("post has unknown category %q", post.Category)
		}
		if err := checkTier(role, info, *edit.Visibility); err != nil {
			return out, err
		}
		v := *edit.Visibility
		out.Visibility = &v
	}
	return out, nil
}

// DeletePost soft-deletes a post on behalf of its author.
func (f *ForumService) DeletePost(ctx context.Context, postID string, caller models.Identity, origin models.RouteOrigin) error {
	_, err := f.audit.mutate(ctx, "forum.delete", postID, func(post *models.Post) (store.Precondition, error) {
		d := DecidePost(post, caller, origin)
		if !d.CanDelete {
			return store.Precondition{}, d.Err()
		}
		softDeletePost(post, "", f.audit.now())
		return store.Precondition{AuthorID: post.AuthorID, RequireLive: true}, nil
	})
	if err != nil {
		return err
	}
	f.invalidateCounts()
	utils.Logger.Info("post deleted by author", zap.String("post_id", postID), zap.String("author", caller.UserID))
	return nil
}

// DeleteReply soft-deletes a reply on behalf of its author.
func (f *ForumService) DeleteReply(ctx context.Context, postID, replyID string, caller models.Identity, origin models.RouteOrigin) error {
	_, err := f.audit.mutate(ctx, "forum.delete_reply", postID, func(post *models.Post) (store.Precondition, error) {
		d := DecideReply(post, replyID, caller, origin)
		if !d.CanDelete {
			return store.Precondition{}, d.Err()
		}
		softDeleteReply(&post.Replies[post.FindReply(replyID)], "", f.audit.now())
		return store.Precondition{RequireLive: true}, nil
	})
	if err != nil {
		return err
	}
	utils.Logger.Info("reply deleted by author", zap.String("post_id", postID), zap.String("reply_id", replyID))
	return nil
}

// AuditGetPost returns the raw post, deleted content included. Admin only.
func (f *ForumService) AuditGetPost(ctx context.Context, caller models.Identity, postID string) (*models.Post, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	post, err := f.posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound(ReasonPostNotFound)
	}
	if err != nil {
		return nil, storeFailure("forum.audit", err)
	}
	return post, nil
}

func cleanTitle(raw string) (string, error) {
	t := utils.SanitizePlain(raw)
	if t == "" {
		return "", invalid("title cannot be empty")
	}
	if utf8.RuneCountInString(t) > maxTitleRunes {
		return "", invalid("title exceeds %d characters", maxTitleRunes)
	}
	return t, nil
}

func cleanContent(raw string) (string, error) {
	c := utils.Sanitize(raw)
	if c == "" {
		return "", invalid("content cannot be empty")
	}
	if utf8.RuneCountInString(c) > maxContentRunes {
		return "", invalid("content exceeds %d characters", maxContentRunes)
	}
	return c, nil
}

func displayName(id models.Identity) string {
	if name := strings.TrimSpace(id.Username); name != "" {
		return name
	}
	return strings.TrimSpace(id.UserID)
}
