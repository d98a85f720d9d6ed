package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/store"
)

// Decision is the outcome of an ownership check. Reason and Cause are set
// whenever a right is denied.
type Decision struct {
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
	Reason    string `json:"reason,omitempty"`
	Cause     Cause  `json:"cause,omitempty"`
	kind      Kind
}

func deny(kind Kind, cause Cause, reason string) Decision {
	return Decision{Reason: reason, Cause: cause, kind: kind}
}

// Err converts a denial into the matching structured error.
func (d Decision) Err() error {
	if d.CanEdit || d.CanDelete {
		return nil
	}
	return &Error{Kind: d.kind, Cause: d.Cause, Message: d.Reason}
}

// Guard decides whether a caller may edit or delete a specific post or reply
// through the ownership path. It never mutates.
type Guard struct {
	posts store.PostStore
}

// NewGuard returns a guard reading from posts.
func NewGuard(posts store.PostStore) *Guard {
	return &Guard{posts: posts}
}

// CanManage loads the post and decides edit/delete rights for caller.
func (g *Guard) CanManage(ctx context.Context, postID string, caller models.Identity, origin models.RouteOrigin) (Decision, error) {
	post, err := g.load(ctx, postID)
	if err != nil {
		return Decision{}, err
	}
	return DecidePost(post, caller, origin), nil
}

// CanManageReply loads the post and decides delete rights on one reply.
func (g *Guard) CanManageReply(ctx context.Context, postID, replyID string, caller models.Identity, origin models.RouteOrigin) (Decision, error) {
	post, err := g.load(ctx, postID)
	if err != nil {
		return Decision{}, err
	}
	return DecideReply(post, replyID, caller, origin), nil
}

func (g *Guard) load(ctx context.Context, postID string) (*models.Post, error) {
	post, err := g.posts.FindByID(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure("guard.load", err)
	}
	return post, nil
}

// DecidePost applies the ownership rules to an already loaded post; a nil
// post is treated as missing.
func DecidePost(post *models.Post, caller models.Identity, origin models.RouteOrigin) Decision {
	if post == nil {
		return deny(KindNotFound, CauseMissing, ReasonPostNotFound)
	}
	if post.IsDeleted {
		return deny(KindNotFound, CauseAlreadyDeleted, ReasonAlreadyDeleted)
	}
	if d, ok := checkCaller(caller, origin); !ok {
		return d
	}
	if !SameID(post.AuthorID, caller.UserID) {
		return deny(KindUnauthorized, CauseOwnership, ReasonNotPostOwner)
	}
	return Decision{CanEdit: true, CanDelete: true}
}

// DecideReply applies the ownership rules to one reply. Replies are never
// editable, so CanEdit is always false.
func DecideReply(post *models.Post, replyID string, caller models.Identity, origin models.RouteOrigin) Decision {
	if post == nil {
		return deny(KindNotFound, CauseMissing, ReasonPostNotFound)
	}
	if post.IsDeleted {
		return deny(KindNotFound, CauseAlreadyDeleted, ReasonAlreadyDeleted)
	}
	idx := post.FindReply(replyID)
	if idx < 0 {
		return deny(KindNotFound, CauseMissing, ReasonReplyNotFound)
	}
	reply := post.Replies[idx]
	if reply.IsDeleted {
		return deny(KindNotFound, CauseAlreadyDeleted, ReasonAlreadyDeleted)
	}
	if d, ok := checkCaller(caller, origin); !ok {
		return d
	}
	if !SameID(reply.AuthorID, caller.UserID) {
		return deny(KindUnauthorized, CauseOwnership, ReasonNotReplyOwner)
	}
	return Decision{CanDelete: true}
}

// checkCaller rejects anonymous callers and surfaces whose required role does
// not match the caller's verified role.
func checkCaller(caller models.Identity, origin models.RouteOrigin) (Decision, bool) {
	if !caller.Authenticated() {
		return deny(KindUnauthorized, CauseRole, ReasonLoginRequired), false
	}
	if want, scoped := origin.RequiredRole(); scoped && caller.Role != want {
		return deny(KindUnauthorized, CauseRouteOrigin, routeOriginReason(origin, want)), false
	}
	return Decision{}, true
}

func routeOriginReason(origin models.RouteOrigin, want models.Role) string {
	return fmt.Sprintf("Access denied: %s route requires %s role", origin, want)
}

// SameID compares identifiers that may have been rendered differently by
// different layers.
func SameID(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && a == b
}

// NormalizeID renders an identifier of any scalar type as a string.
func NormalizeID(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
