package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/forum/models"
)

func TestDecidePost(t *testing.T) {
	live := &models.Post{ID: "p1", AuthorID: "m1", Category: models.CategoryGeneral}
	deleted := &models.Post{ID: "p2", AuthorID: "m1", IsDeleted: true}

	tests := []struct {
		name   string
		post   *models.Post
		caller models.Identity
		origin models.RouteOrigin
		allow  bool
		kind   Kind
		cause  Cause
		reason string
	}{
		{name: "missing post", post: nil, caller: mentorM, origin: models.OriginForum, kind: KindNotFound, cause: CauseMissing, reason: ReasonPostNotFound},
		{name: "already deleted", post: deleted, caller: mentorM, origin: models.OriginForum, kind: KindNotFound, cause: CauseAlreadyDeleted, reason: ReasonAlreadyDeleted},
		{name: "anonymous", post: live, caller: nobody, origin: models.OriginForum, kind: KindUnauthorized, cause: CauseRole, reason: ReasonLoginRequired},
		{name: "owner through mentor surface", post: live, caller: mentorM, origin: models.OriginMentor, allow: true},
		{name: "owner through forum surface", post: live, caller: mentorM, origin: models.OriginForum, allow: true},
		{name: "mentor through student surface", post: live, caller: mentorM, origin: models.OriginStudent, kind: KindUnauthorized, cause: CauseRouteOrigin,
			reason: "Access denied: student route requires student role"},
		{name: "student through mentor surface", post: live, caller: studentS, origin: models.OriginMentor, kind: KindUnauthorized, cause: CauseRouteOrigin,
			reason: "Access denied: mentor route requires mentor role"},
		{name: "admin role does not confer ownership", post: live, caller: adminA, origin: models.OriginAdmin, kind: KindUnauthorized, cause: CauseOwnership, reason: ReasonNotPostOwner},
		{name: "other student", post: live, caller: studentS, origin: models.OriginStudent, kind: KindUnauthorized, cause: CauseOwnership, reason: ReasonNotPostOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DecidePost(tt.post, tt.caller, tt.origin)
			if tt.allow {
				assert.True(t, d.CanEdit)
				assert.True(t, d.CanDelete)
				assert.Empty(t, d.Reason)
				assert.NoError(t, d.Err())
				return
			}
			assert.False(t, d.CanEdit)
			assert.False(t, d.CanDelete)
			assert.Equal(t, tt.reason, d.Reason)
			requireKind(t, d.Err(), tt.kind, tt.cause)
		})
	}
}

func TestDecideReply(t *testing.T) {
	post := &models.Post{
		ID:       "p1",
		AuthorID: "m1",
		Replies: []models.Reply{
			{ID: "r1", AuthorID: "s1"},
			{ID: "r2", AuthorID: "s2", IsDeleted: true},
		},
	}

	d := DecideReply(post, "r1", studentS, models.OriginStudent)
	assert.True(t, d.CanDelete)
	assert.False(t, d.CanEdit, "replies are never editable")

	d = DecideReply(post, "r1", mentorM, models.OriginMentor)
	assert.Equal(t, ReasonNotReplyOwner, d.Reason)

	d = DecideReply(post, "r2", studentT, models.OriginForum)
	assert.Equal(t, CauseAlreadyDeleted, d.Cause)

	d = DecideReply(post, "missing", studentS, models.OriginForum)
	assert.Equal(t, ReasonReplyNotFound, d.Reason)
	assert.Equal(t, CauseMissing, d.Cause)
}

func TestGuardCanManageLoadsFromStore(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, "p1", studentS, models.CategoryGeneral)

	d, err := f.svc.Forum.CanManage(context.Background(), p.ID, studentS, models.OriginStudent)
	require.NoError(t, err)
	assert.True(t, d.CanEdit)

	d, err = f.svc.Forum.CanManage(context.Background(), "nope", studentS, models.OriginStudent)
	require.NoError(t, err)
	assert.Equal(t, ReasonPostNotFound, d.Reason)
}

func TestGuardNeverMutates(t *testing.T) {
	f := newFixture(t)
	p := f.seed(t, "p1", studentS, models.CategoryGeneral)
	before, err := f.posts.FindByID(context.Background(), p.ID)
	require.NoError(t, err)

	_, err = f.svc.Forum.CanManage(context.Background(), p.ID, studentT, models.OriginStudent)
	require.NoError(t, err)

	after, err := f.posts.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestNormalizeAndSameID(t *testing.T) {
	assert.Equal(t, "42", NormalizeID(42))
	assert.Equal(t, "42", NormalizeID(int64(42)))
	assert.Equal(t, "42", NormalizeID(uint(42)))
	assert.Equal(t, "42", NormalizeID(float64(42)))
	assert.Equal(t, "abc", NormalizeID(stringer(" abc ")))
	assert.Equal(t, "", NormalizeID(struct{}{}))

	assert.True(t, SameID(" 42", "42 "))
	assert.False(t, SameID("", ""))
	assert.False(t, SameID("42", "43"))
}
