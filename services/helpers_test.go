package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/store"
)

var (
	studentS = models.Identity{UserID: "s1", Username: "sara", Role: models.RoleStudent}
	studentT = models.Identity{UserID: "s2", Username: "tom", Role: models.RoleStudent}
	mentorM  = models.Identity{UserID: "m1", Username: "maya", Role: models.RoleMentor}
	adminA   = models.Identity{UserID: "a1", Username: "ada", Role: models.RoleAdmin}
	nobody   = models.Identity{}
)

type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

type fixture struct {
	svc    *Service
	posts  *store.MemoryPostStore
	grants *store.MemoryModeratorStore
	clock  *testClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		posts:  store.NewMemoryPostStore(),
		grants: store.NewMemoryModeratorStore(),
		clock:  newTestClock(),
	}
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	f.svc = New(f.posts, f.grants, opts...)
	return f
}

func (f *fixture) create(t *testing.T, author models.Identity, c models.Category, v models.Visibility) *models.Post {
	t.Helper()
	f.clock.Advance(time.Second)
	p, err := f.svc.Forum.CreatePost(context.Background(), author, CreatePostInput{
		Category:   string(c),
		Visibility: string(v),
		Title:      "title " + string(c),
		Content:    "body for " + string(c),
	})
	require.NoError(t, err)
	return p
}

// seed writes a post straight to the store, bypassing publish rules.
func (f *fixture) seed(t *testing.T, id string, author models.Identity, c models.Category) *models.Post {
	t.Helper()
	info, ok := models.LookupCategory(c)
	require.True(t, ok)
	p := &models.Post{
		ID:         id,
		AuthorID:   author.UserID,
		AuthorName: author.Username,
		AuthorRole: author.Role,
		Title:      id,
		Content:    id,
		Category:   c,
		Visibility: info.Tiers[0],
		CreatedAt:  f.clock.Advance(time.Second),
	}
	require.NoError(t, f.posts.Insert(context.Background(), p))
	return p
}

func requireKind(t *testing.T, err error, kind Kind, cause Cause) {
	t.Helper()
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok, "expected *services.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind, e.Message)
	require.Equal(t, cause, e.Cause, e.Message)
}
