package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/utils"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	utils.SetRedis(client)
	t.Cleanup(func() {
		utils.SetRedis(nil)
		client.Close()
	})
	return s
}

func generalCount(t *testing.T, f *fixture, role models.Role) int64 {
	t.Helper()
	rows, err := f.svc.Forum.CategoryOverview(context.Background(), role)
	require.NoError(t, err)
	for _, r := range rows {
		if r.ID == models.CategoryGeneral {
			return r.PostCount
		}
	}
	t.Fatalf("general missing from overview for %q", role)
	return 0
}

func TestCategoryOverviewIsCachedInRedis(t *testing.T) {
	mr := setupTestRedis(t)
	f := newFixture(t, WithCache(utils.RedisCache{}, time.Minute))

	f.create(t, studentS, models.CategoryGeneral, "")
	assert.EqualValues(t, 1, generalCount(t, f, models.RoleStudent))
	assert.True(t, mr.Exists("forum:counts:student"))

	// writes that bypass the service are not seen until the entry expires
	f.seed(t, "direct", studentS, models.CategoryGeneral)
	assert.EqualValues(t, 1, generalCount(t, f, models.RoleStudent))

	mr.FastForward(2 * time.Minute)
	assert.EqualValues(t, 2, generalCount(t, f, models.RoleStudent))
}

func TestCategoryOverviewCacheInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	mr := setupTestRedis(t)
	f := newFixture(t, WithCache(utils.RedisCache{}, time.Minute))

	p := f.create(t, studentS, models.CategoryGeneral, "")
	assert.EqualValues(t, 1, generalCount(t, f, models.RoleAnonymous))
	assert.EqualValues(t, 1, generalCount(t, f, models.RoleMentor))
	assert.True(t, mr.Exists("forum:counts:anonymous"))

	f.create(t, studentT, models.CategoryGeneral, "")
	assert.False(t, mr.Exists("forum:counts:anonymous"))
	assert.False(t, mr.Exists("forum:counts:mentor"))
	assert.EqualValues(t, 2, generalCount(t, f, models.RoleAnonymous))

	require.NoError(t, f.svc.Forum.DeletePost(ctx, p.ID, studentS, models.OriginStudent))
	assert.EqualValues(t, 1, generalCount(t, f, models.RoleAnonymous))

	_, err := f.svc.Moderators.ModeratorDelete(ctx, adminA, p.ID, "")
	requireKind(t, err, KindNotFound, CauseAlreadyDeleted)
}

func TestCategoryOverviewWithoutRedis(t *testing.T) {
	utils.SetRedis(nil)
	f := newFixture(t, WithCache(utils.RedisCache{}, time.Minute))
	f.create(t, studentS, models.CategoryGeneral, "")
	assert.EqualValues(t, 1, generalCount(t, f, models.RoleStudent))
	f.seed(t, "direct", studentS, models.CategoryGeneral)
	assert.EqualValues(t, 2, generalCount(t, f, models.RoleStudent))
}
