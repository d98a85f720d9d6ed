package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mentorhub/forum/models"
)

// MemoryPostStore is an in-process PostStore used in dev mode and tests.
// Every value crossing the boundary is cloned.
type MemoryPostStore struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
}

// NewMemoryPostStore returns an empty store.
func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{posts: make(map[string]*models.Post)}
}

func (s *MemoryPostStore) FindByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryPostStore) FindMany(_ context.Context, q PostQuery) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, 0)
	for _, p := range s.posts {
		if q.Matches(p) {
			out = append(out, *p.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []models.Post{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryPostStore) Count(_ context.Context, q PostQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.posts {
		if q.Matches(p) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryPostStore) Insert(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	s.posts[post.ID] = post.Clone()
	return nil
}

func (s *MemoryPostStore) Update(_ context.Context, post *models.Post, pre Precondition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.posts[post.ID]
	if !ok {
		return ErrPreconditionFailed
	}
	if cur.Version != pre.Version {
		return ErrPreconditionFailed
	}
	if pre.AuthorID != "" && cur.AuthorID != pre.AuthorID {
		return ErrPreconditionFailed
	}
	if pre.RequireLive && cur.IsDeleted {
		return ErrPreconditionFailed
	}
	next := post.Clone()
	// authorship, category and creation time are immutable
	next.AuthorID, next.AuthorName, next.AuthorRole = cur.AuthorID, cur.AuthorName, cur.AuthorRole
	next.Category = cur.Category
	next.CreatedAt = cur.CreatedAt
	next.Version = pre.Version + 1
	next.UpdatedAt = time.Now()
	s.posts[post.ID] = next
	post.Version = next.Version
	post.UpdatedAt = next.UpdatedAt
	return nil
}

// MemoryModeratorStore is an in-process ModeratorStore.
type MemoryModeratorStore struct {
	mu     sync.RWMutex
	nextID uint
	grants map[string]*models.Moderator
}

// NewMemoryModeratorStore returns an empty store.
func NewMemoryModeratorStore() *MemoryModeratorStore {
	return &MemoryModeratorStore{grants: make(map[string]*models.Moderator)}
}

func (s *MemoryModeratorStore) FindByUserID(_ context.Context, userID string) (*models.Moderator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.grants[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}

func (s *MemoryModeratorStore) Upsert(_ context.Context, m *models.Moderator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if cur, ok := s.grants[m.UserID]; ok {
		next := m.Clone()
		next.ID = cur.ID
		next.CreatedAt = cur.CreatedAt
		next.UpdatedAt = now
		s.grants[m.UserID] = next
		m.ID, m.CreatedAt, m.UpdatedAt = next.ID, next.CreatedAt, next.UpdatedAt
		return nil
	}
	s.nextID++
	m.ID = s.nextID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.grants[m.UserID] = m.Clone()
	return nil
}

func (s *MemoryModeratorStore) Update(_ context.Context, m *models.Moderator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.grants[m.UserID]
	if !ok {
		return ErrNotFound
	}
	next := m.Clone()
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now()
	s.grants[m.UserID] = next
	return nil
}

func (s *MemoryModeratorStore) List(_ context.Context, activeOnly bool) ([]models.Moderator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Moderator, 0, len(s.grants))
	for _, m := range s.grants {
		if activeOnly && !m.IsActive {
			continue
		}
		out = append(out, *m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
