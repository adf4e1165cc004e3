package policy

import (
	"context"
	"sync"
	"time"

	domain "github.com/attendly/attendly-backend-go/internal/domain/policy"
)

type cacheEntry struct {
	policy    domain.Policy
	expiresAt time.Time
}

// CachedStore serves policy snapshots with a short TTL so punch and cron
// paths do not hit the database on every call. A stale read is acceptable:
// policy edits take effect within one TTL.
type CachedStore struct {
	repo domain.Repository
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	now func() time.Time
}

func NewCachedStore(repo domain.Repository, ttl time.Duration) *CachedStore {
	return &CachedStore{
		repo:    repo,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (s *CachedStore) Get(ctx context.Context, companyID string) (domain.Policy, error) {
	now := s.now()

	s.mu.RLock()
	entry, ok := s.entries[companyID]
	s.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.policy, nil
	}

	p, err := s.repo.GetByCompanyID(ctx, companyID)
	if err != nil {
		return domain.Policy{}, err
	}

	s.mu.Lock()
	s.entries[companyID] = cacheEntry{policy: p, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()

	return p, nil
}

// Invalidate drops the cached snapshot for a tenant, forcing the next Get to
// read through.
func (s *CachedStore) Invalidate(companyID string) {
	s.mu.Lock()
	delete(s.entries, companyID)
	s.mu.Unlock()
}
