package service

import (
	"sync"
	"time"

	"github.com/noah-isme/shift-scheduler-api/internal/dto"
)

type scheduleProposal struct {
	ProposalID   string
	DepartmentID string
	StartDate    time.Time
	EndDate      time.Time
	Strict       bool
	AsOf         time.Time
	Drafts       []dto.AssignmentDraft
	Preview      dto.GenerateScheduleResponse
	RequestedAt  time.Time
}

// ProposalStore keeps generated previews in memory until they are committed or expire.
type ProposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]scheduleProposal
}

// NewProposalStore builds a store whose entries live for ttl.
func NewProposalStore(ttl time.Duration) *ProposalStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ProposalStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]scheduleProposal),
	}
}

// TTL reports how long proposals are retained.
func (s *ProposalStore) TTL() time.Duration {
	return s.ttl
}

func (s *ProposalStore) save(proposal scheduleProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
	s.evictExpiredLocked()
}

func (s *ProposalStore) get(id string) (scheduleProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return scheduleProposal{}, false
	}
	if s.now().Sub(proposal.RequestedAt) > s.ttl {
		s.delete(id)
		return scheduleProposal{}, false
	}
	return proposal, true
}

func (s *ProposalStore) delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *ProposalStore) evictExpiredLocked() {
	now := s.now()
	for id, p := range s.items {
		if now.Sub(p.RequestedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}

// keyedMutex serialises work per key while letting distinct keys proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
