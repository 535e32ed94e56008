package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

// MemorySessionRepository - process-local SessionRepository, sessions older than ttl read as missing.
type MemorySessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]entity.Session
}

func NewMemorySessionRepository(ttl time.Duration, now func() time.Time) *MemorySessionRepository {
	if now == nil {
		now = time.Now
	}

	return &MemorySessionRepository{
		ttl:      ttl,
		now:      now,
		sessions: map[string]entity.Session{},
	}
}

func (that *MemorySessionRepository) expired(session entity.Session) bool {
	return that.ttl > 0 && that.now().Sub(session.UpdatedAt) > that.ttl
}

func (that *MemorySessionRepository) Get(_ context.Context, groupID string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[groupID]
	if !ok || that.expired(session) {
		return nil, apperror.ErrSessionNotFound
	}

	session.State = slices.Clone(session.State)

	return &session, nil
}

func (that *MemorySessionRepository) Save(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored := *session
	stored.State = slices.Clone(session.State)
	stored.UpdatedAt = that.now()
	that.sessions[session.GroupID] = stored

	return nil
}

func (that *MemorySessionRepository) Delete(_ context.Context, groupID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[groupID]
	if !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, groupID)

	if that.expired(session) {
		return apperror.ErrSessionNotFound
	}

	return nil
}

// Sweep - drops expired sessions and returns how many were removed.
func (that *MemorySessionRepository) Sweep(_ context.Context) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	removed := 0
	for groupID, session := range that.sessions {
		if that.expired(session) {
			delete(that.sessions, groupID)
			removed++
		}
	}

	return removed
}

// MemoryMembershipRepository - process-local MembershipRepository.
type MemoryMembershipRepository struct {
	mu      sync.Mutex
	groupOf map[string]string
	members map[string]map[string]struct{}
}

func NewMemoryMembershipRepository() *MemoryMembershipRepository {
	return &MemoryMembershipRepository{
		groupOf: map[string]string{},
		members: map[string]map[string]struct{}{},
	}
}

func (that *MemoryMembershipRepository) GroupOf(_ context.Context, userID string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	groupID, ok := that.groupOf[userID]
	if !ok {
		return "", apperror.ErrMemberNotFound
	}

	return groupID, nil
}

func (that *MemoryMembershipRepository) Claim(_ context.Context, userID, groupID string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.groupOf[userID]; ok {
		return false, nil
	}

	that.groupOf[userID] = groupID
	if that.members[groupID] == nil {
		that.members[groupID] = map[string]struct{}{}
	}
	that.members[groupID][userID] = struct{}{}

	return true, nil
}

func (that *MemoryMembershipRepository) Release(_ context.Context, userID, groupID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.release(userID, groupID)

	return nil
}

func (that *MemoryMembershipRepository) release(userID, groupID string) {
	if that.groupOf[userID] == groupID {
		delete(that.groupOf, userID)
	}

	delete(that.members[groupID], userID)
	if len(that.members[groupID]) == 0 {
		delete(that.members, groupID)
	}
}

func (that *MemoryMembershipRepository) Members(_ context.Context, groupID string) ([]string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members := make([]string, 0, len(that.members[groupID]))
	for userID := range that.members[groupID] {
		members = append(members, userID)
	}
	slices.Sort(members)

	return members, nil
}

func (that *MemoryMembershipRepository) ReleaseGroup(_ context.Context, groupID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	for userID := range that.members[groupID] {
		that.release(userID, groupID)
	}

	return nil
}
