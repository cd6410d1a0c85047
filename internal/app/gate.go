package app

import (
	"context"
	"sync"

	"github.com/mentorhub/signaling/internal/domain"
)

// MembershipGate answers "is user U a member of group G". The real
// implementation lives in the platform CRUD backend; it may block on I/O,
// hence the context.
type MembershipGate interface {
	IsMember(ctx context.Context, groupID domain.GroupID, userID domain.UserID) (bool, error)
}

// AllowAllGate admits everyone. Used when no membership backend is wired.
type AllowAllGate struct{}

func (AllowAllGate) IsMember(context.Context, domain.GroupID, domain.UserID) (bool, error) {
	return true, nil
}

// StaticGate is an in-memory allowlist, useful in tests and small deploys.
type StaticGate struct {
	mu      sync.RWMutex
	members map[domain.GroupID]map[domain.UserID]struct{}
}

func NewStaticGate() *StaticGate {
	return &StaticGate{members: make(map[domain.GroupID]map[domain.UserID]struct{})}
}

func (g *StaticGate) Add(groupID domain.GroupID, userID domain.UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.members[groupID]
	if !ok {
		set = make(map[domain.UserID]struct{})
		g.members[groupID] = set
	}
	set[userID] = struct{}{}
}

func (g *StaticGate) IsMember(_ context.Context, groupID domain.GroupID, userID domain.UserID) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.members[groupID][userID]
	return ok, nil
}
