package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
)

type connEntry struct {
	userID domain.UserID
	conn   core.SignalConnection
}

// Registry maps live transport connections to verified user identities,
// both directions, with multi-device support. Pure bookkeeping; "not found"
// is a normal empty result, never an error.
type Registry struct {
	mu     sync.RWMutex
	byConn map[core.ConnID]connEntry
	byUser map[domain.UserID]map[core.ConnID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[core.ConnID]connEntry),
		byUser: make(map[domain.UserID]map[core.ConnID]struct{}),
	}
}

// Register is idempotent; re-registering the same conn rebinds it.
func (r *Registry) Register(cid core.ConnID, uid domain.UserID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byConn[cid]; ok && prev.userID != uid {
		r.dropUserConn(prev.userID, cid)
	}
	r.byConn[cid] = connEntry{userID: uid, conn: conn}
	set, ok := r.byUser[uid]
	if !ok {
		set = make(map[core.ConnID]struct{})
		r.byUser[uid] = set
	}
	set[cid] = struct{}{}
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Str("user", string(uid)).Msg("registered connection")
}

// Unregister removes the connection from both maps. It reports the owning
// user and whether this was the user's last live connection.
func (r *Registry) Unregister(cid core.ConnID) (uid domain.UserID, last bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.byConn[cid]
	if !ok {
		return "", false, false
	}
	delete(r.byConn, cid)
	last = r.dropUserConn(entry.userID, cid)
	log.Info().Str("module", "app.registry").Str("conn", string(cid)).Str("user", string(entry.userID)).Bool("last", last).Msg("unregistered connection")
	return entry.userID, last, true
}

// dropUserConn must be called under mu. Reports whether the user entry was
// dropped entirely.
func (r *Registry) dropUserConn(uid domain.UserID, cid core.ConnID) bool {
	set, ok := r.byUser[uid]
	if !ok {
		return false
	}
	delete(set, cid)
	if len(set) == 0 {
		delete(r.byUser, uid)
		return true
	}
	return false
}

func (r *Registry) UserOf(cid core.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byConn[cid]
	return entry.userID, ok
}

func (r *Registry) ConnectionsOf(uid domain.UserID) []core.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ConnID, 0, len(r.byUser[uid]))
	for cid := range r.byUser[uid] {
		out = append(out, cid)
	}
	return out
}

func (r *Registry) EndpointOf(cid core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byConn[cid]
	if !ok {
		return nil, false
	}
	return entry.conn, true
}

// EndpointsOf returns the live transports of all the user's connections,
// possibly empty.
func (r *Registry) EndpointsOf(uid domain.UserID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.byUser[uid]))
	for cid := range r.byUser[uid] {
		if entry, ok := r.byConn[cid]; ok {
			out = append(out, entry.conn)
		}
	}
	return out
}

// Endpoints snapshots every live transport, for whole-process broadcasts.
func (r *Registry) Endpoints() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.byConn))
	for _, entry := range r.byConn {
		out = append(out, entry.conn)
	}
	return out
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
