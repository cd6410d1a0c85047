package core

import (
	"sync"

	"github.com/mentorhub/signaling/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomMember struct {
	userID domain.UserID
	conn   SignalConnection
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	id     RoomID
	mu     sync.RWMutex
	byConn map[ConnID]roomMember
}

func NewRoomService(id RoomID) RoomService {
	return &roomImpl{
		id:     id,
		byConn: make(map[ConnID]roomMember),
	}
}

func (r *roomImpl) ID() RoomID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

func (r *roomImpl) AddMember(cid ConnID, uid domain.UserID, conn SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byConn[cid] = roomMember{userID: uid, conn: conn}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(cid)).Str("user", string(uid)).Msg("member added")
}

func (r *roomImpl) RemoveMember(cid ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, cid)
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(cid)).Msg("member removed")
}

func (r *roomImpl) Broadcast(data Frame) PublishResult {
	return r.broadcast("", data)
}

func (r *roomImpl) BroadcastExcept(from ConnID, data Frame) PublishResult {
	return r.broadcast(from, data)
}

func (r *roomImpl) broadcast(from ConnID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for cid, m := range r.byConn {
		if cid == from {
			continue
		}
		if err := m.conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, cid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.byConn))
	for cid, m := range r.byConn {
		out = append(out, MemberDTO{ConnID: cid, UserID: m.userID})
	}
	return out
}
