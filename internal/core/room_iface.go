package core

import "github.com/mentorhub/signaling/internal/domain"

// RoomID names a multicast group. Session rooms use the session id.
type RoomID string

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []ConnID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ConnID ConnID        `json:"conn_id"`
	UserID domain.UserID `json:"user_id"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ID() RoomID
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(cid ConnID, uid domain.UserID, conn SignalConnection)
	RemoveMember(cid ConnID)
	Broadcast(data Frame) PublishResult
	BroadcastExcept(from ConnID, data Frame) PublishResult
}

type RoomInfo struct {
	ID          RoomID `json:"id"`
	MemberCount int    `json:"member_count"`
}

type RoomManager interface {
	GetOrCreate(id RoomID) RoomService
	Get(id RoomID) (RoomService, bool)
	List() []RoomInfo
	StopRoom(id RoomID)
}
