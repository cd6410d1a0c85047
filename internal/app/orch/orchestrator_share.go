package orch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
)

// StartShare creates (or replaces) the sharer's session, joins the invoking
// connection to the session room, and broadcasts the started event. A
// replaced session gets its ended event on the old room first.
func (o *Orchestrator) StartShare(cid core.ConnID, sharerID domain.UserID, groupID domain.GroupID, mediaType domain.MediaType) *domain.ShareSession {
	created, replaced := o.Sessions.StartSession(sharerID, groupID, mediaType)
	if replaced != nil {
		o.Links.CloseAllForSharer(sharerID)
		o.finishSessionRoom(replaced)
	}

	room := o.Rooms.GetOrCreate(core.RoomID(created.ID))
	if conn, ok := o.Registry.EndpointOf(cid); ok {
		room.AddMember(cid, sharerID, conn)
	}
	o.broadcastRoom(room.ID(), SessionEvent{Type: EventShareStarted, Session: created.View()})
	o.updateSessionGauge()

	log.Info().Str("module", "orch").Str("session", string(created.ID)).Str("sharer", string(sharerID)).Msg("share started")
	return created
}

// EndShare ends a session by id. Nil means the session was missing or
// already ended — an idempotent no-op for the caller.
func (o *Orchestrator) EndShare(sessionID domain.SessionID) *domain.ShareSession {
	ended := o.Sessions.EndSession(sessionID)
	if ended == nil {
		return nil
	}
	o.Links.CloseAllForSharer(ended.SharerID)
	o.finishSessionRoom(ended)
	o.updateSessionGauge()
	return ended
}

// finishSessionRoom broadcasts the ended event and tears the room down.
func (o *Orchestrator) finishSessionRoom(ended *domain.ShareSession) {
	roomID := core.RoomID(ended.ID)
	o.broadcastRoom(roomID, SessionEvent{Type: EventShareEnded, Session: ended.View()})
	o.Rooms.StopRoom(roomID)
}

// JoinShare adds a viewer after the membership gate admits them. The gate
// call can block on I/O, so membership insertion happens after it returns;
// AddViewer is idempotent, so an interleaved duplicate join converges to a
// single membership with one of the two calls reporting false.
func (o *Orchestrator) JoinShare(ctx context.Context, cid core.ConnID, sessionID domain.SessionID, userID domain.UserID) (bool, error) {
	sess, ok := o.Sessions.Get(sessionID)
	if !ok || sess.Status != domain.SessionActive {
		return false, nil
	}

	if sess.GroupID != "" && o.Gate != nil {
		member, err := o.Gate.IsMember(ctx, sess.GroupID, userID)
		if err != nil {
			return false, err
		}
		if !member {
			return false, ErrNotGroupMember
		}
	}

	if !o.Sessions.AddViewer(sessionID, userID) {
		return false, nil
	}

	room := o.Rooms.GetOrCreate(core.RoomID(sessionID))
	if conn, ok := o.Registry.EndpointOf(cid); ok {
		room.AddMember(cid, userID, conn)
	}
	o.broadcastRoom(room.ID(), ViewerEvent{
		Type:      EventViewerJoined,
		SessionID: sessionID,
		ViewerID:  userID,
	})
	return true, nil
}

// LeaveShare removes a viewer membership; false is a silent no-op.
func (o *Orchestrator) LeaveShare(cid core.ConnID, sessionID domain.SessionID, userID domain.UserID) bool {
	if !o.Sessions.RemoveViewer(sessionID, userID) {
		return false
	}
	if sess, ok := o.Sessions.Get(sessionID); ok {
		o.Links.Close(sess.SharerID, userID)
	}
	if room, ok := o.Rooms.Get(core.RoomID(sessionID)); ok {
		room.RemoveMember(cid)
	}
	o.broadcastRoom(core.RoomID(sessionID), ViewerEvent{
		Type:      EventViewerLeft,
		SessionID: sessionID,
		ViewerID:  userID,
	})
	return true
}

// KickViewer removes a viewer on an operator's behalf. Unlike LeaveShare
// there is no invoking connection, so every one of the user's connections
// leaves the multicast room before the viewer-left broadcast. False when
// the user was not a viewer of the session.
func (o *Orchestrator) KickViewer(sessionID domain.SessionID, userID domain.UserID) bool {
	if !o.Sessions.RemoveViewer(sessionID, userID) {
		return false
	}
	if sess, ok := o.Sessions.Get(sessionID); ok {
		o.Links.Close(sess.SharerID, userID)
	}
	if room, ok := o.Rooms.Get(core.RoomID(sessionID)); ok {
		for _, cid := range o.Registry.ConnectionsOf(userID) {
			room.RemoveMember(cid)
		}
	}
	o.broadcastRoom(core.RoomID(sessionID), ViewerEvent{
		Type:      EventViewerLeft,
		SessionID: sessionID,
		ViewerID:  userID,
	})
	log.Info().Str("module", "orch").Str("session", string(sessionID)).Str("viewer", string(userID)).Msg("viewer kicked")
	return true
}

// ActiveSessions snapshots the active session list for the requester only.
func (o *Orchestrator) ActiveSessions() []domain.SessionView {
	sessions := o.Sessions.ActiveSessions()
	out := make([]domain.SessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.View())
	}
	return out
}
