// Package orch is the gateway orchestration: it owns the command surface and
// drives the registry, session store, link store, relay, and rooms. Adapters
// translate wire frames into these calls and never touch the stores directly.
package orch

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/app"
	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
	"github.com/mentorhub/signaling/internal/metrics"
)

var ErrNotGroupMember = errors.New("not a member of the session group")

type Orchestrator struct {
	Registry *app.Registry
	Sessions *app.SessionStore
	Links    *app.LinkStore
	Rooms    core.RoomManager
	Relay    *app.Relay
	Gate     app.MembershipGate
	Media    *app.MediaConfigStore
	Policy   app.Policy
	Metrics  *metrics.Set
}

// Connect registers an authenticated connection. Authentication itself
// happens in the adapter before this is called.
func (o *Orchestrator) Connect(cid core.ConnID, uid domain.UserID, conn core.SignalConnection) {
	o.Registry.Register(cid, uid, conn)
	if o.Metrics != nil {
		o.Metrics.ConnectedClients.Set(float64(o.Registry.ConnectionCount()))
	}
}

// Disconnect unregisters the connection and, when it was the user's last
// one, cascades: the user's active sharer session is ended and their viewer
// memberships are removed, with the matching broadcasts. A user with another
// live device keeps all session state.
func (o *Orchestrator) Disconnect(cid core.ConnID) {
	uid, last, ok := o.Registry.Unregister(cid)
	if o.Metrics != nil {
		o.Metrics.ConnectedClients.Set(float64(o.Registry.ConnectionCount()))
	}
	if !ok {
		return
	}

	o.detachFromRooms(cid)

	if !last {
		return
	}

	if ended := o.Sessions.EndSessionBySharer(uid); ended != nil {
		o.Links.CloseAllForSharer(uid)
		o.finishSessionRoom(ended)
		log.Info().Str("module", "orch").Str("user", string(uid)).Str("session", string(ended.ID)).Msg("ended session after sharer disconnect")
	}

	for _, sid := range o.Sessions.SessionsWithViewer(uid) {
		if !o.Sessions.RemoveViewer(sid, uid) {
			continue
		}
		if sess, ok := o.Sessions.Get(sid); ok {
			o.Links.Close(sess.SharerID, uid)
		}
		o.broadcastRoom(core.RoomID(sid), ViewerEvent{
			Type:      EventViewerLeft,
			SessionID: sid,
			ViewerID:  uid,
		})
	}
	o.updateSessionGauge()
}

// detachFromRooms drops the connection from every room it joined.
func (o *Orchestrator) detachFromRooms(cid core.ConnID) {
	for _, info := range o.Rooms.List() {
		if room, ok := o.Rooms.Get(info.ID); ok {
			room.RemoveMember(cid)
		}
	}
}

func (o *Orchestrator) updateSessionGauge() {
	if o.Metrics != nil {
		o.Metrics.ActiveSessions.Set(float64(len(o.Sessions.ActiveSessions())))
	}
}
