package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/app"
	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
)

// Server→client push event types.
const (
	EventShareStarted       = "screen-share-started"
	EventShareEnded         = "screen-share-ended"
	EventViewerJoined       = "viewer-joined"
	EventViewerLeft         = "viewer-left"
	EventMediaConfigUpdated = "media-config-updated"
)

type SessionEvent struct {
	Type    string             `json:"type"`
	Session domain.SessionView `json:"session"`
}

type ViewerEvent struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	ViewerID  domain.UserID    `json:"viewer_id"`
}

type MediaConfigEvent struct {
	Type   string             `json:"type"`
	Config domain.MediaConfig `json:"config"`
}

func eventType(v any) string {
	switch e := v.(type) {
	case SessionEvent:
		return e.Type
	case ViewerEvent:
		return e.Type
	case MediaConfigEvent:
		return e.Type
	}
	return "unknown"
}

// broadcastRoom fans an event out to one session room and applies the
// backpressure policy to connections that could not take the frame.
func (o *Orchestrator) broadcastRoom(roomID core.RoomID, v any) {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return
	}
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal event")
		return
	}
	res := room.Broadcast(core.Frame(frame))
	if o.Metrics != nil {
		o.Metrics.EventsBroadcast.WithLabelValues(eventType(v)).Inc()
	}
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			room.RemoveMember(slow)
			if ep, ok := o.Registry.EndpointOf(slow); ok {
				ep.Close()
			}
		case app.MarkSlow, app.DropFrame, app.NoAction:
		}
	}
}

// broadcastAll pushes an event to every registered connection, regardless
// of room membership. Used for process-wide config changes.
func (o *Orchestrator) broadcastAll(v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal event")
		return
	}
	for _, ep := range o.Registry.Endpoints() {
		_ = ep.TrySend(core.Frame(frame))
	}
	if o.Metrics != nil {
		o.Metrics.EventsBroadcast.WithLabelValues(eventType(v)).Inc()
	}
}
