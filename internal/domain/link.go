package domain

import "time"

type LinkID string

type LinkStatus string

const (
	LinkConnecting   LinkStatus = "connecting"
	LinkConnected    LinkStatus = "connected"
	LinkDisconnected LinkStatus = "disconnected"
)

// PeerLink is the handshake-level pairing between one sharer and one viewer.
// It is distinct from session membership: a link exists once an offer is
// relayed between the pair, regardless of room state.
type PeerLink struct {
	ID           LinkID     `json:"id"`
	SharerID     UserID     `json:"sharer_id"`
	ViewerID     UserID     `json:"viewer_id"`
	Status       LinkStatus `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	MediaType    MediaType  `json:"media_type"`
	AudioEnabled bool       `json:"audio_enabled"`
}
