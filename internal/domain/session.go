package domain

import "time"

type (
	SessionID string
	GroupID   string
)

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

type MediaType string

const (
	MediaScreen MediaType = "screen"
	MediaCamera MediaType = "camera"
	MediaBoth   MediaType = "both"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaScreen, MediaCamera, MediaBoth:
		return true
	}
	return false
}

// AudioEnabled derives the audio default from the media type:
// pure screen capture starts muted, anything with a camera carries audio.
func (m MediaType) AudioEnabled() bool {
	return m == MediaCamera || m == MediaBoth
}

// ShareSession tracks one sharer's broadcast and its viewer set.
// Status is terminal once ended; a replaced session is ended, never reused.
type ShareSession struct {
	ID           SessionID           `json:"id"`
	SharerID     UserID              `json:"sharer_id"`
	GroupID      GroupID             `json:"group_id,omitempty"`
	Status       SessionStatus       `json:"status"`
	StartTime    time.Time           `json:"start_time"`
	EndTime      *time.Time          `json:"end_time,omitempty"`
	Viewers      map[UserID]struct{} `json:"-"`
	MediaType    MediaType           `json:"media_type"`
	AudioEnabled bool                `json:"audio_enabled"`
}

// SessionView is the wire/API shape of a session (viewer set as a list).
type SessionView struct {
	ID           SessionID     `json:"id"`
	SharerID     UserID        `json:"sharer_id"`
	GroupID      GroupID       `json:"group_id,omitempty"`
	Status       SessionStatus `json:"status"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      *time.Time    `json:"end_time,omitempty"`
	Viewers      []UserID      `json:"viewers"`
	MediaType    MediaType     `json:"media_type"`
	AudioEnabled bool          `json:"audio_enabled"`
}

func (s *ShareSession) View() SessionView {
	return SessionView{
		ID:           s.ID,
		SharerID:     s.SharerID,
		GroupID:      s.GroupID,
		Status:       s.Status,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Viewers:      s.ViewerList(),
		MediaType:    s.MediaType,
		AudioEnabled: s.AudioEnabled,
	}
}

// ViewerList is a stable-for-JSON view of the viewer set, order unspecified.
func (s *ShareSession) ViewerList() []UserID {
	out := make([]UserID, 0, len(s.Viewers))
	for v := range s.Viewers {
		out = append(out, v)
	}
	return out
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s *ShareSession) Clone() *ShareSession {
	cp := *s
	cp.Viewers = make(map[UserID]struct{}, len(s.Viewers))
	for v := range s.Viewers {
		cp.Viewers[v] = struct{}{}
	}
	if s.EndTime != nil {
		t := *s.EndTime
		cp.EndTime = &t
	}
	return &cp
}
