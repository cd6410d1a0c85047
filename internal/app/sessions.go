package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/domain"
)

// SessionStore is the authoritative in-memory state of share sessions.
// All mutations happen under one lock so replace-on-start and the
// at-most-one-active-session-per-sharer invariant cannot interleave.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.ShareSession
	bySharer map[domain.UserID]domain.SessionID // active session only
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.ShareSession),
		bySharer: make(map[domain.UserID]domain.SessionID),
	}
}

// StartSession ends any active session owned by the sharer first
// (replace semantics, not rejection), then creates a fresh active one.
// It returns the new session and, when a replacement happened, the
// session that was ended.
func (s *SessionStore) StartSession(sharerID domain.UserID, groupID domain.GroupID, mediaType domain.MediaType) (created, replaced *domain.ShareSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prevID, ok := s.bySharer[sharerID]; ok {
		replaced = s.endLocked(prevID)
	}

	sess := &domain.ShareSession{
		ID:           domain.SessionID(uuid.NewString()),
		SharerID:     sharerID,
		GroupID:      groupID,
		Status:       domain.SessionActive,
		StartTime:    time.Now(),
		Viewers:      make(map[domain.UserID]struct{}),
		MediaType:    mediaType,
		AudioEnabled: mediaType.AudioEnabled(),
	}
	s.sessions[sess.ID] = sess
	s.bySharer[sharerID] = sess.ID

	log.Info().Str("module", "app.sessions").Str("session", string(sess.ID)).Str("sharer", string(sharerID)).Str("media", string(mediaType)).Msg("session started")
	return sess.Clone(), replaced
}

// EndSession transitions a session to ended. Missing or already-ended
// sessions return nil (idempotent no-op, not an error).
func (s *SessionStore) EndSession(id domain.SessionID) *domain.ShareSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endLocked(id)
}

func (s *SessionStore) endLocked(id domain.SessionID) *domain.ShareSession {
	sess, ok := s.sessions[id]
	if !ok || sess.Status != domain.SessionActive {
		return nil
	}
	now := time.Now()
	sess.Status = domain.SessionEnded
	sess.EndTime = &now
	delete(s.bySharer, sess.SharerID)
	log.Info().Str("module", "app.sessions").Str("session", string(id)).Str("sharer", string(sess.SharerID)).Msg("session ended")
	return sess.Clone()
}

// EndSessionBySharer ends the sharer's active session, if any.
func (s *SessionStore) EndSessionBySharer(sharerID domain.UserID) *domain.ShareSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.bySharer[sharerID]
	if !ok {
		return nil
	}
	return s.endLocked(id)
}

// AddViewer inserts the viewer into an active session. Returns false on a
// missing or ended session, a duplicate, or the sharer joining themselves.
func (s *SessionStore) AddViewer(id domain.SessionID, uid domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.Status != domain.SessionActive {
		return false
	}
	if uid == sess.SharerID {
		return false
	}
	if _, dup := sess.Viewers[uid]; dup {
		return false
	}
	sess.Viewers[uid] = struct{}{}
	log.Info().Str("module", "app.sessions").Str("session", string(id)).Str("viewer", string(uid)).Msg("viewer added")
	return true
}

// RemoveViewer removes a viewer membership; false if session or membership
// does not exist.
func (s *SessionStore) RemoveViewer(id domain.SessionID, uid domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	if _, member := sess.Viewers[uid]; !member {
		return false
	}
	delete(sess.Viewers, uid)
	log.Info().Str("module", "app.sessions").Str("session", string(id)).Str("viewer", string(uid)).Msg("viewer removed")
	return true
}

// ActiveSessionOf returns the sharer's active session, if any.
func (s *SessionStore) ActiveSessionOf(sharerID domain.UserID) (*domain.ShareSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySharer[sharerID]
	if !ok {
		return nil, false
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// Get returns a snapshot of one session, ended or not.
func (s *SessionStore) Get(id domain.SessionID) (*domain.ShareSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// ActiveSessions snapshots all active sessions, in no particular order.
// Ended sessions never appear.
func (s *SessionStore) ActiveSessions() []*domain.ShareSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.ShareSession, 0, len(s.bySharer))
	for _, id := range s.bySharer {
		if sess, ok := s.sessions[id]; ok {
			out = append(out, sess.Clone())
		}
	}
	return out
}

// SessionsWithViewer lists active sessions in which the user is a viewer.
// Used by the disconnect cascade.
func (s *SessionStore) SessionsWithViewer(uid domain.UserID) []domain.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SessionID
	for _, id := range s.bySharer {
		sess, ok := s.sessions[id]
		if !ok {
			continue
		}
		if _, member := sess.Viewers[uid]; member {
			out = append(out, id)
		}
	}
	return out
}
