package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mentorhub/signaling/internal/domain"
)

type linkKey struct {
	sharer domain.UserID
	viewer domain.UserID
}

// LinkStore tracks handshake-level sharer↔viewer pairings independently of
// session membership. Links are created on demand when an offer is relayed
// and keyed by the pair, so a re-offer reuses the record.
type LinkStore struct {
	mu    sync.RWMutex
	links map[linkKey]*domain.PeerLink
}

func NewLinkStore() *LinkStore {
	return &LinkStore{links: make(map[linkKey]*domain.PeerLink)}
}

// Open creates the pairing record in the connecting state, or restarts an
// existing one that had disconnected.
func (s *LinkStore) Open(sharerID, viewerID domain.UserID, mediaType domain.MediaType) *domain.PeerLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := linkKey{sharer: sharerID, viewer: viewerID}
	if l, ok := s.links[key]; ok && l.Status != domain.LinkDisconnected {
		cp := *l
		return &cp
	}
	l := &domain.PeerLink{
		ID:           domain.LinkID(uuid.NewString()),
		SharerID:     sharerID,
		ViewerID:     viewerID,
		Status:       domain.LinkConnecting,
		StartTime:    time.Now(),
		MediaType:    mediaType,
		AudioEnabled: mediaType.AudioEnabled(),
	}
	s.links[key] = l
	cp := *l
	return &cp
}

// MarkConnected flips a connecting link to connected; false when the pair
// has no open link.
func (s *LinkStore) MarkConnected(sharerID, viewerID domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[linkKey{sharer: sharerID, viewer: viewerID}]
	if !ok || l.Status != domain.LinkConnecting {
		return false
	}
	l.Status = domain.LinkConnected
	return true
}

// Close marks the pairing disconnected. Idempotent.
func (s *LinkStore) Close(sharerID, viewerID domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked(linkKey{sharer: sharerID, viewer: viewerID})
}

// CloseAllForSharer disconnects every link of a sharer, used when their
// session ends.
func (s *LinkStore) CloseAllForSharer(sharerID domain.UserID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.links {
		if key.sharer == sharerID && s.closeLocked(key) {
			n++
		}
	}
	return n
}

func (s *LinkStore) closeLocked(key linkKey) bool {
	l, ok := s.links[key]
	if !ok || l.Status == domain.LinkDisconnected {
		return false
	}
	now := time.Now()
	l.Status = domain.LinkDisconnected
	l.EndTime = &now
	return true
}

// Get returns a copy of the pairing record, if present.
func (s *LinkStore) Get(sharerID, viewerID domain.UserID) (*domain.PeerLink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[linkKey{sharer: sharerID, viewer: viewerID}]
	if !ok {
		return nil, false
	}
	cp := *l
	return &cp, true
}
