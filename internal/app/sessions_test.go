package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/signaling/internal/domain"
)

func TestStartSessionReplacesExisting(t *testing.T) {
	s := NewSessionStore()

	s1, replaced := s.StartSession("m1", "g1", domain.MediaScreen)
	require.NotNil(t, s1)
	assert.Nil(t, replaced)
	assert.Equal(t, domain.SessionActive, s1.Status)
	assert.Empty(t, s1.Viewers)

	s2, replaced := s.StartSession("m1", "g1", domain.MediaScreen)
	require.NotNil(t, replaced)
	assert.Equal(t, s1.ID, replaced.ID)
	assert.Equal(t, domain.SessionEnded, replaced.Status)
	assert.NotNil(t, replaced.EndTime)
	assert.NotEqual(t, s1.ID, s2.ID)

	active := s.ActiveSessions()
	require.Len(t, active, 1)
	assert.Equal(t, s2.ID, active[0].ID)
}

func TestAtMostOneActivePerSharer(t *testing.T) {
	s := NewSessionStore()
	for i := 0; i < 5; i++ {
		s.StartSession("m1", "g1", domain.MediaScreen)
	}
	count := 0
	for _, sess := range s.ActiveSessions() {
		if sess.SharerID == "m1" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEndSessionIdempotent(t *testing.T) {
	s := NewSessionStore()
	created, _ := s.StartSession("m1", "g1", domain.MediaScreen)

	ended := s.EndSession(created.ID)
	require.NotNil(t, ended)
	assert.Equal(t, domain.SessionEnded, ended.Status)
	require.NotNil(t, ended.EndTime)

	assert.Nil(t, s.EndSession(created.ID), "second end is a nil no-op")
	assert.Nil(t, s.EndSession("missing"))
}

func TestEndSessionBySharer(t *testing.T) {
	s := NewSessionStore()
	created, _ := s.StartSession("m1", "g1", domain.MediaCamera)

	ended := s.EndSessionBySharer("m1")
	require.NotNil(t, ended)
	assert.Equal(t, created.ID, ended.ID)

	assert.Nil(t, s.EndSessionBySharer("m1"))
	assert.Nil(t, s.EndSessionBySharer("nobody"))
}

func TestAddViewerIdempotent(t *testing.T) {
	s := NewSessionStore()
	created, _ := s.StartSession("m1", "g1", domain.MediaScreen)

	assert.True(t, s.AddViewer(created.ID, "v1"))
	assert.False(t, s.AddViewer(created.ID, "v1"), "duplicate add is a no-op")

	sess, ok := s.Get(created.ID)
	require.True(t, ok)
	assert.Len(t, sess.Viewers, 1)
	assert.Contains(t, sess.Viewers, domain.UserID("v1"))
}

func TestAddViewerRejectsSharerAndEnded(t *testing.T) {
	s := NewSessionStore()
	created, _ := s.StartSession("m1", "g1", domain.MediaScreen)

	assert.False(t, s.AddViewer(created.ID, "m1"), "sharer cannot view own session")
	assert.False(t, s.AddViewer("missing", "v1"))

	s.EndSession(created.ID)
	assert.False(t, s.AddViewer(created.ID, "v1"), "ended session behaves like missing")
}

func TestRemoveViewerSymmetric(t *testing.T) {
	s := NewSessionStore()
	created, _ := s.StartSession("m1", "g1", domain.MediaScreen)
	s.AddViewer(created.ID, "v1")

	assert.False(t, s.RemoveViewer(created.ID, "v2"), "never-added viewer")
	sess, _ := s.Get(created.ID)
	assert.Len(t, sess.Viewers, 1, "viewer set unchanged")

	assert.True(t, s.RemoveViewer(created.ID, "v1"))
	assert.False(t, s.RemoveViewer(created.ID, "v1"))
	assert.False(t, s.RemoveViewer("missing", "v1"))
}

func TestActiveSessionsExcludesEnded(t *testing.T) {
	s := NewSessionStore()
	a, _ := s.StartSession("m1", "g1", domain.MediaScreen)
	b, _ := s.StartSession("m2", "g1", domain.MediaBoth)

	s.EndSession(a.ID)

	active := s.ActiveSessions()
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	s.EndSession(b.ID)
	assert.Empty(t, s.ActiveSessions())
}

func TestAudioEnabledDerivedFromMediaType(t *testing.T) {
	s := NewSessionStore()
	screen, _ := s.StartSession("m1", "g1", domain.MediaScreen)
	camera, _ := s.StartSession("m2", "g1", domain.MediaCamera)
	both, _ := s.StartSession("m3", "g1", domain.MediaBoth)

	assert.False(t, screen.AudioEnabled)
	assert.True(t, camera.AudioEnabled)
	assert.True(t, both.AudioEnabled)
}

func TestSessionsWithViewer(t *testing.T) {
	s := NewSessionStore()
	a, _ := s.StartSession("m1", "g1", domain.MediaScreen)
	b, _ := s.StartSession("m2", "g1", domain.MediaScreen)
	s.AddViewer(a.ID, "v1")
	s.AddViewer(b.ID, "v1")
	s.AddViewer(b.ID, "v2")

	ids := s.SessionsWithViewer("v1")
	assert.ElementsMatch(t, []domain.SessionID{a.ID, b.ID}, ids)
	assert.Empty(t, s.SessionsWithViewer("ghost"))
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := NewSessionStore()
	created, _ := s.StartSession("m1", "g1", domain.MediaScreen)

	snap, _ := s.Get(created.ID)
	snap.Viewers["intruder"] = struct{}{}

	fresh, _ := s.Get(created.ID)
	assert.Empty(t, fresh.Viewers, "mutating a snapshot must not touch the store")
}
