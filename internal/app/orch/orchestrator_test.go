package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/signaling/internal/app"
	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// eventTypes decodes the type field of every frame the connection received.
func (f *fakeConn) eventTypes(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		var env struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(fr, &env))
		out = append(out, env.Type)
	}
	return out
}

func newTestOrchestrator() *Orchestrator {
	reg := app.NewRegistry()
	return &Orchestrator{
		Registry: reg,
		Sessions: app.NewSessionStore(),
		Links:    app.NewLinkStore(),
		Rooms:    app.NewRoomManager(),
		Relay:    app.NewRelay(reg),
		Gate:     app.AllowAllGate{},
		Media: app.NewMediaConfigStore(domain.MediaConfig{
			Video: domain.VideoConfig{Width: 1280, Height: 720, FrameRate: 30},
		}),
		Policy: app.SimplePolicy{},
	}
}

func TestStartShareBroadcastsToRoom(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)

	sess := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)
	require.NotNil(t, sess)
	assert.Equal(t, domain.SessionActive, sess.Status)

	assert.Contains(t, sharer.eventTypes(t), EventShareStarted)

	room, ok := o.Rooms.Get(core.RoomID(sess.ID))
	require.True(t, ok)
	assert.Equal(t, 1, room.MemberCount())
}

func TestStartShareReplaceEndsOldSession(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	first := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)
	ok, err := o.JoinShare(context.Background(), "c-v1", first.ID, "v1")
	require.NoError(t, err)
	require.True(t, ok)

	second := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)
	require.NotEqual(t, first.ID, second.ID)

	// Viewer of the replaced session saw its ended event.
	assert.Contains(t, viewer.eventTypes(t), EventShareEnded)

	// Old room torn down, only the new session is active.
	_, stillThere := o.Rooms.Get(core.RoomID(first.ID))
	assert.False(t, stillThere)
	active := o.ActiveSessions()
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}

func TestJoinShareBroadcastsViewerJoined(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	sess := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)

	ok, err := o.JoinShare(context.Background(), "c-v1", sess.ID, "v1")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, sharer.eventTypes(t), EventViewerJoined)
	assert.Contains(t, viewer.eventTypes(t), EventViewerJoined)

	room, _ := o.Rooms.Get(core.RoomID(sess.ID))
	assert.Equal(t, 2, room.MemberCount())
}

func TestJoinShareMissingSessionIsSilentNoop(t *testing.T) {
	o := newTestOrchestrator()
	viewer := &fakeConn{}
	o.Connect("c-v1", "v1", viewer)

	ok, err := o.JoinShare(context.Background(), "c-v1", "missing", "v1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, viewer.eventTypes(t), "no broadcast on failed join")
}

func TestJoinShareGateDenies(t *testing.T) {
	o := newTestOrchestrator()
	gate := app.NewStaticGate()
	gate.Add("g1", "member")
	o.Gate = gate

	sharer := &fakeConn{}
	outsider := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-x", "outsider", outsider)

	sess := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)

	ok, err := o.JoinShare(context.Background(), "c-x", sess.ID, "outsider")
	assert.ErrorIs(t, err, ErrNotGroupMember)
	assert.False(t, ok)

	got, _ := o.Sessions.Get(sess.ID)
	assert.Empty(t, got.Viewers)
}

func TestJoinShareUngroupedSessionSkipsGate(t *testing.T) {
	o := newTestOrchestrator()
	gate := app.NewStaticGate() // empty allowlist
	o.Gate = gate

	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	sess := o.StartShare("c-m1", "m1", "", domain.MediaScreen)
	ok, err := o.JoinShare(context.Background(), "c-v1", sess.ID, "v1")
	require.NoError(t, err)
	assert.True(t, ok, "no group id means no gate call")
}

func TestEndShareBroadcastsAndStopsRoom(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	sess := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)
	_, err := o.JoinShare(context.Background(), "c-v1", sess.ID, "v1")
	require.NoError(t, err)

	ended := o.EndShare(sess.ID)
	require.NotNil(t, ended)
	assert.Equal(t, domain.SessionEnded, ended.Status)
	assert.NotNil(t, ended.EndTime)

	assert.Contains(t, viewer.eventTypes(t), EventShareEnded)
	_, stillThere := o.Rooms.Get(core.RoomID(sess.ID))
	assert.False(t, stillThere)
	assert.Empty(t, o.ActiveSessions())

	assert.Nil(t, o.EndShare(sess.ID), "second end is a no-op")
}

func TestLeaveShare(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	sess := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)
	_, err := o.JoinShare(context.Background(), "c-v1", sess.ID, "v1")
	require.NoError(t, err)

	assert.True(t, o.LeaveShare("c-v1", sess.ID, "v1"))
	assert.Contains(t, sharer.eventTypes(t), EventViewerLeft)

	room, _ := o.Rooms.Get(core.RoomID(sess.ID))
	assert.Equal(t, 1, room.MemberCount())

	assert.False(t, o.LeaveShare("c-v1", sess.ID, "v1"), "second leave is a no-op")
	assert.False(t, o.LeaveShare("c-v1", sess.ID, "v2"), "never-joined viewer")
}

func TestRelaySignalTracksPeerLinks(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)

	offer := domain.Signal{
		Type:         domain.SignalOffer,
		SDP:          &webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0..."},
		SenderID:     "m1",
		TargetUserID: "v1",
		MediaType:    domain.MediaScreen,
	}
	assert.Equal(t, 1, o.RelaySignal(offer))

	link, ok := o.Links.Get("m1", "v1")
	require.True(t, ok)
	assert.Equal(t, domain.LinkConnecting, link.Status)

	answer := domain.Signal{
		Type:         domain.SignalAnswer,
		SDP:          &webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0..."},
		SenderID:     "v1",
		TargetUserID: "m1",
	}
	assert.Equal(t, 1, o.RelaySignal(answer))

	link, _ = o.Links.Get("m1", "v1")
	assert.Equal(t, domain.LinkConnected, link.Status)
}

func TestRelaySignalUnknownTargetDropsQuietly(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)

	offer := domain.Signal{
		Type:         domain.SignalOffer,
		SDP:          &webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0..."},
		SenderID:     "m1",
		TargetUserID: "ghost",
	}
	assert.NotPanics(t, func() {
		assert.Equal(t, 0, o.RelaySignal(offer))
	})
}

func TestDisconnectCascadesForSharer(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	sess := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)
	_, err := o.JoinShare(context.Background(), "c-v1", sess.ID, "v1")
	require.NoError(t, err)

	o.Disconnect("c-m1")

	assert.Empty(t, o.ActiveSessions(), "sharer's session ends with their last connection")
	assert.Contains(t, viewer.eventTypes(t), EventShareEnded)
}

func TestDisconnectCascadesForViewer(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	sess := o.StartShare("c-m1", "m1", "g1", domain.MediaScreen)
	_, err := o.JoinShare(context.Background(), "c-v1", sess.ID, "v1")
	require.NoError(t, err)

	o.Disconnect("c-v1")

	got, _ := o.Sessions.Get(sess.ID)
	assert.Empty(t, got.Viewers)
	assert.Contains(t, sharer.eventTypes(t), EventViewerLeft)
}

func TestDisconnectWithSecondDeviceDoesNotCascade(t *testing.T) {
	o := newTestOrchestrator()
	phone := &fakeConn{}
	laptop := &fakeConn{}
	o.Connect("c-phone", "m1", phone)
	o.Connect("c-laptop", "m1", laptop)

	o.StartShare("c-laptop", "m1", "g1", domain.MediaScreen)

	o.Disconnect("c-phone")
	assert.Len(t, o.ActiveSessions(), 1, "session survives while another device is live")

	o.Disconnect("c-laptop")
	assert.Empty(t, o.ActiveSessions())
}

func TestUpdateMediaConfigBroadcastsToEveryone(t *testing.T) {
	o := newTestOrchestrator()
	a := &fakeConn{}
	b := &fakeConn{}
	o.Connect("c-a", "a", a)
	o.Connect("c-b", "b", b)

	width := 1920
	var p domain.MediaConfigPatch
	p.Video = &struct {
		Width     *int `json:"width,omitempty"`
		Height    *int `json:"height,omitempty"`
		FrameRate *int `json:"frame_rate,omitempty"`
	}{Width: &width}

	got := o.UpdateMediaConfig(p)
	assert.Equal(t, 1920, got.Video.Width)
	assert.Contains(t, a.eventTypes(t), EventMediaConfigUpdated)
	assert.Contains(t, b.eventTypes(t), EventMediaConfigUpdated)
}

func TestBackpressureKicksSlowRoomMember(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	slow := &fakeConn{fail: true}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-slow", "v1", slow)

	sess := o.StartShare("c-m1", "m1", "", domain.MediaScreen)
	_, err := o.JoinShare(context.Background(), "c-slow", sess.ID, "v1")
	require.NoError(t, err)

	// The join broadcast already fails for the slow member; policy kicks it.
	room, _ := o.Rooms.Get(core.RoomID(sess.ID))
	assert.Equal(t, 1, room.MemberCount())
	assert.True(t, slow.closed)
}

func TestKickViewerLeavesRoomAndBroadcasts(t *testing.T) {
	o := newTestOrchestrator()
	sharer := &fakeConn{}
	viewer := &fakeConn{}
	o.Connect("c-m1", "m1", sharer)
	o.Connect("c-v1", "v1", viewer)

	sess := o.StartShare("c-m1", "m1", "", domain.MediaScreen)
	ok, err := o.JoinShare(context.Background(), "c-v1", sess.ID, "v1")
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, o.KickViewer(sess.ID, "v1"))

	// Viewer set and room membership both shrink.
	got, _ := o.Sessions.Get(sess.ID)
	assert.Empty(t, got.Viewers)
	room, _ := o.Rooms.Get(core.RoomID(sess.ID))
	assert.Equal(t, 1, room.MemberCount())

	// The sharer learns about the kick; the kicked connection stops
	// receiving room traffic.
	assert.Contains(t, sharer.eventTypes(t), EventViewerLeft)
	before := len(viewer.eventTypes(t))
	o.broadcastRoom(core.RoomID(sess.ID), SessionEvent{Type: EventShareStarted, Session: sess.View()})
	assert.Len(t, viewer.eventTypes(t), before)

	// Absent viewers are a 404 for the caller.
	assert.False(t, o.KickViewer(sess.ID, "v1"))
}
