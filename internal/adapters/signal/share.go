package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/app/orch"
	"github.com/mentorhub/signaling/internal/domain"
)

// verifyUserField guards against a payload claiming someone else's
// identity: the verified connection identity always wins.
func (ctl *SignalWSController) verifyUserField(id connIdentity, c *WsSignalConn, claimed domain.UserID) bool {
	if claimed != "" && claimed != id.UserID {
		log.Warn().Str("module", "signal").Str("conn", string(id.ConnID)).Str("claimed", string(claimed)).Str("verified", string(id.UserID)).Msg("identity mismatch")
		ctl.sendError(c, "identity mismatch")
		return false
	}
	return true
}

func (ctl *SignalWSController) handleStartShare(id connIdentity, c *WsSignalConn, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		UserID    domain.UserID    `json:"user_id"`
		GroupID   domain.GroupID   `json:"group_id,omitempty"`
		MediaType domain.MediaType `json:"media_type,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad start payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if !ctl.verifyUserField(id, c, p.UserID) {
		return
	}
	mediaType := p.MediaType
	if mediaType == "" {
		mediaType = domain.MediaScreen
	}
	if !mediaType.Valid() {
		ctl.sendError(c, "invalid media type")
		return
	}

	// The sharer is in the session room, so the started broadcast is also
	// their acknowledgement; no separate reply.
	sess := ctl.Orch.StartShare(id.ConnID, id.UserID, p.GroupID, mediaType)
	log.Info().Str("module", "signal").Str("session", string(sess.ID)).Str("sharer", string(id.UserID)).Msg("share started")
}

func (ctl *SignalWSController) handleEndShare(id connIdentity, c *WsSignalConn, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		SessionID domain.SessionID `json:"session_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}

	// Only the sharer may end their session by id.
	if sess, ok := ctl.Orch.Sessions.Get(p.SessionID); ok && sess.SharerID != id.UserID {
		ctl.sendError(c, "not session owner")
		return
	}

	if ended := ctl.Orch.EndShare(p.SessionID); ended == nil {
		log.Debug().Str("module", "signal").Str("session", string(p.SessionID)).Msg("end on missing or ended session, no-op")
	}
}

// handleJoinShare runs the membership gate under the connection context, so
// a lookup blocked on I/O unwinds with the connection or server shutdown.
func (ctl *SignalWSController) handleJoinShare(ctx context.Context, id connIdentity, c *WsSignalConn, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		SessionID domain.SessionID `json:"session_id"`
		UserID    domain.UserID    `json:"user_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	if !ctl.verifyUserField(id, c, p.UserID) {
		return
	}
	if ctl.JoinLimiter != nil && !ctl.JoinLimiter.Allow(id.UserID) {
		ctl.sendError(c, "too many join attempts")
		return
	}

	ok, err := ctl.Orch.JoinShare(ctx, id.ConnID, p.SessionID, id.UserID)
	if errors.Is(err, orch.ErrNotGroupMember) {
		ctl.sendError(c, "not a member of the session group")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("session", string(p.SessionID)).Msg("membership check failed")
		ctl.sendError(c, "membership check failed")
		return
	}
	if !ok {
		// Missing/ended session or duplicate join: silent no-op, no broadcast.
		log.Debug().Str("module", "signal").Str("session", string(p.SessionID)).Str("user", string(id.UserID)).Msg("join no-op")
	}
}

func (ctl *SignalWSController) handleLeaveShare(id connIdentity, c *WsSignalConn, data []byte) {
	var p struct {
		Type      string           `json:"type"`
		SessionID domain.SessionID `json:"session_id"`
		UserID    domain.UserID    `json:"user_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	if !ctl.verifyUserField(id, c, p.UserID) {
		return
	}
	if !ctl.Orch.LeaveShare(id.ConnID, p.SessionID, id.UserID) {
		log.Debug().Str("module", "signal").Str("session", string(p.SessionID)).Str("user", string(id.UserID)).Msg("leave no-op")
	}
}
