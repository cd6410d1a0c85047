package signal

import (
	"encoding/json"

	"github.com/mentorhub/signaling/internal/domain"
)

func (ctl *SignalWSController) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: "pong"})
}

// handleGetActiveSessions replies to the requester only, no broadcast.
func (ctl *SignalWSController) handleGetActiveSessions(c *WsSignalConn) {
	ctl.sendJSON(c, struct {
		Type     string               `json:"type"`
		Sessions []domain.SessionView `json:"sessions"`
	}{
		Type:     "active-sessions",
		Sessions: ctl.Orch.ActiveSessions(),
	})
}

func (ctl *SignalWSController) handleGetMediaConfig(c *WsSignalConn) {
	ctl.sendJSON(c, struct {
		Type   string             `json:"type"`
		Config domain.MediaConfig `json:"config"`
	}{
		Type:   "media-config",
		Config: ctl.Orch.MediaConfig(),
	})
}

// handleUpdateMediaConfig merge-updates the shared config; the orchestrator
// pushes the result to all connected clients.
func (ctl *SignalWSController) handleUpdateMediaConfig(c *WsSignalConn, data []byte) {
	var p struct {
		Type   string                  `json:"type"`
		Config domain.MediaConfigPatch `json:"config"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Orch.UpdateMediaConfig(p.Config)
}
