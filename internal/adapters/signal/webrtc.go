package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/domain"
)

// handleWebRTCSignal validates the tagged payload at ingress and hands it
// to the relay. A target with no live connections is a designed silent
// drop, not an error.
func (ctl *SignalWSController) handleWebRTCSignal(id connIdentity, c *WsSignalConn, data []byte) {
	var p struct {
		Type   string        `json:"type"`
		Signal domain.Signal `json:"signal"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad signal payload")
		ctl.sendError(c, "bad_payload")
		return
	}

	sig := p.Signal
	if !ctl.verifyUserField(id, c, sig.SenderID) {
		return
	}
	sig.SenderID = id.UserID

	if err := sig.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id.ConnID)).Msg("invalid signal")
		ctl.sendError(c, err.Error())
		return
	}

	delivered := ctl.Orch.RelaySignal(sig)
	log.Debug().Str("module", "signal").Str("type", string(sig.Type)).Int("delivered", delivered).Msg("signal handled")
}
