package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/core"
	"github.com/mentorhub/signaling/internal/domain"
)

// relayEnvelope is the server→client push frame for a relayed signal.
type relayEnvelope struct {
	Type   string        `json:"type"`
	Signal domain.Signal `json:"signal"`
}

// Relay forwards handshake messages to every live connection of the target
// user. Delivery is at-most-once, best-effort: no target connections means
// a silent drop, and there are no retries or acknowledgements. The relay
// never persists messages and performs no membership validation; that is
// the orchestrator's call to make before relaying.
type Relay struct {
	registry *Registry
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

// Relay returns the number of connections the signal was handed to.
// Zero is a normal outcome, not an error.
func (r *Relay) Relay(sig domain.Signal) int {
	endpoints := r.registry.EndpointsOf(sig.TargetUserID)
	if len(endpoints) == 0 {
		log.Debug().Str("module", "app.relay").Str("type", string(sig.Type)).Str("target", string(sig.TargetUserID)).Msg("no live connections, dropping signal")
		return 0
	}

	frame, err := json.Marshal(relayEnvelope{Type: "webrtc-signal", Signal: sig})
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal signal")
		return 0
	}

	delivered := 0
	for _, ep := range endpoints {
		if err := ep.TrySend(core.Frame(frame)); err != nil {
			log.Warn().Err(err).Str("module", "app.relay").Str("target", string(sig.TargetUserID)).Msg("relay send failed")
			continue
		}
		delivered++
	}
	log.Debug().Str("module", "app.relay").Str("type", string(sig.Type)).Str("sender", string(sig.SenderID)).Str("target", string(sig.TargetUserID)).Int("delivered", delivered).Msg("signal relayed")
	return delivered
}
