package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/domain"
)

// RelaySignal forwards a validated handshake message to the target user's
// live connections and keeps the peer-link ledger in step: an offer between
// a sharer and viewer opens the pairing, an answer marks it connected.
// Returns the delivery count; zero means the signal was dropped.
func (o *Orchestrator) RelaySignal(sig domain.Signal) int {
	sharerID, viewerID, paired := o.orientPair(sig.SenderID, sig.TargetUserID)
	if paired {
		switch sig.Type {
		case domain.SignalOffer:
			o.Links.Open(sharerID, viewerID, sig.MediaType)
		case domain.SignalAnswer:
			o.Links.MarkConnected(sharerID, viewerID)
		}
	}

	delivered := o.Relay.Relay(sig)
	if o.Metrics != nil {
		if delivered == 0 {
			o.Metrics.SignalsDropped.Inc()
		} else {
			o.Metrics.SignalsRelayed.WithLabelValues(string(sig.Type)).Add(float64(delivered))
		}
	}
	return delivered
}

// orientPair figures out which end of a signal is the sharer. Whoever owns
// an active session is the sharer; if neither does, there is no pairing to
// track and the signal is relayed as-is.
func (o *Orchestrator) orientPair(a, b domain.UserID) (sharer, viewer domain.UserID, ok bool) {
	if _, active := o.Sessions.ActiveSessionOf(a); active {
		return a, b, true
	}
	if _, active := o.Sessions.ActiveSessionOf(b); active {
		return b, a, true
	}
	log.Debug().Str("module", "orch").Str("a", string(a)).Str("b", string(b)).Msg("signal between users with no active session, no link tracked")
	return "", "", false
}
