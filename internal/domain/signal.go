package domain

import (
	"errors"

	"github.com/pion/webrtc/v4"
)

type SignalType string

const (
	SignalOffer     SignalType = "offer"
	SignalAnswer    SignalType = "answer"
	SignalCandidate SignalType = "candidate"
)

var (
	ErrSignalBadType     = errors.New("unknown signal type")
	ErrSignalNoSDP       = errors.New("signal missing sdp")
	ErrSignalNoCandidate = errors.New("signal missing candidate")
	ErrSignalNoTarget    = errors.New("signal missing target user")
)

// Signal is one handshake message relayed between a sharer and a viewer.
// Exactly one payload field is set depending on Type: SDP for offer/answer,
// Candidate for candidate.
type Signal struct {
	Type         SignalType                 `json:"type"`
	SDP          *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate    *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	SenderID     UserID                     `json:"sender_id"`
	TargetUserID UserID                     `json:"target_user_id"`
	MediaType    MediaType                  `json:"media_type,omitempty"`
}

// Validate checks the tagged-variant shape at ingress, before relay.
func (s *Signal) Validate() error {
	if s.TargetUserID == "" {
		return ErrSignalNoTarget
	}
	switch s.Type {
	case SignalOffer, SignalAnswer:
		if s.SDP == nil || s.SDP.SDP == "" {
			return ErrSignalNoSDP
		}
	case SignalCandidate:
		if s.Candidate == nil || s.Candidate.Candidate == "" {
			return ErrSignalNoCandidate
		}
	default:
		return ErrSignalBadType
	}
	return nil
}
