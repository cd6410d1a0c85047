package app

import "github.com/mentorhub/signaling/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to connections that cannot keep up with
// lifecycle broadcasts.
type Policy interface {
	OnBackPressure(room core.RoomService, cid core.ConnID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room core.RoomService, cid core.ConnID) BackpressureAction {
	return KickMember
}
