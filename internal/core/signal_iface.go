package core

// Frame is a raw wire payload (encoded JSON envelope).
type Frame []byte

// ConnID identifies one live transport connection. A user may own several
// (multi-device); each ConnID maps to exactly one user.
type ConnID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
