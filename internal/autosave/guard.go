package autosave

import "sync/atomic"

// RaceGuard hands out increasing request tokens. Only the most recently
// issued token is current; responses carrying any other token are stale.
type RaceGuard struct {
	seq atomic.Uint64
}

// Begin starts a new request and returns its token.
func (g *RaceGuard) Begin() uint64 {
	return g.seq.Add(1)
}

// IsCurrent reports whether token belongs to the latest request.
func (g *RaceGuard) IsCurrent(token uint64) bool {
	return g.seq.Load() == token
}
