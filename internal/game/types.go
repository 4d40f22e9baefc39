// internal/game/types.go
//
// Core type definitions for the spell circle game.
// Defines:
//   - SolveKind: how a ring was solved (perfect/alternate).
//   - Phase: coarse state of the selection state machine.
//   - Tile: one selectable letter of the active ring.
//   - Input: what the host samples from its input devices each tick.

package game

import "github.com/robalobadob/spellcircle/internal/ring"

// SolveKind tells how the built word satisfied a ring.
//   - "perfect":   the ring's intended target word.
//   - "alternate": a different dictionary loop word.
type SolveKind string

const (
	SolvePerfect   SolveKind = "perfect"
	SolveAlternate SolveKind = "alternate"
)

// Phase is the state of the selection state machine.
// A solved ring is never observable as its own phase: solving moves
// straight on to the next layer (Idle) or to PhaseAllSolved.
type Phase string

const (
	PhaseIdle      Phase = "idle"       // active ring, nothing built yet
	PhaseBuilding  Phase = "building"   // active ring, partial word
	PhaseAllSolved Phase = "all_solved" // every ring of the level solved
)

// Tile is a selectable letter on the active ring.
type Tile struct {
	Index  int        // ring position
	Char   byte       // uppercase letter, or ring.Blank
	Anchor ring.Point // world position of the letter
}

// Pointer is a pointer/touch sample in world coordinates.
type Pointer struct {
	At          ring.Point
	JustPressed bool // press edge; held or released pointers do not select
}

// Input is one tick's worth of sampled input.
type Input struct {
	Pointer   *Pointer
	Chars     string // received characters in arrival order, any case
	Backspace bool
	Reset     bool
}
