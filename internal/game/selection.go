// internal/game/selection.go
//
// Selection state machine for the active ring.
//
// States:
//   Idle(layer)      → nothing built on the active ring.
//   Building(layer)  → letters picked, word not yet accepted.
//   AllRingsSolved   → layer == ring count, no ring is active.
//
// Picks are only accepted for letters present on the active ring. The built
// word and the matching anchor positions always have the same length.

package game

import (
	"strings"

	"github.com/robalobadob/spellcircle/internal/ring"
	"github.com/robalobadob/spellcircle/internal/words"
)

// Selection tracks the word the player is building on the active ring.
type Selection struct {
	words *words.WordList

	layer     int
	target    string
	tiles     []Tile
	allSolved bool

	built     []byte
	positions []ring.Point
}

// NewSelection returns an empty selection checking alternates against wl.
// A nil wl accepts only perfect solves.
func NewSelection(wl *words.WordList) *Selection {
	return &Selection{words: wl}
}

// Begin makes layer the active ring with the given target word and
// selectable tiles, clearing anything built.
func (s *Selection) Begin(layer int, target string, tiles []Tile) {
	s.layer = layer
	s.target = strings.ToUpper(target)
	s.tiles = tiles
	s.allSolved = false
	s.Reset()
}

// Finish enters AllRingsSolved with the layer index set to ringCount.
func (s *Selection) Finish(ringCount int) {
	s.layer = ringCount
	s.target = ""
	s.tiles = nil
	s.allSolved = true
	s.Reset()
}

// Phase reports the current state.
func (s *Selection) Phase() Phase {
	switch {
	case s.allSolved:
		return PhaseAllSolved
	case len(s.built) > 0:
		return PhaseBuilding
	default:
		return PhaseIdle
	}
}

// Layer returns the active layer index (ring count once all rings are solved).
func (s *Selection) Layer() int { return s.layer }

// Target returns the active ring's word, uppercase.
func (s *Selection) Target() string { return s.target }

// Built returns the word built so far, uppercase.
func (s *Selection) Built() string { return string(s.built) }

// Positions returns a copy of the anchors of the selected letters.
func (s *Selection) Positions() []ring.Point {
	out := make([]ring.Point, len(s.positions))
	copy(out, s.positions)
	return out
}

// SelectLetter appends ch if a letter of the active ring matches it,
// case-insensitively. Returns false (and changes nothing) otherwise.
func (s *Selection) SelectLetter(ch byte) bool {
	if s.allSolved {
		return false
	}
	ch = upper(ch)
	for _, t := range s.tiles {
		if t.Char != ring.Blank && t.Char == ch {
			s.push(t)
			return true
		}
	}
	return false
}

// SelectAt appends the active letter nearest to p, if it lies within radius.
func (s *Selection) SelectAt(p ring.Point, radius float64) bool {
	if s.allSolved {
		return false
	}
	best, bestDist := -1, radius
	for i, t := range s.tiles {
		if t.Char == ring.Blank {
			continue
		}
		if d := ring.Dist(p, t.Anchor); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return false
	}
	s.push(s.tiles[best])
	return true
}

// Backspace removes the last letter. Returns false when nothing was built.
func (s *Selection) Backspace() bool {
	n := len(s.built)
	if n == 0 {
		return false
	}
	s.built = s.built[:n-1]
	s.positions = s.positions[:n-1]
	return true
}

// Reset clears the built word and positions.
func (s *Selection) Reset() {
	s.built = s.built[:0]
	s.positions = s.positions[:0]
}

// CheckCompletion reports whether the built word solves the active ring.
//
// The word must be at least as long as the target and start and end on the
// same letter; then it solves perfectly if it is the target, or as an
// alternate if the word list contains it. Anything else keeps building.
func (s *Selection) CheckCompletion() (SolveKind, bool) {
	n := len(s.built)
	if s.allSolved || n == 0 || n < len(s.target) {
		return "", false
	}
	if s.built[0] != s.built[n-1] {
		return "", false
	}
	w := string(s.built)
	if w == s.target {
		return SolvePerfect, true
	}
	if s.words.Contains(w) {
		return SolveAlternate, true
	}
	return "", false
}

func (s *Selection) push(t Tile) {
	s.built = append(s.built, t.Char)
	s.positions = append(s.positions, t.Anchor)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
