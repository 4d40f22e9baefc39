// internal/game/engine.go
//
// Per-tick pipeline for one spell circle game.
// Responsibilities:
//   - Own the Progression (puzzle + selection) and the event mailbox.
//   - Run one ordered evaluation pass per tick of the host loop.
//
// Tick order:
//   1. Apply signals posted since the last tick (LevelSolved, RingSolved).
//   2. Sample the input (normalise characters).
//   3. Apply reset, backspace, pointer pick, then typed characters.
//   4. Check completion after every mutation of the built word.
//   5. Apply ring advances emitted by step 4.
//
// A Game is not safe for concurrent use; hosts that tick from several
// goroutines must serialize calls through one owner.

package game

import (
	"errors"

	"github.com/robalobadob/spellcircle/internal/catalog"
	"github.com/robalobadob/spellcircle/internal/ring"
	"github.com/robalobadob/spellcircle/internal/words"
)

// Config tunes the board geometry and pointer hit testing.
type Config struct {
	Geometry  Geometry
	HitRadius float64
}

// DefaultConfig is the reference layout with a 32 unit hit radius.
var DefaultConfig = Config{Geometry: DefaultGeometry, HitRadius: 32}

// Game bundles the progression state with its mailbox.
type Game struct {
	prog      *Progression
	mailbox   Mailbox
	hitRadius float64
	ticks     uint64
}

// New starts a game at the catalog's current level.
// The catalog's cursor is advanced as levels are completed.
func New(c *catalog.Catalog, wl *words.WordList, cfg Config) (*Game, error) {
	prog, err := NewProgression(c, wl, cfg.Geometry)
	if err != nil {
		return nil, err
	}
	return &Game{prog: prog, hitRadius: cfg.HitRadius}, nil
}

// Post queues LevelSolved for the next tick. Ring advances are only ever
// emitted by the tick itself.
func (g *Game) Post(e LevelSolved) {
	g.mailbox.Push(e)
}

// Tick runs one evaluation pass and returns the events emitted during it,
// in emission order.
func (g *Game) Tick(in Input) ([]Event, error) {
	g.ticks++

	// 1. signals from the previous tick
	if err := g.applySignals(); err != nil {
		return nil, err
	}

	// 2. sample
	chars := []byte(in.Chars)
	for i, c := range chars {
		chars[i] = upper(c)
	}

	// 3 + 4. mutate, checking completion after each change
	sel := g.prog.Selection()
	var out []Event
	solved := false
	check := func() {
		if kind, ok := sel.CheckCompletion(); ok {
			e := RingSolved{NextLayer: sel.Layer() + 1, Kind: kind, Word: sel.Built()}
			g.mailbox.Push(e)
			out = append(out, e)
			solved = true
		}
	}
	if in.Reset {
		sel.Reset()
	}
	if in.Backspace && sel.Backspace() {
		check()
	}
	if !solved && in.Pointer != nil && in.Pointer.JustPressed {
		if sel.SelectAt(in.Pointer.At, g.hitRadius) {
			check()
		}
	}
	for _, c := range chars {
		if solved {
			break
		}
		if sel.SelectLetter(c) {
			check()
		}
	}

	// 5. progression
	if err := g.applySignals(); err != nil {
		return out, err
	}
	return out, nil
}

// applySignals drains the mailbox in order.
// LevelSolved before every ring is solved is dropped.
func (g *Game) applySignals() error {
	for _, e := range g.mailbox.Drain() {
		switch ev := e.(type) {
		case RingSolved:
			if err := g.prog.AdvanceRing(ev.NextLayer); err != nil {
				return err
			}
		case LevelSolved:
			if err := g.prog.AdvanceLevel(); err != nil && !errors.Is(err, ErrLevelIncomplete) {
				return err
			}
		}
	}
	return nil
}

// State is a snapshot of the game for the presentation layer.
type State struct {
	Level     int          `json:"level"`
	DemonArt  int          `json:"demonArt"`
	Layer     int          `json:"layer"`
	RingCount int          `json:"ringCount"`
	Phase     Phase        `json:"phase"`
	Built     string       `json:"built"`
	Positions []ring.Point `json:"positions"`
	Rings     []RingView   `json:"rings"`
	Tick      uint64       `json:"tick"` // ticks run so far
}

// Snapshot returns the current state. The target word is not included.
func (g *Game) Snapshot() State {
	sel := g.prog.Selection()
	pz := g.prog.Puzzle()
	return State{
		Level:     g.prog.Level(),
		DemonArt:  pz.DemonArt,
		Layer:     sel.Layer(),
		RingCount: pz.RingCount(),
		Phase:     sel.Phase(),
		Built:     sel.Built(),
		Positions: sel.Positions(),
		Rings:     g.prog.Rings(),
		Tick:      g.ticks,
	}
}

// Progression exposes the underlying progression.
func (g *Game) Progression() *Progression { return g.prog }

// LevelComplete reports whether every ring of the current level is solved.
func (g *Game) LevelComplete() bool {
	return g.prog.Selection().Phase() == PhaseAllSolved
}
