package game

import (
	"errors"
	"fmt"

	"github.com/robalobadob/spellcircle/internal/catalog"
	"github.com/robalobadob/spellcircle/internal/ring"
	"github.com/robalobadob/spellcircle/internal/words"
)

var (
	// ErrLevelIncomplete is returned when advancing past a level with unsolved rings.
	ErrLevelIncomplete = errors.New("game: level has unsolved rings")
	// ErrRingOrder is returned when a ring advance does not move to the next layer.
	ErrRingOrder = errors.New("game: rings must be solved in order")
)

// Geometry places rings on concentric circles: layer l has radius
// BaseRadius + l*Spacing.
type Geometry struct {
	BaseRadius float64
	Spacing    float64
}

// DefaultGeometry matches the reference board layout.
var DefaultGeometry = Geometry{BaseRadius: 200, Spacing: 60}

// Radius returns the circle radius of layer.
func (g Geometry) Radius(layer int) float64 {
	return g.BaseRadius + float64(layer)*g.Spacing
}

// Progression owns the current puzzle and the selection, and moves through
// rings and levels in order.
type Progression struct {
	catalog  *catalog.Catalog
	geometry Geometry
	sel      *Selection

	puzzle catalog.Puzzle
	tiles  [][]Tile // per layer, uppercase letters with anchors
}

// NewProgression starts at the catalog's current level. The catalog cursor
// is advanced by AdvanceLevel, so callers sharing catalog data should pass a
// Clone.
func NewProgression(c *catalog.Catalog, wl *words.WordList, geo Geometry) (*Progression, error) {
	p := &Progression{catalog: c, geometry: geo, sel: NewSelection(wl)}
	tiles, err := p.build(c.Cursor(), c.Current())
	if err != nil {
		return nil, err
	}
	p.enter(c.Current(), tiles)
	return p, nil
}

// build lays out every ring of pz. Any ring that cannot be laid out aborts
// the whole level.
func (p *Progression) build(level int, pz catalog.Puzzle) ([][]Tile, error) {
	if pz.RingCount() == 0 {
		return nil, errors.New("game: level has no rings")
	}
	out := make([][]Tile, pz.RingCount())
	for layer, rs := range pz.Rings {
		letters, err := rs.Layout(true)
		if err != nil {
			return nil, fmt.Errorf("level %d ring %d: %w", level, layer, err)
		}
		anchors := ring.Anchors(len(letters), p.geometry.Radius(layer))
		tiles := make([]Tile, len(letters))
		for j, l := range letters {
			tiles[j] = Tile{Index: l.Index, Char: l.Char, Anchor: anchors[j]}
		}
		out[layer] = tiles
	}
	return out, nil
}

// enter replaces the puzzle-bound state and activates layer 0.
func (p *Progression) enter(pz catalog.Puzzle, tiles [][]Tile) {
	p.puzzle = pz
	p.tiles = tiles
	p.sel.Begin(0, pz.Rings[0].Word, tiles[0])
}

// AdvanceRing activates next, which must be the layer after the current one.
// Moving past the last ring enters AllRingsSolved.
func (p *Progression) AdvanceRing(next int) error {
	if p.sel.Phase() == PhaseAllSolved || next != p.sel.Layer()+1 {
		return fmt.Errorf("%w: at layer %d, asked for %d", ErrRingOrder, p.sel.Layer(), next)
	}
	if next >= p.puzzle.RingCount() {
		p.sel.Finish(p.puzzle.RingCount())
		return nil
	}
	p.sel.Begin(next, p.puzzle.Rings[next].Word, p.tiles[next])
	return nil
}

// AdvanceLevel moves the catalog cursor to the next level (wrapping) and
// rebuilds the puzzle with layer 0 active. All rings must be solved.
func (p *Progression) AdvanceLevel() error {
	if p.sel.Phase() != PhaseAllSolved {
		return ErrLevelIncomplete
	}
	idx := (p.catalog.Cursor() + 1) % p.catalog.Len()
	next := p.catalog.Level(idx)
	tiles, err := p.build(idx, next)
	if err != nil {
		return err
	}
	p.catalog.Advance()
	p.enter(next, tiles)
	return nil
}

// Selection exposes the selection state for reading and input.
func (p *Progression) Selection() *Selection { return p.sel }

// Puzzle returns the current level's definition.
func (p *Progression) Puzzle() catalog.Puzzle { return p.puzzle }

// Level returns the catalog cursor.
func (p *Progression) Level() int { return p.catalog.Cursor() }

// RingView is a read-only description of one ring for the presentation layer.
type RingView struct {
	Layer   int          `json:"layer"`
	Letters string       `json:"letters"` // uppercase when active, lowercase otherwise
	Anchors []ring.Point `json:"anchors"`
	Active  bool         `json:"active"`
	Solved  bool         `json:"solved"`
}

// Rings describes every ring of the current puzzle.
func (p *Progression) Rings() []RingView {
	active := p.sel.Layer()
	out := make([]RingView, len(p.tiles))
	for layer, tiles := range p.tiles {
		b := make([]byte, len(tiles))
		anchors := make([]ring.Point, len(tiles))
		for j, t := range tiles {
			c := t.Char
			if layer != active && c >= 'A' && c <= 'Z' {
				c = c - 'A' + 'a'
			}
			if c == ring.Blank {
				c = '_'
			}
			b[j] = c
			anchors[j] = t.Anchor
		}
		out[layer] = RingView{
			Layer:   layer,
			Letters: string(b),
			Anchors: anchors,
			Active:  layer == active,
			Solved:  layer < active,
		}
	}
	return out
}
