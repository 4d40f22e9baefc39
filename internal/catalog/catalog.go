// internal/catalog/catalog.go
//
// Static level data.
//
// A Puzzle is an ordered list of rings (layer 0 innermost, solved first) plus
// the index of the face art revealed when the level is complete. A Catalog is
// the cyclic sequence of puzzles with a cursor that wraps on Advance.
//
// Catalogs are read-only input data: compiled in from assets/catalog.yaml or
// loaded from CATALOG_FILE, and validated before use.

package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/spellcircle/assets"
	"github.com/robalobadob/spellcircle/internal/ring"
)

// RingSpec defines one ring's puzzle.
type RingSpec struct {
	Word  string `yaml:"word" json:"word"`
	Step  int    `yaml:"step" json:"step"`
	Start int    `yaml:"start" json:"start"`
}

// Length is the number of ring positions (len(word)-1).
func (rs RingSpec) Length() int { return ring.Length(rs.Word) }

// Layout generates the ring letters, uppercased when active.
func (rs RingSpec) Layout(active bool) ([]ring.Letter, error) {
	return ring.Generate(rs.Word, rs.Step, rs.Start, active)
}

// Puzzle is one level: its rings and the face art shown on completion.
type Puzzle struct {
	DemonArt int        `yaml:"demon_art" json:"demonArt"`
	Rings    []RingSpec `yaml:"rings" json:"rings"`
}

// RingCount returns the number of layers in the puzzle.
func (p Puzzle) RingCount() int { return len(p.Rings) }

// Catalog is an ordered, cyclic sequence of puzzles with a progress cursor.
type Catalog struct {
	levels []Puzzle
	cursor int
}

// New builds a catalog from already validated levels. The slice is copied.
func New(levels []Puzzle) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, ErrEmpty
	}
	cp := make([]Puzzle, len(levels))
	for i, p := range levels {
		cp[i] = Puzzle{DemonArt: p.DemonArt, Rings: append([]RingSpec(nil), p.Rings...)}
	}
	return &Catalog{levels: cp}, nil
}

// Len returns the number of levels.
func (c *Catalog) Len() int { return len(c.levels) }

// Cursor returns the index of the current level.
func (c *Catalog) Cursor() int { return c.cursor }

// Current returns the puzzle under the cursor.
func (c *Catalog) Current() Puzzle { return c.levels[c.cursor] }

// Level returns the puzzle at index i, wrapped modulo Len.
func (c *Catalog) Level(i int) Puzzle {
	n := len(c.levels)
	return c.levels[((i%n)+n)%n]
}

// Seek moves the cursor to i, wrapped modulo Len.
func (c *Catalog) Seek(i int) {
	n := len(c.levels)
	c.cursor = ((i % n) + n) % n
}

// Advance moves the cursor to the next level, wrapping after the last one,
// and returns the new current puzzle.
func (c *Catalog) Advance() Puzzle {
	c.cursor = (c.cursor + 1) % len(c.levels)
	return c.levels[c.cursor]
}

// Clone returns a catalog sharing the same level data with its own cursor.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{levels: c.levels, cursor: c.cursor}
}

// --- loading ---

type document struct {
	Levels []Puzzle `yaml:"levels"`
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	for i := range doc.Levels {
		for j := range doc.Levels[i].Rings {
			doc.Levels[i].Rings[j].Word = strings.ToUpper(strings.TrimSpace(doc.Levels[i].Rings[j].Word))
		}
	}
	if err := Validate(doc.Levels); err != nil {
		return nil, err
	}
	return New(doc.Levels)
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	data, err := assets.Catalog()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("levels", c.Len()).Msg("catalog loaded")
	return c, nil
}

// --- validation ---

// ErrEmpty is returned for a catalog without levels.
var ErrEmpty = errors.New("catalog: no levels")

// ValidationError locates a bad ring in the catalog data.
type ValidationError struct {
	Level  int
	Layer  int
	Word   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog: level %d ring %d (%q): %s", e.Level, e.Layer, e.Word, e.Reason)
}

// Validate checks authoring rules for every ring: a word of at least two
// ASCII letters, step ≥ 1, start ≥ 0, and a step coprime with the ring
// length so that every letter lands on its own position.
func Validate(levels []Puzzle) error {
	if len(levels) == 0 {
		return ErrEmpty
	}
	for li, p := range levels {
		if len(p.Rings) == 0 {
			return &ValidationError{Level: li, Layer: -1, Reason: "level has no rings"}
		}
		for ri, rs := range p.Rings {
			bad := func(reason string) error {
				return &ValidationError{Level: li, Layer: ri, Word: rs.Word, Reason: reason}
			}
			if rs.Length() <= 0 {
				return bad((&ring.InvalidWordError{Word: rs.Word}).Error())
			}
			if !alphabetic(rs.Word) {
				return bad("word must be ASCII letters only")
			}
			if rs.Step < 1 {
				return bad("step must be positive")
			}
			if rs.Start < 0 {
				return bad("start must not be negative")
			}
			if !ring.Coprime(rs.Step, rs.Length()) {
				return bad(fmt.Sprintf("step %d shares a factor with ring length %d", rs.Step, rs.Length()))
			}
		}
	}
	return nil
}

func alphabetic(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
