package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalobadob/spellcircle/internal/ring"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Len() < 2 {
		t.Fatalf("Len = %d, want at least 2", c.Len())
	}
	first := c.Current()
	if got := first.Rings[0]; got != (RingSpec{Word: "DAMPED", Step: 3, Start: 1}) {
		t.Errorf("first ring = %+v", got)
	}
	for i := 0; i < c.Len(); i++ {
		for j, rs := range c.Level(i).Rings {
			if !ring.Coprime(rs.Step, rs.Length()) {
				t.Errorf("level %d ring %d: step %d not coprime with %d", i, j, rs.Step, rs.Length())
			}
			if rs.Word[0] != rs.Word[len(rs.Word)-1] {
				t.Errorf("level %d ring %d: %s is not a loop", i, j, rs.Word)
			}
		}
	}
}

func TestCursorWraps(t *testing.T) {
	c, err := New([]Puzzle{
		{DemonArt: 0, Rings: []RingSpec{{Word: "ABCDA", Step: 1}}},
		{DemonArt: 1, Rings: []RingSpec{{Word: "EFGHE", Step: 1}}},
		{DemonArt: 2, Rings: []RingSpec{{Word: "IJKLI", Step: 1}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []int{1, 2, 0, 1}
	for _, w := range want {
		p := c.Advance()
		if c.Cursor() != w || p.DemonArt != w {
			t.Fatalf("Advance: cursor=%d art=%d, want %d", c.Cursor(), p.DemonArt, w)
		}
	}
	c.Seek(-1)
	if c.Cursor() != 2 {
		t.Errorf("Seek(-1) cursor = %d, want 2", c.Cursor())
	}
	if c.Level(4).DemonArt != 1 {
		t.Errorf("Level(4) wraps to %d, want 1", c.Level(4).DemonArt)
	}

	cl := c.Clone()
	cl.Advance()
	if c.Cursor() != 2 || cl.Cursor() != 0 {
		t.Errorf("clone shares cursor: orig=%d clone=%d", c.Cursor(), cl.Cursor())
	}
}

func TestNewEmpty(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("New(nil) err = %v, want ErrEmpty", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		rs     RingSpec
		reason string
	}{
		{"short word", RingSpec{Word: "A", Step: 1}, "too short"},
		{"non alpha", RingSpec{Word: "AB1A", Step: 1}, "ASCII letters"},
		{"zero step", RingSpec{Word: "ABCDA", Step: 0}, "step must be positive"},
		{"negative start", RingSpec{Word: "ABCDA", Step: 1, Start: -1}, "start"},
		{"non coprime", RingSpec{Word: "ABCDA", Step: 2}, "shares a factor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]Puzzle{{Rings: []RingSpec{{Word: "DAMPED", Step: 3}, tt.rs}}})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Level != 0 || ve.Layer != 1 {
				t.Errorf("located at level %d ring %d", ve.Level, ve.Layer)
			}
			if !strings.Contains(ve.Reason, tt.reason) {
				t.Errorf("reason %q does not mention %q", ve.Reason, tt.reason)
			}
		})
	}

	if err := Validate([]Puzzle{{}}); err == nil {
		t.Error("level without rings accepted")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
levels:
  - demon_art: 4
    rings:
      - { word: " trust ", step: 3, start: 2 }
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := c.Current()
	if p.DemonArt != 4 || p.RingCount() != 1 || p.Rings[0].Word != "TRUST" {
		t.Fatalf("parsed %+v", p)
	}
	letters, err := p.Rings[0].Layout(true)
	if err != nil || len(letters) != 4 {
		t.Fatalf("Layout = %v, %v", letters, err)
	}

	if _, err := Parse([]byte("levels: [")); err == nil {
		t.Error("bad yaml accepted")
	}
	if _, err := Parse([]byte("levels: []")); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty catalog err = %v", err)
	}
}

func TestParseLargeStep(t *testing.T) {
	data := []byte(`
levels:
  - rings:
      - { word: damped, step: 5764607523034234883, start: 5764607523034234881 }
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	letters, err := c.Current().Rings[0].Layout(true)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if got := ring.String(letters); got != "MEAPD" {
		t.Errorf("Layout = %q, want MEAPD", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("levels:\n  - rings:\n      - {word: abcda, step: 2}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var ve *ValidationError
	if _, err := Load(path); !errors.As(err, &ve) {
		t.Fatalf("Load non-coprime err = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	if c, err := Load(""); err != nil || c.Len() == 0 {
		t.Errorf("Load(\"\") = %v, %v", c, err)
	}
}
