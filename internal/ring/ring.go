// internal/ring/ring.go
//
// Ring layout generation.
//
// A ring shows len(word)-1 letters: loop words start and end with the same
// letter, so the closing letter is implied by wraparound. Letters are placed
// by striding through the ring positions with a fixed step, and reading
// starts at an angular offset:
//
//   shuffled[(i*step) % length] = word[i]        for i in 0..length
//   letter at position j        = shuffled[(j+start) % length]
//
// The placement is a permutation only when gcd(step, length) == 1. Other
// steps overwrite some slots and leave the rest at Blank; Generate keeps that
// behaviour and catalog validation rejects such rings up front.

package ring

import (
	"fmt"
	"math"
)

// Blank marks a ring slot that no letter was placed into.
const Blank byte = 0

// Letter is one ring position with its display character.
type Letter struct {
	Index int  // angular position, 0..length-1
	Char  byte // uppercase on the active ring, lowercase otherwise; Blank if unfilled
}

// InvalidWordError reports a ring word too short to lay out.
type InvalidWordError struct {
	Word string
}

func (e *InvalidWordError) Error() string {
	return fmt.Sprintf("ring: word %q is too short for a ring (need at least 2 letters)", e.Word)
}

// Length returns the number of ring positions for word.
func Length(word string) int {
	return len(word) - 1
}

// Shuffle returns the ring slots for word before the start offset is applied.
func Shuffle(word string, step int) ([]byte, error) {
	length := Length(word)
	if length <= 0 {
		return nil, &InvalidWordError{Word: word}
	}
	step = mod(step, length)
	shuffled := make([]byte, length)
	for i := 0; i < length; i++ {
		shuffled[(i*step)%length] = word[i]
	}
	return shuffled, nil
}

// Generate lays out word on a ring. Letters are uppercased when active is
// true and lowercased otherwise.
func Generate(word string, step, start int, active bool) ([]Letter, error) {
	shuffled, err := Shuffle(word, step)
	if err != nil {
		return nil, err
	}
	length := len(shuffled)
	start = mod(start, length)
	out := make([]Letter, length)
	for j := 0; j < length; j++ {
		out[j] = Letter{Index: j, Char: foldCase(shuffled[(j+start)%length], active)}
	}
	return out, nil
}

// String renders letters in position order, with '_' for Blank slots.
func String(letters []Letter) string {
	b := make([]byte, len(letters))
	for i, l := range letters {
		if l.Char == Blank {
			b[i] = '_'
			continue
		}
		b[i] = l.Char
	}
	return string(b)
}

// Coprime reports whether a ring of length positions stepped by step visits
// every position exactly once.
func Coprime(step, length int) bool {
	if length <= 0 {
		return false
	}
	return gcd(mod(step, length), length) == 1
}

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Anchors returns the centre of each of length positions on a circle of the
// given radius, position j at angle j*2π/length.
func Anchors(length int, radius float64) []Point {
	if length <= 0 {
		return nil
	}
	out := make([]Point, length)
	for j := range out {
		angle := float64(j) * (2 * math.Pi / float64(length))
		out[j] = Point{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
	}
	return out
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func foldCase(c byte, upper bool) byte {
	switch {
	case upper && c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	case !upper && c >= 'A' && c <= 'Z':
		return c - 'A' + 'a'
	}
	return c
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// mod is a non-negative modulo.
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
