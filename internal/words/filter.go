package words

// MinLength is the shortest dictionary word accepted as an alternate solution.
const MinLength = 4

// minDistinct is the fewest distinct letters a loop word may use.
const minDistinct = 4

// IsLoopWord reports whether w can close a ring: at least MinLength ASCII
// letters, first letter equal to the last, and every letter other than the
// repeated boundary letter used exactly once.
func IsLoopWord(w string) bool {
	if len(w) < MinLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if !isAlpha(w[i]) {
			return false
		}
	}
	if fold(w[0]) != fold(w[len(w)-1]) {
		return false
	}
	distinct := DistinctLetters(w)
	return distinct >= minDistinct && distinct == len(w)-1
}

// LetterBits returns a bitmask with bit i set when letter 'A'+i occurs in w.
// Non-letters are ignored.
func LetterBits(w string) uint32 {
	var bits uint32
	for i := 0; i < len(w); i++ {
		if isAlpha(w[i]) {
			bits |= 1 << (fold(w[i]) - 'A')
		}
	}
	return bits
}

// DistinctLetters counts the distinct letters of w, case-insensitively.
func DistinctLetters(w string) int {
	n := 0
	for bits := LetterBits(w); bits != 0; bits &= bits - 1 {
		n++
	}
	return n
}

// BitsToLetters lists the letters set in bits, in alphabetical order.
func BitsToLetters(bits uint32) string {
	var b []byte
	for i := 0; i < 26; i++ {
		if bits&(1<<i) != 0 {
			b = append(b, byte('A'+i))
		}
	}
	return string(b)
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// fold uppercases an ASCII letter.
func fold(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
