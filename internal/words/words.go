// internal/words/words.go
//
// Dictionary of alternate solutions for the ring puzzles.
//
// Responsibilities:
//   - Filter a raw dictionary down to closed-loop words (see IsLoopWord).
//   - Maintain an uppercase set for case-insensitive Contains lookups.
//   - Provide a process-wide default list loaded once from WORDS_DICT_FILE
//     or the embedded assets/dict_words.txt.
//
// A WordList is never mutated after construction and is safe to share
// read-only between goroutines.

package words

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/robalobadob/spellcircle/assets"
)

// WordList is an immutable set of uppercase loop words.
type WordList struct {
	set      mapset.Set[string]
	byLength map[int]int
}

// New reads whitespace-separated words from r and keeps the loop words.
func New(r io.Reader) (*WordList, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var raw []string
	for sc.Scan() {
		raw = append(raw, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return FromWords(raw), nil
}

// FromWords builds a WordList from an in-memory list, applying the same filter as New.
func FromWords(raw []string) *WordList {
	wl := &WordList{set: mapset.New[string](), byLength: make(map[int]int)}
	for _, w := range raw {
		w = strings.ToUpper(strings.TrimSpace(w))
		if !IsLoopWord(w) || wl.set.Has(w) {
			continue
		}
		wl.set.Put(w)
		wl.byLength[len(w)]++
	}
	return wl
}

// Contains reports whether w is an accepted alternate solution. Case-insensitive.
func (wl *WordList) Contains(w string) bool {
	if wl == nil {
		return false
	}
	return wl.set.Has(strings.ToUpper(w))
}

// Len returns the number of words in the list.
func (wl *WordList) Len() int {
	if wl == nil {
		return 0
	}
	return wl.set.Size()
}

// Words returns the list contents in sorted order.
func (wl *WordList) Words() []string {
	out := make([]string, 0, wl.Len())
	if wl == nil {
		return out
	}
	wl.set.Each(func(w string) { out = append(out, w) })
	sort.Strings(out)
	return out
}

// CountByLength returns how many words of each length were accepted.
func (wl *WordList) CountByLength() map[int]int {
	if wl == nil {
		return map[int]int{}
	}
	out := make(map[int]int, len(wl.byLength))
	for k, v := range wl.byLength {
		out[k] = v
	}
	return out
}

// --- process-wide default list ---

var (
	initOnce   sync.Once
	defaultWL  *WordList
	initialErr error
)

// Init loads the default word list exactly once.
//
// If WORDS_DICT_FILE is set, that file is the raw dictionary; otherwise the
// embedded dictionary is used. Returns an error if the filtered list is empty.
func Init() error {
	initOnce.Do(func() {
		if path := os.Getenv("WORDS_DICT_FILE"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				initialErr = err
				return
			}
			defer f.Close()
			defaultWL, initialErr = New(f)
			if initialErr != nil {
				return
			}
		} else {
			raw, err := assets.Dictionary()
			if err != nil {
				initialErr = err
				return
			}
			defaultWL = FromWords(raw)
		}

		if defaultWL.Len() == 0 {
			initialErr = errors.New("words: dictionary has no loop words")
			return
		}
		for n, c := range defaultWL.CountByLength() {
			log.Debug().Int("length", n).Int("words", c).Msg("loop words loaded")
		}
	})
	return initialErr
}

// Default returns the list loaded by Init, or nil if Init has not succeeded.
func Default() *WordList {
	return defaultWL
}
