// cmd/wordfilter/main.go
//
// Dictionary authoring tool.
// Reads a raw whitespace-separated dictionary, keeps the loop words the game
// accepts (see words.IsLoopWord) and writes them grouped by length into
// files named <length><suffix>, one word per line, in input order.
//
// Usage:
//   wordfilter words.txt _words.txt      → 4_words.txt, 5_words.txt, ...
//   wordfilter --out assets/lists raw.txt .txt

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/spellcircle/internal/words"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "wordfilter <input> <suffix>",
		Short: "Split a dictionary into per-length loop word lists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			groups, err := groupByLength(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return writeGroups(outDir, args[1], groups)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// groupByLength returns the loop words of r keyed by length.
// Words keep their input spelling and order.
func groupByLength(r io.Reader) (map[int][]string, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	out := make(map[int][]string)
	for sc.Scan() {
		w := sc.Text()
		if words.IsLoopWord(w) {
			out[len(w)] = append(out[len(w)], w)
			log.Debug().Str("word", w).Str("letters", words.BitsToLetters(words.LetterBits(w))).Msg("accepted")
		}
	}
	return out, sc.Err()
}

func writeGroups(dir, suffix string, groups map[int][]string) error {
	lengths := make([]int, 0, len(groups))
	for n := range groups {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	for _, n := range lengths {
		path := filepath.Join(dir, strconv.Itoa(n)+suffix)
		if err := writeList(path, groups[n]); err != nil {
			return err
		}
		log.Info().Str("file", path).Int("words", len(groups[n])).Msg("wrote")
	}
	return nil
}

func writeList(path string, list []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, word := range list {
		if _, err := w.WriteString(word + "\n"); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
