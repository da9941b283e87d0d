// internal/dictionary/dictionary.go
//
// Word list management for the game engine.
//
// Responsibilities:
//   - Load the embedded default list, a system word file, or an in-memory list.
//   - Normalize entries to uppercase and drop duplicates (first occurrence wins).
//   - Answer membership checks and pick uniformly random target words.
//
// Sources:
//   - New:       embedded assets/words.txt, strictly validated.
//   - LoadFile:  a file such as /usr/share/dict/words; anything that is not a
//                5-letter alphabetic word is skipped.
//   - FromWords: a caller-supplied list, strictly validated.
//
// A loaded dictionary is read-only and safe for concurrent use as long as the
// random source passed through WithRand is.

package dictionary

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordler/assets"
)

// WordLength is the length of every dictionary entry.
const WordLength = 5

// Dictionary is what the game engine needs from a word list.
type Dictionary interface {
	// Contains reports whether word is a recognized word (case-insensitive).
	Contains(word string) bool
	// RandomWord returns one entry chosen uniformly at random.
	RandomWord() string
}

// English is an immutable, ordered list of uppercase five-letter words.
type English struct {
	source string
	words  []string
	index  map[string]struct{}
	intn   func(n int) int
}

// Option configures an English dictionary at construction.
type Option func(*English)

// WithRand replaces the random source used by RandomWord. intn must return a
// value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(e *English) {
		if intn != nil {
			e.intn = intn
		}
	}
}

// New loads the embedded default word list.
func New(opts ...Option) (*English, error) {
	raw, err := assets.WordList()
	if err != nil {
		return nil, &LoadError{Source: assets.WordListName, Err: err}
	}
	words, err := parseStrict(assets.WordListName, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return build(assets.WordListName, words, opts)
}

// LoadFile loads a whitespace-separated word file, keeping only five-letter
// alphabetic words.
func LoadFile(path string, opts ...Option) (*English, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		if w, ok := normalize(sc.Text()); ok {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return build(path, words, opts)
}

// FromWords builds a dictionary from an in-memory list. Every entry must be a
// five-letter alphabetic word.
func FromWords(list []string, opts ...Option) (*English, error) {
	const source = "inline"
	words := make([]string, 0, len(list))
	for i, raw := range list {
		w, ok := normalize(raw)
		if !ok {
			return nil, &LoadError{Source: source, Line: i + 1, Err: fmt.Errorf("%w: %q", ErrMalformed, raw)}
		}
		words = append(words, w)
	}
	return build(source, words, opts)
}

// parseStrict reads one word per line, skipping blanks and '#' comments.
func parseStrict(source string, r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		w, ok := normalize(s)
		if !ok {
			return nil, &LoadError{Source: source, Line: line, Err: fmt.Errorf("%w: %q", ErrMalformed, s)}
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return words, nil
}

func build(source string, words []string, opts []Option) (*English, error) {
	e := &English{
		source: source,
		words:  make([]string, 0, len(words)),
		index:  make(map[string]struct{}, len(words)),
		intn:   cryptoIntn,
	}
	for _, w := range words {
		if _, dup := e.index[w]; dup {
			continue
		}
		e.index[w] = struct{}{}
		e.words = append(e.words, w)
	}
	if len(e.words) == 0 {
		return nil, &LoadError{Source: source, Err: ErrEmpty}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// normalize uppercases s and reports whether it is a valid entry.
func normalize(s string) (string, bool) {
	w := strings.ToUpper(strings.TrimSpace(s))
	if len(w) != WordLength || !isAlpha(w) {
		return "", false
	}
	return w, true
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// cryptoIntn returns a uniform value in [0, n) drawn from crypto/rand.
func cryptoIntn(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// Contains reports whether word is in the dictionary, ignoring case.
func (e *English) Contains(word string) bool {
	_, ok := e.index[strings.ToUpper(word)]
	return ok
}

// RandomWord returns a uniformly random entry.
func (e *English) RandomWord() string {
	return e.words[e.intn(len(e.words))]
}

// Len returns the number of distinct words.
func (e *English) Len() int { return len(e.words) }

// Word returns the i-th word in load order.
func (e *English) Word(i int) string { return e.words[i] }

// Source names where the words were loaded from.
func (e *English) Source() string { return e.source }
