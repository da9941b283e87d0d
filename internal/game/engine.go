// internal/game/engine.go
//
// Core game engine for a single Wordle session.
// Responsibilities:
//   - Create games against a dictionary (random or fixed target, 6 turns by default).
//   - Validate and apply guesses (game state, length, dictionary membership).
//   - Score guesses using the classic two-pass Wordle algorithm.
//   - Track state transitions: playing → won/lost.
//
// A Game is owned by one caller and is not safe for concurrent use; the HTTP
// layer serializes access through the session store.

package game

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/robalobadob/wordler/internal/dictionary"
)

// DefaultMaxTurns is the classic number of guesses.
const DefaultMaxTurns = 6

var (
	// ErrGameOver is returned by Play once the game is won or lost.
	ErrGameOver = errors.New("game over")
	// ErrInvalidLength is returned when the guess length differs from the answer.
	ErrInvalidLength = errors.New("invalid guess length")
	// ErrNotInDictionary is returned when a guess (or fixed target) is not a known word.
	ErrNotInDictionary = errors.New("not in word list")
	// ErrInvalidMaxTurns is returned by New when WithMaxTurns is below one.
	ErrInvalidMaxTurns = errors.New("max turns must be at least 1")
)

// Game holds the state of a single session.
type Game struct {
	id       string
	dict     dictionary.Dictionary
	target   string
	turn     int
	maxTurns int
	history  []TurnResult
	state    State
}

// Option customizes a Game at construction.
type Option func(*Game) error

// WithTarget fixes the answer instead of drawing one from the dictionary.
// The word must be in the dictionary.
func WithTarget(word string) Option {
	return func(g *Game) error {
		w := strings.ToUpper(strings.TrimSpace(word))
		if !g.dict.Contains(w) {
			return fmt.Errorf("target %q: %w", word, ErrNotInDictionary)
		}
		g.target = w
		return nil
	}
}

// WithMaxTurns overrides DefaultMaxTurns.
func WithMaxTurns(n int) Option {
	return func(g *Game) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidMaxTurns, n)
		}
		g.maxTurns = n
		return nil
	}
}

// New constructs a game. Without WithTarget a random answer is drawn from dict.
func New(dict dictionary.Dictionary, opts ...Option) (*Game, error) {
	g := &Game{
		id:       uuid.NewString(),
		dict:     dict,
		maxTurns: DefaultMaxTurns,
		state:    StatePlaying,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.target == "" {
		g.target = strings.ToUpper(dict.RandomWord())
	}
	return g, nil
}

// Play validates and scores a guess, mutating the game state.
//
// Validation order:
//   - Game must not be finished (ErrGameOver).
//   - Guess must have as many letters as the answer (ErrInvalidLength).
//   - Guess must be in the dictionary (ErrNotInDictionary).
//
// A failed validation leaves the game untouched.
//
// State transitions:
//   - All letters correct → StateWon.
//   - Else if the turn limit is reached → StateLost, answer revealed.
func (g *Game) Play(guess string) (PlayResult, error) {
	if g.state.Over() {
		return PlayResult{}, ErrGameOver
	}
	if utf8.RuneCountInString(guess) != utf8.RuneCountInString(g.target) {
		return PlayResult{}, ErrInvalidLength
	}
	guess = strings.ToUpper(guess)
	if !g.dict.Contains(guess) {
		return PlayResult{}, ErrNotInDictionary
	}

	turn := TurnResult{Guess: guess, Marks: Score(g.target, guess)}
	g.turn++
	g.history = append(g.history, turn)

	res := PlayResult{State: StatePlaying, Turn: turn.clone()}
	switch {
	case turn.Solved():
		g.state = StateWon
		res.State = StateWon
	case g.turn >= g.maxTurns:
		g.state = StateLost
		res.State = StateLost
		res.Answer = g.target
	}
	return res, nil
}

// Score implements the standard two-pass Wordle scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count the remaining (non-correct) answer letters.
//
// Pass 2:
//   - For each non-correct guess letter: if that letter still has a remaining
//     count, mark present and decrement; otherwise mark absent.
//
// The result has one mark per rune of guess. Both words are expected to have
// the same length and case.
func Score(answer, guess string) []Mark {
	a := []rune(answer)
	gs := []rune(guess)
	res := make([]Mark, len(gs))
	remaining := make(map[rune]int, len(a))

	for i, r := range gs {
		if i < len(a) && r == a[i] {
			res[i] = MarkCorrect
		}
	}
	for i, r := range a {
		if i >= len(gs) || res[i] != MarkCorrect {
			remaining[r]++
		}
	}

	for i, r := range gs {
		if res[i] == MarkCorrect {
			continue
		}
		if remaining[r] > 0 {
			res[i] = MarkPresent
			remaining[r]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// ID is a unique identifier for correlating sessions.
func (g *Game) ID() string { return g.id }

// Turn is the number of scored guesses so far.
func (g *Game) Turn() int { return g.turn }

// Attempt is the 1-based number of the next guess, for prompts.
func (g *Game) Attempt() int { return g.turn + 1 }

// MaxTurns is the turn limit.
func (g *Game) MaxTurns() int { return g.maxTurns }

// State reports the current lifecycle state.
func (g *Game) State() State { return g.state }

// WordLength is the number of letters in the answer.
func (g *Game) WordLength() int { return utf8.RuneCountInString(g.target) }

// History returns a copy of the scored turns in order.
func (g *Game) History() []TurnResult {
	out := make([]TurnResult, len(g.history))
	for i, t := range g.history {
		out[i] = t.clone()
	}
	return out
}

// Answer returns the target word once the game is over, and "" before.
func (g *Game) Answer() string {
	if !g.state.Over() {
		return ""
	}
	return g.target
}
