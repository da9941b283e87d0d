// internal/game/types.go
//
// Core type definitions for the Wordle game engine.
// Defines:
//   - Mark:       per-letter feedback for a guess (correct/present/absent).
//   - State:      lifecycle of a game (playing → won | lost).
//   - TurnResult: one scored guess.
//   - PlayResult: outcome of a single Play call.

package game

// Mark represents the evaluation result for a single letter in a guess.
//   - "correct": letter is in the answer at this position.
//   - "present": letter is in the answer at a different position.
//   - "absent":  letter is not in the answer, or every occurrence is used up.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// State is the coarse lifecycle of a game. Won and Lost are terminal.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Over reports whether s is terminal.
func (s State) Over() bool { return s == StateWon || s == StateLost }

// TurnResult is a scored guess: the uppercase word and one mark per letter.
type TurnResult struct {
	Guess string `json:"guess"`
	Marks []Mark `json:"marks"`
}

// Solved reports whether every letter was marked correct.
func (t TurnResult) Solved() bool {
	if len(t.Marks) == 0 {
		return false
	}
	for _, m := range t.Marks {
		if m != MarkCorrect {
			return false
		}
	}
	return true
}

func (t TurnResult) clone() TurnResult {
	return TurnResult{Guess: t.Guess, Marks: append([]Mark(nil), t.Marks...)}
}

// PlayResult is the outcome of one successful Play.
// State is StatePlaying while the game continues. Answer is only set when the
// game was lost.
type PlayResult struct {
	State  State
	Turn   TurnResult
	Answer string
}
