// internal/render/render.go
//
// Terminal output for the interactive game.
//
// Tiles follow the usual convention: green for correct, yellow for present,
// gray for absent. Color is only emitted when the output is a terminal (or
// forced), and goes through go-colorable so ANSI sequences also work on
// Windows consoles.

package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/robalobadob/wordler/internal/game"
)

const (
	ansiReset   = "\x1b[0m"
	ansiCorrect = "\x1b[1;30;42m" // bold black on green
	ansiPresent = "\x1b[1;30;43m" // bold black on yellow
	ansiAbsent  = "\x1b[1;37;100m" // bold white on bright black
)

// Renderer writes prompts, tiles and messages for one game.
type Renderer struct {
	out   io.Writer
	color bool
}

// New wraps an arbitrary writer. Color is off unless requested.
func New(out io.Writer, color bool) *Renderer {
	if out == nil {
		out = io.Discard
	}
	return &Renderer{out: out, color: color}
}

// NewTerminal wraps f, enabling color when f is a terminal and noColor is
// false.
func NewTerminal(f *os.File, noColor bool) *Renderer {
	if noColor {
		return &Renderer{out: colorable.NewNonColorable(f), color: false}
	}
	return &Renderer{out: colorable.NewColorable(f), color: IsTerminal(f)}
}

// IsTerminal reports whether f is attached to a terminal (including Cygwin/MSYS
// ptys).
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Color reports whether tiles are rendered with ANSI colors.
func (r *Renderer) Color() bool { return r.color }

// Tiles formats a scored turn as a single line. Without color every letter is
// followed by a marker: '*' correct, '?' present, '.' absent.
func (r *Renderer) Tiles(t game.TurnResult) string {
	var b strings.Builder
	for i, ch := range []rune(t.Guess) {
		mark := game.MarkAbsent
		if i < len(t.Marks) {
			mark = t.Marks[i]
		}
		if r.color {
			b.WriteString(colorFor(mark))
			b.WriteByte(' ')
			b.WriteRune(ch)
			b.WriteByte(' ')
			b.WriteString(ansiReset)
			continue
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(ch)
		b.WriteByte(symbolFor(mark))
	}
	return b.String()
}

func colorFor(m game.Mark) string {
	switch m {
	case game.MarkCorrect:
		return ansiCorrect
	case game.MarkPresent:
		return ansiPresent
	default:
		return ansiAbsent
	}
}

func symbolFor(m game.Mark) byte {
	switch m {
	case game.MarkCorrect:
		return '*'
	case game.MarkPresent:
		return '?'
	default:
		return '.'
	}
}

// Prompt asks for the next guess.
func (r *Renderer) Prompt(attempt, maxTurns int) error {
	_, err := fmt.Fprintf(r.out, "Enter your guess [%d/%d]: ", attempt, maxTurns)
	return err
}

// Turn prints a scored guess.
func (r *Renderer) Turn(t game.TurnResult) error {
	_, err := fmt.Fprintln(r.out, r.Tiles(t))
	return err
}

// Result prints the outcome of a play: the tiles, followed by a closing line
// when the game is over.
func (r *Renderer) Result(res game.PlayResult) error {
	if err := r.Turn(res.Turn); err != nil {
		return err
	}
	var err error
	switch res.State {
	case game.StateWon:
		_, err = fmt.Fprintln(r.out, "Congratulations, you won!")
	case game.StateLost:
		_, err = fmt.Fprintf(r.out, "The word was %s. Better luck next time.\n", res.Answer)
	}
	return err
}

// Message prints an informational line, such as a rejected guess.
func (r *Renderer) Message(format string, args ...any) error {
	_, err := fmt.Fprintf(r.out, format+"\n", args...)
	return err
}
