// internal/cli/play.go
//
// Interactive terminal game.
// Responsibilities:
//   - Parse `play` flags on top of the environment config.
//   - Build the dictionary (embedded list or WORDS_FILE) and the game
//     (random, seeded or daily target).
//   - Run the read → play → render loop until the game ends or input runs out.
//
// Exit codes:
//   0 won, 1 lost, 2 input ended before the game did, 3 configuration or
//   dictionary error.

package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordler/internal/config"
	"github.com/robalobadob/wordler/internal/daily"
	"github.com/robalobadob/wordler/internal/dictionary"
	"github.com/robalobadob/wordler/internal/game"
	"github.com/robalobadob/wordler/internal/render"
)

const (
	ExitWon         = 0
	ExitLost        = 1
	ExitAborted     = 2
	ExitConfigError = 3
)

// PlayOptions is the resolved configuration of one terminal game.
type PlayOptions struct {
	WordsFile string
	Seed      string
	Daily     bool
	DailySalt string
	MaxTurns  int
	NoColor   bool
	Now       func() time.Time
}

// ParsePlayFlags applies `play` flags over cfg. Flag errors are written to stderr.
func ParsePlayFlags(cfg config.Config, args []string, stderr io.Writer) (PlayOptions, error) {
	if stderr == nil {
		stderr = io.Discard
	}
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := PlayOptions{DailySalt: cfg.DailySalt, Now: time.Now}
	fs.StringVar(&opts.WordsFile, "words", cfg.WordsFile, "word file to use instead of the built-in list")
	fs.StringVar(&opts.Seed, "seed", cfg.Seed, "fixed answer (must be a dictionary word)")
	fs.BoolVar(&opts.Daily, "daily", false, "play the word of the day")
	fs.IntVar(&opts.MaxTurns, "max-turns", cfg.MaxTurns, "number of guesses allowed")
	fs.BoolVar(&opts.NoColor, "no-color", false, "disable colored tiles")

	if err := fs.Parse(args); err != nil {
		return PlayOptions{}, err
	}
	if fs.NArg() > 0 {
		return PlayOptions{}, fmt.Errorf("play: unexpected arguments %q", fs.Args())
	}
	if opts.Daily && opts.Seed != "" {
		return PlayOptions{}, errors.New("play: --daily and --seed are mutually exclusive")
	}
	return opts, nil
}

// LoadDictionary returns the embedded dictionary, or the one in path when set.
func LoadDictionary(path string) (*dictionary.English, error) {
	if path == "" {
		return dictionary.New()
	}
	return dictionary.LoadFile(path)
}

// NewGame builds a game from opts against dict.
func NewGame(dict *dictionary.English, opts PlayOptions) (*game.Game, error) {
	gameOpts := []game.Option{game.WithMaxTurns(opts.MaxTurns)}
	switch {
	case opts.Seed != "":
		gameOpts = append(gameOpts, game.WithTarget(opts.Seed))
	case opts.Daily:
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		gameOpts = append(gameOpts, game.WithTarget(daily.Word(dict, now(), opts.DailySalt)))
	}
	return game.New(dict, gameOpts...)
}

// RunPlay loads the dictionary, creates the game and plays it on in/out.
func RunPlay(ctx context.Context, opts PlayOptions, in io.Reader, out *render.Renderer) int {
	dict, err := LoadDictionary(opts.WordsFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to load dictionary")
		return ExitConfigError
	}
	log.Debug().Str("source", dict.Source()).Int("words", dict.Len()).Msg("dictionary loaded")

	g, err := NewGame(dict, opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to start game")
		return ExitConfigError
	}

	code, err := Play(ctx, g, in, out)
	if err != nil {
		log.Error().Err(err).Msg("game aborted")
	}
	return code
}

// Play runs the prompt loop for g until it is won, lost, the input ends or
// ctx is cancelled. Rejected guesses are reported and re-prompted.
func Play(ctx context.Context, g *game.Game, in io.Reader, out *render.Renderer) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := scanLines(ctx, in)

	for {
		if err := ctx.Err(); err != nil {
			return ExitAborted, err
		}
		if err := out.Prompt(g.Attempt(), g.MaxTurns()); err != nil {
			return ExitAborted, err
		}

		var ln scannedLine
		var ok bool
		select {
		case <-ctx.Done():
			_ = out.Message("")
			return ExitAborted, ctx.Err()
		case ln, ok = <-lines:
		}
		if !ok {
			_ = out.Message("")
			return ExitAborted, nil
		}
		if ln.err != nil {
			_ = out.Message("")
			return ExitAborted, fmt.Errorf("read guess: %w", ln.err)
		}

		guess := strings.TrimSpace(ln.text)
		if guess == "" {
			continue
		}

		res, err := g.Play(guess)
		switch {
		case errors.Is(err, game.ErrInvalidLength):
			_ = out.Message("Please enter a word with %d letters.", g.WordLength())
			continue
		case errors.Is(err, game.ErrNotInDictionary):
			_ = out.Message("Not in word list: %s", strings.ToUpper(guess))
			continue
		case err != nil:
			return ExitAborted, err
		}

		log.Debug().Str("game", g.ID()).Int("turn", g.Turn()).Str("state", string(res.State)).Msg("guess scored")
		if err := out.Result(res); err != nil {
			return ExitAborted, err
		}
		switch res.State {
		case game.StateWon:
			return ExitWon, nil
		case game.StateLost:
			return ExitLost, nil
		}
	}
}

type scannedLine struct {
	text string
	err  error
}

// scanLines reads in line by line on its own goroutine so a blocked read
// does not keep Play from noticing cancellation. The channel is closed at
// EOF; a read error is delivered as the last value.
func scanLines(ctx context.Context, in io.Reader) <-chan scannedLine {
	lines := make(chan scannedLine)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- scannedLine{text: sc.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			select {
			case lines <- scannedLine{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return lines
}
