// main.go
//
// Entry point for wordler.
//
// Commands:
//   wordler [play] [--seed WORD] [--daily] [--max-turns N] [--words FILE] [--no-color]
//       Play in the terminal. Exit status 0 on a win, 1 on a loss.
//   wordler serve [--port PORT] [--db PATH]
//       Serve the JSON API.
//
// Configuration comes from the environment and an optional .env file
// (see internal/config); flags override it.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordler/assets"
	"github.com/robalobadob/wordler/internal/accounts"
	"github.com/robalobadob/wordler/internal/cli"
	"github.com/robalobadob/wordler/internal/config"
	"github.com/robalobadob/wordler/internal/httpserver"
	"github.com/robalobadob/wordler/internal/render"
	"github.com/robalobadob/wordler/internal/store"
)

const usage = `Usage:
  wordler [play] [--seed WORD] [--daily] [--max-turns N] [--words FILE] [--no-color]
  wordler serve [--port PORT] [--db PATH]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return cli.ExitConfigError
	}
	zerolog.SetGlobalLevel(cfg.Level())

	cmd := "play"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "play":
		log.Logger = consoleLogger(os.Stderr)
		opts, err := cli.ParsePlayFlags(cfg, args, os.Stderr)
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if err != nil {
			return cli.ExitConfigError
		}
		return cli.RunPlay(ctx, opts, os.Stdin, render.NewTerminal(os.Stdout, opts.NoColor))
	case "serve":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		err := serve(ctx, cfg, args)
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if err != nil {
			log.Error().Err(err).Msg("server exited")
			return 1
		}
		return 0
	case "help":
		_, _ = io.WriteString(os.Stdout, usage)
		return 0
	default:
		_, _ = io.WriteString(os.Stderr, usage)
		return cli.ExitConfigError
	}
}

// consoleLogger writes human-readable logs, colored only on a terminal.
func consoleLogger(f *os.File) zerolog.Logger {
	w := zerolog.ConsoleWriter{
		Out:        colorable.NewColorable(f),
		NoColor:    !render.IsTerminal(f),
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func serve(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.String("port", cfg.Port, "listen port")
	dbPath := fs.String("db", cfg.DatabasePath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dict, err := cli.LoadDictionary(cfg.WordsFile)
	if err != nil {
		return fmt.Errorf("load word list: %w", err)
	}
	log.Info().Str("source", dict.Source()).Int("words", dict.Len()).Msg("dictionary loaded")

	db, err := accounts.OpenDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := accounts.Migrate(ctx, db, assets.Migrations()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sessions := store.NewMemoryStore(
		store.WithIdleTTL(cfg.SessionIdleTTL),
		store.WithFinishedTTL(cfg.SessionFinishedTTL),
	)
	srv := httpserver.New(cfg, dict, sessions, accounts.NewRepo(db))
	go srv.ExpireSessions(ctx, time.Minute)
	hs := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", *port).Msg("starting server")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
