package main

import (
	"context"
	"testing"

	"github.com/robalobadob/wordler/internal/cli"
)

func TestRunExitCodes(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "help command", args: []string{"help"}, want: 0},
		{name: "play help flag", args: []string{"play", "-h"}, want: 0},
		{name: "default command help flag", args: []string{"--help"}, want: 0},
		{name: "serve help flag", args: []string{"serve", "-h"}, want: 0},
		{name: "unknown play flag", args: []string{"play", "--bogus"}, want: cli.ExitConfigError},
		{name: "unknown command", args: []string{"bogus"}, want: cli.ExitConfigError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(context.Background(), tc.args); got != tc.want {
				t.Fatalf("run(%q) = %d, want %d", tc.args, got, tc.want)
			}
		})
	}
}
