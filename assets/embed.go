// Package assets embeds the static files the game ships with: the default
// word list and the sqlite migrations for player accounts.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed words.txt sql/*.sql
var FS embed.FS

// WordListName is the name reported for the embedded list in load errors.
const WordListName = "embedded:words.txt"

// WordList returns the raw embedded word list.
func WordList() ([]byte, error) {
	return FS.ReadFile("words.txt")
}

// Migrations returns the embedded migration scripts rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// sql/ is part of the embed pattern, so Sub cannot fail.
		panic(err)
	}
	return sub
}
