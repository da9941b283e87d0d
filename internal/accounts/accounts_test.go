package accounts

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordler/assets"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(context.Background(), db, assets.Migrations()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	return NewRepo(openTestDB(t)).WithCost(bcrypt.MinCost)
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	extra := fstest.MapFS{
		"001_players.sql": {Data: []byte("this would fail if re-applied")},
		"002_extra.sql":   {Data: []byte("CREATE TABLE extra (id INTEGER PRIMARY KEY);")},
	}
	// 001 was recorded by openTestDB under the same name, so only 002 runs.
	if err := Migrate(context.Background(), db, extra); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 2 {
		t.Fatalf("recorded migrations = %d, want 2", n)
	}
}

func TestMigrateRollsBackFailedScript(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	bad := fstest.MapFS{"003_bad.sql": {Data: []byte("CREATE TABLE broken (;")}}
	if err := Migrate(context.Background(), db, bad); err == nil {
		t.Fatal("expected error from malformed migration")
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations WHERE name='003_bad.sql'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatal("failed migration was recorded")
	}
}

func TestCreateAndAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepo(t)

	p, err := repo.Create(ctx, "  wordsmith ", "correct horse")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" || p.Username != "wordsmith" || p.PasswordHash == "correct horse" {
		t.Fatalf("unexpected player: %+v", p)
	}

	if _, err := repo.Create(ctx, "WordSmith", "another password"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate Create err = %v, want ErrUsernameTaken", err)
	}

	got, err := repo.Authenticate(ctx, "WORDSMITH", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("Authenticate returned %s, want %s", got.ID, p.ID)
	}
	if _, err := repo.Authenticate(ctx, "wordsmith", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := repo.Authenticate(ctx, "nobody", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}

	byID, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !byID.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", byID.CreatedAt, p.CreatedAt)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("FindByID(missing) err = %v, want ErrPlayerNotFound", err)
	}
}

func TestConcurrentSignupsForOneName(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "racer"
			if i%2 == 1 {
				name = "RACER"
			}
			_, err := repo.Create(context.Background(), name, "password1")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, ErrUsernameTaken):
			t.Fatalf("Create err = %v, want nil or ErrUsernameTaken", err)
		}
	}
	if created != 1 {
		t.Fatalf("created %d players, want 1", created)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "short username", username: "ab", password: "password1", wantErr: ErrInvalidUsername},
		{name: "bad characters", username: "bad name", password: "password1", wantErr: ErrInvalidUsername},
		{name: "short password", username: "player", password: "short", wantErr: ErrInvalidPassword},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := repo.Create(context.Background(), tc.username, tc.password); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Create err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTokensRoundTrip(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("secret", time.Hour)
	p := &Player{ID: "player-1", Username: "wordsmith"}

	tok, exp, err := tokens.Sign(p)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v is not in the future", exp)
	}
	claims, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != p.ID || claims.Username != p.Username {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokensRejectForgedAndExpired(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "player-1", Username: "wordsmith"}

	forged, _, err := NewTokens("other", time.Hour).Sign(p)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewTokens("secret", time.Hour).Verify(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("forged Verify err = %v, want ErrInvalidToken", err)
	}

	past := NewTokens("secret", time.Minute)
	past.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := past.Sign(p)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewTokens("secret", time.Minute).Verify(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired Verify err = %v, want ErrInvalidToken", err)
	}

	if _, err := NewTokens("secret", time.Minute).Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage Verify err = %v, want ErrInvalidToken", err)
	}
}
