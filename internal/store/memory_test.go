package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/wordler/internal/dictionary"
	"github.com/robalobadob/wordler/internal/game"
)

func newSession(t *testing.T, owner string) *Session {
	t.Helper()
	d, err := dictionary.FromWords([]string{"crane", "trace"})
	if err != nil {
		t.Fatalf("FromWords: %v", err)
	}
	g, err := game.New(d, game.WithTarget("crane"))
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	return &Session{Owner: owner, Game: g}
}

func TestMemoryStoreOwnership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore()
	s := newSession(t, "alice")
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Get(ctx, s.Game.ID(), "alice")
	if err != nil || got != s {
		t.Fatalf("Get(owner) = (%p, %v), want (%p, nil)", got, err, s)
	}
	if _, err := st.Get(ctx, s.Game.ID(), "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(other owner) err = %v, want ErrNotFound", err)
	}
	if _, err := st.Get(ctx, "missing", "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := st.Delete(ctx, s.Game.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("Len after delete = %d", st.Len())
	}
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := NewMemoryStore()
	if err := st.Save(ctx, newSession(t, "alice")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save err = %v, want context.Canceled", err)
	}
}

func TestSessionDoSerializesPlays(t *testing.T) {
	t.Parallel()

	s := newSession(t, "alice")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(g *game.Game) error {
				_, err := g.Play("trace")
				return err
			})
		}()
	}
	wg.Wait()

	if got := s.Game.Turn(); got != game.DefaultMaxTurns {
		t.Fatalf("Turn = %d, want %d", got, game.DefaultMaxTurns)
	}
	if s.Game.State() != game.StateLost {
		t.Fatalf("State = %s, want lost", s.Game.State())
	}
}

func TestMemoryStoreExpire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore(WithIdleTTL(time.Hour), WithFinishedTTL(time.Minute))

	playing := newSession(t, "alice")
	won := newSession(t, "bob")
	for _, s := range []*Session{playing, won} {
		if err := st.Save(ctx, s); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := won.Do(func(g *game.Game) error {
		_, err := g.Play("crane")
		return err
	}); err != nil {
		t.Fatalf("Play: %v", err)
	}

	n, err := st.Expire(ctx, time.Now())
	if err != nil || n != 0 || st.Len() != 2 {
		t.Fatalf("Expire(now) = (%d, %v), Len = %d; want nothing removed", n, err, st.Len())
	}

	n, err = st.Expire(ctx, time.Now().Add(2*time.Minute))
	if err != nil || n != 1 || st.Len() != 1 {
		t.Fatalf("Expire(+2m) = (%d, %v), Len = %d; want the finished game removed", n, err, st.Len())
	}
	if _, err := st.Get(ctx, won.Game.ID(), "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("finished game still present: %v", err)
	}
	if _, err := st.Get(ctx, playing.Game.ID(), "alice"); err != nil {
		t.Fatalf("unfinished game removed early: %v", err)
	}

	n, err = st.Expire(ctx, time.Now().Add(2*time.Hour))
	if err != nil || n != 1 || st.Len() != 0 {
		t.Fatalf("Expire(+2h) = (%d, %v), Len = %d; want the idle game removed", n, err, st.Len())
	}
}
