// internal/accounts/players.go
//
// Player accounts: signup, login and lookup backed by SQLite.
// Passwords are stored as bcrypt hashes. Accounts only identify who owns a live
// game; no game history is written here.

package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidUsername    = errors.New("username must be 3-24 letters, digits or underscores")
	ErrInvalidPassword    = errors.New("password must be 8-72 characters")
)

// Player matches the players table shape.
type Player struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repo is the player repository.
type Repo struct {
	db   *sql.DB
	cost int
	now  func() time.Time
}

// NewRepo wraps a migrated database.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithCost returns a copy of r that hashes with the given bcrypt cost.
func (r *Repo) WithCost(cost int) *Repo {
	cp := *r
	cp.cost = cost
	return &cp
}

// Create validates input, hashes the password and inserts a new player.
// Uniqueness is enforced by the case-insensitive username index, so
// concurrent signups for one name yield exactly one player.
func (r *Repo) Create(ctx context.Context, username, password string) (*Player, error) {
	username = strings.TrimSpace(username)
	if err := validateSignup(username, password); err != nil {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return nil, err
	}
	p := &Player{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    r.now().UTC().Truncate(time.Second),
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO players (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		p.ID, p.Username, p.PasswordHash, p.CreatedAt.Format(time.RFC3339),
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

// Authenticate returns the player when username and password match.
func (r *Repo) Authenticate(ctx context.Context, username, password string) (*Player, error) {
	p, err := r.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrPlayerNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// FindByUsername looks a player up case-insensitively.
func (r *Repo) FindByUsername(ctx context.Context, username string) (*Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM players WHERE lower(username)=lower(?)`, username)
	return scanPlayer(row)
}

// FindByID looks a player up by ID.
func (r *Repo) FindByID(ctx context.Context, id string) (*Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM players WHERE id=?`, id)
	return scanPlayer(row)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var created string
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &p, nil
}

// validateSignup enforces basic username/password rules. bcrypt ignores input
// past 72 bytes, hence the upper bound.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return ErrInvalidUsername
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ErrInvalidUsername
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return ErrInvalidPassword
	}
	return nil
}
