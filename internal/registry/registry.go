// Package registry tracks who is online right now and the lifetime record of
// every username the server has ever seen. Liveness lives in memory and is
// the source of truth; the SQLite file carries the durable statistics and
// survives restarts.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bluffdeck/bluffdeck/internal/ident"
)

// Claim failures the gateway maps onto username_error frames.
var (
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrInvalidUsername = errors.New("username must use only letters, digits, _ or -, within the length limits")
)

// Username length bounds. The minimum is fixed; the maximum is a server
// config knob that defaults to DefaultMaxUsernameLen.
const (
	MinUsernameLen        = 2
	DefaultMaxUsernameLen = 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidUsername reports whether name satisfies the claim rules under the
// given maximum length.
func ValidUsername(name string, maxLen int) bool {
	if len(name) < MinUsernameLen || len(name) > maxLen {
		return false
	}
	return usernamePattern.MatchString(name)
}

// Standing is one leaderboard row.
type Standing struct {
	Username    string `json:"username"`
	Wins        int    `json:"wins"`
	GamesPlayed int    `json:"games_played"`
}

// Registry issues session-scoped user IDs against unique usernames and keeps
// per-username win/game counters. Safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	users map[string]string // userID -> username
	names map[string]string // username -> userID

	maxNameLen int

	db     *sql.DB
	clock  quartz.Clock
	logger *log.Logger
}

// Open opens (creating if needed) the registry database at path. Usernames
// longer than maxNameLen are rejected by Claim; zero or negative means
// DefaultMaxUsernameLen. Any is_online flags left over from a previous
// process are cleared: liveness never outlives the process that recorded it.
func Open(path string, maxNameLen int, clock quartz.Clock, logger *log.Logger) (*Registry, error) {
	if maxNameLen <= 0 {
		maxNameLen = DefaultMaxUsernameLen
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username     TEXT PRIMARY KEY,
			first_seen   TIMESTAMP NOT NULL,
			last_seen    TIMESTAMP NOT NULL,
			is_online    INTEGER NOT NULL DEFAULT 0,
			wins         INTEGER NOT NULL DEFAULT 0,
			games_played INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating users table: %w", err)
	}

	if _, err := db.Exec(`UPDATE users SET is_online = 0`); err != nil {
		db.Close()
		return nil, fmt.Errorf("resetting online flags: %w", err)
	}

	return &Registry{
		users:      make(map[string]string),
		names:      make(map[string]string),
		maxNameLen: maxNameLen,
		db:         db,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Claim validates username, rejects it while another session holds it, and
// otherwise marks it online and returns a fresh session-scoped user ID. A
// username seen in an earlier session is claimable again once released; its
// statistics keep accruing to the same row.
func (r *Registry) Claim(username string) (string, error) {
	if !ValidUsername(username, r.maxNameLen) {
		return "", ErrInvalidUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.names[username]; taken {
		return "", ErrUsernameTaken
	}

	userID := ident.NewUserID()
	r.users[userID] = username
	r.names[username] = userID

	now := r.clock.Now().UTC()
	r.exec(`
		INSERT INTO users (username, first_seen, last_seen, is_online)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(username) DO UPDATE SET last_seen = excluded.last_seen, is_online = 1
	`, username, now, now)

	return userID, nil
}

// Release marks the user offline and frees the username for the next
// claimant. Unknown IDs are ignored, so disconnect paths can call it
// unconditionally.
func (r *Registry) Release(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.users[userID]
	if !ok {
		return
	}
	delete(r.users, userID)
	delete(r.names, username)

	r.exec(`UPDATE users SET is_online = 0, last_seen = ? WHERE username = ?`,
		r.clock.Now().UTC(), username)
}

// Username resolves a session user ID to its username.
func (r *Registry) Username(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.users[userID]
	return name, ok
}

// OnlineUsernames returns every currently claimed username, sorted.
func (r *Registry) OnlineUsernames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RecordWin adds a win to the username's lifetime record.
func (r *Registry) RecordWin(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exec(`UPDATE users SET wins = wins + 1 WHERE username = ?`, username)
}

// RecordGame adds a completed game to the username's lifetime record.
func (r *Registry) RecordGame(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exec(`UPDATE users SET games_played = games_played + 1 WHERE username = ?`, username)
}

// Leaderboard returns up to limit standings: most wins first, fewer games
// breaking ties, then username. Players yet to finish a game are omitted.
func (r *Registry) Leaderboard(limit int) ([]Standing, error) {
	rows, err := r.db.Query(`
		SELECT username, wins, games_played
		FROM users
		WHERE games_played <> 0
		ORDER BY wins DESC, games_played ASC, username ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var standings []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.Username, &s.Wins, &s.GamesPlayed); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

// exec runs a write statement, retrying once. Statistics writes must never
// take a game down: after a second failure the error is logged and the
// in-memory state stays authoritative.
func (r *Registry) exec(query string, args ...any) {
	_, err := r.db.Exec(query, args...)
	if err == nil {
		return
	}
	if _, err = r.db.Exec(query, args...); err != nil {
		r.logger.Error("registry write failed", "err", err)
	}
}
