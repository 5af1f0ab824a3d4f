// Package storage provides SQLite-backed history of settled bets.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rewired-gh/slatewatch/internal/models"
	_ "modernc.org/sqlite"
)

var ErrOutcomeNotFound = errors.New("outcome not found")

const memoryPath = ":memory:"

// Outcome is a settled bet and whether its notification went out.
type Outcome struct {
	Bet      models.Bet
	Notified bool
}

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db          *sql.DB
	maxOutcomes int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath or ":memory:" keeps the history in memory.
func New(maxOutcomes int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = memoryPath
	}
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single connection: one writer, and an in-memory database lives per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxOutcomes: maxOutcomes}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS outcomes (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			type         TEXT NOT NULL,
			status       TEXT NOT NULL,
			time_slots   TEXT NOT NULL DEFAULT '[]',
			requirements TEXT NOT NULL,
			notes        TEXT,
			created_at   INTEGER NOT NULL,
			settled_at   INTEGER NOT NULL,
			notified     INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_settled_at ON outcomes(settled_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordOutcome stores a settled bet, replacing any earlier record with the
// same ID, and enforces the history cap.
func (s *Storage) RecordOutcome(bet models.Bet) error {
	if !bet.IsTerminal() {
		return fmt.Errorf("bet %s is not settled", bet.ID)
	}
	reqJSON, err := json.Marshal(bet.Requirements)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}
	slots := bet.TimeSlots
	if slots == nil {
		slots = []string{}
	}
	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal time slots: %w", err)
	}
	settledAt := bet.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO outcomes
			(id, title, type, status, time_slots, requirements, notes,
			 created_at, settled_at, notified)
		VALUES (?,?,?,?,?,?,?,?,?,0)`,
		bet.ID, bet.Title, string(bet.Type), string(bet.Status),
		string(slotsJSON), string(reqJSON), bet.Notes,
		bet.CreatedAt.UnixNano(), settledAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}

	if _, err = tx.Exec(`
		DELETE FROM outcomes WHERE id NOT IN (
			SELECT id FROM outcomes ORDER BY settled_at DESC LIMIT ?
		)`, s.maxOutcomes); err != nil {
		return fmt.Errorf("failed to enforce outcome cap: %w", err)
	}

	return tx.Commit()
}

// MarkNotified flags an outcome as delivered.
func (s *Storage) MarkNotified(id string) error {
	res, err := s.db.Exec(`UPDATE outcomes SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outcome notified: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrOutcomeNotFound, id)
	}
	return nil
}

// GetOutcome returns the recorded outcome for a bet ID.
func (s *Storage) GetOutcome(id string) (*Outcome, error) {
	row := s.db.QueryRow(`SELECT `+outcomeCols+` FROM outcomes WHERE id = ?`, id)
	o, err := scanOutcome(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOutcomeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}
	return o, nil
}

// RecentOutcomes returns up to k outcomes, most recently settled first.
func (s *Storage) RecentOutcomes(k int) ([]Outcome, error) {
	rows, err := s.db.Query(`SELECT `+outcomeCols+` FROM outcomes ORDER BY settled_at DESC LIMIT ?`, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, *o)
	}
	return outcomes, rows.Err()
}

// RotateOutcomes keeps at most maxOutcomes newest outcomes by settled_at.
func (s *Storage) RotateOutcomes() error {
	_, err := s.db.Exec(`
		DELETE FROM outcomes WHERE id NOT IN (
			SELECT id FROM outcomes ORDER BY settled_at DESC LIMIT ?
		)`, s.maxOutcomes)
	if err != nil {
		return fmt.Errorf("failed to rotate outcomes: %w", err)
	}
	return nil
}

const outcomeCols = `id, title, type, status, time_slots, requirements, notes,
	created_at, settled_at, notified`

func scanOutcome(scan func(...any) error) (*Outcome, error) {
	var (
		o                     Outcome
		betType, status       string
		slotsJSON, reqJSON    string
		notes                 sql.NullString
		createdNano, settNano int64
		notified              int
	)
	err := scan(
		&o.Bet.ID, &o.Bet.Title, &betType, &status, &slotsJSON, &reqJSON, &notes,
		&createdNano, &settNano, &notified,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(reqJSON), &o.Bet.Requirements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal requirements: %w", err)
	}
	if err := json.Unmarshal([]byte(slotsJSON), &o.Bet.TimeSlots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal time slots: %w", err)
	}
	if len(o.Bet.TimeSlots) == 0 {
		o.Bet.TimeSlots = nil
	}
	o.Bet.Type = models.BetType(betType)
	o.Bet.Status = models.BetStatus(status)
	o.Bet.Notes = notes.String
	o.Bet.CreatedAt = time.Unix(0, createdNano)
	o.Bet.SettledAt = time.Unix(0, settNano)
	o.Notified = notified != 0
	return &o, nil
}
