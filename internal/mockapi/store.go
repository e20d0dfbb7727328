// Package mockapi serves a development playbook backend from SQLite.
package mockapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/leapstack-labs/pbconsole/pkg/core"
	_ "modernc.org/sqlite"
)

// Log shapes, as stored and as served.
const (
	ShapeString  = "string"
	ShapeMessage = "message"
	ShapeText    = "text"
)

// ErrPlaybookNotFound is returned for unknown playbook ids.
var ErrPlaybookNotFound = errors.New("playbook not found")

// Store is the SQLite-backed playbook store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore wraps an open database.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}
}

// Open opens the database at path and runs migrations.
// Use ":memory:" for an in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := NewStore(db, logger)
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Playbooks returns every playbook ordered by id.
func (s *Store) Playbooks(ctx context.Context) ([]core.Playbook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, playbook_type, created_by, created, started, modified, state
		FROM playbooks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list playbooks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	playbooks := []core.Playbook{}
	for rows.Next() {
		var pb core.Playbook
		var state string
		if err := rows.Scan(&pb.ID, &pb.Name, &pb.Description, &pb.Type, &pb.CreatedBy,
			&pb.Created, &pb.Started, &pb.Modified, &state); err != nil {
			return nil, fmt.Errorf("failed to scan playbook: %w", err)
		}
		pb.State = core.PlaybookState(state)
		playbooks = append(playbooks, pb)
	}
	return playbooks, rows.Err()
}

// Exists reports whether a playbook with id exists.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playbooks WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up playbook %s: %w", id, err)
	}
	return n > 0, nil
}

// Steps returns the steps of a playbook in execution order.
func (s *Store) Steps(ctx context.Context, playbookID string) ([]core.Step, error) {
	if ok, err := s.Exists(ctx, playbookID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrPlaybookNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, playbook_id, name, description, step_type, active, checked, last_modified
		FROM steps WHERE playbook_id = ? ORDER BY position`, playbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	steps := []core.Step{}
	for rows.Next() {
		var st core.Step
		if err := rows.Scan(&st.ID, &st.PlaybookID, &st.Name, &st.Description, &st.Type,
			&st.Active, &st.Check, &st.LastModified); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// Logs returns the log records of a playbook in their wire shapes:
// a bare string, an object with a message, or an object with text and timestamp.
func (s *Store) Logs(ctx context.Context, playbookID string) ([]any, error) {
	if ok, err := s.Exists(ctx, playbookID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrPlaybookNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT shape, body, logged_at FROM logs WHERE playbook_id = ? ORDER BY id`, playbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	logs := []any{}
	for rows.Next() {
		var shape, body, loggedAt string
		if err := rows.Scan(&shape, &body, &loggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, wireLog(shape, body, loggedAt))
	}
	return logs, rows.Err()
}

func wireLog(shape, body, loggedAt string) any {
	switch shape {
	case ShapeMessage:
		return map[string]any{"message": body, "level": "info"}
	case ShapeText:
		ts := loggedAt
		if t, err := time.Parse(time.RFC3339, loggedAt); err == nil {
			ts = t.UTC().Format(http.TimeFormat)
		}
		return map[string]any{"text": body, "timestamp": ts}
	default:
		return body
	}
}

// stepRow is the part of a step the simulator needs.
type stepRow struct {
	id      string
	name    string
	active  bool
	checked bool
}

// Advance moves every running playbook one step forward: the active step
// completes and the next one starts. A playbook whose last step completes ends.
// It returns the number of playbooks advanced.
func (s *Store) Advance(ctx context.Context, now time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids, err := runningPlaybooks(ctx, tx)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := advancePlaybook(ctx, tx, id, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	if len(ids) > 0 {
		s.logger.Debug("playbooks advanced", "count", len(ids))
	}
	return len(ids), nil
}

func runningPlaybooks(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM playbooks WHERE state = ? ORDER BY id`, string(core.PlaybookRunning))
	if err != nil {
		return nil, fmt.Errorf("failed to list running playbooks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playbook id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadSteps(ctx context.Context, tx *sql.Tx, playbookID string) ([]stepRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, active, checked FROM steps WHERE playbook_id = ? ORDER BY position`, playbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps of %s: %w", playbookID, err)
	}
	defer func() { _ = rows.Close() }()

	var steps []stepRow
	for rows.Next() {
		var st stepRow
		if err := rows.Scan(&st.id, &st.name, &st.active, &st.checked); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func advancePlaybook(ctx context.Context, tx *sql.Tx, playbookID string, now time.Time) error {
	steps, err := loadSteps(ctx, tx, playbookID)
	if err != nil {
		return err
	}
	ts := now.UTC().Format(time.RFC3339)

	next := -1
	for i, st := range steps {
		if st.active {
			if _, err := tx.ExecContext(ctx,
				`UPDATE steps SET active = 0, checked = 1, last_modified = ? WHERE id = ?`, ts, st.id); err != nil {
				return fmt.Errorf("failed to complete step %s: %w", st.id, err)
			}
			if err := appendLog(ctx, tx, playbookID, ShapeText, "Step completed: "+st.name, ts); err != nil {
				return err
			}
			next = i + 1
			break
		}
	}
	if next == -1 {
		// Nothing running yet: start the first unchecked step.
		next = len(steps)
		for i, st := range steps {
			if !st.checked {
				next = i
				break
			}
		}
	}

	if next < len(steps) {
		st := steps[next]
		if _, err := tx.ExecContext(ctx,
			`UPDATE steps SET active = 1, last_modified = ? WHERE id = ?`, ts, st.id); err != nil {
			return fmt.Errorf("failed to start step %s: %w", st.id, err)
		}
		return appendLog(ctx, tx, playbookID, ShapeMessage, "Step started: "+st.name, ts)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE playbooks SET state = ?, modified = ? WHERE id = ?`, string(core.PlaybookEnded), ts, playbookID); err != nil {
		return fmt.Errorf("failed to end playbook %s: %w", playbookID, err)
	}
	return appendLog(ctx, tx, playbookID, ShapeString, "Playbook finished", ts)
}

func appendLog(ctx context.Context, tx *sql.Tx, playbookID, shape, body, ts string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO logs (playbook_id, shape, body, logged_at) VALUES (?, ?, ?, ?)`,
		playbookID, shape, body, ts); err != nil {
		return fmt.Errorf("failed to append log to %s: %w", playbookID, err)
	}
	return nil
}
