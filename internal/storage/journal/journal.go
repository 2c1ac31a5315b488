// Package journal persists every resolved fight to SQLite.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// MemoryPath opens a private in-memory journal.
const MemoryPath = ":memory:"

var ErrNotConfigured = errors.New("journal is not configured")

const schema = `
CREATE TABLE IF NOT EXISTS fights (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT    NOT NULL,
	attacker_id   INTEGER NOT NULL,
	attacker_kind TEXT    NOT NULL,
	attacker_name TEXT    NOT NULL,
	defender_id   INTEGER NOT NULL,
	defender_kind TEXT    NOT NULL,
	defender_name TEXT    NOT NULL,
	success       INTEGER NOT NULL,
	x             INTEGER NOT NULL,
	y             INTEGER NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS fights_run ON fights (run_id, success);
`

type Fighter struct {
	ID   models.EntityID
	Kind models.Kind
	Name string
}

func fighter(e *models.Entity) Fighter {
	return Fighter{ID: e.ID(), Kind: e.Kind(), Name: e.Name()}
}

// Entry is one resolved fight. X and Y are the defender's position.
type Entry struct {
	RunID    string
	Attacker Fighter
	Defender Fighter
	Success  bool
	X, Y     int
	At       time.Time
}

// Journal is a SQLite-backed combat observer scoped to a single run id.
type Journal struct {
	sqlDB  *sql.DB
	runID  string
	logger log.Log
}

// Open opens or creates the journal at path. An empty runID gets a fresh one.
func Open(path, runID string, logger log.Log) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	if logger == nil {
		logger = log.Nop()
	}

	dsn := path
	if path != MemoryPath {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection keeps an in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err = sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Journal{
		sqlDB:  sqlDB,
		runID:  runID,
		logger: logger.With(log.String("component", "journal"), log.String("run_id", runID)),
	}, nil
}

func (j *Journal) RunID() string { return j.runID }

func (j *Journal) Close() error {
	if j == nil || j.sqlDB == nil {
		return nil
	}
	return j.sqlDB.Close()
}

// OnFight records the attempt. Failures are logged and do not stop combat.
func (j *Journal) OnFight(attacker, defender *models.Entity, success bool) {
	p := defender.Position()
	err := j.Record(context.Background(), Entry{
		Attacker: fighter(attacker),
		Defender: fighter(defender),
		Success:  success,
		X:        p.X,
		Y:        p.Y,
	})
	if err != nil {
		j.logger.Error("Failed to journal fight", log.Error(err))
	}
}

// Record inserts one entry under the journal's run id.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if j == nil || j.sqlDB == nil {
		return ErrNotConfigured
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	_, err := j.sqlDB.ExecContext(ctx, `
INSERT INTO fights (
	run_id,
	attacker_id,
	attacker_kind,
	attacker_name,
	defender_id,
	defender_kind,
	defender_name,
	success,
	x,
	y,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		j.runID,
		int64(e.Attacker.ID),
		e.Attacker.Kind.String(),
		e.Attacker.Name,
		int64(e.Defender.ID),
		e.Defender.Kind.String(),
		e.Defender.Name,
		e.Success,
		e.X,
		e.Y,
		e.At.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record fight: %w", err)
	}
	return nil
}

// Count returns how many attempts this run has recorded.
func (j *Journal) Count(ctx context.Context) (int, error) {
	if j == nil || j.sqlDB == nil {
		return 0, ErrNotConfigured
	}
	var n int
	row := j.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM fights WHERE run_id = ?`, j.runID)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count fights: %w", err)
	}
	return n, nil
}

// Kills lists this run's successful fights in the order they happened.
func (j *Journal) Kills(ctx context.Context) ([]Entry, error) {
	if j == nil || j.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	rows, err := j.sqlDB.QueryContext(ctx, `
SELECT attacker_id, attacker_kind, attacker_name,
       defender_id, defender_kind, defender_name,
       x, y, created_at
FROM fights
WHERE run_id = ? AND success = 1
ORDER BY id
`, j.runID)
	if err != nil {
		return nil, fmt.Errorf("list kills: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                      Entry
			attackerID, defenderID int64
			attackerKind, defKind  string
			createdAt              int64
		)
		if err = rows.Scan(&attackerID, &attackerKind, &e.Attacker.Name,
			&defenderID, &defKind, &e.Defender.Name, &e.X, &e.Y, &createdAt); err != nil {
			return nil, fmt.Errorf("scan kill: %w", err)
		}
		var ok bool
		if e.Attacker.Kind, ok = models.ParseKind(attackerKind); !ok {
			return nil, fmt.Errorf("scan kill: %w: %q", models.ErrUnknownKind, attackerKind)
		}
		if e.Defender.Kind, ok = models.ParseKind(defKind); !ok {
			return nil, fmt.Errorf("scan kill: %w: %q", models.ErrUnknownKind, defKind)
		}
		e.RunID = j.runID
		e.Attacker.ID = models.EntityID(attackerID)
		e.Defender.ID = models.EntityID(defenderID)
		e.Success = true
		e.At = time.UnixMilli(createdAt).UTC()
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list kills: %w", err)
	}
	return out, nil
}
