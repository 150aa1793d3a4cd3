package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"Groupool/internal/model"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets reporting tools read while the engine writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			type          TEXT NOT NULL,
			amount        TEXT NOT NULL,
			member_id     TEXT,
			challenge_id  TEXT,
			withdrawal_id TEXT,
			description   TEXT,
			split         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_member ON transactions(member_id)`,

		`CREATE TABLE IF NOT EXISTS outcomes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			target_id TEXT NOT NULL,
			status    TEXT NOT NULL,
			reason    TEXT,
			actor_id  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_ts ON outcomes(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordTransaction stores t once; recording the same ID again is a no-op.
func (r *SQLiteRecorder) RecordTransaction(t model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var split []byte
	if len(t.Split) > 0 {
		var err error
		if split, err = json.Marshal(t.Split); err != nil {
			return fmt.Errorf("encode split: %w", err)
		}
	}
	_, err := r.db.Exec(`INSERT OR IGNORE INTO transactions
		(id, timestamp, type, amount, member_id, challenge_id, withdrawal_id, description, split)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Timestamp.Unix(), string(t.Type), t.Amount.String(),
		t.MemberID, t.RelatedChallengeID, t.RelatedWithdrawalID, t.Description, string(split),
	)
	return err
}

func (r *SQLiteRecorder) RecordOutcome(o *Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO outcomes
		(timestamp, kind, target_id, status, reason, actor_id)
		VALUES (?,?,?,?,?,?)`,
		o.At.Unix(), o.Kind, o.TargetID, o.Status, o.Reason, o.ActorID,
	)
	return err
}

// RecentOutcomes returns up to limit outcomes, newest first.
func (r *SQLiteRecorder) RecentOutcomes(limit int) ([]Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, kind, target_id, status, reason, actor_id
		FROM outcomes ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o  Outcome
			ts int64
		)
		if err := rows.Scan(&ts, &o.Kind, &o.TargetID, &o.Status, &o.Reason, &o.ActorID); err != nil {
			return nil, err
		}
		o.At = time.Unix(ts, 0).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}

// MemberTotal sums every recorded amount booked to memberID.
func (r *SQLiteRecorder) MemberTotal(memberID string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT amount FROM transactions WHERE member_id = ?`, memberID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, err
		}
		amt, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
		}
		total = total.Add(amt)
	}
	return total, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
