// Package journal persists bracket sessions as an ordered log of scheduling
// operations. Replaying the log against the session's initial pool rebuilds
// the exact bracket state, so a session can be resumed after the program
// exits.
//
// Both SQLite (modernc.org/sqlite, the default) and PostgreSQL (lib/pq) are
// supported through database/sql.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// OpKind names a scheduling operation.
type OpKind string

const (
	OpNext    OpKind = "next"
	OpSelect  OpKind = "select"
	OpRequeue OpKind = "requeue"
	OpIgnore  OpKind = "ignore"
	OpUndo    OpKind = "undo"
	OpRedo    OpKind = "redo"
	OpAdd     OpKind = "add"
)

// ValidOpKinds is the set of recognized operation kinds.
var ValidOpKinds = map[OpKind]bool{
	OpNext: true, OpSelect: true, OpRequeue: true, OpIgnore: true,
	OpUndo: true, OpRedo: true, OpAdd: true,
}

// ValidDrivers is the set of recognized database drivers.
var ValidDrivers = map[string]bool{"sqlite": true, "postgres": true}

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Op is one journaled operation.
type Op struct {
	Seq  int       // 1-based position in the session log
	Kind OpKind    //
	Keys []string  // item keys the operation named, if any
	At   time.Time // when it was recorded
}

// SessionInfo summarizes a stored session.
type SessionInfo struct {
	ID        string
	Label     string
	CreatedAt time.Time
	Items     int
	Ops       int
}

// Store reads and writes the journal.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if !ValidDrivers[driver] {
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if driver == "sqlite" {
		// A single connection serializes writers and keeps in-memory DSNs coherent.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal ping: %w", err)
	}
	if err := CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logrus.Debugf("journal: opened %s database", driver)
	return &Store{db: db, driver: driver, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CreateSession stores a new session with its initial pool, in order, and
// returns its ID.
func (s *Store) CreateSession(ctx context.Context, label string, keys []string) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO bracket_session (id, label, created_at) VALUES (?, ?, ?)`),
		id, label, s.now().UTC()); err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		s.rebind(`INSERT INTO session_item (session_id, position, item_key) VALUES (?, ?, ?)`))
	if err != nil {
		return "", fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()
	for i, k := range keys {
		if _, err := stmt.ExecContext(ctx, id, i, k); err != nil {
			return "", fmt.Errorf("inserting item %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	logrus.Infof("journal: created session %s with %d items", id, len(keys))
	return id, nil
}

// Append adds an operation to the end of a session's log and returns it
// with its sequence number and timestamp filled in.
func (s *Store) Append(ctx context.Context, sessionID string, op Op) (Op, error) {
	pending, err := s.Reserve(ctx, sessionID, op)
	if err != nil {
		return Op{}, err
	}
	return pending.Commit()
}

// Pending is an operation written to the log inside an open transaction.
// Exactly one of Commit or Rollback must be called.
type Pending struct {
	tx *sql.Tx
	op Op
}

// Reserve writes op at the end of a session's log without committing it, so
// the caller can apply the operation first and discard the entry if that
// fails. While a Pending is open the SQLite journal admits no other writes.
func (s *Store) Reserve(ctx context.Context, sessionID string, op Op) (*Pending, error) {
	if !ValidOpKinds[op.Kind] {
		return nil, fmt.Errorf("unknown op kind %q", op.Kind)
	}
	keys := op.Keys
	if keys == nil {
		keys = []string{}
	}
	encoded, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("encoding keys: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	var seq int
	if err := tx.QueryRowContext(ctx,
		s.rebind(`SELECT COALESCE(MAX(seq), 0) + 1 FROM session_op WHERE session_id = ?`),
		sessionID).Scan(&seq); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("next seq: %w", err)
	}
	at := s.now().UTC()
	if _, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO session_op (session_id, seq, kind, item_keys, created_at) VALUES (?, ?, ?, ?, ?)`),
		sessionID, seq, string(op.Kind), string(encoded), at); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("inserting op: %w", err)
	}
	op.Seq = seq
	op.At = at
	return &Pending{tx: tx, op: op}, nil
}

// Commit makes the entry durable and returns it.
func (p *Pending) Commit() (Op, error) {
	if err := p.tx.Commit(); err != nil {
		return Op{}, fmt.Errorf("commit: %w", err)
	}
	return p.op, nil
}

// Rollback discards the entry.
func (p *Pending) Rollback() error {
	return p.tx.Rollback()
}

// Items returns a session's initial pool in its original order.
func (s *Store) Items(ctx context.Context, sessionID string) ([]string, error) {
	if err := s.exists(ctx, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT item_key FROM session_item WHERE session_id = ? ORDER BY position`),
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Ops returns a session's log in order.
func (s *Store) Ops(ctx context.Context, sessionID string) ([]Op, error) {
	if err := s.exists(ctx, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT seq, kind, item_keys, created_at FROM session_op WHERE session_id = ? ORDER BY seq`),
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying ops: %w", err)
	}
	defer rows.Close()

	ops := []Op{}
	for rows.Next() {
		var (
			op   Op
			kind string
			raw  string
		)
		if err := rows.Scan(&op.Seq, &kind, &raw, &op.At); err != nil {
			return nil, fmt.Errorf("scanning op: %w", err)
		}
		op.Kind = OpKind(kind)
		if err := json.Unmarshal([]byte(raw), &op.Keys); err != nil {
			return nil, fmt.Errorf("decoding keys of op %d: %w", op.Seq, err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Sessions lists stored sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT s.id, s.label, s.created_at,
       (SELECT COUNT(*) FROM session_item i WHERE i.session_id = s.id),
       (SELECT COUNT(*) FROM session_op o WHERE o.session_id = s.id)
FROM bracket_session s
ORDER BY s.created_at DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	infos := []SessionInfo{}
	for rows.Next() {
		var si SessionInfo
		if err := rows.Scan(&si.ID, &si.Label, &si.CreatedAt, &si.Items, &si.Ops); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		infos = append(infos, si)
	}
	return infos, rows.Err()
}

func (s *Store) exists(ctx context.Context, sessionID string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT 1 FROM bracket_session WHERE id = ?`), sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up session: %w", err)
	}
	return nil
}
