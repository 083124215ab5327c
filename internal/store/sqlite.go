package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Mayan-101/torc/internal/model/sim"
)

const participantsSchema = `
CREATE TABLE IF NOT EXISTS participants (
	session_id TEXT PRIMARY KEY,
	current_phase INTEGER NOT NULL DEFAULT 1,
	net_worth REAL NOT NULL,
	current_performance REAL NOT NULL DEFAULT 0,
	market_active INTEGER NOT NULL DEFAULT 0,
	phase1_data TEXT,
	phase2_data TEXT,
	phase3_data TEXT,
	sales_data TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// SQLiteStore persists sessions in a sqlite database. With the default
// in-memory DSN the lifetime matches the process, same as MemoryStore; a
// file DSN is accepted for local inspection.
type SQLiteStore struct {
	db *sql.DB
	// sqlite allows one writer at a time; serializing read-modify-write
	// here avoids busy errors and gives Update its atomicity.
	mu sync.Mutex
}

// NewSQLiteStore opens the database and ensures the schema exists.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// The shared in-memory database vanishes when its last connection
	// closes; keep one open for the life of the store.
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, participantsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create participants table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Create inserts a new session row.
func (s *SQLiteStore) Create(ctx context.Context, session *sim.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	salesJSON, err := json.Marshal(session.Sales)
	if err != nil {
		return fmt.Errorf("encode sales series: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO participants (session_id, current_phase, net_worth, current_performance, market_active, sales_data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.CurrentPhase, session.NetWorth, session.Performance,
		boolToInt(session.MarketActive), string(salesJSON),
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", session.ID, err)
	}
	return nil
}

// Get retrieves a session by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (sim.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, current_phase, net_worth, current_performance, market_active,
		        phase1_data, phase2_data, phase3_data, sales_data, created_at
		 FROM participants WHERE session_id = ?`, id)
	return scanSession(row)
}

// Update reads the row, applies the mutator, and writes the result back in
// one transaction.
func (s *SQLiteStore) Update(ctx context.Context, id string, mutate func(*sim.Session)) (sim.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sim.Session{}, fmt.Errorf("begin update for %s: %w", id, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT session_id, current_phase, net_worth, current_performance, market_active,
		        phase1_data, phase2_data, phase3_data, sales_data, created_at
		 FROM participants WHERE session_id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		return sim.Session{}, err
	}

	mutate(&session)

	salesJSON, err := json.Marshal(session.Sales)
	if err != nil {
		return sim.Session{}, fmt.Errorf("encode sales series: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE participants
		 SET current_phase = ?, net_worth = ?, current_performance = ?, market_active = ?,
		     phase1_data = ?, phase2_data = ?, phase3_data = ?, sales_data = ?
		 WHERE session_id = ?`,
		session.CurrentPhase, session.NetWorth, session.Performance,
		boolToInt(session.MarketActive),
		rawOrNil(session.PhaseAnswers[1]), rawOrNil(session.PhaseAnswers[2]),
		rawOrNil(session.PhaseAnswers[3]), string(salesJSON), id,
	)
	if err != nil {
		return sim.Session{}, fmt.Errorf("update session %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return sim.Session{}, fmt.Errorf("commit update for %s: %w", id, err)
	}
	return session, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (sim.Session, error) {
	var (
		session      sim.Session
		marketActive int
		phaseData    [3]sql.NullString
		salesJSON    string
		createdAt    string
	)

	err := row.Scan(&session.ID, &session.CurrentPhase, &session.NetWorth,
		&session.Performance, &marketActive,
		&phaseData[0], &phaseData[1], &phaseData[2], &salesJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sim.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return sim.Session{}, fmt.Errorf("scan session row: %w", err)
	}

	session.MarketActive = marketActive != 0

	if err := json.Unmarshal([]byte(salesJSON), &session.Sales); err != nil {
		return sim.Session{}, fmt.Errorf("decode sales series: %w", err)
	}

	session.PhaseAnswers = make(map[int]json.RawMessage)
	for i, data := range phaseData {
		if data.Valid && data.String != "" {
			session.PhaseAnswers[i+1] = json.RawMessage(data.String)
		}
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return sim.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	session.CreatedAt = ts

	return session, nil
}

func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
