package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps sessions in the dialog_sessions table.
type PostgresStore struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

var _ Store = (*PostgresStore)(nil)

type sessionRow struct {
	Flow      string    `db:"flow"`
	State     string    `db:"state"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewPostgresStore returns a store over db. Rows older than ttl are treated as absent when ttl > 0.
func NewPostgresStore(db *sqlx.DB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl, now: time.Now}
}

const (
	selectSessionSQL = `SELECT flow, state, data, updated_at FROM dialog_sessions WHERE user_id = $1`
	upsertSessionSQL = `INSERT INTO dialog_sessions (user_id, flow, state, data, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE
SET flow = EXCLUDED.flow, state = EXCLUDED.state, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	deleteSessionSQL = `DELETE FROM dialog_sessions WHERE user_id = $1`
)

// Get loads the user's session row.
func (p *PostgresStore) Get(ctx context.Context, userID int64) (*Session, bool, error) {
	var row sessionRow
	err := p.db.GetContext(ctx, &row, selectSessionSQL, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select session: %w", err)
	}
	s := &Session{Flow: row.Flow, State: row.State, UpdatedAt: row.UpdatedAt}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &s.Data); err != nil {
			return nil, false, fmt.Errorf("decode session data: %w", err)
		}
	}
	if expired(s, p.ttl, p.now()) {
		return nil, false, nil
	}
	return s, true, nil
}

// Save upserts the user's session row.
func (p *PostgresStore) Save(ctx context.Context, userID int64, s *Session) error {
	if s == nil {
		return ErrNoSession
	}
	data, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, upsertSessionSQL, userID, s.Flow, s.State, string(data), p.now().UTC()); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Clear deletes the user's session row.
func (p *PostgresStore) Clear(ctx context.Context, userID int64) error {
	if _, err := p.db.ExecContext(ctx, deleteSessionSQL, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
