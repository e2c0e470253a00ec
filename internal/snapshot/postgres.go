package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odyssey-erp/procureflow/internal/platform/db"
)

// DefaultSnapshotID names the single row written by the server.
const DefaultSnapshotID = "default"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS procurement_snapshots (
	id       TEXT PRIMARY KEY,
	payload  JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	loadSQL   = `SELECT payload FROM procurement_snapshots WHERE id = $1`
	upsertSQL = `INSERT INTO procurement_snapshots (id, payload, saved_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at`
)

// Conn is the subset of *pgxpool.Pool used by Postgres.
type Conn interface {
	db.Beginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores the snapshot as one JSONB row.
type Postgres struct {
	conn Conn
	id   string
}

// NewPostgres wraps conn. An empty id selects DefaultSnapshotID.
func NewPostgres(conn Conn, id string) *Postgres {
	if id == "" {
		id = DefaultSnapshotID
	}
	return &Postgres{conn: conn, id: id}
}

// EnsureSchema creates the snapshot table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.conn.Exec(ctx, createTableSQL); err != nil {
		return wrapPg("create table", err)
	}
	return nil
}

// Load returns the stored payload, or nil when the row does not exist.
func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := p.conn.QueryRow(ctx, loadSQL, p.id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapPg("load", err)
	}
	return payload, nil
}

// Save upserts the payload inside a transaction.
func (p *Postgres) Save(ctx context.Context, payload []byte) error {
	return db.WithTx(ctx, p.conn, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, upsertSQL, p.id, payload)
		if err != nil {
			return wrapPg("save", err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("snapshot: postgres save: %d rows affected", tag.RowsAffected())
		}
		return nil
	})
}

func wrapPg(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("snapshot: postgres %s (%s): %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("snapshot: postgres %s: %w", op, err)
}
