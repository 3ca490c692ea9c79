package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "medgate/pkg/domain"
	"medgate/pkg/platform/sentinel"
)

// PostgresStore persists the ledger in PostgreSQL.
//
// Idempotency rides on the primary key: ON CONFLICT (id) DO NOTHING turns a
// retried append into a read of the already-stored record. The
// (target_id, timestamp, id) index serves chronological keyset pagination.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) (Record, bool, error) {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return Record{}, false, fmt.Errorf("marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_records (
			id, actor_id, action, target_id, timestamp, outcome, reason, details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(rec.ID),
		uuid.UUID(rec.ActorID),
		rec.Action.String(),
		rec.TargetID,
		rec.Timestamp,
		string(rec.Outcome),
		rec.Reason,
		details,
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("insert audit record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Record{}, false, fmt.Errorf("insert audit record rows affected: %w", err)
	}
	if affected == 0 {
		existing, getErr := s.Get(ctx, rec.ID)
		if getErr != nil {
			return Record{}, false, fmt.Errorf("load existing audit record: %w", getErr)
		}
		return existing, false, nil
	}
	return rec, true, nil
}

func (s *PostgresStore) Get(ctx context.Context, auditID id.AuditID) (Record, error) {
	query := `
		SELECT id, actor_id, action, target_id, timestamp, outcome, reason, details
		FROM audit_records
		WHERE id = $1
	`
	return scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(auditID)))
}

func (s *PostgresStore) QueryByTarget(ctx context.Context, targetID string, cursor Cursor, limit int) ([]Record, Cursor, error) {
	query := `
		SELECT id, actor_id, action, target_id, timestamp, outcome, reason, details
		FROM audit_records
		WHERE target_id = $1 AND (timestamp, id) > ($2, $3)
		ORDER BY timestamp, id
		LIMIT $4
	`
	rows, err := s.db.QueryContext(ctx, query,
		targetID, cursor.Timestamp, uuid.UUID(cursor.ID), limit)
	if err != nil {
		return nil, cursor, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	next := cursor
	var page []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, cursor, err
		}
		page = append(page, rec)
		next = Cursor{Timestamp: rec.Timestamp, ID: rec.ID}
	}
	if err := rows.Err(); err != nil {
		return nil, cursor, fmt.Errorf("iterate audit records: %w", err)
	}
	return page, next, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		recID   uuid.UUID
		actorID uuid.UUID
		action  string
		outcome string
		details []byte
	)
	err := row.Scan(&recID, &actorID, &action, &rec.TargetID,
		&rec.Timestamp, &outcome, &rec.Reason, &details)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("scan audit record: %w", err)
	}
	rec.ID = id.AuditID(recID)
	rec.ActorID = id.UserID(actorID)
	rec.Action = id.Action(action)
	rec.Outcome = Outcome(outcome)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &rec.Details); err != nil {
			return Record{}, fmt.Errorf("unmarshal audit details: %w", err)
		}
	}
	return rec, nil
}

// Schema is the DDL the store expects. Exposed for tests and bootstrap
// tooling; production migrations live outside the binary.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id UUID PRIMARY KEY,
	actor_id UUID NOT NULL,
	action TEXT NOT NULL,
	target_id TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	outcome TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	details JSONB
);
CREATE INDEX IF NOT EXISTS audit_records_target_idx ON audit_records (target_id, timestamp, id);
`
