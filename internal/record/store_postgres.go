package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	id "medgate/pkg/domain"
	"medgate/pkg/platform/sentinel"
)

// PostgresStore persists protected resources in Postgres with optimistic
// concurrency on the version column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is applied by migrations and by the integration test harness.
const Schema = `
CREATE TABLE IF NOT EXISTS protected_resources (
	id UUID PRIMARY KEY,
	owner_patient_id UUID NOT NULL,
	category TEXT NOT NULL,
	created_by UUID NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	archived_at TIMESTAMPTZ,
	version BIGINT NOT NULL,
	seq BIGSERIAL
);
CREATE INDEX IF NOT EXISTS idx_protected_resources_owner ON protected_resources (owner_patient_id, seq);
`

func (s *PostgresStore) Create(ctx context.Context, res ProtectedResource) error {
	metadata, err := json.Marshal(metadataOrEmpty(res.Metadata))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO protected_resources
			(id, owner_patient_id, category, created_by, metadata, created_at, updated_at, archived_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)`,
		res.ID.String(), res.OwnerPatientID.String(), res.Category.String(), res.CreatedBy.String(),
		metadata, res.CreatedAt, res.UpdatedAt, res.ArchivedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, resourceID id.ResourceID) (ProtectedResource, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_patient_id, category, created_by, metadata, created_at, updated_at, archived_at, version
		FROM protected_resources WHERE id = $1`,
		resourceID.String(),
	)
	return scanResource(row)
}

func (s *PostgresStore) Update(ctx context.Context, res ProtectedResource) (ProtectedResource, error) {
	metadata, err := json.Marshal(metadataOrEmpty(res.Metadata))
	if err != nil {
		return ProtectedResource{}, fmt.Errorf("marshal metadata: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE protected_resources
		SET metadata = $1, updated_at = $2, archived_at = $3, version = version + 1
		WHERE id = $4 AND version = $5`,
		metadata, res.UpdatedAt, res.ArchivedAt, res.ID.String(), res.Version,
	)
	if err != nil {
		return ProtectedResource{}, fmt.Errorf("update resource: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ProtectedResource{}, fmt.Errorf("update resource: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.Get(ctx, res.ID); errors.Is(getErr, sentinel.ErrNotFound) {
			return ProtectedResource{}, sentinel.ErrNotFound
		}
		return ProtectedResource{}, sentinel.ErrConflict
	}
	res.Version++
	return res, nil
}

func (s *PostgresStore) ListByPatient(ctx context.Context, patientID id.UserID) ([]ProtectedResource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_patient_id, category, created_by, metadata, created_at, updated_at, archived_at, version
		FROM protected_resources WHERE owner_patient_id = $1 ORDER BY seq`,
		patientID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []ProtectedResource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (ProtectedResource, error) {
	var (
		res                        ProtectedResource
		rawID, rawOwner, rawAuthor string
		rawCategory                string
		rawMetadata                []byte
		archivedAt                 sql.NullTime
	)
	err := row.Scan(&rawID, &rawOwner, &rawCategory, &rawAuthor, &rawMetadata,
		&res.CreatedAt, &res.UpdatedAt, &archivedAt, &res.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return ProtectedResource{}, sentinel.ErrNotFound
	}
	if err != nil {
		return ProtectedResource{}, fmt.Errorf("scan resource: %w", err)
	}

	if res.ID, err = id.ParseResourceID(rawID); err != nil {
		return ProtectedResource{}, fmt.Errorf("scan resource id: %w", err)
	}
	if res.OwnerPatientID, err = id.ParseUserID(rawOwner); err != nil {
		return ProtectedResource{}, fmt.Errorf("scan owner id: %w", err)
	}
	if res.CreatedBy, err = id.ParseUserID(rawAuthor); err != nil {
		return ProtectedResource{}, fmt.Errorf("scan author id: %w", err)
	}
	if res.Category, err = id.ParseScope(rawCategory); err != nil {
		return ProtectedResource{}, fmt.Errorf("scan category: %w", err)
	}
	if err := json.Unmarshal(rawMetadata, &res.Metadata); err != nil {
		return ProtectedResource{}, fmt.Errorf("scan metadata: %w", err)
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		res.ArchivedAt = &t
	}
	return res, nil
}

func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
