package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	id "medgate/pkg/domain"
	"medgate/pkg/platform/sentinel"
)

// PostgresStore persists consents in PostgreSQL.
//
// Schema expectations: table consents keyed by id with a secondary index on
// patient_id, a monotonically increasing seq column for insertion-order
// listings, and a version column for optimistic writes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const pgUniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, c Consent) error {
	query := `
		INSERT INTO consents (
			id, patient_id, grantee_id, scope, purpose,
			valid_from, valid_until, status, revoked_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID),
		uuid.UUID(c.PatientID),
		uuid.UUID(c.GranteeID),
		c.Scope.String(),
		c.Purpose,
		c.ValidFrom,
		c.ValidUntil,
		string(c.Status),
		c.RevokedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert consent: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, consentID id.ConsentID) (Consent, error) {
	query := `
		SELECT id, patient_id, grantee_id, scope, purpose,
		       valid_from, valid_until, status, revoked_at, version
		FROM consents
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(consentID)))
}

// Update applies an optimistic write: the row must still be at the version
// the caller read. Zero rows affected means a concurrent writer won.
func (s *PostgresStore) Update(ctx context.Context, c Consent) (Consent, error) {
	query := `
		UPDATE consents
		SET status = $1, revoked_at = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`
	res, err := s.db.ExecContext(ctx, query,
		string(c.Status),
		c.RevokedAt,
		uuid.UUID(c.ID),
		c.Version,
	)
	if err != nil {
		return Consent{}, fmt.Errorf("update consent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Consent{}, fmt.Errorf("update consent rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing row from a version clash.
		if _, getErr := s.Get(ctx, c.ID); errors.Is(getErr, sentinel.ErrNotFound) {
			return Consent{}, sentinel.ErrNotFound
		}
		return Consent{}, sentinel.ErrConflict
	}
	c.Version++
	return c, nil
}

func (s *PostgresStore) ListByPatient(ctx context.Context, patientID id.UserID) ([]Consent, error) {
	query := `
		SELECT id, patient_id, grantee_id, scope, purpose,
		       valid_from, valid_until, status, revoked_at, version
		FROM consents
		WHERE patient_id = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(patientID))
	if err != nil {
		return nil, fmt.Errorf("list consents by patient: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

func (s *PostgresStore) ListByPatientGrantee(ctx context.Context, patientID, granteeID id.UserID) ([]Consent, error) {
	query := `
		SELECT id, patient_id, grantee_id, scope, purpose,
		       valid_from, valid_until, status, revoked_at, version
		FROM consents
		WHERE patient_id = $1 AND grantee_id = $2
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(patientID), uuid.UUID(granteeID))
	if err != nil {
		return nil, fmt.Errorf("list consents by patient and grantee: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row rowScanner) (Consent, error) {
	var (
		c         Consent
		cID       uuid.UUID
		patientID uuid.UUID
		granteeID uuid.UUID
		scope     string
		status    string
		revokedAt sql.NullTime
	)
	err := row.Scan(&cID, &patientID, &granteeID, &scope, &c.Purpose,
		&c.ValidFrom, &c.ValidUntil, &status, &revokedAt, &c.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Consent{}, sentinel.ErrNotFound
		}
		return Consent{}, fmt.Errorf("scan consent: %w", err)
	}
	c.ID = id.ConsentID(cID)
	c.PatientID = id.UserID(patientID)
	c.GranteeID = id.UserID(granteeID)
	c.Scope = id.Scope(scope)
	c.Status = Status(status)
	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}
	return c, nil
}

func (s *PostgresStore) scanAll(rows *sql.Rows) ([]Consent, error) {
	var out []Consent
	for rows.Next() {
		c, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consents: %w", err)
	}
	return out, nil
}

// Schema is the DDL the store expects. Exposed for tests and bootstrap
// tooling; production migrations live outside the binary.
const Schema = `
CREATE TABLE IF NOT EXISTS consents (
	id UUID PRIMARY KEY,
	patient_id UUID NOT NULL,
	grantee_id UUID NOT NULL,
	scope TEXT NOT NULL,
	purpose TEXT NOT NULL DEFAULT '',
	valid_from TIMESTAMPTZ NOT NULL,
	valid_until TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	revoked_at TIMESTAMPTZ,
	version BIGINT NOT NULL DEFAULT 1,
	seq BIGSERIAL
);
CREATE INDEX IF NOT EXISTS consents_patient_idx ON consents (patient_id, seq);
CREATE INDEX IF NOT EXISTS consents_patient_grantee_idx ON consents (patient_id, grantee_id, seq);
`
