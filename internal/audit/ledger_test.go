package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
)

// failingStore wraps an inner store and fails Append with a fixed error.
type failingStore struct {
	Store
	appendErr error
}

func (s *failingStore) Append(ctx context.Context, rec Record) (Record, bool, error) {
	if s.appendErr != nil {
		return Record{}, false, s.appendErr
	}
	return s.Store.Append(ctx, rec)
}

// recordingMirror counts Publish calls.
type recordingMirror struct {
	published []Record
}

func (m *recordingMirror) Publish(_ context.Context, rec Record) {
	m.published = append(m.published, rec)
}

func newTestLedger(store Store, mirror Mirror) *Ledger {
	return NewLedger(store, mirror, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validLedgerRecord() Record {
	return Record{
		ID:        id.DeriveAuditID(id.NewOperationID(), "record.read"),
		ActorID:   id.NewUserID(),
		Action:    id.ActionRead,
		TargetID:  "resource-1",
		Timestamp: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		Outcome:   OutcomeDenied,
		Reason:    "no_consent",
	}
}

func TestLedger_AppendValidation(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(NewInMemoryStore(), nil)

	t.Run("missing id", func(t *testing.T) {
		rec := validLedgerRecord()
		rec.ID = id.AuditID{}
		_, err := ledger.Append(ctx, rec)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("missing timestamp", func(t *testing.T) {
		rec := validLedgerRecord()
		rec.Timestamp = time.Time{}
		_, err := ledger.Append(ctx, rec)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("invalid action", func(t *testing.T) {
		rec := validLedgerRecord()
		rec.Action = id.Action("browse")
		_, err := ledger.Append(ctx, rec)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestLedger_AppendErrorTranslation(t *testing.T) {
	ctx := context.Background()

	t.Run("context expiry maps to timeout", func(t *testing.T) {
		ledger := newTestLedger(&failingStore{appendErr: context.DeadlineExceeded}, nil)
		_, err := ledger.Append(ctx, validLedgerRecord())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	t.Run("store failure maps to audit_write_failed", func(t *testing.T) {
		ledger := newTestLedger(&failingStore{appendErr: errors.New("disk on fire")}, nil)
		_, err := ledger.Append(ctx, validLedgerRecord())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAuditWriteFailed))
	})
}

func TestLedger_MirrorSeesEachRecordOnce(t *testing.T) {
	ctx := context.Background()
	mirror := &recordingMirror{}
	ledger := newTestLedger(NewInMemoryStore(), mirror)
	rec := validLedgerRecord()

	_, err := ledger.Append(ctx, rec)
	require.NoError(t, err)

	// The duplicate append succeeds but is not mirrored again.
	stored, err := ledger.Append(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
	assert.Len(t, mirror.published, 1)
}

func TestLedger_QueryByTargetClampsLimit(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	ledger := newTestLedger(store, nil)
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < maxQueryLimit+20; i++ {
		rec := validLedgerRecord()
		rec.Timestamp = base.Add(time.Duration(i) * time.Second)
		_, err := ledger.Append(ctx, rec)
		require.NoError(t, err)
	}

	page, _, err := ledger.QueryByTarget(ctx, "resource-1", Cursor{}, 0)
	require.NoError(t, err)
	assert.Len(t, page, maxQueryLimit)

	page, _, err = ledger.QueryByTarget(ctx, "resource-1", Cursor{}, maxQueryLimit+500)
	require.NoError(t, err)
	assert.Len(t, page, maxQueryLimit)

	page, _, err = ledger.QueryByTarget(ctx, "resource-1", Cursor{}, 7)
	require.NoError(t, err)
	assert.Len(t, page, 7)
}
