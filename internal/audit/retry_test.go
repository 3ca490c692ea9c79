package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAlerter struct {
	calls int
}

func (a *recordingAlerter) AuditAppendFailed(context.Context, Record, error) {
	a.calls++
}

func TestRetrier_EnqueueEscalatesOnce(t *testing.T) {
	alerter := &recordingAlerter{}
	retrier := NewRetrier(NewInMemoryStore(), alerter, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	retrier.Enqueue(context.Background(), validLedgerRecord(), errors.New("store down"))

	assert.Equal(t, 1, alerter.calls)
	assert.Equal(t, 1, retrier.PendingCount())

	// Draining does not re-alert.
	retrier.drain(context.Background())
	assert.Equal(t, 1, alerter.calls)
	assert.Equal(t, 0, retrier.PendingCount())
}

func TestRetrier_DrainMakesRecordsDurable(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	retrier := NewRetrier(store, &recordingAlerter{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first := validLedgerRecord()
	second := validLedgerRecord()
	retrier.Enqueue(ctx, first, errors.New("store down"))
	retrier.Enqueue(ctx, second, errors.New("store down"))
	require.Equal(t, 2, retrier.PendingCount())

	retrier.drain(ctx)
	assert.Equal(t, 0, retrier.PendingCount())

	for _, rec := range []Record{first, second} {
		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.TargetID, got.TargetID)
	}
}

func TestRetrier_FailedRecordsStayQueued(t *testing.T) {
	ctx := context.Background()
	inner := NewInMemoryStore()
	store := &failingStore{Store: inner, appendErr: errors.New("still down")}
	retrier := NewRetrier(store, &recordingAlerter{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := validLedgerRecord()
	retrier.Enqueue(ctx, rec, errors.New("store down"))

	retrier.drain(ctx)
	assert.Equal(t, 1, retrier.PendingCount())

	// Once the store recovers the record lands.
	store.appendErr = nil
	retrier.drain(ctx)
	assert.Equal(t, 0, retrier.PendingCount())

	_, err := inner.Get(ctx, rec.ID)
	assert.NoError(t, err)
}

func TestRetrier_DuplicateRecordIsHarmless(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	retrier := NewRetrier(store, &recordingAlerter{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// The append actually landed before the failure surfaced upstream.
	rec := validLedgerRecord()
	_, _, err := store.Append(ctx, rec)
	require.NoError(t, err)

	retrier.Enqueue(ctx, rec, errors.New("connection reset"))
	retrier.drain(ctx)
	assert.Equal(t, 0, retrier.PendingCount())

	page, _, err := store.QueryByTarget(ctx, rec.TargetID, Cursor{}, 0)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
