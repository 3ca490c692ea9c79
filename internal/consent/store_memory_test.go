package consent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medgate/pkg/domain"
	"medgate/pkg/platform/sentinel"
)

func newStoredConsent(patientID, granteeID id.UserID) Consent {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return Consent{
		ID:         id.NewConsentID(),
		PatientID:  patientID,
		GranteeID:  granteeID,
		Scope:      id.ScopeLabResults,
		ValidFrom:  from,
		ValidUntil: from.Add(90 * 24 * time.Hour),
		Status:     StatusActive,
	}
}

func TestInMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	c := newStoredConsent(id.NewUserID(), id.NewUserID())

	require.NoError(t, store.Create(ctx, c))

	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, int64(1), got.Version)

	assert.ErrorIs(t, store.Create(ctx, c), sentinel.ErrAlreadyExists)

	_, err = store.Get(ctx, id.NewConsentID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_OptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	c := newStoredConsent(id.NewUserID(), id.NewUserID())
	require.NoError(t, store.Create(ctx, c))

	first, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	second := first

	first.Status = StatusRevoked
	updated, err := store.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	// The stale copy lost the race.
	second.Status = StatusRevoked
	_, err = store.Update(ctx, second)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	_, err = store.Update(ctx, newStoredConsent(id.NewUserID(), id.NewUserID()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_Listing(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	patient := id.NewUserID()
	doctor := id.NewUserID()
	other := id.NewUserID()

	first := newStoredConsent(patient, doctor)
	second := newStoredConsent(patient, other)
	third := newStoredConsent(patient, doctor)
	for _, c := range []Consent{first, second, third} {
		require.NoError(t, store.Create(ctx, c))
	}

	all, err := store.ListByPatient(ctx, patient)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, third.ID, all[2].ID)

	pair, err := store.ListByPatientGrantee(ctx, patient, doctor)
	require.NoError(t, err)
	require.Len(t, pair, 2)
	assert.Equal(t, first.ID, pair[0].ID)
	assert.Equal(t, third.ID, pair[1].ID)

	empty, err := store.ListByPatient(ctx, id.NewUserID())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
