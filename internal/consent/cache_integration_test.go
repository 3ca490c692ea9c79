//go:build integration

package consent_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"medgate/internal/consent"
	id "medgate/pkg/domain"
	"medgate/pkg/testutil/containers"
)

// countingSource wraps an in-memory store lookup and counts upstream hits.
type countingSource struct {
	inner *consent.StoreLookup
	hits  atomic.Int32
}

func (s *countingSource) ConsentsFor(ctx context.Context, patientID, granteeID id.UserID) ([]consent.Consent, error) {
	s.hits.Add(1)
	return s.inner.ConsentsFor(ctx, patientID, granteeID)
}

type CachedLookupSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	store  *consent.InMemoryStore
	source *countingSource
	lookup *consent.CachedLookup
}

func TestCachedLookupSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedLookupSuite))
}

func (s *CachedLookupSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CachedLookupSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.store = consent.NewInMemoryStore()
	s.source = &countingSource{inner: consent.NewStoreLookup(s.store)}
	s.lookup = consent.NewCachedLookup(s.source, s.redis.Client, time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *CachedLookupSuite) seedConsent(patientID, granteeID id.UserID) consent.Consent {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	c := consent.Consent{
		ID:         id.NewConsentID(),
		PatientID:  patientID,
		GranteeID:  granteeID,
		Scope:      id.ScopeLabResults,
		Purpose:    "treatment",
		ValidFrom:  from,
		ValidUntil: from.Add(90 * 24 * time.Hour),
		Status:     consent.StatusActive,
	}
	s.Require().NoError(s.store.Create(context.Background(), c))
	return c
}

func (s *CachedLookupSuite) TestReadThrough() {
	ctx := context.Background()
	patient, doctor := id.NewUserID(), id.NewUserID()
	c := s.seedConsent(patient, doctor)

	first, err := s.lookup.ConsentsFor(ctx, patient, doctor)
	s.Require().NoError(err)
	s.Require().Len(first, 1)
	s.Equal(int32(1), s.source.hits.Load())

	// The second read is served from the cache.
	second, err := s.lookup.ConsentsFor(ctx, patient, doctor)
	s.Require().NoError(err)
	s.Require().Len(second, 1)
	s.Equal(c.ID, second[0].ID)
	s.Equal(c.Scope, second[0].Scope)
	s.True(c.ValidUntil.Equal(second[0].ValidUntil))
	s.Equal(int32(1), s.source.hits.Load())
}

func (s *CachedLookupSuite) TestInvalidateForcesFreshRead() {
	ctx := context.Background()
	patient, doctor := id.NewUserID(), id.NewUserID()
	c := s.seedConsent(patient, doctor)

	_, err := s.lookup.ConsentsFor(ctx, patient, doctor)
	s.Require().NoError(err)

	// Revoke behind the cache's back, then invalidate the pair.
	revokedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stored, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	stored.Status = consent.StatusRevoked
	stored.RevokedAt = &revokedAt
	_, err = s.store.Update(ctx, stored)
	s.Require().NoError(err)

	s.lookup.Invalidate(ctx, patient, doctor)

	consents, err := s.lookup.ConsentsFor(ctx, patient, doctor)
	s.Require().NoError(err)
	s.Require().Len(consents, 1)
	s.Equal(consent.StatusRevoked, consents[0].Status)
	s.Equal(int32(2), s.source.hits.Load())
}

func (s *CachedLookupSuite) TestCorruptEntryFallsBackToSource() {
	ctx := context.Background()
	patient, doctor := id.NewUserID(), id.NewUserID()
	s.seedConsent(patient, doctor)

	key := "medgate:consents:" + patient.String() + ":" + doctor.String()
	s.Require().NoError(s.redis.Client.Set(ctx, key, "not-json", time.Minute).Err())

	consents, err := s.lookup.ConsentsFor(ctx, patient, doctor)
	s.Require().NoError(err)
	s.Len(consents, 1)
	s.Equal(int32(1), s.source.hits.Load())
}

func (s *CachedLookupSuite) TestEmptyResultIsCachedToo() {
	ctx := context.Background()
	patient, doctor := id.NewUserID(), id.NewUserID()

	consents, err := s.lookup.ConsentsFor(ctx, patient, doctor)
	s.Require().NoError(err)
	s.Empty(consents)

	_, err = s.lookup.ConsentsFor(ctx, patient, doctor)
	s.Require().NoError(err)
	s.Equal(int32(1), s.source.hits.Load())
}
