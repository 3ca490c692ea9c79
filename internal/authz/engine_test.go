package authz

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgate/internal/consent"
	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/requestcontext"
)

// lookupFunc adapts a function to the ConsentLookup interface.
type lookupFunc func(ctx context.Context, patientID, granteeID id.UserID) ([]consent.Consent, error)

func (f lookupFunc) ConsentsFor(ctx context.Context, patientID, granteeID id.UserID) ([]consent.Consent, error) {
	return f(ctx, patientID, granteeID)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngine_SkipsLookupWhenStaticRulesDecide(t *testing.T) {
	calls := 0
	engine := NewEngine(lookupFunc(func(context.Context, id.UserID, id.UserID) ([]consent.Consent, error) {
		calls++
		return nil, nil
	}), nil, discardLogger())

	patient := domain.Actor{ID: id.NewUserID(), Role: id.RolePatient}
	res := domain.Resource{ID: id.NewResourceID(), OwnerPatientID: patient.ID, Category: id.ScopeLabResults}

	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	d, err := engine.Authorize(ctx, Request{Actor: patient, Action: id.ActionRead, Resource: res})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, calls, "owner access must not trigger a consent lookup")
}

func TestEngine_ConsultsConsentsForThirdParties(t *testing.T) {
	patientID := id.NewUserID()
	doctor := domain.Actor{ID: id.NewUserID(), Role: id.RoleDoctor}
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	engine := NewEngine(lookupFunc(func(_ context.Context, p, g id.UserID) ([]consent.Consent, error) {
		assert.Equal(t, patientID, p)
		assert.Equal(t, doctor.ID, g)
		return []consent.Consent{{
			ID:         id.NewConsentID(),
			PatientID:  p,
			GranteeID:  g,
			Scope:      id.ScopeLabResults,
			ValidFrom:  now.Add(-time.Hour),
			ValidUntil: now.Add(time.Hour),
			Status:     consent.StatusActive,
		}}, nil
	}), nil, discardLogger())

	res := domain.Resource{ID: id.NewResourceID(), OwnerPatientID: patientID, Category: id.ScopeLabResults, CreatedBy: id.NewUserID()}
	ctx := requestcontext.WithTime(context.Background(), now)

	d, err := engine.Authorize(ctx, Request{Actor: doctor, Action: id.ActionRead, Resource: res})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, domain.ReasonConsentGranted, d.Reason)
}

func TestEngine_LookupFailureIsAnErrorNotADenial(t *testing.T) {
	engine := NewEngine(lookupFunc(func(context.Context, id.UserID, id.UserID) ([]consent.Consent, error) {
		return nil, dErrors.New(dErrors.CodeTimeout, "consent lookup timed out")
	}), nil, discardLogger())

	doctor := domain.Actor{ID: id.NewUserID(), Role: id.RoleDoctor}
	res := domain.Resource{ID: id.NewResourceID(), OwnerPatientID: id.NewUserID(), Category: id.ScopeLabResults, CreatedBy: id.NewUserID()}

	_, err := engine.Authorize(context.Background(), Request{Actor: doctor, Action: id.ActionRead, Resource: res})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
