package record

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgate/internal/audit"
	"medgate/internal/authz"
	"medgate/internal/consent"
	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/testutil"
)

// TestConsentedAccessFlow walks the headline flow end to end: a doctor gains
// access through a consent grant, loses it the moment the patient revokes,
// and the ledger tells the whole story.
func TestConsentedAccessFlow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	consentStore := consent.NewInMemoryStore()
	auditStore := audit.NewInMemoryStore()
	gateway := NewGateway(
		NewInMemoryStore(),
		consent.NewService(consentStore, logger),
		authz.NewEngine(consent.NewStoreLookup(consentStore), nil, logger),
		audit.NewLedger(auditStore, nil, nil, logger),
		&recordingEscalator{},
		nil,
		logger,
	)

	patient := testutil.Actor(id.RolePatient)
	doctor := testutil.Actor(id.RoleDoctor)
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	step := 0
	nextCtx := func() context.Context {
		step++
		return testutil.OperationContext(start.Add(time.Duration(step) * time.Second))
	}

	var (
		res ProtectedResource
		c   consent.Consent
		err error
	)

	testutil.Given(t, "a doctor has authored a lab result for the patient", func(t *testing.T) {
		res, err = gateway.CreateResource(nextCtx(), doctor, CreateParams{
			OwnerPatientID: patient.ID,
			Category:       id.ScopeLabResults,
			Metadata:       map[string]string{"test": "hba1c"},
		})
		require.NoError(t, err)
	})

	other := testutil.Actor(id.RoleDoctor)

	testutil.When(t, "another doctor reads without consent", func(t *testing.T) {
		_, err = gateway.GetResource(nextCtx(), other, res.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	testutil.When(t, "the patient grants that doctor lab access", func(t *testing.T) {
		c, err = gateway.GrantConsent(nextCtx(), patient, consent.CreateParams{
			PatientID:  patient.ID,
			GranteeID:  other.ID,
			Scope:      id.ScopeLabResults,
			Purpose:    "second opinion",
			ValidUntil: start.Add(30 * 24 * time.Hour),
		})
		require.NoError(t, err)
	})

	testutil.Then(t, "the read succeeds", func(t *testing.T) {
		got, err := gateway.GetResource(nextCtx(), other, res.ID)
		require.NoError(t, err)
		assert.Equal(t, "hba1c", got.Metadata["test"])
	})

	testutil.When(t, "the patient revokes the consent", func(t *testing.T) {
		_, err = gateway.RevokeConsent(nextCtx(), patient, c.ID)
		require.NoError(t, err)
	})

	testutil.Then(t, "the very next read is denied", func(t *testing.T) {
		_, err = gateway.GetResource(nextCtx(), other, res.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		reason, ok := dErrors.Load(err, "reason")
		require.True(t, ok)
		assert.Equal(t, domain.ReasonNoConsent.String(), reason)
	})

	testutil.Then(t, "the ledger shows create, denial, read, denial", func(t *testing.T) {
		admin := testutil.Actor(id.RoleAdmin)
		trail, _, err := gateway.AuditTrail(nextCtx(), admin, res.ID.String(), audit.Cursor{}, 0)
		require.NoError(t, err)
		require.Len(t, trail, 4)

		outcomes := make([]audit.Outcome, 0, len(trail))
		for _, rec := range trail {
			outcomes = append(outcomes, rec.Outcome)
		}
		assert.Equal(t, []audit.Outcome{
			audit.OutcomeAllowed,
			audit.OutcomeDenied,
			audit.OutcomeAllowed,
			audit.OutcomeDenied,
		}, outcomes)
	})
}
