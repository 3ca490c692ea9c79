package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medgate/internal/audit"
	"medgate/internal/consent"
	"medgate/internal/record"
	"medgate/internal/transport/http/mocks"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/gateway_mocks.go -package=mocks Gateway
type HandlerSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockGateway) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	gateway := mocks.NewMockGateway(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(gateway, logger).Register(r)
	return r, gateway
}

func (s *HandlerSuite) TestCreateRecord() {
	r, gateway := newTestRouter(s.T())
	actor := testutil.Actor(id.RoleDoctor)
	patientID := id.NewUserID()

	stored := record.ProtectedResource{
		ID:             id.NewResourceID(),
		OwnerPatientID: patientID,
		Category:       id.ScopeLabResults,
		CreatedBy:      actor.ID,
		CreatedAt:      time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Version:        1,
	}
	gateway.EXPECT().
		CreateResource(gomock.Any(), actor, record.CreateParams{
			OwnerPatientID: patientID,
			Category:       id.ScopeLabResults,
			DeclaredAuthor: actor.ID,
		}).
		Return(stored, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/records", CreateRecordRequest{
		OwnerPatientID: patientID.String(),
		Category:       "lab_results",
		AuthorID:       actor.ID.String(),
	})
	req = testutil.WithActor(req, actor)

	rr := testutil.DoRequest(r, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[RecordResponse](s.T(), rr)
	assert.Equal(s.T(), stored.ID.String(), resp.ID)
	assert.Equal(s.T(), "lab_results", resp.Category)
	assert.Equal(s.T(), actor.ID.String(), resp.CreatedBy)
}

func (s *HandlerSuite) TestCreateRecordRejectsUnknownCategory() {
	r, _ := newTestRouter(s.T())
	actor := testutil.Actor(id.RoleDoctor)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/records", CreateRecordRequest{
		OwnerPatientID: id.NewUserID().String(),
		Category:       "horoscope",
	})
	req = testutil.WithActor(req, actor)

	rr := testutil.DoRequest(r, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestGetRecordDenied() {
	r, gateway := newTestRouter(s.T())
	actor := testutil.Actor(id.RoleDoctor)
	resourceID := id.NewResourceID()

	deniedErr := dErrors.Add(dErrors.New(dErrors.CodeUnauthorized, "access denied"), "reason", "no_consent")
	gateway.EXPECT().
		GetResource(gomock.Any(), actor, resourceID).
		Return(record.ProtectedResource{}, deniedErr)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/records/"+resourceID.String())
	req = testutil.WithActor(req, actor)

	rr := testutil.DoRequest(r, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "unauthorized")
	body := testutil.UnmarshalErrorResponse(s.T(), rr)
	assert.Equal(s.T(), "no_consent", body["reason"])
}

func (s *HandlerSuite) TestGetRecordRejectsMalformedID() {
	r, _ := newTestRouter(s.T())
	req := testutil.NewRequest(s.T(), http.MethodGet, "/records/not-a-uuid")
	req = testutil.WithActor(req, testutil.Actor(id.RolePatient))

	rr := testutil.DoRequest(r, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestUnauthenticatedRequestRejected() {
	r, _ := newTestRouter(s.T())
	req := testutil.NewRequest(s.T(), http.MethodGet, "/records/"+id.NewResourceID().String())

	rr := testutil.DoRequest(r, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "unauthorized")
}

func (s *HandlerSuite) TestDeleteRecordPassesDestructiveFlag() {
	r, gateway := newTestRouter(s.T())
	actor := testutil.Actor(id.RoleAdmin)
	resourceID := id.NewResourceID()

	gateway.EXPECT().
		DeleteResource(gomock.Any(), actor, resourceID, true).
		Return(record.ProtectedResource{ID: resourceID}, nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, "/records/"+resourceID.String()+"?destructive=true")
	req = testutil.WithActor(req, actor)

	rr := testutil.DoRequest(r, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *HandlerSuite) TestRevokeConsent() {
	r, gateway := newTestRouter(s.T())
	actor := testutil.Actor(id.RolePatient)
	consentID := id.NewConsentID()
	revokedAt := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	gateway.EXPECT().
		RevokeConsent(gomock.Any(), actor, consentID).
		Return(consent.Consent{
			ID:         consentID,
			PatientID:  actor.ID,
			GranteeID:  id.NewUserID(),
			Scope:      id.ScopePrescriptions,
			ValidFrom:  revokedAt.Add(-24 * time.Hour),
			ValidUntil: revokedAt.Add(24 * time.Hour),
			Status:     consent.StatusRevoked,
			RevokedAt:  &revokedAt,
		}, nil)

	req := testutil.NewRequest(s.T(), http.MethodPost, "/consents/"+consentID.String()+"/revoke")
	req = testutil.WithActor(req, actor)

	rr := testutil.DoRequest(r, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[ConsentResponse](s.T(), rr)
	assert.Equal(s.T(), "revoked", resp.Status)
	assert.Equal(s.T(), "revoked", resp.EffectiveStatus)
}

func (s *HandlerSuite) TestAuditTrailCursorRoundTrip() {
	r, gateway := newTestRouter(s.T())
	actor := testutil.Actor(id.RoleAdmin)
	targetID := id.NewResourceID().String()

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	auditID := id.DeriveAuditID(id.NewOperationID(), "record.read")
	cursor := audit.Cursor{Timestamp: ts, ID: auditID}

	gateway.EXPECT().
		AuditTrail(gomock.Any(), actor, targetID, cursor, 10).
		Return([]audit.Record{}, cursor, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet,
		"/audit/"+targetID+"?cursor_time="+ts.Format(time.RFC3339Nano)+"&cursor_id="+auditID.String()+"&limit=10")
	req = testutil.WithActor(req, actor)

	rr := testutil.DoRequest(r, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[AuditPageResponse](s.T(), rr)
	require.NotNil(s.T(), resp.NextTime)
	assert.Equal(s.T(), auditID.String(), resp.NextID)
}

func (s *HandlerSuite) TestAuditTrailRejectsHalfCursor() {
	r, _ := newTestRouter(s.T())
	req := testutil.NewRequest(s.T(), http.MethodGet,
		"/audit/"+id.NewResourceID().String()+"?cursor_id="+id.NewConsentID().String())
	req = testutil.WithActor(req, testutil.Actor(id.RoleAdmin))

	rr := testutil.DoRequest(r, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}
