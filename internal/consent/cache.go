package consent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "medgate/pkg/domain"
)

// lookupSource is the upstream the cache falls back to.
type lookupSource interface {
	ConsentsFor(ctx context.Context, patientID, granteeID id.UserID) ([]Consent, error)
}

// CachedLookup is a read-through Redis cache in front of a consent lookup.
// Authorization checks hit the (patient, grantee) pair on every protected
// read, so the pair list is the natural cache unit. The gateway invalidates
// the pair after every grant or revoke; the short TTL bounds staleness if an
// invalidation is lost.
//
// Cache failures degrade to the source: a broken Redis never blocks an
// authorization decision.
type CachedLookup struct {
	source lookupSource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedLookup(source lookupSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{source: source, client: client, ttl: ttl, logger: logger}
}

func cacheKey(patientID, granteeID id.UserID) string {
	return "medgate:consents:" + patientID.String() + ":" + granteeID.String()
}

// cachedConsent is the wire form stored in Redis. IDs are serialized as
// strings so the payload stays readable in redis-cli.
type cachedConsent struct {
	ID         string     `json:"id"`
	PatientID  string     `json:"patient_id"`
	GranteeID  string     `json:"grantee_id"`
	Scope      string     `json:"scope"`
	Purpose    string     `json:"purpose,omitempty"`
	ValidFrom  time.Time  `json:"valid_from"`
	ValidUntil time.Time  `json:"valid_until"`
	Status     string     `json:"status"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	Version    int64      `json:"version"`
}

func (l *CachedLookup) ConsentsFor(ctx context.Context, patientID, granteeID id.UserID) ([]Consent, error) {
	key := cacheKey(patientID, granteeID)

	raw, err := l.client.Get(ctx, key).Bytes()
	if err == nil {
		if consents, decodeErr := decodeCached(raw); decodeErr == nil {
			return consents, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		l.client.Del(ctx, key)
	} else if err != redis.Nil {
		l.logger.WarnContext(ctx, "consent cache read failed", "error", err)
	}

	consents, err := l.source.ConsentsFor(ctx, patientID, granteeID)
	if err != nil {
		return nil, err
	}

	if encoded, encodeErr := encodeCached(consents); encodeErr == nil {
		if setErr := l.client.Set(ctx, key, encoded, l.ttl).Err(); setErr != nil {
			l.logger.WarnContext(ctx, "consent cache write failed", "error", setErr)
		}
	}
	return consents, nil
}

// Invalidate drops the cached pair. Called after every grant and revoke so
// a freshly revoked consent is seen by the very next authorization check.
func (l *CachedLookup) Invalidate(ctx context.Context, patientID, granteeID id.UserID) {
	if err := l.client.Del(ctx, cacheKey(patientID, granteeID)).Err(); err != nil {
		l.logger.WarnContext(ctx, "consent cache invalidation failed",
			"patient_id", patientID.String(),
			"grantee_id", granteeID.String(),
			"error", err,
		)
	}
}

func encodeCached(consents []Consent) ([]byte, error) {
	entries := make([]cachedConsent, 0, len(consents))
	for _, c := range consents {
		entries = append(entries, cachedConsent{
			ID:         c.ID.String(),
			PatientID:  c.PatientID.String(),
			GranteeID:  c.GranteeID.String(),
			Scope:      c.Scope.String(),
			Purpose:    c.Purpose,
			ValidFrom:  c.ValidFrom,
			ValidUntil: c.ValidUntil,
			Status:     string(c.Status),
			RevokedAt:  c.RevokedAt,
			Version:    c.Version,
		})
	}
	return json.Marshal(entries)
}

func decodeCached(raw []byte) ([]Consent, error) {
	var entries []cachedConsent
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	out := make([]Consent, 0, len(entries))
	for _, e := range entries {
		cID, err := id.ParseConsentID(e.ID)
		if err != nil {
			return nil, err
		}
		patientID, err := id.ParseUserID(e.PatientID)
		if err != nil {
			return nil, err
		}
		granteeID, err := id.ParseUserID(e.GranteeID)
		if err != nil {
			return nil, err
		}
		out = append(out, Consent{
			ID:         cID,
			PatientID:  patientID,
			GranteeID:  granteeID,
			Scope:      id.Scope(e.Scope),
			Purpose:    e.Purpose,
			ValidFrom:  e.ValidFrom,
			ValidUntil: e.ValidUntil,
			Status:     Status(e.Status),
			RevokedAt:  e.RevokedAt,
			Version:    e.Version,
		})
	}
	return out, nil
}
