//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseUserID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE consents;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)

		if err == nil && id.IsNil() {
			t.Error("accepted input produced the nil id")
		}
		if err != nil && !id.IsNil() {
			t.Error("rejected input produced a non-nil id")
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures all ID types validate consistently; divergent
// validation across id types would be a hole at the trust boundary.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errConsent := ParseConsentID(input)
		_, errResource := ParseResourceID(input)
		_, errOperation := ParseOperationID(input)
		_, errAudit := ParseAuditID(input)

		if errUser == nil {
			if errConsent != nil || errResource != nil || errOperation != nil || errAudit != nil {
				t.Error("inconsistent parsing across id types")
			}
		} else {
			if errConsent == nil || errResource == nil || errOperation == nil || errAudit == nil {
				t.Error("inconsistent rejection across id types")
			}
		}
	})
}
