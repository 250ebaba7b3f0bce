package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/tally/internal/check"
)

// Domain prefixes for fingerprints. The version suffix allows the hashed
// shape to change without colliding with older fingerprints.
const (
	DomainCheck  = "tally/check/v1"
	DomainResult = "tally/result/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes the canonical JSON of v under domain.
func Fingerprint(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// ResultFingerprint identifies a check outcome. Two runs over the same data
// with the same options produce the same fingerprint.
func ResultFingerprint(r *check.Result) (string, error) {
	mismatches := make([]any, len(r.Mismatches))
	for i, m := range r.Mismatches {
		mismatches[i] = map[string]any{
			"identifier": m.Identifier,
			"observed":   m.Observed,
			"declared":   m.Declared,
			"position":   m.Position,
		}
	}
	return Fingerprint(DomainResult, map[string]any{
		"pass":         r.Pass,
		"mode":         string(r.Mode),
		"detail_rows":  r.DetailRows,
		"summary_rows": r.SummaryRows,
		"groups":       r.Groups,
		"checked":      r.Checked,
		"mismatches":   mismatches,
	})
}
