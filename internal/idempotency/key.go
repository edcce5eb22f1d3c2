// Package idempotency derives the deterministic cache key that makes
// report generation at-most-once per logical request.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/celestia-labs/reportgen/internal/types"
)

// canonicalInput is the normalized view of the birth input that gets
// hashed. Field order is fixed by the struct definition, so equal
// normalized inputs always serialize to identical bytes.
type canonicalInput struct {
	Name            string  `json:"name"`
	DateOfBirth     string  `json:"dob"`
	TimeOfBirth     string  `json:"tob"`
	Place           string  `json:"place"`
	Latitude        float64 `json:"lat"`
	Longitude       float64 `json:"lng"`
	Gender          string  `json:"gender"`
	DecisionContext string  `json:"decision_context"`
}

func normalize(in types.BirthInput) canonicalInput {
	return canonicalInput{
		Name:            strings.ToLower(strings.TrimSpace(in.Name)),
		DateOfBirth:     in.DateOfBirth,
		TimeOfBirth:     in.TimeOfBirth,
		Place:           strings.ToLower(strings.TrimSpace(in.Place)),
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		Gender:          in.Gender,
		DecisionContext: in.DecisionContext,
	}
}

// Key builds the idempotency key for a generation request:
// "{reportType}_{16 hex chars}[_{first 20 chars of sessionID}]".
// Case and surrounding whitespace in name and place never change the
// key; the session suffix scopes dedup to a browsing session.
func Key(in types.BirthInput, rt types.ReportType, sessionID string) string {
	data, _ := json.Marshal(normalize(in))
	sum := sha256.Sum256(data)
	key := string(rt) + "_" + hex.EncodeToString(sum[:8])
	if sessionID != "" {
		suffix := sessionID
		if len(suffix) > 20 {
			suffix = suffix[:20]
		}
		key += "_" + suffix
	}
	return key
}

// InputHash returns just the 16-hex-char hash portion of the key,
// useful for log correlation without the report type prefix.
func InputHash(in types.BirthInput) string {
	data, _ := json.Marshal(normalize(in))
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
