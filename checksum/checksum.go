// Package checksum computes the deterministic digest pairing every ledger
// epoch with a verifiable fingerprint of its value set.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Pair is one (asset id, value) input to the digest.
type Pair struct {
	AssetID string
	Value   decimal.Decimal
}

// Sum returns the hex digest of the given value set. Pairs are sorted by
// asset id before hashing so any permutation of the same set produces the
// same digest. An empty set hashes the empty string, it is not an error.
func Sum(pairs []Pair) string {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].AssetID != sorted[j].AssetID {
			return sorted[i].AssetID < sorted[j].AssetID
		}
		// an asset can appear once per scope, order ties by value
		return sorted[i].Value.LessThan(sorted[j].Value)
	})

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		parts = append(parts, p.AssetID+":"+p.Value.String())
	}

	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}
