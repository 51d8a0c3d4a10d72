package matchcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strings"

	"dialogdetective/internal/catalog"
)

// Fingerprint derives the cache key for one match attempt. It covers the
// transcript text, the candidate set actually offered, and the backend and
// model that will judge them, so a change to any input yields a new key.
// Candidate order does not matter; the set is canonicalized before hashing.
func Fingerprint(transcript string, candidates []catalog.Episode, backend, model string) string {
	sorted := make([]catalog.Episode, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Season != sorted[j].Season {
			return sorted[i].Season < sorted[j].Season
		}
		return sorted[i].Episode < sorted[j].Episode
	})

	hasher := sha256.New()
	writeField(hasher, strings.ToLower(strings.TrimSpace(backend)))
	writeField(hasher, strings.TrimSpace(model))
	writeField(hasher, transcript)
	writeField(hasher, fmt.Sprintf("%d", len(sorted)))
	for _, ep := range sorted {
		writeField(hasher, fmt.Sprintf("%d|%d", ep.Season, ep.Episode))
		writeField(hasher, ep.Title)
		writeField(hasher, ep.Summary)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// writeField length-prefixes each value so field boundaries can never be
// confused by adjacent content.
func writeField(hasher hash.Hash, value string) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(value)))
	hasher.Write(length[:])
	hasher.Write([]byte(value))
}
