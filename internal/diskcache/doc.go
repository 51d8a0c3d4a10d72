// Package diskcache provides a durable JSON cache with one file per key.
//
// Transcripts and catalog responses are cached here so repeat runs skip the
// expensive external collaborators. Entries carry a stored-at timestamp and
// expire after an optional TTL; match results use the sqlite-backed store in
// package matchcache instead because they are never evicted.
package diskcache
