// Package textutil provides text sanitization helpers shared across the
// pipeline, primarily for turning episode metadata into filesystem-safe
// filename components and cache keys.
package textutil
