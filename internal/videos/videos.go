// Package videos discovers video files on disk and computes the content
// hashes that identify them across renames.
package videos

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File represents a discovered video file.
type File struct {
	// Path is the absolute source path. Identity of the file for one run.
	Path string
	// Ext is the extension without the leading dot, e.g. "mkv".
	Ext string
}

// Base returns the file name component of the path.
func (f File) Base() string {
	return filepath.Base(f.Path)
}

var videoExtensions = map[string]struct{}{
	"mkv":  {},
	"mp4":  {},
	"m4v":  {},
	"avi":  {},
	"mov":  {},
	"webm": {},
	"ts":   {},
	"mpg":  {},
	"mpeg": {},
	"wmv":  {},
}

// Scan walks root recursively and returns all video files, ordered by path so
// batches are processed deterministically. Files are recognized by extension
// and confirmed by a container signature sniff of the first bytes, so a
// mislabeled text file never enters the pipeline.
func Scan(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", root)
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := videoExtensions[ext]; !ok {
			return nil
		}
		if !looksLikeVideo(path) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files = append(files, File{Path: abs, Ext: ext})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// sniffSize covers every container signature we check for.
const sniffSize = 16

func looksLikeVideo(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && n < 8 {
		return false
	}
	buf = buf[:n]

	switch {
	case len(buf) >= 4 && bytes.Equal(buf[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		// EBML header: Matroska / WebM.
		return true
	case len(buf) >= 12 && bytes.Equal(buf[4:8], []byte("ftyp")):
		// ISO base media: MP4 / M4V / MOV.
		return true
	case len(buf) >= 12 && bytes.Equal(buf[:4], []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("AVI ")):
		return true
	case len(buf) >= 4 && bytes.Equal(buf[:4], []byte{0x30, 0x26, 0xB2, 0x75}):
		// ASF header prefix: WMV.
		return true
	case len(buf) >= 1 && buf[0] == 0x47:
		// MPEG-TS sync byte.
		return true
	case len(buf) >= 4 && bytes.Equal(buf[:3], []byte{0x00, 0x00, 0x01}) && (buf[3] == 0xBA || buf[3] == 0xB3):
		// MPEG program stream / video sequence.
		return true
	}
	return false
}

// hashChunkSize is the read granularity for content hashing.
const hashChunkSize = 512 * 1024

// Hash computes the hex-encoded SHA-256 of the file content. The hash keys
// the transcript cache and feeds the match fingerprint, so identical files
// reuse cached work even after a rename or move.
func Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return "", fmt.Errorf("hash %q: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
