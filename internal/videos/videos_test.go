package videos

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mkvHeader(extra ...byte) []byte {
	return append([]byte{0x1A, 0x45, 0xDF, 0xA3, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, extra...)
}

func mp4Header() []byte {
	return []byte{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x00, 0x01}
}

func TestScanFindsVideosRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mkv"), mkvHeader())
	writeFile(t, filepath.Join(root, "nested", "b.mp4"), mp4Header())
	writeFile(t, filepath.Join(root, "notes.txt"), []byte("not a video"))

	files, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	if files[0].Base() != "a.mkv" || files[1].Base() != "b.mp4" {
		t.Fatalf("unexpected order: %v", files)
	}
	if files[0].Ext != "mkv" || files[1].Ext != "mp4" {
		t.Fatalf("unexpected extensions: %v", files)
	}
}

func TestScanRejectsMislabeledFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fake.mkv"), []byte("this is plain text padded out"))

	files, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected mislabeled file to be skipped, got %v", files)
	}
}

func TestScanOrderIsDeterministic(t *testing.T) {
	root := t.TempDir()
	names := []string{"zz.mkv", "aa.mkv", "mm.mkv"}
	for _, name := range names {
		writeFile(t, filepath.Join(root, name), mkvHeader())
	}

	files, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"aa.mkv", "mm.mkv", "zz.mkv"}
	for i, name := range want {
		if files[i].Base() != name {
			t.Fatalf("position %d: got %s want %s", i, files[i].Base(), name)
		}
	}
}

func TestScanErrorsOnMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestScanErrorsOnFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.mkv")
	writeFile(t, file, mkvHeader())
	if _, err := Scan(file); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}

func TestHashMatchesKnownDigest(t *testing.T) {
	root := t.TempDir()
	payload := mkvHeader([]byte("payload bytes for hashing")...)
	path := filepath.Join(root, "a.mkv")
	writeFile(t, path, payload)

	got, err := Hash(path)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	sum := sha256.Sum256(payload)
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("hash mismatch: got %s want %s", got, want)
	}
}

func TestHashStableAcrossRename(t *testing.T) {
	root := t.TempDir()
	payload := mkvHeader([]byte("same content")...)
	first := filepath.Join(root, "before.mkv")
	writeFile(t, first, payload)
	firstHash, err := Hash(first)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	second := filepath.Join(root, "after.mkv")
	if err := os.Rename(first, second); err != nil {
		t.Fatalf("rename: %v", err)
	}
	secondHash, err := Hash(second)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if firstHash != secondHash {
		t.Fatalf("hash changed across rename: %s vs %s", firstHash, secondHash)
	}
}
