package hashing

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// emptyDigestHex is the fingerprint of empty input under the fixed key. It
// appears verbatim in ledgers written for empty files, so it must never
// change.
const emptyDigestHex = "928feaaf8fb33946cd286e6f0bbd30c2"

// writeTestFile creates a file with the specified contents in a temporary
// directory and returns it opened for reading.
func writeTestFile(t *testing.T, contents []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatal("unable to write test file:", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatal("unable to open test file:", err)
	}
	t.Cleanup(func() { file.Close() })
	return file
}

// TestEmptyDigest tests that the empty-input fingerprint matches the value
// recorded in existing ledgers.
func TestEmptyDigest(t *testing.T) {
	if rendered := EmptyDigest.String(); rendered != emptyDigestHex {
		t.Fatal("empty digest does not match expected:", rendered, "!=", emptyDigestHex)
	}
	if len(EmptyDigest.String()) != HexLength {
		t.Error("rendered digest has unexpected length")
	}
}

// TestSumDeterministic tests that identical content yields identical
// fingerprints and differing content differing ones.
func TestSumDeterministic(t *testing.T) {
	if Sum([]byte("hello")) != Sum([]byte("hello")) {
		t.Error("identical inputs yielded differing digests")
	}
	if Sum([]byte("hello")) == Sum([]byte("hellp")) {
		t.Error("differing inputs yielded identical digests")
	}
}

// TestFileEmpty tests fingerprinting of an empty file.
func TestFileEmpty(t *testing.T) {
	file := writeTestFile(t, nil)
	digest, err := File(file)
	if err != nil {
		t.Fatal("unable to fingerprint file:", err)
	}
	if digest != EmptyDigest {
		t.Error("empty file digest does not match empty digest")
	}
}

// TestFileFinalBlockRetention tests that only the final 4 KiB block
// contributes to a file's fingerprint. This retention behavior is part of
// the on-disk ledger format.
func TestFileFinalBlockRetention(t *testing.T) {
	// Create two files that differ only in their first block.
	tail := []byte("shared final partial block")
	first := append(bytes.Repeat([]byte{'a'}, blockSize), tail...)
	second := append(bytes.Repeat([]byte{'b'}, blockSize), tail...)

	// Fingerprint both.
	firstDigest, err := File(writeTestFile(t, first))
	if err != nil {
		t.Fatal("unable to fingerprint first file:", err)
	}
	secondDigest, err := File(writeTestFile(t, second))
	if err != nil {
		t.Fatal("unable to fingerprint second file:", err)
	}

	// They must collide, and must equal the digest of the tail alone.
	if firstDigest != secondDigest {
		t.Error("files sharing a final block yielded differing digests")
	}
	if firstDigest != Sum(tail) {
		t.Error("digest does not equal that of the final block")
	}
}

// TestFileSingleBlock tests that a file smaller than one block hashes as its
// whole contents.
func TestFileSingleBlock(t *testing.T) {
	contents := []byte("hello\n")
	digest, err := File(writeTestFile(t, contents))
	if err != nil {
		t.Fatal("unable to fingerprint file:", err)
	}
	if digest != Sum(contents) {
		t.Error("single-block digest does not match direct sum")
	}
}

// TestStamp tests change-stamp rendering.
func TestStamp(t *testing.T) {
	file := writeTestFile(t, []byte("x"))
	stamp, err := Stamp(file)
	if err != nil {
		t.Fatal("unable to stamp file:", err)
	}
	if len(stamp) != StampLength {
		t.Fatal("stamp has unexpected length:", len(stamp))
	}
	for _, c := range stamp {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatal("stamp contains non-hexadecimal character:", string(c))
		}
	}

	// Stamping the same file twice must be stable.
	again, err := Stamp(file)
	if err != nil {
		t.Fatal("unable to stamp file again:", err)
	}
	if again != stamp {
		t.Error("stamp is not stable across reads")
	}
}
