package hashing

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"

	"github.com/dchest/siphash"
)

const (
	// Key is the fixed 128-bit SipHash key under which all fingerprints are
	// computed. Changing it invalidates every dependency ledger on disk.
	Key = "redo siphash key"

	// blockSize is the read granularity for file fingerprinting.
	blockSize = 4096

	// HexLength is the length of a rendered fingerprint.
	HexLength = 32

	// StampLength is the length of a rendered change stamp.
	StampLength = 16
)

// The two 64-bit halves of Key, little-endian.
var (
	keyLow  = binary.LittleEndian.Uint64([]byte(Key)[:8])
	keyHigh = binary.LittleEndian.Uint64([]byte(Key)[8:])
)

// Digest is a 128-bit SipHash-2-4 fingerprint.
type Digest [16]byte

// String renders the digest as 32 lowercase hexadecimal characters.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Sum computes the fingerprint of a byte slice.
func Sum(data []byte) Digest {
	low, high := siphash.Hash128(keyLow, keyHigh, data)
	var digest Digest
	binary.LittleEndian.PutUint64(digest[:8], low)
	binary.LittleEndian.PutUint64(digest[8:], high)
	return digest
}

// EmptyDigest is the fingerprint recorded for empty files.
var EmptyDigest = Sum(nil)

// File computes the fingerprint of a file's contents. The file is read in
// 4 KiB blocks and only the final block's digest is retained; this matches
// the ledgers written by existing redo implementations and must not be
// changed without versioning the dependency file format. Empty files yield
// EmptyDigest. The file's read offset is not used or disturbed.
func File(file *os.File) (Digest, error) {
	digest := EmptyDigest
	buffer := make([]byte, blockSize)
	var offset int64
	for {
		read, err := file.ReadAt(buffer, offset)
		if read > 0 {
			digest = Sum(buffer[:read])
			offset += int64(read)
		}
		if err == io.EOF {
			return digest, nil
		} else if err != nil {
			return Digest{}, err
		}
	}
}
