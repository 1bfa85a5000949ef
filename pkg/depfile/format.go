package depfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/redo-tools/redo/pkg/hashing"
)

// Kind identifies a dependency record type by its leading character.
type Kind byte

const (
	// KindUsed records a consumed file with its fingerprint and change
	// stamp.
	KindUsed Kind = '='
	// KindIfCreate records a file whose creation invalidates the target.
	KindIfCreate Kind = '-'
	// KindAlways marks the target as always out-of-date.
	KindAlways Kind = '!'
)

// Record layout offsets for KindUsed lines: the kind character, a 32-char
// fingerprint, a space, a 16-char stamp, a space, and the path.
const (
	hashOffset  = 1
	stampOffset = hashOffset + hashing.HexLength + 1
	pathOffset  = stampOffset + hashing.StampLength + 1
)

// Entry is a single parsed dependency record.
type Entry struct {
	// Kind is the record type.
	Kind Kind
	// Hash is the recorded fingerprint (KindUsed only).
	Hash string
	// Stamp is the recorded change stamp (KindUsed only).
	Stamp string
	// Path is the recorded path (KindUsed and KindIfCreate).
	Path string
}

// ParseLine parses a single ledger line (without its terminating newline).
// Any line it rejects must trigger a rebuild of the ledger's target.
func ParseLine(line string) (Entry, error) {
	if line == "" {
		return Entry{}, errors.New("empty dependency record")
	}
	switch Kind(line[0]) {
	case KindIfCreate:
		return Entry{Kind: KindIfCreate, Path: line[1:]}, nil
	case KindAlways:
		return Entry{Kind: KindAlways}, nil
	case KindUsed:
		if len(line) <= pathOffset ||
			line[stampOffset-1] != ' ' || line[pathOffset-1] != ' ' {
			return Entry{}, errors.New("malformed dependency record")
		}
		return Entry{
			Kind:  KindUsed,
			Hash:  line[hashOffset : stampOffset-1],
			Stamp: line[stampOffset : pathOffset-1],
			Path:  line[pathOffset:],
		}, nil
	default:
		return Entry{}, errors.Errorf("unknown dependency record kind %q", line[0])
	}
}

// String renders the entry as a ledger line without a terminating newline.
func (e Entry) String() string {
	switch e.Kind {
	case KindUsed:
		return fmt.Sprintf("=%s %s %s", e.Hash, e.Stamp, e.Path)
	case KindIfCreate:
		return "-" + e.Path
	default:
		return "!"
	}
}

// Scanner reads dependency records from a ledger.
type Scanner struct {
	// scanner is the underlying line scanner.
	scanner *bufio.Scanner
}

// NewScanner creates a Scanner reading from the specified stream.
func NewScanner(reader io.Reader) *Scanner {
	return &Scanner{scanner: bufio.NewScanner(reader)}
}

// Scan advances to the next line, returning false at end of input or on a
// read error.
func (s *Scanner) Scan() bool {
	return s.scanner.Scan()
}

// Entry parses the current line.
func (s *Scanner) Entry() (Entry, error) {
	return ParseLine(s.scanner.Text())
}

// Err returns any read error encountered by the scanner.
func (s *Scanner) Err() error {
	return s.scanner.Err()
}
