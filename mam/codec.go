package mam

import (
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// The on-tape attribute layout is not authoritatively documented, so
// decoding is a best-effort strategy chain: candidate header skips, then
// candidate text encodings, then extraction of the longest plausible
// identifier run. The raw bytes always survive in the record; exhausting
// every strategy is a valid terminal outcome, not an error.

// Candidate header skips, covering possible length/type prefixes.
var headerOffsets = []int{0, 2, 4, 6, 8}

const minRunLength = 3

type encoding int

const (
	encodingASCII encoding = iota
	encodingUTF8
	encodingPermissive
)

func (e encoding) String() string {
	switch e {
	case encodingASCII:
		return "ascii"
	case encodingUTF8:
		return "utf8"
	default:
		return "permissive"
	}
}

// Record is one decoded attribute. Value is empty iff Unparsed is set;
// RawHex is always the exact hex encoding of the input bytes.
type Record struct {
	ID        AttributeID
	Partition uint8
	Value     string
	Strategy  string
	RawHex    string
	Unparsed  bool
}

// Decode runs the strategy chain over raw attribute bytes. It is pure:
// the same input always produces the same record, including the same
// winning strategy.
func Decode(id AttributeID, partition uint8, raw []byte) *Record {
	record := &Record{
		ID:        id,
		Partition: partition & 0x03,
		RawHex:    hex.EncodeToString(raw),
	}

	for _, offset := range headerOffsets {
		if offset >= len(raw) {
			break
		}
		payload := raw[offset:]

		for _, enc := range []encoding{encodingASCII, encodingUTF8, encodingPermissive} {
			text, ok := decodeText(payload, enc)
			if !ok || !anchored(text) {
				// An offset that still leaves header bytes in front of
				// the value is not plausible; a larger skip gets its
				// turn.
				continue
			}

			run := longestIdentifierRun(text)
			if utf8.RuneCountInString(run) < minRunLength {
				continue
			}

			record.Value = run
			record.Strategy = fmt.Sprintf("offset-%d/%s", offset, enc)
			return record
		}
	}

	record.Unparsed = true
	return record
}

// decodeText converts payload bytes to text under one encoding,
// discarding undecodable bytes rather than failing.
func decodeText(payload []byte, enc encoding) (string, bool) {
	switch enc {
	case encodingASCII:
		runes := make([]rune, 0, len(payload))
		for _, b := range payload {
			if b < 0x80 {
				runes = append(runes, rune(b))
			}
		}
		return string(runes), true

	case encodingUTF8:
		if !utf8.Valid(payload) {
			return "", false
		}
		return string(payload), true

	default:
		// Permissive single-byte fallback: every byte widens to the rune
		// with the same value.
		runes := make([]rune, len(payload))
		for i, b := range payload {
			runes[i] = rune(b)
		}
		return string(runes), true
	}
}

// anchored reports whether decoded text starts directly with value
// characters, meaning the candidate offset consumed the whole header.
func anchored(text string) bool {
	for _, r := range text {
		return isIdentifierRune(r)
	}
	return false
}

// longestIdentifierRun returns the longest contiguous run of
// identifier-like characters. The leftmost run wins a tie, making the
// extraction deterministic.
func longestIdentifierRun(text string) string {
	var best, current []rune
	for _, r := range text {
		if isIdentifierRune(r) {
			current = append(current, r)
			continue
		}
		if len(current) > len(best) {
			best = current
		}
		current = nil
	}
	if len(current) > len(best) {
		best = current
	}
	return string(best)
}

func isIdentifierRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
