package streamcsv

import (
	"bytes"

	"golang.org/x/sys/cpu"
)

// whichMatch identifies which pattern a scan helper stopped on.
type whichMatch int

const (
	matchLimit whichMatch = iota
	matchLine
	matchColumn
	matchQuote
)

// useWordScan gates the SWAR fast path in indexByteFast, decided once
// from a real CPU capability probe rather than unconditionally. On any
// CPU with at least SSE2 the 8-bytes-at-a-time word scan is a clear win
// over a byte loop; cpu.X86 is zero-valued (so this is simply false) on
// non-x86 platforms.
var useWordScan = cpu.X86.HasSSE2

// hasZeroByte reports, for the classic SWAR trick, whether any byte in v
// is zero. Used by indexByteFast after XOR-ing each byte with the target.
func hasZeroByte(v uint64) bool {
	const lo = 0x0101010101010101
	const hi = 0x8080808080808080
	return (v-lo)&^v&hi != 0
}

// indexByteFast finds the first occurrence of b in data, scanning a full
// word at a time via the SWAR "has zero byte" trick before falling back
// to a byte scan for the tail. This backs the single-byte case of the
// bulk-body-read scan helpers below.
func indexByteFast(data []byte, b byte) int {
	i := 0
	if useWordScan {
		rep := uint64(b) * 0x0101010101010101
		for ; i+8 <= len(data); i += 8 {
			word := le64(data[i:])
			if hasZeroByte(word ^ rep) {
				break
			}
		}
	}
	for ; i < len(data); i++ {
		if data[i] == b {
			return i
		}
	}
	return -1
}

func le64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// indexAny returns the first index at which any of patterns occurs as an
// exact match within data[:limit], or limit if none is found. Patterns are
// assumed pairwise non-prefixing; ties therefore can't occur.
func indexAny(data []byte, limit int, patterns ...[]byte) int {
	best := limit
	for _, p := range patterns {
		if len(p) == 0 {
			continue
		}
		idx := indexPattern(data[:limit], p)
		if idx >= 0 && idx < best {
			best = idx
		}
	}
	return best
}

// indexPattern finds the first exact occurrence of pattern in data, using
// the fast single-byte path when possible.
func indexPattern(data, pattern []byte) int {
	if len(pattern) == 1 {
		return indexByteFast(data, pattern[0])
	}
	return bytes.Index(data, pattern)
}

// readTillResult is the outcome of findReadTillIndex.
type readTillResult struct {
	index int
	which whichMatch
}

// findReadTillIndex scans an unquoted field for the first occurrence of
// lineSep, colSep, or quote within slice[:limit].
func findReadTillIndex(slice []byte, limit int, lineSep, colSep, quote []byte) readTillResult {
	if limit > len(slice) {
		limit = len(slice)
	}
	best := limit
	which := matchLimit

	if idx := indexPattern(slice[:limit], lineSep); idx >= 0 && idx < best {
		best, which = idx, matchLine
	}
	if idx := indexPattern(slice[:limit], colSep); idx >= 0 && idx < best {
		best, which = idx, matchColumn
	}
	if idx := indexPattern(slice[:limit], quote); idx >= 0 && idx < best {
		best, which = idx, matchQuote
	}
	return readTillResult{index: best, which: which}
}

// readTillQuotedResult is the outcome of findReadTillIndexQuoted.
type readTillQuotedResult struct {
	index             int
	newLinesSeen      int
	lastLineEndOffset int // offset just past the last lineSep seen, or -1
}

// findReadTillIndexQuoted scans inside a quoted field for the first
// occurrence of quote within slice[:limit], counting line separators
// along the way (they are cell content, but they still affect position
// bookkeeping).
func findReadTillIndexQuoted(slice []byte, limit int, quote, lineSep []byte) readTillQuotedResult {
	if limit > len(slice) {
		limit = len(slice)
	}
	qIdx := indexPattern(slice[:limit], quote)
	stop := limit
	if qIdx >= 0 {
		stop = qIdx
	}

	res := readTillQuotedResult{lastLineEndOffset: -1}
	pos := 0
	for pos < stop {
		idx := indexPattern(slice[pos:stop], lineSep)
		if idx < 0 {
			break
		}
		pos += idx + len(lineSep)
		res.newLinesSeen++
		res.lastLineEndOffset = pos
	}

	if qIdx >= 0 {
		res.index = qIdx
	} else {
		res.index = limit
	}
	return res
}

// findReadTillLineSeparatorIndex finds the first lineSep in slice, or -1
// if it is not present. Used only by the FromLine fast-skip path, which
// discards whole lines without needing to distinguish columns within them.
func findReadTillLineSeparatorIndex(slice, lineSep []byte) int {
	return indexPattern(slice, lineSep)
}
