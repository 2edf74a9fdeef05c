package streamcsv

import (
	"bytes"
	"fmt"
)

// Default delimiter configuration, matching RFC-4180-style CSV.
const (
	DefaultColumnSeparator = ","
	DefaultLineSeparator   = "\n"
	DefaultQuote           = `"`
)

// Tunables governing buffer behavior. These rarely need adjustment; they
// exist mainly so pathological inputs (very long cells, tiny chunk sizes)
// can be exercised deterministically in tests.
const (
	DefaultReaderIteratorBufferSize = 1024
	DefaultColumnBufferMinStepSize  = 1024
	DefaultInputBufferIndexLimit    = 1024
	DefaultColumnBufferReserve      = 64
)

// Options configures a Parser. Use DefaultOptions to obtain a populated
// Options and override fields as needed. NewParser fills empty delimiters
// and non-positive tunables with defaults (see withDefaults), but it leaves
// NoToLine as given, so the zero value (ToLine 0, NoToLine false) ends the
// parse before the first line.
type Options struct {
	// ColumnSeparator is the byte sequence separating cells. Defaults to ",".
	ColumnSeparator string
	// LineSeparator is the byte sequence separating rows. Defaults to "\n".
	LineSeparator string
	// Quote is the byte sequence that begins/ends a quoted cell. Doubled
	// inside a quoted cell, it represents one literal quote. Defaults to `"`.
	Quote string

	// FromLine is the first line index to emit, inclusive. Lines are
	// numbered from 0 in input order. Defaults to 0.
	FromLine int
	// ToLine is the first line index NOT to emit, exclusive. Defaults to
	// no limit (all lines are emitted).
	ToLine int
	// NoToLine, when true, means ToLine is ignored (read to the end of
	// input). Set automatically by DefaultOptions; flip ToLine and clear
	// this to bound the read.
	NoToLine bool

	// ReaderIteratorBufferSize is the target chunk size requested from
	// the byte source on each refill.
	ReaderIteratorBufferSize int
	// ColumnBufferMinStepSize is the minimum growth increment for the
	// column buffer.
	ColumnBufferMinStepSize int
	// InputBufferIndexLimit is the threshold of consumed bytes at which
	// the input buffer is compacted.
	InputBufferIndexLimit int
	// ColumnBufferReserve is the minimum free tail kept in the column
	// buffer before a growth is triggered.
	ColumnBufferReserve int
}

// DefaultOptions returns an Options populated with the package defaults.
func DefaultOptions() Options {
	return Options{
		ColumnSeparator:          DefaultColumnSeparator,
		LineSeparator:            DefaultLineSeparator,
		Quote:                    DefaultQuote,
		FromLine:                 0,
		NoToLine:                 true,
		ReaderIteratorBufferSize: DefaultReaderIteratorBufferSize,
		ColumnBufferMinStepSize:  DefaultColumnBufferMinStepSize,
		InputBufferIndexLimit:    DefaultInputBufferIndexLimit,
		ColumnBufferReserve:      DefaultColumnBufferReserve,
	}
}

// withDefaults fills in zero-valued fields with package defaults, leaving
// anything the caller already set untouched.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ColumnSeparator == "" {
		o.ColumnSeparator = d.ColumnSeparator
	}
	if o.LineSeparator == "" {
		o.LineSeparator = d.LineSeparator
	}
	if o.Quote == "" {
		o.Quote = d.Quote
	}
	if o.ReaderIteratorBufferSize <= 0 {
		o.ReaderIteratorBufferSize = d.ReaderIteratorBufferSize
	}
	if o.ColumnBufferMinStepSize <= 0 {
		o.ColumnBufferMinStepSize = d.ColumnBufferMinStepSize
	}
	if o.InputBufferIndexLimit <= 0 {
		o.InputBufferIndexLimit = d.InputBufferIndexLimit
	}
	if o.ColumnBufferReserve <= 0 {
		o.ColumnBufferReserve = d.ColumnBufferReserve
	}
	return o
}

// derived holds the delimiter-derived constants and validated byte forms
// of the Options, computed once at Parser construction.
type derived struct {
	columnSeparator []byte
	lineSeparator   []byte
	quote           []byte
	doubleQuote     []byte

	// minReserve is the minimum number of buffered-but-unread bytes the
	// parser insists on having before it will decide a separator pattern
	// is absent, so a multi-byte separator straddling the end of the
	// buffered data is never mistaken for a non-match.
	minReserve int
}

// validate checks the delimiter-triple invariants: none of
// columnSeparator/lineSeparator/quote may be a strict prefix of another,
// and lineSeparator/columnSeparator must not begin with quote. Rather
// than tie-breaking a prefix collision at parse time, configurations
// that share a prefix are rejected up front, here, at construction.
func (o Options) validate() (derived, error) {
	cs := []byte(o.ColumnSeparator)
	ls := []byte(o.LineSeparator)
	q := []byte(o.Quote)

	if len(cs) == 0 || len(ls) == 0 || len(q) == 0 {
		return derived{}, fmt.Errorf("streamcsv: ColumnSeparator, LineSeparator and Quote must all be non-empty")
	}

	dq := append(append([]byte(nil), q...), q...)

	pairs := [][2][]byte{
		{cs, ls}, {ls, cs}, {cs, q}, {q, cs}, {ls, q}, {q, ls},
	}
	for _, p := range pairs {
		if isStrictPrefix(p[0], p[1]) {
			return derived{}, fmt.Errorf("streamcsv: delimiter %q is a prefix of %q; delimiters must not share a prefix", p[0], p[1])
		}
	}
	if bytes.HasPrefix(ls, q) {
		return derived{}, fmt.Errorf("streamcsv: LineSeparator %q must not begin with Quote %q", ls, q)
	}
	if bytes.HasPrefix(cs, q) {
		return derived{}, fmt.Errorf("streamcsv: ColumnSeparator %q must not begin with Quote %q", cs, q)
	}

	minReserve := len(cs)
	if len(ls) > minReserve {
		minReserve = len(ls)
	}
	if len(dq) > minReserve {
		minReserve = len(dq)
	}
	if minReserve < 1 {
		minReserve = 1
	}

	return derived{
		columnSeparator: cs,
		lineSeparator:   ls,
		quote:           q,
		doubleQuote:     dq,
		minReserve:      minReserve,
	}, nil
}

// isStrictPrefix reports whether a is a strict (shorter) prefix of b.
func isStrictPrefix(a, b []byte) bool {
	if len(a) >= len(b) {
		return false
	}
	return bytes.Equal(b[:len(a)], a)
}
