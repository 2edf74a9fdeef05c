// Package streamcsv parses CSV incrementally, in bounded memory, from an
// async byte source — a sliding-window reader rather than the
// encoding/csv style of pulling everything into one []string per record
// at a time off a bufio.Reader. A Parser core drives a set of Callbacks
// as it scans; Tokens, Rows, NestedRows and Objects build on that core to
// offer progressively higher-level views over the same stream.
package streamcsv

import (
	"bytes"
	"context"
	"strings"
)

// ParseBytes runs Callbacks over an in-memory buffer, blocking until the
// parser reaches a terminal state. It's a convenience wrapper over
// NewParser + Read for callers that already have the whole input in
// memory and don't need the streaming adapters.
func ParseBytes(data []byte, opts Options, cb Callbacks) error {
	return parseSource(NewReaderSource(bytes.NewReader(data), len(data)+1), opts, cb)
}

// ParseString is ParseBytes for a string input.
func ParseString(data string, opts Options, cb Callbacks) error {
	return parseSource(NewReaderSource(strings.NewReader(data), len(data)+1), opts, cb)
}

func parseSource(source ByteSource, opts Options, cb Callbacks) error {
	var failure error
	userOnError := cb.OnError
	cb.OnError = func(err error) {
		failure = err
		if userOnError != nil {
			userOnError(err)
		}
	}

	p, err := NewParser(source, opts, cb)
	if err != nil {
		return err
	}
	for !p.Done() {
		p.Read()
	}
	return failure
}

// RowsOfBytes parses all of data and returns every row, for callers who
// want the simplicity of a slice over the streaming Rows adapter. Prefer
// Rows for large inputs.
func RowsOfBytes(data []byte, opts Options) ([]Row, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rowsCh, errCh := Rows(ctx, NewReaderSource(bytes.NewReader(data), len(data)+1), opts)
	var rows []Row
	for rowsCh != nil || errCh != nil {
		select {
		case row, ok := <-rowsCh:
			if !ok {
				rowsCh = nil
				continue
			}
			rows = append(rows, row)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return rows, err
			}
		}
	}
	return rows, nil
}
