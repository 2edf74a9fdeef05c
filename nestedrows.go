package streamcsv

import "context"

// RowCells is a single row's cells delivered lazily, one at a time, rather
// than materialized as a Row up front. Every cell is still decoded to a
// string by the parser; cells the consumer discards via Close are decoded
// and then dropped.
//
// A RowCells value must be fully drained before the next one is read from
// NestedRows' channel: call Next repeatedly until ok is false, or call
// Close to discard whatever is left. Doing neither leaves the producer
// goroutine blocked forever trying to hand off this row's next cell.
type RowCells struct {
	ch <-chan string
}

// Next returns this row's next cell, or ok == false once the row is
// exhausted.
func (r RowCells) Next() (text string, ok bool) {
	text, ok = <-r.ch
	return text, ok
}

// Close discards any cells of this row that haven't been read yet,
// draining them internally so the underlying parser can proceed to the
// next row. Safe to call after the row has already been fully consumed.
func (r RowCells) Close() {
	for range r.ch {
	}
}

// NestedRows streams source as a sequence of RowCells, one per record.
// See RowCells for the drain-before-advancing contract.
func NestedRows(ctx context.Context, source ByteSource, opts Options) (<-chan RowCells, <-chan error) {
	out := make(chan RowCells)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		var parser *Parser
		var abandoned bool
		var failure error
		var cellCh chan string

		openRow := func() {
			cellCh = make(chan string)
			select {
			case out <- RowCells{ch: cellCh}:
			case <-ctx.Done():
				abandoned = true
			}
		}

		cb := Callbacks{
			OnCell: func(text string) {
				if cellCh == nil {
					openRow()
				}
				if !abandoned {
					select {
					case cellCh <- text:
					case <-ctx.Done():
						abandoned = true
					}
				}
				parser.Pause()
			},
			OnRowEnd: func() {
				if cellCh == nil {
					openRow()
				}
				if cellCh != nil {
					close(cellCh)
					cellCh = nil
				}
				parser.Pause()
			},
			OnError: func(err error) { failure = err },
		}

		p, err := NewParser(source, opts, cb)
		if err != nil {
			errCh <- err
			return
		}
		parser = p

		for !parser.Done() && !abandoned {
			parser.Read()
		}
		if failure != nil {
			errCh <- failure
		}
	}()

	return out, errCh
}
