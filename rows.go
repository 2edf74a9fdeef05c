package streamcsv

import "context"

// Row is one record of cell text, in column order.
type Row []string

// Rows streams source as complete Rows, one per record. Backpressure is
// per-row: the producer accumulates a row's cells internally and only
// blocks the parser once the whole row is ready to hand off, unlike
// NestedRows which is lazy per cell.
func Rows(ctx context.Context, source ByteSource, opts Options) (<-chan Row, <-chan error) {
	out := make(chan Row)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		var parser *Parser
		var abandoned bool
		var failure error
		var cells Row

		cb := Callbacks{
			OnCell: func(text string) {
				cells = append(cells, text)
			},
			OnRowEnd: func() {
				row := cells
				cells = nil
				select {
				case out <- row:
				case <-ctx.Done():
					abandoned = true
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
