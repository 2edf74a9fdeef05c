package streamcsv

import "context"

// Object is one record projected onto the header row: header field name to
// cell text. Short or ragged rows simply omit the keys they don't reach;
// Object never pads to the full header width with a sentinel.
type Object map[string]string

// Objects streams source as a sequence of Objects, treating the first row
// as a header and keying every subsequent row's cells by the header's
// field names at the same position. A row longer than the header
// contributes no key for its trailing cells; a row shorter than the
// header simply omits the header fields it didn't reach.
func Objects(ctx context.Context, source ByteSource, opts Options) (<-chan Object, <-chan error) {
	out := make(chan Object)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		var parser *Parser
		var abandoned bool
		var failure error
		var header Row
		var cells Row

		cb := Callbacks{
			OnCell: func(text string) {
				cells = append(cells, text)
			},
			OnRowEnd: func() {
				row := cells
				cells = nil

				if header == nil {
					header = row
					parser.Pause()
					return
				}

				obj := make(Object, len(header))
				for i, key := range header {
					if i >= len(row) {
						break
					}
					obj[key] = row[i]
				}
				select {
				case out <- obj:
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
