package streamcsv

import "context"

// TokenKind classifies a Token yielded by Tokens.
type TokenKind int

const (
	// TokenCell carries one cell's decoded text.
	TokenCell TokenKind = iota
	// TokenNewLine marks the end of a row. It carries no text.
	TokenNewLine
)

// Token is one item of the flattest of the four view adapters: a raw
// sequence of cell texts interleaved with row-end markers. Most callers
// want Rows or Objects instead; Tokens is for callers that want to
// interleave row boundaries with cell delivery themselves.
type Token struct {
	Kind TokenKind
	Text string
}

// Tokens streams source as Tokens on the returned channel, closing it when
// parsing finishes, and reports at most one error on the error channel.
// Both channels are closed once the underlying parser reaches a terminal
// state. Cancel ctx to abandon the stream early; the parser goroutine
// exits promptly rather than blocking on an unread send.
//
// This and the other three adapters (Rows, NestedRows, Objects) are each a
// goroutine driving a private Parser over a different Callbacks value,
// using Parser.Pause to keep the producer at most one emission ahead of
// the consumer; the channel send itself supplies the blocking half of
// that handshake.
func Tokens(ctx context.Context, source ByteSource, opts Options) (<-chan Token, <-chan error) {
	out := make(chan Token)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		var parser *Parser
		var abandoned bool
		var failure error

		cb := Callbacks{
			OnCell: func(text string) {
				select {
				case out <- Token{Kind: TokenCell, Text: text}:
				case <-ctx.Done():
					abandoned = true
				}
				parser.Pause()
			},
			OnRowEnd: func() {
				select {
				case out <- Token{Kind: TokenNewLine}:
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
