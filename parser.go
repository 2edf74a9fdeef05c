package streamcsv

import "bytes"

// Callbacks is the capability set a Parser drives: one function pointer per
// event the core can emit, in place of an inheritance hierarchy. Every
// adapter in this package (tokens.go, rows.go, nestedrows.go, objects.go)
// is built from the same Parser over a different Callbacks value.
type Callbacks struct {
	// OnCell is called once per decoded cell, in input order.
	OnCell func(text string)
	// OnCellPos, if set, is called immediately before OnCell with the
	// 1-based (line, character) position where the cell began (its opening
	// quote, for a quoted cell).
	// Optional; most callers don't need it.
	OnCellPos func(line, char int)
	// OnRowEnd is called once a row's cells have all been delivered.
	OnRowEnd func()
	// OnEnd is called exactly once, after the final row (if any).
	OnEnd func()
	// OnError is called exactly once on a syntax fault; no further
	// callbacks fire afterward.
	OnError func(err error)
}

// Parser is the resumable CSV parser core: a cooperative state machine
// over a sliding input buffer and a growable column buffer, bounded to
// one emission ahead of its caller via the Pause/Read latch. A Parser is
// not safe for concurrent use and is single-use: once OnEnd or OnError
// fires it is terminal.
type Parser struct {
	source ByteSource
	opts   Options
	d      derived
	cb     Callbacks

	input inputBuffer
	col   *columnBuffer

	inColumn    bool
	inQuote     bool
	emptyLine   bool
	readerEmpty bool

	currentPos        int
	linesProcessed    int
	lastLineStartPos  int

	// fieldStart* capture the position a cell began at, for OnCellPos.
	fieldStartPos      int
	fieldStartLineNum  int
	fieldStartLineHead int

	// pendingAfterQuote defers the "what follows a closing quote" check
	// to its own step, so the ordinary refill step gets a chance to top
	// up the buffer first: checking immediately risks a false negative
	// against a buffer that happens to be a few bytes short of a long
	// multi-byte separator.
	pendingAfterQuote bool

	paused bool
	done   bool

	stats Stats
}

// NewParser constructs a Parser reading from source with the given
// options and callbacks. Returns an error if the delimiter triple is
// invalid — e.g. if the quote, column separator, and line separator
// share a prefix, which would make their boundaries ambiguous.
func NewParser(source ByteSource, opts Options, cb Callbacks) (*Parser, error) {
	opts = opts.withDefaults()
	d, err := opts.validate()
	if err != nil {
		return nil, err
	}
	return &Parser{
		source:    source,
		opts:      opts,
		d:         d,
		cb:        cb,
		col:       newColumnBuffer(opts.ColumnBufferMinStepSize),
		emptyLine: true,
	}, nil
}

// Stats returns the current observability counters.
func (p *Parser) Stats() Stats { return p.stats }

// Pause requests that the loop return control at the end of the current
// step. Callbacks call this to keep the parser at most one emission
// ahead of a consumer that paces its own reads off Read.
func (p *Parser) Pause() { p.paused = true }

// Done reports whether the parser has reached a terminal state (OnEnd or
// OnError already fired).
func (p *Parser) Done() bool { return p.done }

// Read resumes the loop and runs it until a callback calls Pause, or the
// parser reaches a terminal state.
func (p *Parser) Read() {
	p.paused = false
	for !p.paused && !p.done {
		p.step()
	}
}

// step evaluates the parser's priority-ordered rules and executes the
// first applicable one.
func (p *Parser) step() {
	switch {
	case p.tryRefill():
	case p.tryCompact():
	case p.tryGrowColumn():
	case p.pendingAfterQuote:
		// Resolved right after the buffer's had a chance to refill/compact/
		// grow, and before FromLine, ToLine, BOM, or any of the ordinary
		// !inColumn rules below: closeQuotedColumn already cleared inColumn,
		// so any of those would otherwise be free to fire first and either
		// cut the parse short or start a new field, silently skipping the
		// still-pending check for an invalid byte trailing the closed quote.
		// resolvePendingAfterQuote does its own EOF/separator check, so it
		// doesn't need those rules to have run first; on a valid
		// continuation it just clears the flag and lets the matching rule
		// below handle it on the next step.
		p.resolvePendingAfterQuote()
	case !p.inColumn && p.linesProcessed < p.opts.FromLine:
		p.fastSkipToFromLine()
	case !p.inColumn && !p.opts.NoToLine && p.linesProcessed >= p.opts.ToLine:
		p.emitEnd()
	case p.tryConsumeBOM():
	case !p.inColumn && p.input.unprocessed() == 0:
		p.finishAtEOF()
	case !p.inColumn && bytes.HasPrefix(p.input.unread(), p.d.lineSeparator):
		p.finishLine()
	case !p.inColumn && bytes.HasPrefix(p.input.unread(), p.d.columnSeparator):
		p.finishColumn()
	case !p.inColumn:
		p.beginColumn()
	case p.inColumn && p.inQuote && bytes.HasPrefix(p.input.unread(), p.d.doubleQuote):
		p.consumeDoubledQuote()
	case p.inColumn && p.inQuote && bytes.HasPrefix(p.input.unread(), p.d.quote):
		p.closeQuotedColumn()
	case p.inColumn && !p.inQuote && p.endsUnquotedColumnByLookahead():
		p.inColumn = false
	case p.inColumn && p.input.unprocessed() > 0:
		p.bulkBodyRead()
	case p.inQuote && p.input.unprocessed() == 0 && p.readerEmpty:
		p.fail(newParseError(KindUnterminatedQuote, p.errLine(), p.errChar()))
	default:
		p.fail(newParseError(KindUnexpected, p.errLine(), p.errChar()))
	}
}

// errLine/errChar compute the 1-based (line, character) position for an
// error raised at the current currentPos.
func (p *Parser) errLine() int { return p.linesProcessed + 1 }
func (p *Parser) errChar() int { return p.currentPos - p.lastLineStartPos + 1 }

// tryRefill implements rule 1.
func (p *Parser) tryRefill() bool {
	if p.readerEmpty || p.input.unprocessed() >= p.d.minReserve {
		return false
	}
	chunk, done, err := p.source.next()
	p.stats.Reads++
	if err != nil {
		p.fail(err)
		return true
	}
	if done {
		p.readerEmpty = true
		return true
	}
	p.input.append(chunk)
	return true
}

// tryCompact implements rule 2.
func (p *Parser) tryCompact() bool {
	if !p.input.compactIfNeeded(p.opts.InputBufferIndexLimit) {
		return false
	}
	p.stats.InputBufferShrinks++
	return true
}

// tryGrowColumn implements rule 3.
func (p *Parser) tryGrowColumn() bool {
	if !p.col.growIfNeeded(p.opts.ColumnBufferReserve) {
		return false
	}
	p.stats.ColumnBufferExpands++
	return true
}

// fastSkipToFromLine implements rule 4.
func (p *Parser) fastSkipToFromLine() {
	unread := p.input.unread()
	idx := findReadTillLineSeparatorIndex(unread, p.d.lineSeparator)
	if idx < 0 {
		// No full line in the buffered data yet; discard what's here and
		// let rule 1 pull more on the next step.
		n := len(unread)
		p.input.advance(n)
		p.currentPos += n
		return
	}
	n := idx + len(p.d.lineSeparator)
	p.input.advance(n)
	p.currentPos += n
	p.linesProcessed++
	p.lastLineStartPos = p.currentPos
	p.emptyLine = true
}

// tryConsumeBOM implements rule 6.
func (p *Parser) tryConsumeBOM() bool {
	if p.inColumn || p.currentPos != 0 {
		return false
	}
	u := p.input.unread()
	if len(u) < 3 || u[0] != 0xEF || u[1] != 0xBB || u[2] != 0xBF {
		return false
	}
	p.input.advance(3)
	p.currentPos += 3
	return true
}

// finishAtEOF implements rule 7.
func (p *Parser) finishAtEOF() {
	if !p.emptyLine {
		p.emitCell()
		p.emitRowEnd()
	}
	p.emitEnd()
}

// finishLine implements rule 8.
func (p *Parser) finishLine() {
	if !p.emptyLine {
		p.emitCell()
		p.emitRowEnd()
	}
	n := len(p.d.lineSeparator)
	p.input.advance(n)
	p.currentPos += n
	p.linesProcessed++
	p.lastLineStartPos = p.currentPos
	p.emptyLine = true
}

// finishColumn implements rule 9.
func (p *Parser) finishColumn() {
	p.emptyLine = false
	p.emitCell()
	n := len(p.d.columnSeparator)
	p.input.advance(n)
	p.currentPos += n
}

// beginColumn implements rule 10.
func (p *Parser) beginColumn() {
	p.inColumn = true
	p.emptyLine = false
	p.fieldStartPos = p.currentPos
	p.fieldStartLineNum = p.linesProcessed
	p.fieldStartLineHead = p.lastLineStartPos

	if bytes.HasPrefix(p.input.unread(), p.d.quote) {
		p.inQuote = true
		n := len(p.d.quote)
		p.input.advance(n)
		p.currentPos += n
	}
}

// consumeDoubledQuote implements rule 11.
func (p *Parser) consumeDoubledQuote() {
	p.col.append(p.d.quote)
	n := len(p.d.doubleQuote)
	p.input.advance(n)
	p.currentPos += n
}

// closeQuotedColumn implements the first half of rule 12: consuming the
// closing quote. The look-ahead check is deferred to
// resolvePendingAfterQuote so a refill can run in between if needed.
func (p *Parser) closeQuotedColumn() {
	p.inQuote = false
	p.inColumn = false
	n := len(p.d.quote)
	p.input.advance(n)
	p.currentPos += n
	p.pendingAfterQuote = true
}

// resolvePendingAfterQuote implements the second half of rule 12.
func (p *Parser) resolvePendingAfterQuote() {
	p.pendingAfterQuote = false
	if p.input.unprocessed() == 0 {
		return
	}
	u := p.input.unread()
	if bytes.HasPrefix(u, p.d.lineSeparator) || bytes.HasPrefix(u, p.d.columnSeparator) {
		return
	}
	err := newParseError(KindUnexpectedAfterQuote, p.errLine(), p.errChar()).withOffending(u[0])
	p.fail(err)
}

// endsUnquotedColumnByLookahead implements the predicate of rule 13.
func (p *Parser) endsUnquotedColumnByLookahead() bool {
	if p.input.unprocessed() == 0 {
		return true
	}
	u := p.input.unread()
	return bytes.HasPrefix(u, p.d.lineSeparator) || bytes.HasPrefix(u, p.d.columnSeparator)
}

// bulkBodyRead implements rule 14.
func (p *Parser) bulkBodyRead() {
	if p.inQuote {
		p.bulkBodyReadQuoted()
		return
	}
	p.bulkBodyReadUnquoted()
}

func (p *Parser) bulkBodyReadUnquoted() {
	unread := p.input.unread()

	if bytes.HasPrefix(unread, p.d.quote) {
		p.fail(newParseError(KindUnexpectedQuoteInField, p.errLine(), p.errChar()))
		return
	}

	limit := minInt(p.input.unprocessed()-p.d.minReserve, p.col.free())
	if limit <= 1 {
		p.col.appendByte(unread[0])
		p.input.advance(1)
		p.currentPos++
		return
	}

	res := findReadTillIndex(unread, limit, p.d.lineSeparator, p.d.columnSeparator, p.d.quote)
	n := res.index
	p.col.append(unread[:n])
	p.input.advance(n)
	p.currentPos += n
}

func (p *Parser) bulkBodyReadQuoted() {
	unread := p.input.unread()

	limit := minInt(p.input.unprocessed()-p.d.minReserve, p.col.free())
	if limit <= 1 {
		if bytes.HasPrefix(unread, p.d.lineSeparator) {
			n := len(p.d.lineSeparator)
			p.col.append(unread[:n])
			p.input.advance(n)
			p.currentPos += n
			p.linesProcessed++
			p.lastLineStartPos = p.currentPos
			return
		}
		p.col.appendByte(unread[0])
		p.input.advance(1)
		p.currentPos++
		return
	}

	res := findReadTillIndexQuoted(unread, limit, p.d.quote, p.d.lineSeparator)
	n := res.index
	p.col.append(unread[:n])
	p.input.advance(n)
	p.currentPos += n
	if res.newLinesSeen > 0 {
		p.linesProcessed += res.newLinesSeen
		p.lastLineStartPos = p.currentPos - (n - res.lastLineEndOffset)
	}
}

func (p *Parser) emitCell() {
	text := string(p.col.content())
	if p.cb.OnCellPos != nil {
		line := p.fieldStartLineNum + 1
		char := p.fieldStartPos - p.fieldStartLineHead + 1
		p.cb.OnCellPos(line, char)
	}
	if p.cb.OnCell != nil {
		p.cb.OnCell(text)
	}
	p.col.reset()
}

func (p *Parser) emitRowEnd() {
	if p.cb.OnRowEnd != nil {
		p.cb.OnRowEnd()
	}
}

func (p *Parser) emitEnd() {
	p.done = true
	if p.cb.OnEnd != nil {
		p.cb.OnEnd()
	}
}

func (p *Parser) fail(err error) {
	p.done = true
	if p.cb.OnError != nil {
		p.cb.OnError(err)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
