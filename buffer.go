package streamcsv

// inputBuffer is a sliding window over bytes pulled from the byte source.
// Bytes before readIndex have already been consumed by the parser and are
// reclaimed on compaction (see compactIfNeeded).
type inputBuffer struct {
	bytes     []byte
	readIndex int
}

// unprocessed returns the number of unread bytes currently buffered.
func (b *inputBuffer) unprocessed() int {
	return len(b.bytes) - b.readIndex
}

// unread returns the unread tail of the buffer as a slice. The slice
// aliases b.bytes and is only valid until the next append or compaction.
func (b *inputBuffer) unread() []byte {
	return b.bytes[b.readIndex:]
}

// append adds freshly-read bytes to the tail of the buffer.
func (b *inputBuffer) append(chunk []byte) {
	b.bytes = append(b.bytes, chunk...)
}

// advance marks n more bytes as consumed.
func (b *inputBuffer) advance(n int) {
	b.readIndex += n
}

// compactIfNeeded drops the consumed prefix once readIndex reaches limit,
// copying the unread tail to the front of the backing slice (rule 2 of the
// parser loop). Returns true if it performed a compaction.
func (b *inputBuffer) compactIfNeeded(limit int) bool {
	if b.readIndex < limit {
		return false
	}
	n := copy(b.bytes, b.bytes[b.readIndex:])
	b.bytes = b.bytes[:n]
	b.readIndex = 0
	return true
}

// columnBuffer is a growable byte vector holding the raw bytes of the cell
// currently being assembled. It is never shrunk in place; it is released
// and replaced with a fresh allocation once a cell is emitted, so large
// cells don't pin memory.
type columnBuffer struct {
	bytes     []byte
	writeIdx  int
	stepSize  int
}

func newColumnBuffer(stepSize int) *columnBuffer {
	if stepSize <= 0 {
		stepSize = DefaultColumnBufferMinStepSize
	}
	return &columnBuffer{stepSize: stepSize}
}

// free returns the number of unused bytes after writeIdx.
func (c *columnBuffer) free() int {
	return cap(c.bytes) - c.writeIdx
}

// growIfNeeded reallocates the buffer in stepSize increments until at
// least reserve bytes are free past writeIdx (rule 3 of the parser loop).
// Returns true if it grew the buffer.
func (c *columnBuffer) growIfNeeded(reserve int) bool {
	if c.free() >= reserve {
		return false
	}
	newCap := cap(c.bytes)
	if newCap == 0 {
		newCap = c.stepSize
	}
	for newCap-c.writeIdx < reserve {
		newCap += c.stepSize
	}
	grown := make([]byte, c.writeIdx, newCap)
	copy(grown, c.bytes[:c.writeIdx])
	c.bytes = grown
	return true
}

// append copies src into the column buffer. Callers must have already
// ensured enough free space via growIfNeeded.
func (c *columnBuffer) append(src []byte) {
	n := copy(c.bytes[c.writeIdx:cap(c.bytes)], src)
	c.writeIdx += n
	if n < len(src) {
		// Should not happen given growIfNeeded's contract; fall back to
		// a plain append to stay correct even if it reallocates.
		c.bytes = append(c.bytes[:c.writeIdx], src[n:]...)
		c.writeIdx = len(c.bytes)
	}
}

// appendByte appends a single byte.
func (c *columnBuffer) appendByte(b byte) {
	c.append([]byte{b})
}

// content returns the bytes written so far.
func (c *columnBuffer) content() []byte {
	return c.bytes[:c.writeIdx]
}

// len returns the number of bytes written so far.
func (c *columnBuffer) len() int {
	return c.writeIdx
}

// reset releases the current backing array rather than truncating it in
// place, so large cells promptly give back their memory.
func (c *columnBuffer) reset() {
	c.bytes = nil
	c.writeIdx = 0
}
