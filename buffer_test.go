package streamcsv

import "testing"

func TestInputBuffer_CompactIfNeeded(t *testing.T) {
	var b inputBuffer
	b.append([]byte("hello world"))
	b.advance(6)

	if b.compactIfNeeded(10) {
		t.Fatalf("should not compact below the limit")
	}
	if !b.compactIfNeeded(6) {
		t.Fatalf("expected a compaction at the limit")
	}
	if got := string(b.unread()); got != "world" {
		t.Fatalf("got %q, want %q", got, "world")
	}
	if b.readIndex != 0 {
		t.Fatalf("readIndex should reset to 0 after compaction, got %d", b.readIndex)
	}
}

func TestColumnBuffer_GrowIfNeeded(t *testing.T) {
	c := newColumnBuffer(4)
	if !c.growIfNeeded(10) {
		t.Fatalf("expected initial growth")
	}
	if c.free() < 10 {
		t.Fatalf("expected at least 10 bytes free, got %d", c.free())
	}
	c.append([]byte("abcdefghij"))
	if c.len() != 10 {
		t.Fatalf("got len %d, want 10", c.len())
	}
	if string(c.content()) != "abcdefghij" {
		t.Fatalf("got content %q", c.content())
	}
}

func TestColumnBuffer_ResetReleasesBacking(t *testing.T) {
	c := newColumnBuffer(8)
	c.growIfNeeded(8)
	c.append([]byte("abc"))
	c.reset()
	if c.len() != 0 {
		t.Fatalf("expected len 0 after reset, got %d", c.len())
	}
	if cap(c.bytes) != 0 {
		t.Fatalf("expected reset to release the backing array, cap is %d", cap(c.bytes))
	}
}
