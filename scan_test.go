package streamcsv

import "testing"

func TestHasZeroByte(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
		want bool
	}{
		{"all ones", 0xFFFFFFFFFFFFFFFF, false},
		{"zero byte at start", 0x00FFFFFFFFFFFFFF, true},
		{"zero byte in middle", 0xFFFF00FFFFFFFFFF, true},
		{"no zero byte", 0x0101010101010101, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasZeroByte(tt.v); got != tt.want {
				t.Fatalf("hasZeroByte(%#x) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestIndexByteFast(t *testing.T) {
	tests := []struct {
		data string
		b    byte
		want int
	}{
		{"", 'x', -1},
		{"abc", 'b', 1},
		{"aaaaaaaaaaaaaaaa,b", ',', 16},
		{"no-match-here", 'z', -1},
	}
	for _, tt := range tests {
		if got := indexByteFast([]byte(tt.data), tt.b); got != tt.want {
			t.Fatalf("indexByteFast(%q, %q) = %d, want %d", tt.data, tt.b, got, tt.want)
		}
	}
}

func TestFindReadTillIndex(t *testing.T) {
	lineSep, colSep, quote := []byte("\n"), []byte(","), []byte(`"`)

	tests := []struct {
		name  string
		slice string
		limit int
		want  readTillResult
	}{
		{"hits column separator first", "abc,def", 7, readTillResult{index: 3, which: matchColumn}},
		{"hits line separator first", "abc\ndef", 7, readTillResult{index: 3, which: matchLine}},
		{"hits quote at offset 0", `"quoted`, 7, readTillResult{index: 0, which: matchQuote}},
		{"no match within limit", "abcdef", 4, readTillResult{index: 4, which: matchLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findReadTillIndex([]byte(tt.slice), tt.limit, lineSep, colSep, quote)
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFindReadTillIndexQuoted(t *testing.T) {
	quote, lineSep := []byte(`"`), []byte("\n")

	res := findReadTillIndexQuoted([]byte("a\nb\nc\"tail"), 10, quote, lineSep)
	if res.index != 5 {
		t.Fatalf("got index %d, want 5", res.index)
	}
	if res.newLinesSeen != 2 {
		t.Fatalf("got newLinesSeen %d, want 2", res.newLinesSeen)
	}
	if res.lastLineEndOffset != 4 {
		t.Fatalf("got lastLineEndOffset %d, want 4", res.lastLineEndOffset)
	}

	res = findReadTillIndexQuoted([]byte("no newline or quote"), 19, quote, lineSep)
	if res.index != 19 || res.newLinesSeen != 0 || res.lastLineEndOffset != -1 {
		t.Fatalf("got %+v for a run with no boundary", res)
	}
}
