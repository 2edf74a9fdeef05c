package streamcsv

import (
	"errors"
	"strings"
	"testing"
)

func TestParseError_Error(t *testing.T) {
	e := newParseError(KindUnterminatedQuote, 3, 7)
	want := "UnterminatedQuote (line 3, character 7)"
	if got := e.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseError_CRHintOnlyForUnexpectedAfterQuoteWithCR(t *testing.T) {
	tests := []struct {
		name      string
		kind      ErrorKind
		offending byte
		hasHint   bool
	}{
		{"after-quote with CR", KindUnexpectedAfterQuote, '\r', true},
		{"after-quote with other byte", KindUnexpectedAfterQuote, 'x', false},
		{"unterminated quote with CR", KindUnterminatedQuote, '\r', false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newParseError(tt.kind, 1, 1).withOffending(tt.offending)
			gotHint := strings.Contains(e.Error(), `lineSeparator: "\r\n"`)
			if gotHint != tt.hasHint {
				t.Fatalf("got hint=%v, want %v (message %q)", gotHint, tt.hasHint, e.Error())
			}
		})
	}
}

func TestParseError_UnwrapsToSentinel(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want error
	}{
		{KindUnterminatedQuote, ErrUnterminatedQuote},
		{KindUnexpectedAfterQuote, ErrUnexpectedAfterQuote},
		{KindUnexpectedQuoteInField, ErrUnexpectedQuoteInField},
		{KindUnexpected, ErrUnexpected},
	}
	for _, tt := range tests {
		e := newParseError(tt.kind, 1, 1)
		if !errors.Is(e, tt.want) {
			t.Fatalf("errors.Is(%v, %v) = false, want true", e, tt.want)
		}
	}
}
