package streamcsv

// Stats holds purely-additive observability counters for a single Parser
// instance.
type Stats struct {
	// Reads is the number of calls made to the byte source, including the
	// final one that reports the end of input or an error.
	Reads int
	// InputBufferShrinks is the number of times the input buffer was
	// compacted (rule 2 of the parser loop).
	InputBufferShrinks int
	// ColumnBufferExpands is the number of times the column buffer was
	// grown (rule 3 of the parser loop).
	ColumnBufferExpands int
}
