package tokenizer

// Span is a half-open byte range [Start, End) into the encoded input text.
// Special tokens such as [CLS] have a zero span.
type Span struct {
	Start int
	End   int
}

// Len returns the span width in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Encoding is the result of encoding one text with offset tracking. The
// three slices are parallel: IDs[i] was produced from text[Offsets[i].Start:
// Offsets[i].End], and Special[i] marks wrapper tokens that map to no input
// bytes.
type Encoding struct {
	IDs     []int32
	Offsets []Span
	Special []bool
}

// Len returns the number of tokens in the encoding.
func (e *Encoding) Len() int {
	return len(e.IDs)
}

// Inner returns the encoding with leading and trailing special tokens
// stripped, sharing the underlying slices.
func (e *Encoding) Inner() *Encoding {
	start, end := 0, len(e.IDs)
	for start < end && e.Special[start] {
		start++
	}
	for end > start && e.Special[end-1] {
		end--
	}
	return &Encoding{
		IDs:     e.IDs[start:end],
		Offsets: e.Offsets[start:end],
		Special: e.Special[start:end],
	}
}

// Window returns the token sub-range [start, end) of the encoding, sharing
// the underlying slices.
func (e *Encoding) Window(start, end int) *Encoding {
	return &Encoding{
		IDs:     e.IDs[start:end],
		Offsets: e.Offsets[start:end],
		Special: e.Special[start:end],
	}
}
