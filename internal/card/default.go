package card

import (
	_ "embed"
)

// defaultCard is the card of the documented hosted model, kept in-repo so the
// declared metadata is available without a hub round trip.
//
//go:embed pii-ner-en.md
var defaultCard []byte

// Default returns the embedded card for piisec/pii-ner-en.
func Default() *Card {
	c, err := Parse(defaultCard)
	if err != nil {
		// The embedded card is fixed at build time; a parse failure here is a
		// programming error.
		panic("card: embedded default card is malformed: " + err.Error())
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	return c
}
