// Package vision extracts structured card data from a vision card
// screenshot.
//
// Extract is the entry point: it locates the stats panel and name band,
// conditions both crops for recognition, hands them to an ocr.Engine,
// and recovers a typed Card from the raw, partially garbled text. The
// recovery layers are a state machine over the text lines
// (classifyStatsText) and a per-line decision table keyed on token count
// (ParseStatLine) that tolerates lost values and garbage tokens without
// ever inventing a number the recognizer did not produce.
//
// # Absent Values
//
// Every numeric stat is a pointer; nil means "recognition produced no
// readable value", which is deliberately distinct from zero. Cards never
// print zero stats, so the distinction is what lets a caller flag a
// card for manual re-submission instead of storing a silent wrong value.
//
// # Error Handling
//
// No error escapes Extract. Fatal conditions (no region, engine
// failure, unrecognizable stat line) become messages on the result with
// Success false, and the partially populated card is returned for
// diagnosis. Short or garbled lines in the free-text sections are
// recoverable noise and are silently dropped.
package vision
