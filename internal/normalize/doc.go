// Package normalize turns external payloads into canonical, nullable values.
//
// Two shapes are handled. Nested JSON from the stats API is walked with gjson and jmespath,
// and absent nesting yields nil rather than an error. Header-labelled CSV leaderboards are read
// with column aliases; a missing required column produces an empty result, and a malformed row
// is skipped without stopping the parse. Numeric parsers return nil for unparseable text so that
// "present but unparseable" stays distinguishable from zero.
package normalize
