// Package jstok implements a single-pass, allocation-free JSON tokenizer
// and structural validator.
//
// A Parser scans a byte buffer once, left to right, and emits a flat
// slice of Token values describing byte ranges in that buffer — it never
// builds a tree and never decodes strings or numbers. It can also run in
// count-only mode, where no tokens are written and only the token count
// is computed, which lets a caller size a token slice before a second
// pass.
//
// The parser is resumable: if the buffer ends in the middle of a token,
// Parse returns ErrPartial and leaves the Parser in a state such that a
// later call with a longer buffer sharing the same backing array
// completes the parse with the same output as a single call over the
// full buffer would have produced. See Parser.Parse for the exact
// contract.
package jstok
