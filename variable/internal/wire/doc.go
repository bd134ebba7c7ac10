// Package wire implements the fixed wire encodings the call interface reads
// and writes directly: the packed base-100 decimal number format and the
// date, timestamp and interval structures. All codecs operate on the flat
// per-element buffer slices owned by the variable.
package wire
