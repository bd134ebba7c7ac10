// Package oratypes is the static type registry: portable type identifiers,
// host-facing native representation tags, and the descriptor table mapping
// each type to its wire size, default representation and classification
// flags. The table is read-only; variables consult it but never own it.
package oratypes
