// Package keyboard holds the in-memory model of a keyboard layout and the
// inference that turns key geometry into an electrical switch matrix.
//
// # Overview
//
// A Keyboard owns every Key by value in ingestion order. Rows and columns
// are computed once, as lists of indices into that slice, never as copies:
//
//  1. Ingest: keys are appended in the order they appear in the layout
//     (see package kle). Key.Row is floor(Y) and is never stored.
//  2. GenerateMatrix: keys are partitioned into rows and every key gets a
//     logical column index.
//  3. AnnotateNets: the net assignment pass (see package netlist) writes the
//     row, column and diode net ids.
//
// After step 3 the keyboard is sealed and read-only.
//
// # Column inference
//
// The first row is numbered positionally. For each later row the first key
// also takes its positional index (0). Every other key takes the column of
// the nearest key, by X, in the previous row. Two corrections follow:
//
//   - if that column equals the one just given to the previous key in the
//     same row, it is bumped by one;
//   - if it is more than MaxColumnDrift away from the previous key's column
//     and the key is narrower than WideKeyWidth, it is pulled back by one.
//
// Columns are clamped at zero.
//
// # Limitations
//
// This is a nearest-neighbour heuristic tuned for common staggered boards
// (row stagger up to about half a unit, uniform row pitch). Heavily rotated
// clusters, split boards and ortholinear grids with large offsets can end up
// with surprising column numbers. That is a property of the approach, not a
// bug to be patched case by case.
package keyboard
