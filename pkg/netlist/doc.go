// Package netlist assigns electrical nets to the keys of a keyboard.
//
// The net table has a fixed order that the board template depends on:
//
//  1. the power and control nets of the stock controller circuit,
//  2. one net per matrix row, /Row_0 to /Row_{maxRows-1},
//  3. one net per matrix column, /Col_0 to /Col_{maxColumns-1},
//  4. one net per key joining its switch and diode, Net-(D{n}-Pad2).
//
// Net ids are 1-based positions in that table. Id 0 is reserved by KiCad
// for "no net" and is never handed out for a resolved name.
//
// Each key is wired as
//
//	column net ── switch K{n} ── Net-(D{n}-Pad2) ── diode D{n} ── row net
//
// so that pad 1 of the switch is on the column and pad 1 (cathode) of the
// diode is on the row.
package netlist
