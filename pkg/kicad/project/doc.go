// Package project renders a KiCad 5 project for a keyboard whose matrix
// and nets are already assigned: a legacy schematic (.sch), a board
// (.kicad_pcb), a project file (.pro) and a netlist (.net).
//
// The files are produced from embedded templates. This package only
// computes placement; it performs no routing and no electrical checks.
package project
