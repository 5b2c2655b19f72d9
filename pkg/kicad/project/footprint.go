package project

// Footprint libraries referenced by the generated files.
const (
	SwitchLibrary  = "Keyboard"
	DiodeFootprint = "Diode:D_SOD-123"
	HeaderLibrary  = "Connector_PinHeader_2.54mm"
)

// FootprintWidth maps a key width in units to the nearest available
// switch footprint width at or below it. Anything of 6.25u or more gets
// the spacebar footprint.
func FootprintWidth(units float64) string {
	switch {
	case units < 1.25:
		return "1.00"
	case units < 1.5:
		return "1.25"
	case units < 1.75:
		return "1.50"
	case units < 2:
		return "1.75"
	case units < 2.25:
		return "2.00"
	case units < 2.75:
		return "2.25"
	case units < 6.25:
		return "2.75"
	}
	return "6.25"
}

// SwitchFootprint returns the library footprint for a key of the given
// width, for example "Keyboard:MX-1.25U".
func SwitchFootprint(units float64) string {
	return SwitchLibrary + ":MX-" + FootprintWidth(units) + "U"
}
