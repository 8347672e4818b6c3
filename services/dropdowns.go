package services

// ModeOptions lists the product modes in the order the mode selector shows them.
var ModeOptions = []Mode{
	ModeAccessories,
	ModeLoupes,
	ModeLights,
	ModeOmniOptic,
	ModeSchoolBundles,
}

// MarketPlaceholder is the first option of every market dropdown.
const MarketPlaceholder = "Select Market"

// Placeholder returns the "not yet chosen" option label for a selector.
func Placeholder(label string) string {
	return "Select " + label
}

// ParseMode maps a submitted mode value back to a Mode.
func ParseMode(s string) (Mode, bool) {
	for _, m := range ModeOptions {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}
