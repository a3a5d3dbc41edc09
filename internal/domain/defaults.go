package domain

// Defaulting cascades used when template items and import rows leave fields
// blank: the caller lists candidates from most to least specific.

// FirstNonEmpty returns the first non-empty string in vals, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// FirstFloat returns the first non-nil value in ptrs, or fallback.
func FirstFloat(fallback float64, ptrs ...*float64) float64 {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}
