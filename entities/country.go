package entities

// Country groups drugs by market.
type Country struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// ThemeMode is the persisted light/dark preference.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Toggle returns the opposite mode. Unknown values toggle to dark.
func (m ThemeMode) Toggle() ThemeMode {
	if m == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether m is a known mode.
func (m ThemeMode) Valid() bool {
	return m == ThemeLight || m == ThemeDark
}
