package catalog

import (
	"fmt"
	"strings"
)

// GroupBy selects which drug subset is displayed.
type GroupBy int

const (
	GroupAll GroupBy = iota
	GroupCountry
	GroupSimilar
	GroupFavorite
)

var groupByNames = [...]string{"all", "country", "similar", "favorite"}

func (g GroupBy) String() string {
	if g < 0 || int(g) >= len(groupByNames) {
		return "unknown"
	}
	return groupByNames[g]
}

// MarshalText encodes the group by name.
func (g GroupBy) MarshalText() ([]byte, error) {
	if g < 0 || int(g) >= len(groupByNames) {
		return nil, fmt.Errorf("invalid group-by %d", int(g))
	}
	return []byte(groupByNames[g]), nil
}

// UnmarshalText decodes a group name.
func (g *GroupBy) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range groupByNames {
		if n == name {
			*g = GroupBy(i)
			return nil
		}
	}
	return fmt.Errorf("unknown group-by %q", text)
}

// View is one value of the group-by tagged union. CountryID is set only for
// GroupCountry and Substance only for GroupSimilar.
type View struct {
	GroupBy   GroupBy `json:"groupBy"`
	CountryID string  `json:"selectedCountryId,omitempty"`
	Substance string  `json:"substance,omitempty"`
}

// AllView is the default view.
var AllView = View{GroupBy: GroupAll}

// CountryView returns the view of drugs sold in countryID.
func CountryView(countryID string) View {
	return View{GroupBy: GroupCountry, CountryID: countryID}
}

// SimilarView returns the view of drugs sharing an active substance.
func SimilarView(substance string) View {
	return View{GroupBy: GroupSimilar, Substance: substance}
}

// FavoriteView is the favorites-only view.
var FavoriteView = View{GroupBy: GroupFavorite}

// Valid reports whether the payload fields agree with the tag.
func (v View) Valid() bool {
	switch v.GroupBy {
	case GroupAll, GroupFavorite:
		return v.CountryID == "" && v.Substance == ""
	case GroupCountry:
		return v.CountryID != "" && v.Substance == ""
	case GroupSimilar:
		return v.Substance != "" && v.CountryID == ""
	}
	return false
}

// ViewFilter is the group-by state machine.
//
// Entering Favorite snapshots the active view; toggling Favorite again
// restores that snapshot. The snapshot is taken at entry, never at exit, and
// holds a single level.
type ViewFilter struct {
	current  View
	previous *View
}

// NewViewFilter starts on the All view.
func NewViewFilter() *ViewFilter {
	return &ViewFilter{current: AllView}
}

// Current returns the active view.
func (f *ViewFilter) Current() View { return f.current }

// Previous returns the view recorded when Favorite was entered.
func (f *ViewFilter) Previous() (View, bool) {
	if f.previous == nil {
		return View{}, false
	}
	return *f.previous, true
}

// SelectAll switches to All and clears the selected country.
// All transitions return whether the active view changed.
func (f *ViewFilter) SelectAll() bool {
	return f.set(AllView)
}

// SelectCountry switches to the country view of id, or back to All when that
// country is already shown. An empty id is ignored.
func (f *ViewFilter) SelectCountry(id string) bool {
	if id == "" {
		return false
	}
	if f.current.GroupBy == GroupCountry && f.current.CountryID == id {
		return f.set(AllView)
	}
	return f.set(CountryView(id))
}

// SelectSimilar switches to drugs sharing substance. Without a substance
// there is nothing to look up and the filter falls back to All.
func (f *ViewFilter) SelectSimilar(substance string) bool {
	if substance == "" {
		return f.set(AllView)
	}
	return f.set(SimilarView(substance))
}

// SelectFavorite enters the favorites view, or restores the view recorded at
// entry when Favorite is already active. Entering is refused while there are
// no favorites; leaving is always allowed.
func (f *ViewFilter) SelectFavorite(favoritesEmpty bool) bool {
	if f.current.GroupBy == GroupFavorite {
		restore := AllView
		if f.previous != nil {
			restore = *f.previous
		}
		return f.set(restore)
	}
	if favoritesEmpty {
		return false
	}
	prev := f.current
	f.current = FavoriteView
	f.previous = &prev
	return true
}

// Demote falls back to All from a view that can show nothing. Only Country
// and Similar views demote.
func (f *ViewFilter) Demote() bool {
	switch f.current.GroupBy {
	case GroupCountry, GroupSimilar:
		return f.set(AllView)
	}
	return false
}

// Restore installs a previously persisted view. Invalid views and favorite
// views are replaced by All since the entry snapshot is not persisted.
func (f *ViewFilter) Restore(v View) {
	if !v.Valid() || v.GroupBy == GroupFavorite {
		v = AllView
	}
	f.current = v
	f.previous = nil
}

func (f *ViewFilter) set(v View) bool {
	f.previous = nil
	if f.current == v {
		return false
	}
	f.current = v
	return true
}
