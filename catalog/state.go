package catalog

import "github.com/giygas/drugstore/entities"

// DefaultSkeletonCount is the placeholder row count before any load succeeded.
const DefaultSkeletonCount = 10

// AppState is the whole client-side state of one catalog session.
type AppState struct {
	Drugs     *Tracker[entities.Drug]
	Countries *Tracker[entities.Country]
	Selection *Selection
	View      *ViewFilter
	Theme     entities.ThemeMode
	// Readonly hides inline edit affordances. It has no data consequence.
	Readonly bool

	DrugsSkeletonCount     int
	CountriesSkeletonCount int
}

// NewAppState returns the process-start state: empty idle collections, no
// selection, All view, light theme.
func NewAppState() *AppState {
	return &AppState{
		Drugs:                  NewTracker[entities.Drug](),
		Countries:              NewTracker[entities.Country](),
		Selection:              NewSelection(),
		View:                   NewViewFilter(),
		Theme:                  entities.ThemeLight,
		DrugsSkeletonCount:     DefaultSkeletonCount,
		CountriesSkeletonCount: DefaultSkeletonCount,
	}
}

// ObserveDrugs sizes the drug placeholders after the last non-empty load.
func (s *AppState) ObserveDrugs() {
	if s.Drugs.Status() == StatusSucceeded && s.Drugs.Len() > 0 {
		s.DrugsSkeletonCount = s.Drugs.Len()
	}
}

// ObserveCountries sizes the country placeholders after the last non-empty load.
func (s *AppState) ObserveCountries() {
	if s.Countries.Status() == StatusSucceeded && s.Countries.Len() > 0 {
		s.CountriesSkeletonCount = s.Countries.Len()
	}
}

// FindDrug looks up a loaded drug by id.
func (s *AppState) FindDrug(id string) (entities.Drug, bool) {
	return s.Drugs.Find(func(d entities.Drug) bool { return d.ID == id })
}

// FindCountry looks up a loaded country by id.
func (s *AppState) FindCountry(id string) (entities.Country, bool) {
	return s.Countries.Find(func(c entities.Country) bool { return c.ID == id })
}
