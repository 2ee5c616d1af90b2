package orchestrator

import (
	"github.com/giygas/drugstore/catalog"
	"github.com/giygas/drugstore/entities"
)

// CollectionView is one tracker as rendered.
type CollectionView[T any] struct {
	Status  catalog.Status `json:"status"`
	Message string         `json:"message,omitempty"`
	Items   []T            `json:"items"`
	// SkeletonCount is how many placeholders to draw while loading.
	SkeletonCount int `json:"skeletonCount"`
}

// Snapshot is an immutable copy of the whole state plus the derived queries a
// renderer needs.
type Snapshot struct {
	Drugs        CollectionView[entities.Drug]    `json:"drugs"`
	Countries    CollectionView[entities.Country] `json:"countries"`
	View         catalog.View                     `json:"view"`
	PreviousView *catalog.View                    `json:"previousView,omitempty"`

	SelectedIDs            []string           `json:"selectedIds"`
	FavoriteIDs            []string           `json:"favoriteIds"`
	SelectedCount          int                `json:"selectedCount"`
	FavoriteCount          int                `json:"favoriteCount"`
	SelectionEmpty         bool               `json:"selectionEmpty"`
	FavoritesEmpty         bool               `json:"favoritesEmpty"`
	AnyFavoriteInSelection bool               `json:"anyFavoriteInSelection"`
	AllSelectedAreFavorite bool               `json:"allSelectedAreFavorite"`
	FavoriteCheckbox       catalog.CheckState `json:"favoriteCheckbox"`

	Theme         entities.ThemeMode `json:"theme"`
	Readonly      bool               `json:"readonly"`
	Notifications []Notification     `json:"notifications"`
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	snap := Snapshot{
		Drugs:     c.drugsViewLocked(),
		Countries: c.countriesViewLocked(),
		View:      s.View.Current(),

		SelectedIDs:            s.Selection.SelectedIDs(),
		FavoriteIDs:            s.Selection.FavoriteIDs(),
		SelectedCount:          s.Selection.SelectedCount(),
		FavoriteCount:          s.Selection.FavoriteCount(),
		SelectionEmpty:         s.Selection.SelectionEmpty(),
		FavoritesEmpty:         s.Selection.FavoritesEmpty(),
		AnyFavoriteInSelection: s.Selection.AnyFavoriteInSelection(),
		AllSelectedAreFavorite: s.Selection.AllSelectedAreFavorite(),
		FavoriteCheckbox:       s.Selection.FavoriteCheckbox(),

		Theme:         s.Theme,
		Readonly:      s.Readonly,
		Notifications: c.activeNotificationsLocked(),
	}
	if prev, ok := s.View.Previous(); ok {
		snap.PreviousView = &prev
	}
	return snap
}

// Drugs returns the drugs tracker as rendered.
func (c *Controller) Drugs() CollectionView[entities.Drug] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drugsViewLocked()
}

// Countries returns the countries tracker as rendered.
func (c *Controller) Countries() CollectionView[entities.Country] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countriesViewLocked()
}

func (c *Controller) drugsViewLocked() CollectionView[entities.Drug] {
	t := c.state.Drugs
	return CollectionView[entities.Drug]{
		Status:        t.Status(),
		Message:       t.Message(),
		Items:         t.Items(),
		SkeletonCount: c.state.DrugsSkeletonCount,
	}
}

func (c *Controller) countriesViewLocked() CollectionView[entities.Country] {
	t := c.state.Countries
	return CollectionView[entities.Country]{
		Status:        t.Status(),
		Message:       t.Message(),
		Items:         t.Items(),
		SkeletonCount: c.state.CountriesSkeletonCount,
	}
}
