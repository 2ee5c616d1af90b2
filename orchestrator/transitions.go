package orchestrator

import (
	"fmt"

	"github.com/giygas/drugstore/catalog"
	"github.com/giygas/drugstore/entities"
	"github.com/giygas/drugstore/metrics"
)

// viewTransition applies fn to the view filter and fetches when the view
// changed.
func (c *Controller) viewTransition(fn func(*catalog.ViewFilter) bool) bool {
	c.mu.Lock()
	changed := fn(c.state.View)
	if changed {
		c.issueDrugsLocked()
	}
	c.mu.Unlock()

	if changed {
		c.persist(keyView)
	}
	return changed
}

// SelectAll shows every drug.
func (c *Controller) SelectAll() bool {
	return c.viewTransition((*catalog.ViewFilter).SelectAll)
}

// SelectCountry shows the drugs of countryID, or all drugs when that country
// is already shown.
func (c *Controller) SelectCountry(countryID string) bool {
	return c.viewTransition(func(f *catalog.ViewFilter) bool {
		return f.SelectCountry(countryID)
	})
}

// FindSimilar shows drugs sharing the active substance of a loaded drug.
// A drug without an active substance leads back to all drugs.
func (c *Controller) FindSimilar(drugID string) (bool, error) {
	drug, ok := c.Drug(drugID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownDrug, drugID)
	}
	return c.FindSimilarTo(drug), nil
}

// FindSimilarTo is FindSimilar for a drug the caller already holds.
func (c *Controller) FindSimilarTo(drug entities.Drug) bool {
	substance, _ := drug.ActiveSubstance()
	return c.viewTransition(func(f *catalog.ViewFilter) bool {
		return f.SelectSimilar(substance.Name)
	})
}

// ToggleFavoriteView enters the favorites view, or restores the view it was
// entered from. Entering with no favorites does nothing.
func (c *Controller) ToggleFavoriteView() bool {
	return c.viewTransition(func(f *catalog.ViewFilter) bool {
		return f.SelectFavorite(c.state.Selection.FavoritesEmpty())
	})
}

// selectionTransition applies fn to the selection and persists the keys it
// touches.
func (c *Controller) selectionTransition(fn func(*catalog.Selection), keys ...string) {
	c.mu.Lock()
	fn(c.state.Selection)
	metrics.SetSelection(c.state.Selection.SelectedCount(), c.state.Selection.FavoriteCount())
	c.mu.Unlock()

	c.persist(keys...)
}

func (c *Controller) Select(id string) {
	c.selectionTransition(func(s *catalog.Selection) { s.Select(id) }, keySelection)
}

func (c *Controller) Deselect(id string) {
	c.selectionTransition(func(s *catalog.Selection) { s.Deselect(id) }, keySelection)
}

// ClearSelection empties the selection; favorites are kept.
func (c *Controller) ClearSelection() {
	c.selectionTransition((*catalog.Selection).ClearSelection, keySelection)
}

// ToggleFavorite flips one drug's favorite mark.
func (c *Controller) ToggleFavorite(id string) {
	c.selectionTransition(func(s *catalog.Selection) { s.ToggleFavorite(id) }, keyFavorites)
}

// BulkFavoriteSelected marks every selected drug favorite.
func (c *Controller) BulkFavoriteSelected() {
	c.selectionTransition((*catalog.Selection).BulkFavoriteSelected, keyFavorites)
}

// BulkUnfavoriteSelected clears the favorite mark of every selected drug.
func (c *Controller) BulkUnfavoriteSelected() {
	c.selectionTransition((*catalog.Selection).BulkUnfavoriteSelected, keyFavorites)
}

// ToggleSelectionFavorite is the header checkbox: unfavorite the selection
// when it is all favorite, favorite it otherwise. It returns the new state.
func (c *Controller) ToggleSelectionFavorite() catalog.CheckState {
	var state catalog.CheckState
	c.selectionTransition(func(s *catalog.Selection) {
		s.ToggleSelectionFavorite()
		state = s.FavoriteCheckbox()
	}, keyFavorites)
	return state
}

// ToggleTheme flips light/dark and returns the new mode.
func (c *Controller) ToggleTheme() entities.ThemeMode {
	c.mu.Lock()
	c.state.Theme = c.state.Theme.Toggle()
	theme := c.state.Theme
	c.mu.Unlock()

	c.persist(keyTheme)
	return theme
}

// ToggleReadonly flips the readonly flag and returns it.
func (c *Controller) ToggleReadonly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Readonly = !c.state.Readonly
	return c.state.Readonly
}

func (c *Controller) SetReadonly(readonly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Readonly = readonly
}
