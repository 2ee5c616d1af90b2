package catalog

import "slices"

// CheckState is the tri-state of the header favorite checkbox.
type CheckState string

const (
	Unchecked     CheckState = "unchecked"
	Checked       CheckState = "checked"
	Indeterminate CheckState = "indeterminate"
)

type idSet map[string]struct{}

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Selection tracks drugs picked for bulk actions and drugs marked favorite.
// Both are sets: inserting an id twice has no effect, removing an absent id is
// a no-op.
type Selection struct {
	selected  idSet
	favorites idSet
}

// NewSelection returns an empty selection store.
func NewSelection() *Selection {
	return &Selection{selected: idSet{}, favorites: idSet{}}
}

// Select marks id for bulk action.
func (s *Selection) Select(id string) {
	s.selected[id] = struct{}{}
}

// Deselect removes id from the bulk selection.
func (s *Selection) Deselect(id string) {
	delete(s.selected, id)
}

// ClearSelection empties the bulk selection.
func (s *Selection) ClearSelection() {
	s.selected = idSet{}
}

// ToggleFavorite inserts id into favorites if absent, removes it otherwise.
func (s *Selection) ToggleFavorite(id string) {
	if _, ok := s.favorites[id]; ok {
		delete(s.favorites, id)
		return
	}
	s.favorites[id] = struct{}{}
}

// AddFavorite marks id as favorite.
func (s *Selection) AddFavorite(id string) {
	s.favorites[id] = struct{}{}
}

// RemoveFavorite clears the favorite mark of id.
func (s *Selection) RemoveFavorite(id string) {
	delete(s.favorites, id)
}

// BulkFavoriteSelected adds every selected id to favorites.
func (s *Selection) BulkFavoriteSelected() {
	for id := range s.selected {
		s.favorites[id] = struct{}{}
	}
}

// BulkUnfavoriteSelected removes every selected id from favorites.
func (s *Selection) BulkUnfavoriteSelected() {
	for id := range s.selected {
		delete(s.favorites, id)
	}
}

// ToggleSelectionFavorite drives the single header favorite control: when the
// whole selection is already favorite it is unfavorited, otherwise every
// selected id becomes favorite. An empty selection is left alone.
func (s *Selection) ToggleSelectionFavorite() {
	if len(s.selected) == 0 {
		return
	}
	if s.AllSelectedAreFavorite() {
		s.BulkUnfavoriteSelected()
		return
	}
	s.BulkFavoriteSelected()
}

// Forget drops id from both sets, typically after a confirmed delete.
func (s *Selection) Forget(id string) {
	delete(s.selected, id)
	delete(s.favorites, id)
}

// RetainSelection keeps only selected ids present in known.
// It returns the number of ids dropped.
func (s *Selection) RetainSelection(known []string) int {
	return retain(s.selected, known)
}

// RetainFavorites keeps only favorite ids present in known.
// It returns the number of ids dropped.
func (s *Selection) RetainFavorites(known []string) int {
	return retain(s.favorites, known)
}

// DropMissingFavorites removes favorites that were requested but absent from
// returned. Favorites outside requested are kept. It returns the number of ids
// dropped.
func (s *Selection) DropMissingFavorites(requested, returned []string) int {
	found := make(idSet, len(returned))
	for _, id := range returned {
		found[id] = struct{}{}
	}
	dropped := 0
	for _, id := range requested {
		if _, ok := found[id]; ok {
			continue
		}
		if _, ok := s.favorites[id]; ok {
			delete(s.favorites, id)
			dropped++
		}
	}
	return dropped
}

func retain(set idSet, known []string) int {
	keep := make(idSet, len(known))
	for _, id := range known {
		keep[id] = struct{}{}
	}
	dropped := 0
	for id := range set {
		if _, ok := keep[id]; !ok {
			delete(set, id)
			dropped++
		}
	}
	return dropped
}

// SelectedCount returns the size of the bulk selection.
func (s *Selection) SelectedCount() int { return len(s.selected) }

// SelectionEmpty reports whether nothing is selected.
func (s *Selection) SelectionEmpty() bool { return len(s.selected) == 0 }

// IsSelected reports whether id is in the bulk selection.
func (s *Selection) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// FavoriteCount returns the number of favorites.
func (s *Selection) FavoriteCount() int { return len(s.favorites) }

// FavoritesEmpty reports whether no drug is favorite.
func (s *Selection) FavoritesEmpty() bool { return len(s.favorites) == 0 }

// IsFavorite reports whether id is favorite.
func (s *Selection) IsFavorite(id string) bool {
	_, ok := s.favorites[id]
	return ok
}

// AnyFavoriteInSelection reports whether selection and favorites intersect.
func (s *Selection) AnyFavoriteInSelection() bool {
	for id := range s.selected {
		if _, ok := s.favorites[id]; ok {
			return true
		}
	}
	return false
}

// AllSelectedAreFavorite reports whether the selection is a subset of the
// favorites. It is vacuously true for an empty selection; use FavoriteCheckbox
// for display.
func (s *Selection) AllSelectedAreFavorite() bool {
	for id := range s.selected {
		if _, ok := s.favorites[id]; !ok {
			return false
		}
	}
	return true
}

// FavoriteCheckbox maps the selection/favorites overlap to the header
// checkbox: unchecked when nothing is selected or no selected drug is
// favorite, checked when all are, indeterminate otherwise.
func (s *Selection) FavoriteCheckbox() CheckState {
	switch {
	case s.SelectionEmpty():
		return Unchecked
	case s.AllSelectedAreFavorite():
		return Checked
	case s.AnyFavoriteInSelection():
		return Indeterminate
	default:
		return Unchecked
	}
}

// SelectedIDs returns the selected ids in lexical order.
func (s *Selection) SelectedIDs() []string { return s.selected.sorted() }

// FavoriteIDs returns the favorite ids in lexical order.
func (s *Selection) FavoriteIDs() []string { return s.favorites.sorted() }
