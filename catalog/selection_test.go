package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectIsIdempotent(t *testing.T) {
	s := NewSelection()

	s.Select("x")
	if !s.IsSelected("x") || s.SelectedCount() != 1 {
		t.Fatalf("Expected x selected once, count %d", s.SelectedCount())
	}

	s.Select("x")
	if s.SelectedCount() != 1 {
		t.Errorf("Repeated select must not duplicate, count %d", s.SelectedCount())
	}

	s.Deselect("x")
	s.Deselect("x")
	s.Deselect("absent")
	if !s.SelectionEmpty() {
		t.Errorf("Expected empty selection, got %v", s.SelectedIDs())
	}
}

func TestClearSelectionKeepsFavorites(t *testing.T) {
	s := NewSelection()
	s.Select("a")
	s.Select("b")
	s.AddFavorite("a")

	s.ClearSelection()

	if !s.SelectionEmpty() {
		t.Error("ClearSelection should empty the selection")
	}
	if !s.IsFavorite("a") {
		t.Error("ClearSelection must not touch favorites")
	}
}

func TestToggleFavoriteIsItsOwnInverse(t *testing.T) {
	for _, start := range []bool{false, true} {
		s := NewSelection()
		if start {
			s.AddFavorite("id")
		}

		s.ToggleFavorite("id")
		if s.IsFavorite("id") == start {
			t.Errorf("Toggle from %v did not flip membership", start)
		}
		s.ToggleFavorite("id")
		if s.IsFavorite("id") != start {
			t.Errorf("Double toggle from %v did not restore membership", start)
		}
	}
}

func TestBulkFavorites(t *testing.T) {
	s := NewSelection()
	s.AddFavorite("a")
	s.AddFavorite("z")
	s.Select("a")
	s.Select("b")

	s.BulkFavoriteSelected()
	if diff := cmp.Diff([]string{"a", "b", "z"}, s.FavoriteIDs()); diff != "" {
		t.Errorf("Union mismatch (-want +got):\n%s", diff)
	}

	s.BulkUnfavoriteSelected()
	if diff := cmp.Diff([]string{"z"}, s.FavoriteIDs()); diff != "" {
		t.Errorf("Difference mismatch (-want +got):\n%s", diff)
	}
}

func TestFavoriteCheckbox(t *testing.T) {
	tests := []struct {
		name      string
		selected  []string
		favorites []string
		allFav    bool
		anyFav    bool
		want      CheckState
	}{
		{name: "empty selection", favorites: []string{"a"}, allFav: true, want: Unchecked},
		{name: "no overlap", selected: []string{"a"}, favorites: []string{"b"}, want: Unchecked},
		{name: "partial overlap", selected: []string{"a", "b"}, favorites: []string{"a"}, anyFav: true, want: Indeterminate},
		{name: "subset", selected: []string{"a"}, favorites: []string{"a", "b"}, allFav: true, anyFav: true, want: Checked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection()
			for _, id := range tt.selected {
				s.Select(id)
			}
			for _, id := range tt.favorites {
				s.AddFavorite(id)
			}

			if got := s.AllSelectedAreFavorite(); got != tt.allFav {
				t.Errorf("AllSelectedAreFavorite = %v, want %v", got, tt.allFav)
			}
			if got := s.AnyFavoriteInSelection(); got != tt.anyFav {
				t.Errorf("AnyFavoriteInSelection = %v, want %v", got, tt.anyFav)
			}
			if got := s.FavoriteCheckbox(); got != tt.want {
				t.Errorf("FavoriteCheckbox = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToggleSelectionFavorite(t *testing.T) {
	s := NewSelection()
	s.Select("a")
	s.Select("b")
	s.AddFavorite("a")

	s.ToggleSelectionFavorite()
	if s.FavoriteCheckbox() != Checked {
		t.Fatalf("Partial selection should become fully favorite, got %s", s.FavoriteCheckbox())
	}

	s.ToggleSelectionFavorite()
	if !s.FavoritesEmpty() {
		t.Errorf("Full selection should be unfavorited, got %v", s.FavoriteIDs())
	}

	empty := NewSelection()
	empty.AddFavorite("x")
	empty.ToggleSelectionFavorite()
	if !empty.IsFavorite("x") {
		t.Error("Empty selection must leave favorites alone")
	}
}

func TestRetainAndForget(t *testing.T) {
	s := NewSelection()
	for _, id := range []string{"a", "b", "c"} {
		s.Select(id)
		s.AddFavorite(id)
	}

	if dropped := s.RetainSelection([]string{"a", "b"}); dropped != 1 {
		t.Errorf("Expected 1 selected id dropped, got %d", dropped)
	}
	if dropped := s.RetainFavorites([]string{"b", "c", "d"}); dropped != 1 {
		t.Errorf("Expected 1 favorite dropped, got %d", dropped)
	}
	s.Forget("b")

	if diff := cmp.Diff([]string{"a"}, s.SelectedIDs()); diff != "" {
		t.Errorf("Selection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c"}, s.FavoriteIDs()); diff != "" {
		t.Errorf("Favorites mismatch (-want +got):\n%s", diff)
	}
}

func TestDropMissingFavoritesOnlyTouchesRequested(t *testing.T) {
	s := NewSelection()
	for _, id := range []string{"a", "b", "late"} {
		s.AddFavorite(id)
	}

	if dropped := s.DropMissingFavorites([]string{"a", "b"}, []string{"a"}); dropped != 1 {
		t.Errorf("Expected 1 favorite dropped, got %d", dropped)
	}
	if diff := cmp.Diff([]string{"a", "late"}, s.FavoriteIDs()); diff != "" {
		t.Errorf("Favorites mismatch (-want +got):\n%s", diff)
	}
}
