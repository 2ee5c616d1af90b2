package orchestrator

import (
	"context"

	"github.com/giygas/drugstore/catalog"
	"github.com/giygas/drugstore/entities"
	"github.com/giygas/drugstore/logging"
	"github.com/giygas/drugstore/metrics"
)

// Preference keys.
const (
	keyTheme     = "theme"
	keyFavorites = "favorites"
	keySelection = "selection"
	keyView      = "view"
)

var sessionKeys = map[string]bool{
	keyFavorites: true,
	keySelection: true,
	keyView:      true,
}

// restore loads persisted preferences into the fresh state. Failures are
// logged and leave defaults in place.
func (c *Controller) restore() {
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, persistTimeout)
	defer cancel()

	var theme entities.ThemeMode
	if ok, err := c.store.Load(ctx, keyTheme, &theme); err != nil {
		logging.Warn("Failed to restore theme", "error", err)
	} else if ok && theme.Valid() {
		c.state.Theme = theme
	}

	if c.scope != ScopeSession {
		c.clearSessionKeys(ctx)
		return
	}

	var favorites, selected []string
	if ok, err := c.store.Load(ctx, keyFavorites, &favorites); err != nil {
		logging.Warn("Failed to restore favorites", "error", err)
	} else if ok {
		for _, id := range favorites {
			c.state.Selection.AddFavorite(id)
		}
	}
	if ok, err := c.store.Load(ctx, keySelection, &selected); err != nil {
		logging.Warn("Failed to restore selection", "error", err)
	} else if ok {
		for _, id := range selected {
			c.state.Selection.Select(id)
		}
	}

	var view catalog.View
	if ok, err := c.store.Load(ctx, keyView, &view); err != nil {
		logging.Warn("Failed to restore view", "error", err)
	} else if ok {
		c.state.View.Restore(view)
	}

	metrics.SetSelection(c.state.Selection.SelectedCount(), c.state.Selection.FavoriteCount())
	logging.Info("Restored session preferences",
		"favorites", c.state.Selection.FavoriteCount(),
		"selected", c.state.Selection.SelectedCount(),
		"view", c.state.View.Current().GroupBy.String())
}

// clearSessionKeys removes session preferences left by an earlier run with
// session scope so they cannot resurface later.
func (c *Controller) clearSessionKeys(ctx context.Context) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		logging.Warn("Failed to list stored preferences", "error", err)
		return
	}
	for _, key := range keys {
		if !sessionKeys[key] {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			logging.Warn("Failed to clear session preference", "key", key, "error", err)
			continue
		}
		logging.Debug("Cleared session preference", "key", key)
	}
}

// persist writes the current values of keys, skipping keys outside the
// configured scope. It must be called without c.mu held.
func (c *Controller) persist(keys ...string) {
	if c.store == nil {
		return
	}

	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		if sessionKeys[key] && c.scope != ScopeSession {
			continue
		}
		switch key {
		case keyTheme:
			values[key] = c.state.Theme
		case keyFavorites:
			values[key] = c.state.Selection.FavoriteIDs()
		case keySelection:
			values[key] = c.state.Selection.SelectedIDs()
		case keyView:
			values[key] = c.state.View.Current()
		}
	}
	c.mu.Unlock()

	if len(values) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	for key, value := range values {
		if err := c.store.Save(ctx, key, value); err != nil {
			logging.Warn("Failed to persist preference", "key", key, "error", err)
		}
	}
}
