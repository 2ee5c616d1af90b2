package orchestrator

import (
	"context"
	"time"

	"github.com/giygas/drugstore/catalog"
	"github.com/giygas/drugstore/entities"
	"github.com/giygas/drugstore/logging"
	"github.com/giygas/drugstore/metrics"
)

// Collection names a remote collection.
type Collection string

const (
	CollectionDrugs     Collection = "drugs"
	CollectionCountries Collection = "countries"
)

// issueCountriesLocked starts a countries fetch. c.mu must be held.
func (c *Controller) issueCountriesLocked() {
	if c.closed {
		return
	}
	seq := c.state.Countries.BeginLoad()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		start := time.Now()
		ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
		countries, err := c.api.GetCountries(ctx)
		cancel()

		c.resolveCountries(seq, countries, err, time.Since(start))
	}()
}

func (c *Controller) resolveCountries(seq uint64, countries []entities.Country, err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if !c.state.Countries.Fail(seq, err.Error()) {
			metrics.ObserveFetch(string(CollectionCountries), metrics.OutcomeStale, elapsed)
			return
		}
		metrics.ObserveFetch(string(CollectionCountries), metrics.OutcomeFailure, elapsed)
		logging.Warn("Countries fetch failed", "error", err)
		c.notifyLocked(CollectionCountries, err.Error())
		return
	}

	if !c.state.Countries.Succeed(seq, countries) {
		metrics.ObserveFetch(string(CollectionCountries), metrics.OutcomeStale, elapsed)
		logging.Debug("Discarded stale countries response", "seq", seq)
		return
	}
	metrics.ObserveFetch(string(CollectionCountries), metrics.OutcomeSuccess, elapsed)
	c.state.ObserveCountries()
}

// issueDrugsLocked starts the drugs fetch matching the active view. c.mu must
// be held.
func (c *Controller) issueDrugsLocked() {
	if c.closed {
		return
	}
	seq := c.state.Drugs.BeginLoad()
	view := c.state.View.Current()
	var favorites []string
	if view.GroupBy == catalog.GroupFavorite {
		favorites = c.state.Selection.FavoriteIDs()
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		start := time.Now()
		ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
		drugs, err := c.fetchView(ctx, view, favorites)
		cancel()

		reconciled := c.resolveDrugs(seq, view, favorites, drugs, err, time.Since(start))
		if reconciled {
			c.persist(keyFavorites, keySelection, keyView)
		}
	}()
}

func (c *Controller) fetchView(ctx context.Context, view catalog.View, favorites []string) ([]entities.Drug, error) {
	switch view.GroupBy {
	case catalog.GroupCountry:
		return c.api.GetDrugsByCountry(ctx, view.CountryID)
	case catalog.GroupSimilar:
		return c.api.GetDrugsBySubstance(ctx, view.Substance)
	case catalog.GroupFavorite:
		if len(favorites) == 0 {
			return []entities.Drug{}, nil
		}
		return c.api.GetDrugsByIDs(ctx, favorites)
	default:
		return c.api.GetDrugs(ctx)
	}
}

// resolveDrugs applies a drugs response issued for view. requested holds the
// favorite ids a Favorite fetch asked for. It reports whether persisted state
// (selection, favorites, view) changed.
func (c *Controller) resolveDrugs(seq uint64, view catalog.View, requested []string, drugs []entities.Drug, err error, elapsed time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if !c.state.Drugs.Fail(seq, err.Error()) {
			metrics.ObserveFetch(string(CollectionDrugs), metrics.OutcomeStale, elapsed)
			return false
		}
		metrics.ObserveFetch(string(CollectionDrugs), metrics.OutcomeFailure, elapsed)
		logging.Warn("Drugs fetch failed", "view", view.GroupBy.String(), "error", err)
		c.notifyLocked(CollectionDrugs, err.Error())

		// Similar lookups that fail fall back to the full list
		if view.GroupBy == catalog.GroupSimilar && c.state.View.SelectAll() {
			c.issueDrugsLocked()
			return true
		}
		return false
	}

	if !c.state.Drugs.Succeed(seq, drugs) {
		metrics.ObserveFetch(string(CollectionDrugs), metrics.OutcomeStale, elapsed)
		logging.Debug("Discarded stale drugs response", "seq", seq, "view", view.GroupBy.String())
		return false
	}
	metrics.ObserveFetch(string(CollectionDrugs), metrics.OutcomeSuccess, elapsed)
	c.state.ObserveDrugs()
	c.lastSuccess = c.now()

	changed := false
	switch view.GroupBy {
	case catalog.GroupAll:
		ids := entities.DrugIDs(drugs)
		droppedSelected := c.state.Selection.RetainSelection(ids)
		droppedFavorites := c.state.Selection.RetainFavorites(ids)
		if droppedSelected+droppedFavorites > 0 {
			logging.Info("Pruned ids missing from catalog",
				"selected", droppedSelected, "favorites", droppedFavorites)
			changed = true
		}
	case catalog.GroupFavorite:
		// Favorites added while the fetch was in flight were never asked for
		if dropped := c.state.Selection.DropMissingFavorites(requested, entities.DrugIDs(drugs)); dropped > 0 {
			logging.Info("Pruned favorites missing upstream", "favorites", dropped)
			changed = true
		}
	}

	if len(drugs) == 0 && c.state.View.Demote() {
		logging.Debug("Empty result, falling back to all drugs", "view", view.GroupBy.String())
		c.issueDrugsLocked()
		changed = true
	}

	metrics.SetSelection(c.state.Selection.SelectedCount(), c.state.Selection.FavoriteCount())
	return changed
}
