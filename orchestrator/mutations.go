package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/giygas/drugstore/catalog"
	"github.com/giygas/drugstore/entities"
	"github.com/giygas/drugstore/logging"
	"github.com/giygas/drugstore/metrics"
	"github.com/giygas/drugstore/validation"
	"golang.org/x/sync/errgroup"
)

// Writes never touch local state before upstream confirms them; on success
// the affected collection is refetched.

// CreateDrug validates the form against the loaded countries and creates the
// drug upstream.
func (c *Controller) CreateDrug(ctx context.Context, in validation.DrugInput) (entities.Drug, error) {
	drug, err := c.validateDrug(in, "")
	if err != nil {
		return entities.Drug{}, err
	}

	created, err := c.api.CreateDrug(ctx, drug)
	metrics.ObserveMutation("create_drug", err)
	if err != nil {
		return entities.Drug{}, c.rejected(CollectionDrugs, "create drug", err)
	}

	logging.Info("Drug created", "drug_id", created.ID, "name", created.Name)
	c.refetchDrugs()
	return created, nil
}

// UpdateDrug validates the form and replaces drug id upstream.
func (c *Controller) UpdateDrug(ctx context.Context, id string, in validation.DrugInput) (entities.Drug, error) {
	drug, err := c.validateDrug(in, id)
	if err != nil {
		return entities.Drug{}, err
	}

	updated, err := c.api.UpdateDrug(ctx, id, drug)
	metrics.ObserveMutation("update_drug", err)
	if err != nil {
		return entities.Drug{}, c.rejected(CollectionDrugs, "update drug", err)
	}

	logging.Info("Drug updated", "drug_id", id)
	c.refetchDrugs()
	return updated, nil
}

// DeleteDrug deletes one drug and forgets it from selection and favorites.
func (c *Controller) DeleteDrug(ctx context.Context, id string) error {
	_, err := c.api.DeleteDrug(ctx, id)
	metrics.ObserveMutation("delete_drug", err)
	if err != nil {
		return c.rejected(CollectionDrugs, "delete drug", err)
	}

	logging.Info("Drug deleted", "drug_id", id)
	c.forget([]string{id})
	return nil
}

// DeleteSelected deletes every selected drug. Drugs deleted upstream are
// forgotten even when others fail; the first failure is returned.
func (c *Controller) DeleteSelected(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	ids := c.state.Selection.SelectedIDs()
	c.mu.Unlock()
	if len(ids) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		deleted []string
		g       errgroup.Group
	)
	g.SetLimit(deleteConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			_, err := c.api.DeleteDrug(ctx, id)
			metrics.ObserveMutation("delete_drug", err)
			if err != nil {
				return fmt.Errorf("drug %s: %w", id, err)
			}
			mu.Lock()
			deleted = append(deleted, id)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	if len(deleted) > 0 {
		logging.Info("Deleted selected drugs", "count", len(deleted), "requested", len(ids))
		c.forget(deleted)
	}
	if err != nil {
		return deleted, c.rejected(CollectionDrugs, "delete selected drugs", err)
	}
	return deleted, nil
}

// CreateCountry validates the name against loaded countries and creates it.
func (c *Controller) CreateCountry(ctx context.Context, in validation.CountryInput) (entities.Country, error) {
	c.mu.Lock()
	existing := c.state.Countries.Items()
	c.mu.Unlock()

	country, err := validation.ValidateCountry(in, existing).Country()
	if err != nil {
		return entities.Country{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	created, err := c.api.CreateCountry(ctx, country)
	metrics.ObserveMutation("create_country", err)
	if err != nil {
		return entities.Country{}, c.rejected(CollectionCountries, "create country", err)
	}

	logging.Info("Country created", "country_id", created.ID, "name", created.Name)
	c.mu.Lock()
	c.issueCountriesLocked()
	c.mu.Unlock()
	return created, nil
}

// UpdateCountry renames country id. The new name must not clash with another
// loaded country.
func (c *Controller) UpdateCountry(ctx context.Context, id string, in validation.CountryInput) (entities.Country, error) {
	c.mu.Lock()
	others := slices.DeleteFunc(c.state.Countries.Items(), func(country entities.Country) bool {
		return country.ID == id
	})
	c.mu.Unlock()

	country, err := validation.ValidateCountry(in, others).Country()
	if err != nil {
		return entities.Country{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	country.ID = id

	updated, err := c.api.UpdateCountry(ctx, id, country)
	metrics.ObserveMutation("update_country", err)
	if err != nil {
		return entities.Country{}, c.rejected(CollectionCountries, "update country", err)
	}

	logging.Info("Country updated", "country_id", id, "name", updated.Name)
	c.mu.Lock()
	c.issueCountriesLocked()
	c.mu.Unlock()
	return updated, nil
}

// DeleteCountry removes country id upstream. A view showing that country
// falls back to all drugs.
func (c *Controller) DeleteCountry(ctx context.Context, id string) error {
	_, err := c.api.DeleteCountry(ctx, id)
	metrics.ObserveMutation("delete_country", err)
	if err != nil {
		return c.rejected(CollectionCountries, "delete country", err)
	}

	logging.Info("Country deleted", "country_id", id)
	c.mu.Lock()
	viewChanged := false
	if c.state.View.Current() == catalog.CountryView(id) {
		viewChanged = c.state.View.SelectAll()
	}
	c.issueCountriesLocked()
	c.issueDrugsLocked()
	c.mu.Unlock()

	if viewChanged {
		c.persist(keyView)
	}
	return nil
}

func (c *Controller) validateDrug(in validation.DrugInput, id string) (entities.Drug, error) {
	c.mu.Lock()
	countries := c.state.Countries.Items()
	c.mu.Unlock()

	drug, err := validation.ValidateDrug(in, countries).Drug(id)
	if err != nil {
		return entities.Drug{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return drug, nil
}

// rejected records an upstream refusal as a notification and wraps err.
func (c *Controller) rejected(collection Collection, op string, err error) error {
	logging.Warn("Upstream rejected write", "operation", op, "error", err)
	c.mu.Lock()
	c.notifyLocked(collection, fmt.Sprintf("Failed to %s: %s", op, err.Error()))
	c.mu.Unlock()
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (c *Controller) refetchDrugs() {
	c.mu.Lock()
	c.issueDrugsLocked()
	c.mu.Unlock()
}

// forget drops deleted ids from selection and favorites and refetches.
func (c *Controller) forget(ids []string) {
	c.mu.Lock()
	for _, id := range ids {
		c.state.Selection.Forget(id)
	}
	metrics.SetSelection(c.state.Selection.SelectedCount(), c.state.Selection.FavoriteCount())
	c.issueDrugsLocked()
	c.mu.Unlock()

	c.persist(keySelection, keyFavorites)
}
