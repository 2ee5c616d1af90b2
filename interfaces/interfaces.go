// Package interfaces defines the contracts between the drugstore packages
// to keep the controller, the upstream client and the stores swappable in tests.
package interfaces

import (
	"context"
	"time"

	"github.com/giygas/drugstore/entities"
)

// DrugsAPI is the drugs half of the upstream REST API.
type DrugsAPI interface {
	GetDrugs(ctx context.Context) ([]entities.Drug, error)
	GetDrug(ctx context.Context, id string) (entities.Drug, error)
	GetDrugsByCountry(ctx context.Context, countryID string) ([]entities.Drug, error)
	// GetDrugsByIDs fetches a batch of drugs, in the order of ids.
	GetDrugsByIDs(ctx context.Context, ids []string) ([]entities.Drug, error)
	// GetDrugsBySubstance lists drugs sharing the given active substance.
	GetDrugsBySubstance(ctx context.Context, substance string) ([]entities.Drug, error)
	CreateDrug(ctx context.Context, drug entities.Drug) (entities.Drug, error)
	UpdateDrug(ctx context.Context, id string, drug entities.Drug) (entities.Drug, error)
	DeleteDrug(ctx context.Context, id string) (entities.Drug, error)
}

// CountriesAPI is the countries half of the upstream REST API.
type CountriesAPI interface {
	GetCountries(ctx context.Context) ([]entities.Country, error)
	GetCountry(ctx context.Context, id string) (entities.Country, error)
	CreateCountry(ctx context.Context, country entities.Country) (entities.Country, error)
	UpdateCountry(ctx context.Context, id string, country entities.Country) (entities.Country, error)
	DeleteCountry(ctx context.Context, id string) (entities.Country, error)
}

// CatalogAPI is everything the orchestrator needs from upstream.
type CatalogAPI interface {
	DrugsAPI
	CountriesAPI
}

// PreferenceStore persists small JSON documents across restarts.
type PreferenceStore interface {
	// Load decodes the value stored under key into dst and reports whether it existed.
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	// Keys lists the stored keys.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Scheduler manages background jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker summarizes service health for the /health endpoint.
type HealthChecker interface {
	// HealthCheck returns the status label, detail fields and the HTTP status to answer with.
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// StatusSource exposes the collection state the health checker and the
// scheduler observe.
type StatusSource interface {
	CollectionStatus() CollectionStatus
}

// CollectionStatus is a point-in-time view of both remote collections.
type CollectionStatus struct {
	Drugs     string
	Countries string
	DrugCount int
	// LastSuccess is the last time the drugs collection loaded successfully.
	LastSuccess time.Time
	StartedAt   time.Time
}
