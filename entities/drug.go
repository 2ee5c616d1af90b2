// Package entities holds the data shapes exchanged with the upstream drugstore API.
package entities

import "time"

// Substance is one entry of a drug composition.
type Substance struct {
	ID              string `json:"_id,omitempty"`
	Name            string `json:"name"`
	ActiveSubstance bool   `json:"activeSubstance"`
}

// Drug is a catalog record as served by GET /drugs.
type Drug struct {
	ID          string      `json:"_id,omitempty"`
	Name        string      `json:"name"`
	CountryID   string      `json:"country,omitempty"`
	Composition []Substance `json:"composition"`
	Cost        *float64    `json:"cost,omitempty"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

// ActiveSubstance returns the first composition entry flagged as active.
// Records with several active entries are tolerated; the first one wins.
func (d Drug) ActiveSubstance() (Substance, bool) {
	for _, s := range d.Composition {
		if s.ActiveSubstance {
			return s, true
		}
	}
	return Substance{}, false
}

// DrugIDs returns the ids of drugs in order, skipping unsaved records.
func DrugIDs(drugs []Drug) []string {
	ids := make([]string, 0, len(drugs))
	for _, d := range drugs {
		if d.ID != "" {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
