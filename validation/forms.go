package validation

import (
	"strconv"
	"strings"

	"github.com/giygas/drugstore/entities"
)

// MaxCost is the upper bound accepted for a drug cost.
const MaxCost = 100000

// SubstanceInput is one composition row as submitted.
type SubstanceInput struct {
	Name            string `json:"name"`
	ActiveSubstance bool   `json:"activeSubstance"`
}

// DrugInput is the create/edit drug form as submitted.
type DrugInput struct {
	Name        string           `json:"name"`
	CountryID   string           `json:"country"`
	Composition []SubstanceInput `json:"composition"`
	// Cost is free text; empty means unknown.
	Cost string `json:"cost,omitempty"`
}

// DrugValidation holds the per-field results of a drug form.
type DrugValidation struct {
	Name        Field[string]
	Country     Field[string]
	Composition Field[[]entities.Substance]
	Cost        Field[*float64]
}

// ValidateDrug checks a drug form against the currently loaded countries.
func ValidateDrug(in DrugInput, countries []entities.Country) DrugValidation {
	return DrugValidation{
		Name:        ValidateName(in.Name),
		Country:     validateCountryRef(in.CountryID, countries),
		Composition: validateComposition(in.Composition),
		Cost:        validateCost(in.Cost),
	}
}

func (v DrugValidation) Valid() bool {
	return v.Name.ok && v.Country.ok && v.Composition.ok && v.Cost.ok
}

// Err returns the rejected fields as Errors, or nil.
func (v DrugValidation) Err() error {
	errs := Errors{}
	collect(errs, "name", v.Name)
	collect(errs, "country", v.Country)
	collect(errs, "composition", v.Composition)
	collect(errs, "cost", v.Cost)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Drug builds the normalized entity. id may be empty for creates.
func (v DrugValidation) Drug(id string) (entities.Drug, error) {
	if err := v.Err(); err != nil {
		return entities.Drug{}, err
	}
	return entities.Drug{
		ID:          id,
		Name:        v.Name.value,
		CountryID:   v.Country.value,
		Composition: v.Composition.value,
		Cost:        v.Cost.value,
	}, nil
}

func validateCountryRef(id string, countries []entities.Country) Field[string] {
	id = strings.TrimSpace(id)
	if id == "" {
		return Invalid[string]("country is required")
	}
	for _, c := range countries {
		if c.ID == id {
			return Valid(id)
		}
	}
	return Invalid[string]("unknown country %q", id)
}

func validateComposition(rows []SubstanceInput) Field[[]entities.Substance] {
	if len(rows) == 0 {
		return Invalid[[]entities.Substance]("at least one substance is required")
	}

	out := make([]entities.Substance, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	active := 0
	for i, row := range rows {
		name := ValidateName(row.Name)
		if !name.ok {
			return Invalid[[]entities.Substance]("substance %d: %s", i+1, name.reason)
		}
		key := foldName(name.value)
		if seen[key] {
			return Invalid[[]entities.Substance]("substance %q listed twice", name.value)
		}
		seen[key] = true
		if row.ActiveSubstance {
			active++
		}
		out = append(out, entities.Substance{Name: name.value, ActiveSubstance: row.ActiveSubstance})
	}

	if active > 1 {
		return Invalid[[]entities.Substance]("at most one active substance is allowed, got %d", active)
	}
	return Valid(out)
}

func validateCost(raw string) Field[*float64] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Valid[*float64](nil)
	}
	cost, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return Invalid[*float64]("cost must be a number")
	}
	if !(cost > 0) || cost > MaxCost {
		return Invalid[*float64]("cost must be between 0 and %d", MaxCost)
	}
	return Valid(&cost)
}

// CountryInput is the add-country form.
type CountryInput struct {
	Name string `json:"name"`
}

// CountryValidation holds the result of a country form.
type CountryValidation struct {
	Name Field[string]
}

// ValidateCountry checks a new country name against the loaded countries.
func ValidateCountry(in CountryInput, existing []entities.Country) CountryValidation {
	name := ValidateName(in.Name)
	if name.ok {
		for _, c := range existing {
			if SameName(c.Name, name.value) {
				name = Invalid[string]("country %q already exists", c.Name)
				break
			}
		}
	}
	return CountryValidation{Name: name}
}

func (v CountryValidation) Valid() bool {
	return v.Name.ok
}

func (v CountryValidation) Err() error {
	if v.Name.ok {
		return nil
	}
	return Errors{"name": v.Name.reason}
}

// Country builds the entity to post upstream.
func (v CountryValidation) Country() (entities.Country, error) {
	if err := v.Err(); err != nil {
		return entities.Country{}, err
	}
	return entities.Country{Name: v.Name.value}, nil
}
