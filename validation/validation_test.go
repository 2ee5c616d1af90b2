package validation

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/giygas/drugstore/entities"
	"github.com/google/go-cmp/cmp"
)

var countries = []entities.Country{
	{ID: "fr", Name: "France"},
	{ID: "gb", Name: "United Kingdom"},
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "normalizes case and spaces", input: "  aSPIRIN   forte ", want: "Aspirin Forte"},
		{name: "accents", input: "éthinylestradiol", want: "Éthinylestradiol"},
		{name: "punctuation", input: "vitamin b12, 5%", want: "Vitamin B12, 5%"},
		{name: "cyrillic", input: "аспирин", want: "Аспирин"},
		{name: "empty", input: "   ", wantErr: "required"},
		{name: "too short", input: "a", wantErr: "too short"},
		{name: "too long", input: strings.Repeat("ab", 26), wantErr: "too long"},
		{name: "script tag", input: "<script>x", wantErr: "dangerous"},
		{name: "sql", input: "x' or 1=1", wantErr: "dangerous"},
		{name: "invalid chars", input: "drug#1", wantErr: "invalid characters"},
		{name: "repetition", input: "aaaaaaaaaaaa", wantErr: "repetition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateName(tt.input)
			value, ok := got.Value()
			if tt.wantErr != "" {
				if ok {
					t.Fatalf("Expected rejection, got %q", value)
				}
				if !strings.Contains(got.Reason(), tt.wantErr) {
					t.Errorf("Expected reason containing %q, got %q", tt.wantErr, got.Reason())
				}
				return
			}
			if !ok {
				t.Fatalf("Expected %q to be valid, got %q", tt.input, got.Reason())
			}
			if value != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, value)
			}
		})
	}
}

func TestValidateNameConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				if got, ok := ValidateName("aspirin  FORTE").Value(); !ok || got != "Aspirin Forte" {
					errs <- got
					return
				}
				if !SameName("Aspirin Forte", "ASPIRIN FORTE") {
					errs <- "SameName"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("Expected Aspirin Forte under concurrent use, got %q", got)
	}
}

func TestValidateDrug(t *testing.T) {
	in := DrugInput{
		Name:      "ibuprofen",
		CountryID: "gb",
		Composition: []SubstanceInput{
			{Name: "ibuprofen", ActiveSubstance: true},
			{Name: "lactose"},
		},
		Cost: "4,50",
	}

	v := ValidateDrug(in, countries)
	if !v.Valid() {
		t.Fatalf("Expected valid form, got %v", v.Err())
	}

	drug, err := v.Drug("abc")
	if err != nil {
		t.Fatalf("Drug: %v", err)
	}
	cost := 4.5
	want := entities.Drug{
		ID:        "abc",
		Name:      "Ibuprofen",
		CountryID: "gb",
		Composition: []entities.Substance{
			{Name: "Ibuprofen", ActiveSubstance: true},
			{Name: "Lactose"},
		},
		Cost: &cost,
	}
	if diff := cmp.Diff(want, drug); diff != "" {
		t.Errorf("Drug mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateDrugRejections(t *testing.T) {
	base := func() DrugInput {
		return DrugInput{
			Name:        "Paracetamol",
			CountryID:   "fr",
			Composition: []SubstanceInput{{Name: "Paracetamol", ActiveSubstance: true}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*DrugInput)
		field  string
		reason string
	}{
		{"missing country", func(d *DrugInput) { d.CountryID = "" }, "country", "required"},
		{"unknown country", func(d *DrugInput) { d.CountryID = "de" }, "country", "unknown country"},
		{"no substances", func(d *DrugInput) { d.Composition = nil }, "composition", "at least one"},
		{"bad substance", func(d *DrugInput) { d.Composition[0].Name = "x" }, "composition", "substance 1"},
		{"duplicate substance", func(d *DrugInput) {
			d.Composition = append(d.Composition, SubstanceInput{Name: "PARACETAMOL"})
		}, "composition", "listed twice"},
		{"two actives", func(d *DrugInput) {
			d.Composition = append(d.Composition, SubstanceInput{Name: "Caffeine", ActiveSubstance: true})
		}, "composition", "at most one"},
		{"cost not a number", func(d *DrugInput) { d.Cost = "cheap" }, "cost", "number"},
		{"cost zero", func(d *DrugInput) { d.Cost = "0" }, "cost", "between"},
		{"cost too high", func(d *DrugInput) { d.Cost = "100000.01" }, "cost", "between"},
		{"cost NaN", func(d *DrugInput) { d.Cost = "NaN" }, "cost", "between"},
		{"bad name", func(d *DrugInput) { d.Name = "" }, "name", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)

			v := ValidateDrug(in, countries)
			if v.Valid() {
				t.Fatal("Expected invalid form")
			}

			var errs Errors
			if !errors.As(v.Err(), &errs) {
				t.Fatalf("Expected Errors, got %T", v.Err())
			}
			if len(errs) != 1 {
				t.Errorf("Expected only %s to fail, got %v", tt.field, errs)
			}
			if !strings.Contains(errs[tt.field], tt.reason) {
				t.Errorf("Expected %s reason containing %q, got %q", tt.field, tt.reason, errs[tt.field])
			}
			if _, err := v.Drug(""); err == nil {
				t.Error("Drug should refuse an invalid form")
			}
		})
	}
}

func TestOptionalCost(t *testing.T) {
	v := ValidateDrug(DrugInput{
		Name:        "Aspirin",
		CountryID:   "fr",
		Composition: []SubstanceInput{{Name: "Acetylsalicylic acid"}},
	}, countries)

	drug, err := v.Drug("")
	if err != nil {
		t.Fatalf("Expected valid form, got %v", err)
	}
	if drug.Cost != nil {
		t.Errorf("Expected no cost, got %v", *drug.Cost)
	}
}

func TestValidateCountry(t *testing.T) {
	v := ValidateCountry(CountryInput{Name: "  germany "}, countries)
	country, err := v.Country()
	if err != nil {
		t.Fatalf("Expected valid country, got %v", err)
	}
	if country.Name != "Germany" || country.ID != "" {
		t.Errorf("Unexpected country %+v", country)
	}

	dup := ValidateCountry(CountryInput{Name: "FRANCE"}, countries)
	if dup.Valid() {
		t.Fatal("Expected duplicate country to be rejected")
	}
	if !strings.Contains(dup.Err().Error(), `country "France" already exists`) {
		t.Errorf("Unexpected error %v", dup.Err())
	}
}

func TestErrorsMessageIsSorted(t *testing.T) {
	err := Errors{"name": "bad", "cost": "worse"}
	if got := err.Error(); got != "invalid form: cost: worse; name: bad" {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"64b7f0c2e1", "FR", "drug_1-a"} {
		if err := ValidateID(id); err != nil {
			t.Errorf("Expected %q valid, got %v", id, err)
		}
	}
	for _, id := range []string{"", "../etc", "a b", strings.Repeat("x", 65)} {
		if err := ValidateID(id); err == nil {
			t.Errorf("Expected %q to be rejected", id)
		}
	}
}
