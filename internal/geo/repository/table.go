package repository

import (
	"fmt"

	"geoatlas/internal/geo/domain"
	pkgrepo "geoatlas/pkg/repository"
)

// ancestorLink is a foreign key a table can be filtered through.
type ancestorLink struct {
	kind   domain.Kind
	column string
	table  string
}

// table describes how one entity type is stored.
type table struct {
	kind domain.Kind
	name string
	// parentColumn is the immediate parent foreign key, empty for continents.
	parentColumn string
	// countryColumn is set for cities only.
	countryColumn string
	ancestors     []ancestorLink
}

var (
	continentTable = table{
		kind: domain.KindContinent,
		name: "continents",
	}
	countryTable = table{
		kind:         domain.KindCountry,
		name:         "countries",
		parentColumn: "continent_id",
		ancestors: []ancestorLink{
			{kind: domain.KindContinent, column: "continent_id", table: "continents"},
		},
	}
	provinceTable = table{
		kind:         domain.KindProvince,
		name:         "provinces",
		parentColumn: "country_id",
		ancestors: []ancestorLink{
			{kind: domain.KindCountry, column: "country_id", table: "countries"},
		},
	}
	cityTable = table{
		kind:          domain.KindCity,
		name:          "cities",
		parentColumn:  "province_id",
		countryColumn: "country_id",
		ancestors: []ancestorLink{
			{kind: domain.KindProvince, column: "province_id", table: "provinces"},
			{kind: domain.KindCountry, column: "country_id", table: "countries"},
		},
	}
)

func tableFor(kind domain.Kind) (table, error) {
	switch kind {
	case domain.KindContinent:
		return continentTable, nil
	case domain.KindCountry:
		return countryTable, nil
	case domain.KindProvince:
		return provinceTable, nil
	case domain.KindCity:
		return cityTable, nil
	default:
		return table{}, &pkgrepo.ArgumentError{Param: "kind", Reason: fmt.Sprintf("unknown entity kind %d", int(kind))}
	}
}

func (t table) ancestor(kind domain.Kind) (ancestorLink, error) {
	for _, link := range t.ancestors {
		if link.kind == kind {
			return link, nil
		}
	}
	return ancestorLink{}, &pkgrepo.ArgumentError{
		Param:  "filter",
		Reason: fmt.Sprintf("%s cannot be filtered by %s", t.kind, kind),
	}
}

// columns selects the common row shape: id, name, parent id, country id.
func (t table) columns() string {
	parent := "NULL"
	if t.parentColumn != "" {
		parent = "t." + t.parentColumn
	}
	country := "NULL"
	if t.countryColumn != "" {
		country = "t." + t.countryColumn
	}
	return fmt.Sprintf("t.id, t.name, %s, %s", parent, country)
}
