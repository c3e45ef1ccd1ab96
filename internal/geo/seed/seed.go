// Package seed loads a geography tree from YAML and stores it in one
// unit of work.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"geoatlas/internal/geo/domain"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML document root.
//
//	continents:
//	  - name: North America
//	    countries:
//	      - name: Canada
//	        provinces:
//	          - name: Ontario
//	            cities: [Toronto, Ottawa]
type Fixture struct {
	Continents []ContinentNode `yaml:"continents"`
	// Countries without a continent.
	Countries []CountryNode `yaml:"countries,omitempty"`
}

type ContinentNode struct {
	Name      string        `yaml:"name"`
	Countries []CountryNode `yaml:"countries,omitempty"`
}

type CountryNode struct {
	Name      string         `yaml:"name"`
	Provinces []ProvinceNode `yaml:"provinces,omitempty"`
}

type ProvinceNode struct {
	Name   string   `yaml:"name"`
	Cities []string `yaml:"cities,omitempty"`
}

// Seeder stores entities in one unit of work, parents first.
type Seeder interface {
	Seed(ctx context.Context, entities []domain.Entity) error
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return &f, nil
}

// Load reads and parses the fixture at path.
func Load(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file failed: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Entities builds the tree with parent links set, ordered so that every
// parent precedes its children.
func (f *Fixture) Entities() ([]domain.Entity, error) {
	var out []domain.Entity
	for _, cn := range f.Continents {
		continent, err := domain.NewContinent(0, cn.Name)
		if err != nil {
			return nil, fmt.Errorf("continent %q: %w", cn.Name, err)
		}
		out = append(out, continent)
		for _, country := range cn.Countries {
			if out, err = appendCountry(out, country, continent); err != nil {
				return nil, err
			}
		}
	}
	for _, country := range f.Countries {
		var err error
		if out, err = appendCountry(out, country, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendCountry(out []domain.Entity, node CountryNode, continent *domain.Continent) ([]domain.Entity, error) {
	country, err := domain.NewCountry(0, node.Name)
	if err != nil {
		return nil, fmt.Errorf("country %q: %w", node.Name, err)
	}
	if continent != nil {
		country.SetContinent(continent)
	}
	out = append(out, country)

	for _, pn := range node.Provinces {
		province, err := domain.NewProvince(0, pn.Name)
		if err != nil {
			return nil, fmt.Errorf("province %q in %q: %w", pn.Name, node.Name, err)
		}
		province.SetCountry(country)
		out = append(out, province)

		for _, name := range pn.Cities {
			city, err := domain.NewCity(0, name)
			if err != nil {
				return nil, fmt.Errorf("city %q in %q: %w", name, pn.Name, err)
			}
			city.SetCountryAndProvince(province)
			out = append(out, city)
		}
	}
	return out, nil
}

// Apply stores the fixture through seeder and returns the number of entities.
func Apply(ctx context.Context, seeder Seeder, f *Fixture) (int, error) {
	entities, err := f.Entities()
	if err != nil {
		return 0, err
	}
	if err := seeder.Seed(ctx, entities); err != nil {
		return 0, err
	}
	return len(entities), nil
}
