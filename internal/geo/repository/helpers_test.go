package repository

import (
	"context"
	"path/filepath"
	"testing"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
)

type fixture struct {
	database   *db.SQLDatabase
	provider   db.Provider
	uow        *UnitOfWorkFactory
	continents ContinentQueryRepository
	countries  CountryQueryRepository
	provinces  ProvinceQueryRepository
	cities     CityQueryRepository
}

func newFixture(t *testing.T, cacheClient cache.Cache) *fixture {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "geo.db"))
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := EnsureSchema(context.Background(), database); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	provider := db.NewStaticProvider(database)
	return &fixture{
		database:   database,
		provider:   provider,
		uow:        NewUnitOfWorkFactory(provider, cacheClient, nil),
		continents: NewContinentQueryRepository(provider, cacheClient),
		countries:  NewCountryQueryRepository(provider, cacheClient),
		provinces:  NewProvinceQueryRepository(provider, cacheClient),
		cities:     NewCityQueryRepository(provider, cacheClient),
	}
}

// commit runs fn inside a unit of work and commits it.
func (f *fixture) commit(t *testing.T, fn func(u *UnitOfWork)) {
	t.Helper()
	ctx := context.Background()
	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()
	fn(u)
	if err := u.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
}

type canadaTree struct {
	northAmerica *domain.Continent
	canada       *domain.Country
	ontario      *domain.Province
	toronto      *domain.City
	ottawa       *domain.City
}

// seedCanada stages the whole tree in one unit of work; children pick up
// their parents' ids at commit.
func seedCanada(t *testing.T, f *fixture) canadaTree {
	t.Helper()
	var tree canadaTree
	tree.northAmerica = mustContinent(t, "North America")
	tree.canada = mustCountry(t, "Canada")
	tree.canada.SetContinent(tree.northAmerica)
	tree.ontario = mustProvince(t, "Ontario")
	tree.ontario.SetCountry(tree.canada)
	tree.toronto = mustCity(t, "Toronto")
	tree.toronto.SetCountryAndProvince(tree.ontario)
	tree.ottawa = mustCity(t, "Ottawa")
	tree.ottawa.SetCountryAndProvince(tree.ontario)

	f.commit(t, func(u *UnitOfWork) {
		for _, e := range []domain.Entity{tree.northAmerica, tree.canada, tree.ontario, tree.toronto, tree.ottawa} {
			if err := u.Add(e); err != nil {
				t.Fatalf("add %s failed: %v", e.Name(), err)
			}
		}
	})
	return tree
}

func addCities(t *testing.T, f *fixture, province *domain.Province, names ...string) []*domain.City {
	t.Helper()
	var cities []*domain.City
	f.commit(t, func(u *UnitOfWork) {
		for _, name := range names {
			city := mustCity(t, name)
			city.SetCountryAndProvince(province)
			if err := u.Add(city); err != nil {
				t.Fatalf("add city failed: %v", err)
			}
			cities = append(cities, city)
		}
	})
	return cities
}

func mustContinent(t *testing.T, name string) *domain.Continent {
	t.Helper()
	c, err := domain.NewContinent(0, name)
	if err != nil {
		t.Fatalf("new continent failed: %v", err)
	}
	return c
}

func mustCountry(t *testing.T, name string) *domain.Country {
	t.Helper()
	c, err := domain.NewCountry(0, name)
	if err != nil {
		t.Fatalf("new country failed: %v", err)
	}
	return c
}

func mustProvince(t *testing.T, name string) *domain.Province {
	t.Helper()
	p, err := domain.NewProvince(0, name)
	if err != nil {
		t.Fatalf("new province failed: %v", err)
	}
	return p
}

func mustCity(t *testing.T, name string) *domain.City {
	t.Helper()
	c, err := domain.NewCity(0, name)
	if err != nil {
		t.Fatalf("new city failed: %v", err)
	}
	return c
}

func refNames(refs []domain.NamedRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names
}
