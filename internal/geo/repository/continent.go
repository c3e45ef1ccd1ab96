package repository

import (
	"context"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
)

// ContinentQueryRepository is the read side for continents. Continents have
// no ancestors, so only unscoped and name filters apply.
type ContinentQueryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Continent, error)
	GetByIDWithCountries(ctx context.Context, id int64) (*domain.Continent, error)
	GetByName(ctx context.Context, name string) (*domain.Continent, error)

	GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error)
	GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error)

	GetContinents(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCount(ctx context.Context) (int64, error)

	List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

type SQLContinentQueryRepository struct {
	core      queryCore
	countries queryCore
}

func NewContinentQueryRepository(provider db.Provider, cacheClient cache.Cache) ContinentQueryRepository {
	return NewContinentQueryRepositoryWithTTL(provider, cacheClient, CacheTTL{})
}

func NewContinentQueryRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl CacheTTL) ContinentQueryRepository {
	records := newRecordCache(cacheClient, ttl)
	return &SQLContinentQueryRepository{
		core:      newQueryCore(provider, continentTable, records),
		countries: newQueryCore(provider, countryTable, records),
	}
}

func (r *SQLContinentQueryRepository) GetByID(ctx context.Context, id int64) (*domain.Continent, error) {
	rec, err := r.core.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toContinent(rec), nil
}

func (r *SQLContinentQueryRepository) GetByIDWithCountries(ctx context.Context, id int64) (*domain.Continent, error) {
	continent, err := r.GetByID(ctx, id)
	if err != nil || continent == nil {
		return continent, err
	}
	records, err := r.countries.children(ctx, domain.KindContinent, id)
	if err != nil {
		return nil, err
	}
	countries := make([]*domain.Country, 0, len(records))
	for _, rec := range records {
		country := toCountry(rec)
		country.SetContinent(continent)
		countries = append(countries, country)
	}
	continent.AttachCountries(countries)
	return continent, nil
}

func (r *SQLContinentQueryRepository) GetByName(ctx context.Context, name string) (*domain.Continent, error) {
	rec, err := r.core.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toContinent(rec), nil
}

func (r *SQLContinentQueryRepository) GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error) {
	return r.core.listNames(ctx, name, pageNumber, pageSize)
}

func (r *SQLContinentQueryRepository) GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error) {
	return r.core.count(ctx, FilterNameLike{Text: name})
}

func (r *SQLContinentQueryRepository) GetContinents(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAll{}, pageNumber, pageSize)
}

func (r *SQLContinentQueryRepository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.core.count(ctx, FilterAll{})
}

func (r *SQLContinentQueryRepository) List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, filter, pageNumber, pageSize)
}

func (r *SQLContinentQueryRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	return r.core.count(ctx, filter)
}
