package repository

import (
	"context"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
)

// CountryQueryRepository is the read side for countries.
type CountryQueryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Country, error)
	GetByIDWithProvinces(ctx context.Context, id int64) (*domain.Country, error)
	GetByName(ctx context.Context, name string) (*domain.Country, error)

	GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error)
	GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error)

	GetCountries(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCount(ctx context.Context) (int64, error)

	GetCountriesByContinentID(ctx context.Context, continentID int64, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfCountriesByContinentID(ctx context.Context, continentID int64) (int64, error)
	GetCountriesByContinentName(ctx context.Context, continentName string, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfCountriesByContinentName(ctx context.Context, continentName string) (int64, error)

	List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

type SQLCountryQueryRepository struct {
	core      queryCore
	provinces queryCore
}

func NewCountryQueryRepository(provider db.Provider, cacheClient cache.Cache) CountryQueryRepository {
	return NewCountryQueryRepositoryWithTTL(provider, cacheClient, CacheTTL{})
}

func NewCountryQueryRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl CacheTTL) CountryQueryRepository {
	records := newRecordCache(cacheClient, ttl)
	return &SQLCountryQueryRepository{
		core:      newQueryCore(provider, countryTable, records),
		provinces: newQueryCore(provider, provinceTable, records),
	}
}

func (r *SQLCountryQueryRepository) GetByID(ctx context.Context, id int64) (*domain.Country, error) {
	rec, err := r.core.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCountry(rec), nil
}

func (r *SQLCountryQueryRepository) GetByIDWithProvinces(ctx context.Context, id int64) (*domain.Country, error) {
	country, err := r.GetByID(ctx, id)
	if err != nil || country == nil {
		return country, err
	}
	records, err := r.provinces.children(ctx, domain.KindCountry, id)
	if err != nil {
		return nil, err
	}
	provinces := make([]*domain.Province, 0, len(records))
	for _, rec := range records {
		province := toProvince(rec)
		province.SetCountry(country)
		provinces = append(provinces, province)
	}
	country.AttachProvinces(provinces)
	return country, nil
}

func (r *SQLCountryQueryRepository) GetByName(ctx context.Context, name string) (*domain.Country, error) {
	rec, err := r.core.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toCountry(rec), nil
}

func (r *SQLCountryQueryRepository) GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error) {
	return r.core.listNames(ctx, name, pageNumber, pageSize)
}

func (r *SQLCountryQueryRepository) GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error) {
	return r.core.count(ctx, FilterNameLike{Text: name})
}

func (r *SQLCountryQueryRepository) GetCountries(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAll{}, pageNumber, pageSize)
}

func (r *SQLCountryQueryRepository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.core.count(ctx, FilterAll{})
}

func (r *SQLCountryQueryRepository) GetCountriesByContinentID(ctx context.Context, continentID int64, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorID{Ancestor: domain.KindContinent, ID: continentID}, pageNumber, pageSize)
}

func (r *SQLCountryQueryRepository) GetTotalCountOfCountriesByContinentID(ctx context.Context, continentID int64) (int64, error) {
	return r.core.count(ctx, FilterAncestorID{Ancestor: domain.KindContinent, ID: continentID})
}

func (r *SQLCountryQueryRepository) GetCountriesByContinentName(ctx context.Context, continentName string, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorName{Ancestor: domain.KindContinent, Name: continentName}, pageNumber, pageSize)
}

func (r *SQLCountryQueryRepository) GetTotalCountOfCountriesByContinentName(ctx context.Context, continentName string) (int64, error) {
	return r.core.count(ctx, FilterAncestorName{Ancestor: domain.KindContinent, Name: continentName})
}

func (r *SQLCountryQueryRepository) List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, filter, pageNumber, pageSize)
}

func (r *SQLCountryQueryRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	return r.core.count(ctx, filter)
}
