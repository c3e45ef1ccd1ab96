package repository

import (
	"context"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
)

// ProvinceQueryRepository is the read side for provinces.
type ProvinceQueryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Province, error)
	// GetByIDWithCities loads the province together with all of its cities.
	GetByIDWithCities(ctx context.Context, id int64) (*domain.Province, error)
	GetByName(ctx context.Context, name string) (*domain.Province, error)

	GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error)
	GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error)

	GetProvinces(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCount(ctx context.Context) (int64, error)

	GetProvincesByCountryID(ctx context.Context, countryID int64, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfProvincesByCountryID(ctx context.Context, countryID int64) (int64, error)
	GetProvincesByCountryName(ctx context.Context, countryName string, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfProvincesByCountryName(ctx context.Context, countryName string) (int64, error)

	List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

type SQLProvinceQueryRepository struct {
	core   queryCore
	cities queryCore
}

func NewProvinceQueryRepository(provider db.Provider, cacheClient cache.Cache) ProvinceQueryRepository {
	return NewProvinceQueryRepositoryWithTTL(provider, cacheClient, CacheTTL{})
}

func NewProvinceQueryRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl CacheTTL) ProvinceQueryRepository {
	records := newRecordCache(cacheClient, ttl)
	return &SQLProvinceQueryRepository{
		core:   newQueryCore(provider, provinceTable, records),
		cities: newQueryCore(provider, cityTable, records),
	}
}

func (r *SQLProvinceQueryRepository) GetByID(ctx context.Context, id int64) (*domain.Province, error) {
	rec, err := r.core.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProvince(rec), nil
}

func (r *SQLProvinceQueryRepository) GetByIDWithCities(ctx context.Context, id int64) (*domain.Province, error) {
	province, err := r.GetByID(ctx, id)
	if err != nil || province == nil {
		return province, err
	}
	records, err := r.cities.children(ctx, domain.KindProvince, id)
	if err != nil {
		return nil, err
	}
	cities := make([]*domain.City, 0, len(records))
	for _, rec := range records {
		city := toCity(rec)
		city.SetCountryAndProvince(province)
		cities = append(cities, city)
	}
	province.AttachCities(cities)
	return province, nil
}

func (r *SQLProvinceQueryRepository) GetByName(ctx context.Context, name string) (*domain.Province, error) {
	rec, err := r.core.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toProvince(rec), nil
}

func (r *SQLProvinceQueryRepository) GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error) {
	return r.core.listNames(ctx, name, pageNumber, pageSize)
}

func (r *SQLProvinceQueryRepository) GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error) {
	return r.core.count(ctx, FilterNameLike{Text: name})
}

func (r *SQLProvinceQueryRepository) GetProvinces(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAll{}, pageNumber, pageSize)
}

func (r *SQLProvinceQueryRepository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.core.count(ctx, FilterAll{})
}

func (r *SQLProvinceQueryRepository) GetProvincesByCountryID(ctx context.Context, countryID int64, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorID{Ancestor: domain.KindCountry, ID: countryID}, pageNumber, pageSize)
}

func (r *SQLProvinceQueryRepository) GetTotalCountOfProvincesByCountryID(ctx context.Context, countryID int64) (int64, error) {
	return r.core.count(ctx, FilterAncestorID{Ancestor: domain.KindCountry, ID: countryID})
}

func (r *SQLProvinceQueryRepository) GetProvincesByCountryName(ctx context.Context, countryName string, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorName{Ancestor: domain.KindCountry, Name: countryName}, pageNumber, pageSize)
}

func (r *SQLProvinceQueryRepository) GetTotalCountOfProvincesByCountryName(ctx context.Context, countryName string) (int64, error) {
	return r.core.count(ctx, FilterAncestorName{Ancestor: domain.KindCountry, Name: countryName})
}

func (r *SQLProvinceQueryRepository) List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, filter, pageNumber, pageSize)
}

func (r *SQLProvinceQueryRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	return r.core.count(ctx, filter)
}
