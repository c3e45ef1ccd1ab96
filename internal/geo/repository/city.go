package repository

import (
	"context"
	"database/sql"
	"fmt"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
)

// CityQueryRepository is the read side for cities. Lookups that find nothing
// return (nil, nil); absence becomes an error only in the caller.
type CityQueryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.City, error)
	// GetByIDWithProvince joins the province and synchronizes the city's country with it.
	GetByIDWithProvince(ctx context.Context, id int64) (*domain.City, error)
	GetByName(ctx context.Context, name string) (*domain.City, error)

	GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error)
	GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error)

	GetCities(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCount(ctx context.Context) (int64, error)

	GetCitiesByProvinceID(ctx context.Context, provinceID int64, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfCitiesByProvinceID(ctx context.Context, provinceID int64) (int64, error)
	GetCitiesByProvinceName(ctx context.Context, provinceName string, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfCitiesByProvinceName(ctx context.Context, provinceName string) (int64, error)
	GetCitiesByCountryID(ctx context.Context, countryID int64, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfCitiesByCountryID(ctx context.Context, countryID int64) (int64, error)
	GetCitiesByCountryName(ctx context.Context, countryName string, pageNumber, pageSize int) ([]domain.NamedRef, error)
	GetTotalCountOfCitiesByCountryName(ctx context.Context, countryName string) (int64, error)

	List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

type SQLCityQueryRepository struct {
	core queryCore
}

func NewCityQueryRepository(provider db.Provider, cacheClient cache.Cache) CityQueryRepository {
	return NewCityQueryRepositoryWithTTL(provider, cacheClient, CacheTTL{})
}

func NewCityQueryRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl CacheTTL) CityQueryRepository {
	return &SQLCityQueryRepository{core: newQueryCore(provider, cityTable, newRecordCache(cacheClient, ttl))}
}

func (r *SQLCityQueryRepository) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	rec, err := r.core.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCity(rec), nil
}

func (r *SQLCityQueryRepository) GetByIDWithProvince(ctx context.Context, id int64) (*domain.City, error) {
	s, err := r.core.session()
	if err != nil {
		return nil, err
	}
	return fetchCityWithProvince(ctx, s, id)
}

func fetchCityWithProvince(ctx context.Context, s session, id int64) (*domain.City, error) {
	args := db.NewArgs(s.dialect)
	query := fmt.Sprintf(
		"SELECT %s, p.id, p.name, p.country_id FROM cities t LEFT JOIN provinces p ON p.id = t.province_id WHERE t.id = %s",
		cityTable.columns(), args.Add(id))

	var (
		rec           entityRecord
		provinceID    sql.NullInt64
		countryID     sql.NullInt64
		joinedID      sql.NullInt64
		joinedName    sql.NullString
		joinedCountry sql.NullInt64
	)
	err := s.q.QueryRow(ctx, query, args.Values()...).
		Scan(&rec.ID, &rec.Name, &provinceID, &countryID, &joinedID, &joinedName, &joinedCountry)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get city with province failed: %w", err)
	}
	rec.ParentID = nullableID(provinceID)
	rec.CountryID = nullableID(countryID)

	city := toCity(&rec)
	if joinedID.Valid {
		province := domain.RestoreProvince(joinedID.Int64, joinedName.String, nullableID(joinedCountry))
		city.SetCountryAndProvince(province)
	}
	return city, nil
}

func (r *SQLCityQueryRepository) GetByName(ctx context.Context, name string) (*domain.City, error) {
	rec, err := r.core.getByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toCity(rec), nil
}

func (r *SQLCityQueryRepository) GetNamesLikeName(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error) {
	return r.core.listNames(ctx, name, pageNumber, pageSize)
}

func (r *SQLCityQueryRepository) GetTotalCountOfNamesLikeName(ctx context.Context, name string) (int64, error) {
	return r.core.count(ctx, FilterNameLike{Text: name})
}

func (r *SQLCityQueryRepository) GetCities(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAll{}, pageNumber, pageSize)
}

func (r *SQLCityQueryRepository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.core.count(ctx, FilterAll{})
}

func (r *SQLCityQueryRepository) GetCitiesByProvinceID(ctx context.Context, provinceID int64, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorID{Ancestor: domain.KindProvince, ID: provinceID}, pageNumber, pageSize)
}

func (r *SQLCityQueryRepository) GetTotalCountOfCitiesByProvinceID(ctx context.Context, provinceID int64) (int64, error) {
	return r.core.count(ctx, FilterAncestorID{Ancestor: domain.KindProvince, ID: provinceID})
}

func (r *SQLCityQueryRepository) GetCitiesByProvinceName(ctx context.Context, provinceName string, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorName{Ancestor: domain.KindProvince, Name: provinceName}, pageNumber, pageSize)
}

func (r *SQLCityQueryRepository) GetTotalCountOfCitiesByProvinceName(ctx context.Context, provinceName string) (int64, error) {
	return r.core.count(ctx, FilterAncestorName{Ancestor: domain.KindProvince, Name: provinceName})
}

func (r *SQLCityQueryRepository) GetCitiesByCountryID(ctx context.Context, countryID int64, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorID{Ancestor: domain.KindCountry, ID: countryID}, pageNumber, pageSize)
}

func (r *SQLCityQueryRepository) GetTotalCountOfCitiesByCountryID(ctx context.Context, countryID int64) (int64, error) {
	return r.core.count(ctx, FilterAncestorID{Ancestor: domain.KindCountry, ID: countryID})
}

func (r *SQLCityQueryRepository) GetCitiesByCountryName(ctx context.Context, countryName string, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, FilterAncestorName{Ancestor: domain.KindCountry, Name: countryName}, pageNumber, pageSize)
}

func (r *SQLCityQueryRepository) GetTotalCountOfCitiesByCountryName(ctx context.Context, countryName string) (int64, error) {
	return r.core.count(ctx, FilterAncestorName{Ancestor: domain.KindCountry, Name: countryName})
}

func (r *SQLCityQueryRepository) List(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	return r.core.listRefs(ctx, filter, pageNumber, pageSize)
}

func (r *SQLCityQueryRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	return r.core.count(ctx, filter)
}
