package service

import (
	"context"

	"geoatlas/internal/geo/domain"
	"geoatlas/internal/geo/repository"
	pkgerrors "geoatlas/pkg/errors"
	pkgrepo "geoatlas/pkg/repository"

	"golang.org/x/sync/errgroup"
)

// Repositories groups the read-side repositories.
type Repositories struct {
	Continents repository.ContinentQueryRepository
	Countries  repository.CountryQueryRepository
	Provinces  repository.ProvinceQueryRepository
	Cities     repository.CityQueryRepository
}

// Scope narrows a listing to one ancestor, by id or by name. The zero
// value lists everything.
type Scope struct {
	ID   int64
	Name string
}

func (s Scope) isZero() bool {
	return s.ID == 0 && s.Name == ""
}

func (s Scope) validate(field string) error {
	if s.ID != 0 && s.Name != "" {
		return pkgerrors.ValidationError(field, "give either an id or a name, not both")
	}
	if s.ID < 0 {
		return pkgerrors.ValidationError(field+"_id", "must be positive")
	}
	return nil
}

// CityScope narrows a city listing to a province or a country.
type CityScope struct {
	Province Scope
	Country  Scope
}

// QueryService answers lookups and paginated listings.
type QueryService struct {
	repos Repositories
}

// NewQueryService creates a new QueryService.
func NewQueryService(repos Repositories) *QueryService {
	return &QueryService{repos: repos}
}

// paginate fetches one page and the total concurrently and joins them.
// A zero total is reported as NoMatches.
func paginate[T any](
	ctx context.Context,
	pageNumber, pageSize int,
	list func(ctx context.Context, pageNumber, pageSize int) ([]T, error),
	count func(ctx context.Context) (int64, error),
) (*pkgrepo.PaginationResult[T], error) {
	page, err := pkgrepo.NewPage(pageNumber, pageSize)
	if err != nil {
		return nil, translate(err, pkgerrors.NotFound)
	}

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = list(gctx, page.Number, page.Size)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err, pkgerrors.NotFound)
	}
	if total == 0 {
		return nil, pkgerrors.New(pkgerrors.NoMatches)
	}
	return pkgrepo.NewPaginationResult(items, total, page), nil
}

// searchNames is the shared NamesLike listing.
func searchNames(ctx context.Context, like string, pageNumber, pageSize int,
	list func(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error),
	count func(ctx context.Context, name string) (int64, error),
) (*pkgrepo.PaginationResult[string], error) {
	like, err := requireName("like", like)
	if err != nil {
		return nil, err
	}
	return paginate(ctx, pageNumber, pageSize,
		func(ctx context.Context, n, s int) ([]string, error) { return list(ctx, like, n, s) },
		func(ctx context.Context) (int64, error) { return count(ctx, like) },
	)
}

// lookup runs a single-entity read and turns absence into code.
func lookup[T any](ctx context.Context, code pkgerrors.ErrorCode, key interface{}, fetch func(context.Context) (*T, error)) (*T, error) {
	entity, err := fetch(ctx)
	if err != nil {
		return nil, translate(err, code)
	}
	if entity == nil {
		return nil, pkgerrors.NotFoundError(code, key)
	}
	return entity, nil
}

// GetContinent returns a continent, with its countries when withCountries is set.
func (s *QueryService) GetContinent(ctx context.Context, id int64, withCountries bool) (*ContinentView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	fetch := s.repos.Continents.GetByID
	if withCountries {
		fetch = s.repos.Continents.GetByIDWithCountries
	}
	continent, err := lookup(ctx, pkgerrors.ContinentNotFound, id, func(ctx context.Context) (*domain.Continent, error) {
		return fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return newContinentView(continent), nil
}

func (s *QueryService) GetContinentByName(ctx context.Context, name string) (*ContinentView, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	continent, err := lookup(ctx, pkgerrors.ContinentNotFound, name, func(ctx context.Context) (*domain.Continent, error) {
		return s.repos.Continents.GetByName(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return newContinentView(continent), nil
}

func (s *QueryService) ListContinents(ctx context.Context, pageNumber, pageSize int) (*pkgrepo.PaginationResult[domain.NamedRef], error) {
	return paginate(ctx, pageNumber, pageSize, s.repos.Continents.GetContinents, s.repos.Continents.GetTotalCount)
}

func (s *QueryService) SearchContinentNames(ctx context.Context, like string, pageNumber, pageSize int) (*pkgrepo.PaginationResult[string], error) {
	return searchNames(ctx, like, pageNumber, pageSize, s.repos.Continents.GetNamesLikeName, s.repos.Continents.GetTotalCountOfNamesLikeName)
}

// GetCountry returns a country, with its provinces when withProvinces is set.
func (s *QueryService) GetCountry(ctx context.Context, id int64, withProvinces bool) (*CountryView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	fetch := s.repos.Countries.GetByID
	if withProvinces {
		fetch = s.repos.Countries.GetByIDWithProvinces
	}
	country, err := lookup(ctx, pkgerrors.CountryNotFound, id, func(ctx context.Context) (*domain.Country, error) {
		return fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return newCountryView(country), nil
}

func (s *QueryService) GetCountryByName(ctx context.Context, name string) (*CountryView, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	country, err := lookup(ctx, pkgerrors.CountryNotFound, name, func(ctx context.Context) (*domain.Country, error) {
		return s.repos.Countries.GetByName(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return newCountryView(country), nil
}

// ListCountries lists countries, optionally within one continent.
func (s *QueryService) ListCountries(ctx context.Context, continent Scope, pageNumber, pageSize int) (*pkgrepo.PaginationResult[domain.NamedRef], error) {
	if err := continent.validate("continent"); err != nil {
		return nil, err
	}
	repo := s.repos.Countries
	switch {
	case continent.ID > 0:
		return paginate(ctx, pageNumber, pageSize,
			func(ctx context.Context, n, size int) ([]domain.NamedRef, error) {
				return repo.GetCountriesByContinentID(ctx, continent.ID, n, size)
			},
			func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfCountriesByContinentID(ctx, continent.ID) })
	case continent.Name != "":
		return paginate(ctx, pageNumber, pageSize,
			func(ctx context.Context, n, size int) ([]domain.NamedRef, error) {
				return repo.GetCountriesByContinentName(ctx, continent.Name, n, size)
			},
			func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfCountriesByContinentName(ctx, continent.Name) })
	default:
		return paginate(ctx, pageNumber, pageSize, repo.GetCountries, repo.GetTotalCount)
	}
}

func (s *QueryService) SearchCountryNames(ctx context.Context, like string, pageNumber, pageSize int) (*pkgrepo.PaginationResult[string], error) {
	return searchNames(ctx, like, pageNumber, pageSize, s.repos.Countries.GetNamesLikeName, s.repos.Countries.GetTotalCountOfNamesLikeName)
}

// GetProvince returns a province, with its cities when withCities is set.
func (s *QueryService) GetProvince(ctx context.Context, id int64, withCities bool) (*ProvinceView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	fetch := s.repos.Provinces.GetByID
	if withCities {
		fetch = s.repos.Provinces.GetByIDWithCities
	}
	province, err := lookup(ctx, pkgerrors.ProvinceNotFound, id, func(ctx context.Context) (*domain.Province, error) {
		return fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return newProvinceView(province), nil
}

func (s *QueryService) GetProvinceByName(ctx context.Context, name string) (*ProvinceView, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	province, err := lookup(ctx, pkgerrors.ProvinceNotFound, name, func(ctx context.Context) (*domain.Province, error) {
		return s.repos.Provinces.GetByName(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return newProvinceView(province), nil
}

// ListProvinces lists provinces, optionally within one country.
func (s *QueryService) ListProvinces(ctx context.Context, country Scope, pageNumber, pageSize int) (*pkgrepo.PaginationResult[domain.NamedRef], error) {
	if err := country.validate("country"); err != nil {
		return nil, err
	}
	repo := s.repos.Provinces
	switch {
	case country.ID > 0:
		return paginate(ctx, pageNumber, pageSize,
			func(ctx context.Context, n, size int) ([]domain.NamedRef, error) {
				return repo.GetProvincesByCountryID(ctx, country.ID, n, size)
			},
			func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfProvincesByCountryID(ctx, country.ID) })
	case country.Name != "":
		return paginate(ctx, pageNumber, pageSize,
			func(ctx context.Context, n, size int) ([]domain.NamedRef, error) {
				return repo.GetProvincesByCountryName(ctx, country.Name, n, size)
			},
			func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfProvincesByCountryName(ctx, country.Name) })
	default:
		return paginate(ctx, pageNumber, pageSize, repo.GetProvinces, repo.GetTotalCount)
	}
}

func (s *QueryService) SearchProvinceNames(ctx context.Context, like string, pageNumber, pageSize int) (*pkgrepo.PaginationResult[string], error) {
	return searchNames(ctx, like, pageNumber, pageSize, s.repos.Provinces.GetNamesLikeName, s.repos.Provinces.GetTotalCountOfNamesLikeName)
}

// GetCity returns a city. With withProvince the province is joined and the
// city's country taken from it.
func (s *QueryService) GetCity(ctx context.Context, id int64, withProvince bool) (*CityView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	fetch := s.repos.Cities.GetByID
	if withProvince {
		fetch = s.repos.Cities.GetByIDWithProvince
	}
	city, err := lookup(ctx, pkgerrors.CityNotFound, id, func(ctx context.Context) (*domain.City, error) {
		return fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return newCityView(city), nil
}

func (s *QueryService) GetCityByName(ctx context.Context, name string) (*CityView, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}
	city, err := lookup(ctx, pkgerrors.CityNotFound, name, func(ctx context.Context) (*domain.City, error) {
		return s.repos.Cities.GetByName(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return newCityView(city), nil
}

// ListCities lists cities, optionally within one province or one country.
func (s *QueryService) ListCities(ctx context.Context, scope CityScope, pageNumber, pageSize int) (*pkgrepo.PaginationResult[domain.NamedRef], error) {
	if err := scope.Province.validate("province"); err != nil {
		return nil, err
	}
	if err := scope.Country.validate("country"); err != nil {
		return nil, err
	}
	if !scope.Province.isZero() && !scope.Country.isZero() {
		return nil, pkgerrors.ValidationError("scope", "filter by province or by country, not both")
	}

	repo := s.repos.Cities
	var (
		list  func(ctx context.Context, pageNumber, pageSize int) ([]domain.NamedRef, error)
		count func(ctx context.Context) (int64, error)
	)
	switch {
	case scope.Province.ID > 0:
		id := scope.Province.ID
		list = func(ctx context.Context, n, size int) ([]domain.NamedRef, error) { return repo.GetCitiesByProvinceID(ctx, id, n, size) }
		count = func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfCitiesByProvinceID(ctx, id) }
	case scope.Province.Name != "":
		name := scope.Province.Name
		list = func(ctx context.Context, n, size int) ([]domain.NamedRef, error) { return repo.GetCitiesByProvinceName(ctx, name, n, size) }
		count = func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfCitiesByProvinceName(ctx, name) }
	case scope.Country.ID > 0:
		id := scope.Country.ID
		list = func(ctx context.Context, n, size int) ([]domain.NamedRef, error) { return repo.GetCitiesByCountryID(ctx, id, n, size) }
		count = func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfCitiesByCountryID(ctx, id) }
	case scope.Country.Name != "":
		name := scope.Country.Name
		list = func(ctx context.Context, n, size int) ([]domain.NamedRef, error) { return repo.GetCitiesByCountryName(ctx, name, n, size) }
		count = func(ctx context.Context) (int64, error) { return repo.GetTotalCountOfCitiesByCountryName(ctx, name) }
	default:
		list, count = repo.GetCities, repo.GetTotalCount
	}
	return paginate(ctx, pageNumber, pageSize, list, count)
}

func (s *QueryService) SearchCityNames(ctx context.Context, like string, pageNumber, pageSize int) (*pkgrepo.PaginationResult[string], error) {
	return searchNames(ctx, like, pageNumber, pageSize, s.repos.Cities.GetNamesLikeName, s.repos.Cities.GetTotalCountOfNamesLikeName)
}
