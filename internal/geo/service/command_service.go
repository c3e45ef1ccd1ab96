package service

import (
	"context"

	"geoatlas/internal/geo/domain"
	"geoatlas/internal/geo/repository"
	pkgerrors "geoatlas/pkg/errors"
	"geoatlas/pkg/utils/logger"

	"go.uber.org/zap"
)

// CountryInput is the payload for creating or updating a country.
// A nil ContinentID detaches the country.
type CountryInput struct {
	Name        string
	ContinentID *int64
}

// ProvinceInput is the payload for creating or updating a province.
type ProvinceInput struct {
	Name      string
	CountryID *int64
}

// CityInput is the payload for creating or updating a city. The city's
// country always follows the province.
type CityInput struct {
	Name       string
	ProvinceID *int64
}

// CommandService runs each mutation in its own unit of work.
type CommandService struct {
	uow *repository.UnitOfWorkFactory
	log *logger.Logger
}

// NewCommandService creates a new CommandService.
func NewCommandService(uow *repository.UnitOfWorkFactory, log *logger.Logger) *CommandService {
	if log == nil {
		log = logger.NewNop()
	}
	return &CommandService{uow: uow, log: log}
}

// run begins a unit of work, hands it to fn and commits. The unit of work is
// rolled back on every failure path.
func (s *CommandService) run(ctx context.Context, kind domain.Kind, fn func(u *repository.UnitOfWork) error) error {
	code := notFoundCode(kind)
	u, err := s.uow.Begin(ctx)
	if err != nil {
		return translate(err, code)
	}
	defer func() {
		if err := u.Close(); err != nil {
			s.log.Warn(ctx, "close unit of work failed", zap.Error(err))
		}
	}()

	if err := fn(u); err != nil {
		return translate(err, code)
	}
	if err := u.Commit(ctx); err != nil {
		return translate(err, code)
	}
	return nil
}

func parentNotFound(kind domain.Kind, id int64) error {
	return pkgerrors.NotFoundError(pkgerrors.ParentNotFound, id).
		WithMessagef("%s %d not found", kind, id).
		WithDetail("kind", kind.String())
}

func (s *CommandService) CreateContinent(ctx context.Context, name string) (*ContinentView, error) {
	continent, err := domain.NewContinent(0, name)
	if err != nil {
		return nil, translate(err, pkgerrors.ContinentNotFound)
	}
	err = s.run(ctx, domain.KindContinent, func(u *repository.UnitOfWork) error {
		return u.Add(continent)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "continent created", zap.Int64("id", continent.ID()))
	return newContinentView(continent), nil
}

func (s *CommandService) UpdateContinent(ctx context.Context, id int64, name string) (*ContinentView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var continent *domain.Continent
	err := s.run(ctx, domain.KindContinent, func(u *repository.UnitOfWork) error {
		var err error
		if continent, err = u.ContinentByID(ctx, id); err != nil {
			return err
		}
		if continent == nil {
			return pkgerrors.NotFoundError(pkgerrors.ContinentNotFound, id)
		}
		if err := continent.Rename(name); err != nil {
			return err
		}
		return u.Update(continent)
	})
	if err != nil {
		return nil, err
	}
	return newContinentView(continent), nil
}

func (s *CommandService) CreateCountry(ctx context.Context, input CountryInput) (*CountryView, error) {
	country, err := domain.NewCountry(0, input.Name)
	if err != nil {
		return nil, translate(err, pkgerrors.CountryNotFound)
	}
	err = s.run(ctx, domain.KindCountry, func(u *repository.UnitOfWork) error {
		if err := s.attachContinent(ctx, u, country, input.ContinentID); err != nil {
			return err
		}
		return u.Add(country)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "country created", zap.Int64("id", country.ID()))
	return newCountryView(country), nil
}

// UpdateCountry renames the country and moves it to input.ContinentID.
func (s *CommandService) UpdateCountry(ctx context.Context, id int64, input CountryInput) (*CountryView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var country *domain.Country
	err := s.run(ctx, domain.KindCountry, func(u *repository.UnitOfWork) error {
		var err error
		if country, err = u.CountryByID(ctx, id); err != nil {
			return err
		}
		if country == nil {
			return pkgerrors.NotFoundError(pkgerrors.CountryNotFound, id)
		}
		if err := country.Rename(input.Name); err != nil {
			return err
		}
		if err := s.attachContinent(ctx, u, country, input.ContinentID); err != nil {
			return err
		}
		return u.Update(country)
	})
	if err != nil {
		return nil, err
	}
	return newCountryView(country), nil
}

func (s *CommandService) attachContinent(ctx context.Context, u *repository.UnitOfWork, country *domain.Country, continentID *int64) error {
	if continentID == nil {
		country.SetContinent(nil)
		return nil
	}
	continent, err := u.ContinentByID(ctx, *continentID)
	if err != nil {
		return err
	}
	if continent == nil {
		return parentNotFound(domain.KindContinent, *continentID)
	}
	country.SetContinent(continent)
	return nil
}

func (s *CommandService) CreateProvince(ctx context.Context, input ProvinceInput) (*ProvinceView, error) {
	province, err := domain.NewProvince(0, input.Name)
	if err != nil {
		return nil, translate(err, pkgerrors.ProvinceNotFound)
	}
	err = s.run(ctx, domain.KindProvince, func(u *repository.UnitOfWork) error {
		if err := s.attachCountry(ctx, u, province, input.CountryID); err != nil {
			return err
		}
		return u.Add(province)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "province created", zap.Int64("id", province.ID()))
	return newProvinceView(province), nil
}

// UpdateProvince renames the province and moves it to input.CountryID.
// Cities of the province follow it to the new country on commit.
func (s *CommandService) UpdateProvince(ctx context.Context, id int64, input ProvinceInput) (*ProvinceView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var province *domain.Province
	err := s.run(ctx, domain.KindProvince, func(u *repository.UnitOfWork) error {
		var err error
		if province, err = u.ProvinceByID(ctx, id); err != nil {
			return err
		}
		if province == nil {
			return pkgerrors.NotFoundError(pkgerrors.ProvinceNotFound, id)
		}
		if err := province.Rename(input.Name); err != nil {
			return err
		}
		if err := s.attachCountry(ctx, u, province, input.CountryID); err != nil {
			return err
		}
		return u.Update(province)
	})
	if err != nil {
		return nil, err
	}
	return newProvinceView(province), nil
}

func (s *CommandService) attachCountry(ctx context.Context, u *repository.UnitOfWork, province *domain.Province, countryID *int64) error {
	if countryID == nil {
		province.SetCountry(nil)
		return nil
	}
	country, err := u.CountryByID(ctx, *countryID)
	if err != nil {
		return err
	}
	if country == nil {
		return parentNotFound(domain.KindCountry, *countryID)
	}
	province.SetCountry(country)
	return nil
}

func (s *CommandService) CreateCity(ctx context.Context, input CityInput) (*CityView, error) {
	city, err := domain.NewCity(0, input.Name)
	if err != nil {
		return nil, translate(err, pkgerrors.CityNotFound)
	}
	err = s.run(ctx, domain.KindCity, func(u *repository.UnitOfWork) error {
		if err := s.attachProvince(ctx, u, city, input.ProvinceID); err != nil {
			return err
		}
		return u.Add(city)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "city created", zap.Int64("id", city.ID()))
	return newCityView(city), nil
}

// UpdateCity renames the city and moves it to input.ProvinceID, taking the
// province's country along.
func (s *CommandService) UpdateCity(ctx context.Context, id int64, input CityInput) (*CityView, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var city *domain.City
	err := s.run(ctx, domain.KindCity, func(u *repository.UnitOfWork) error {
		var err error
		if city, err = u.CityByID(ctx, id); err != nil {
			return err
		}
		if city == nil {
			return pkgerrors.NotFoundError(pkgerrors.CityNotFound, id)
		}
		if err := city.Rename(input.Name); err != nil {
			return err
		}
		if err := s.attachProvince(ctx, u, city, input.ProvinceID); err != nil {
			return err
		}
		return u.Update(city)
	})
	if err != nil {
		return nil, err
	}
	return newCityView(city), nil
}

func (s *CommandService) attachProvince(ctx context.Context, u *repository.UnitOfWork, city *domain.City, provinceID *int64) error {
	if provinceID == nil {
		city.SetCountryAndProvince(nil)
		return nil
	}
	province, err := u.ProvinceByID(ctx, *provinceID)
	if err != nil {
		return err
	}
	if province == nil {
		return parentNotFound(domain.KindProvince, *provinceID)
	}
	city.SetCountryAndProvince(province)
	return nil
}

// Delete removes an entity and, through the schema, all of its descendants.
func (s *CommandService) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	err := s.run(ctx, kind, func(u *repository.UnitOfWork) error {
		return u.Delete(kind, id)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "entity deleted", zap.Stringer("kind", kind), zap.Int64("id", id))
	return nil
}

// Seed adds entities in order within one unit of work. Parents must come
// before their children; ids are resolved at commit.
func (s *CommandService) Seed(ctx context.Context, entities []domain.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	err := s.run(ctx, 0, func(u *repository.UnitOfWork) error {
		for _, entity := range entities {
			if err := u.Add(entity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.GetCode(err) == pkgerrors.ValidationFailed {
			return err
		}
		return pkgerrors.Wrapf(err, pkgerrors.SeedFailed, "seed failed: %v", err)
	}
	s.log.Info(ctx, "seed applied", zap.Int("entities", len(entities)))
	return nil
}
