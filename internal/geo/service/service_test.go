package service

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
	"geoatlas/internal/geo/repository"
	pkgerrors "geoatlas/pkg/errors"
)

type services struct {
	query   *QueryService
	command *CommandService
}

func newServices(t *testing.T) *services {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "geo.db"))
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := repository.EnsureSchema(context.Background(), database); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	provider := db.NewStaticProvider(database)
	return &services{
		query: NewQueryService(Repositories{
			Continents: repository.NewContinentQueryRepository(provider, nil),
			Countries:  repository.NewCountryQueryRepository(provider, nil),
			Provinces:  repository.NewProvinceQueryRepository(provider, nil),
			Cities:     repository.NewCityQueryRepository(provider, nil),
		}),
		command: NewCommandService(repository.NewUnitOfWorkFactory(provider, nil, nil), nil),
	}
}

type ontario struct {
	continentID, countryID, provinceID int64
	torontoID, ottawaID                int64
}

func seedOntario(t *testing.T, s *services) ontario {
	t.Helper()
	ctx := context.Background()
	continent, err := s.command.CreateContinent(ctx, "North America")
	if err != nil {
		t.Fatalf("create continent failed: %v", err)
	}
	country, err := s.command.CreateCountry(ctx, CountryInput{Name: "Canada", ContinentID: &continent.ID})
	if err != nil {
		t.Fatalf("create country failed: %v", err)
	}
	province, err := s.command.CreateProvince(ctx, ProvinceInput{Name: "Ontario", CountryID: &country.ID})
	if err != nil {
		t.Fatalf("create province failed: %v", err)
	}
	toronto, err := s.command.CreateCity(ctx, CityInput{Name: "Toronto", ProvinceID: &province.ID})
	if err != nil {
		t.Fatalf("create city failed: %v", err)
	}
	ottawa, err := s.command.CreateCity(ctx, CityInput{Name: "Ottawa", ProvinceID: &province.ID})
	if err != nil {
		t.Fatalf("create city failed: %v", err)
	}
	return ontario{continent.ID, country.ID, province.ID, toronto.ID, ottawa.ID}
}

func expectCode(t *testing.T, err error, code pkgerrors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %d, got nil", code)
	}
	if got := pkgerrors.GetCode(err); got != code {
		t.Fatalf("expected error code %d, got %d (%v)", code, got, err)
	}
}

func TestListCitiesByProvinceName(t *testing.T) {
	s := newServices(t)
	seedOntario(t, s)

	result, err := s.query.ListCities(context.Background(), CityScope{Province: Scope{Name: "Ontario"}}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.Total != 2 || result.TotalPages != 1 || result.HasMore {
		t.Fatalf("unexpected paging %+v", result)
	}
	want := []string{"Ottawa", "Toronto"}
	got := []string{result.Items[0].Name, result.Items[1].Name}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCreateCityCopiesProvinceCountry(t *testing.T) {
	s := newServices(t)
	ids := seedOntario(t, s)

	city, err := s.query.GetCity(context.Background(), ids.torontoID, true)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if city.CountryID == nil || *city.CountryID != ids.countryID {
		t.Fatalf("expected country %d, got %v", ids.countryID, city.CountryID)
	}
	if city.Province == nil || city.Province.Name != "Ontario" {
		t.Fatalf("expected joined province, got %+v", city.Province)
	}

	plain, err := s.query.GetCity(context.Background(), ids.torontoID, false)
	if err != nil || plain.Province != nil {
		t.Fatalf("province should not be loaded, got %+v (%v)", plain, err)
	}
}

func TestAbsentLookupsBecomeNotFound(t *testing.T) {
	s := newServices(t)
	seedOntario(t, s)
	ctx := context.Background()

	_, err := s.query.GetProvinceByName(ctx, "Nonexistent")
	expectCode(t, err, pkgerrors.ProvinceNotFound)
	if status := pkgerrors.GetCode(err).HTTPStatus(); status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}

	_, err = s.query.GetContinent(ctx, 999, false)
	expectCode(t, err, pkgerrors.ContinentNotFound)
	_, err = s.query.GetCountry(ctx, 999, true)
	expectCode(t, err, pkgerrors.CountryNotFound)
	_, err = s.query.GetCityByName(ctx, "Atlantis")
	expectCode(t, err, pkgerrors.CityNotFound)
}

func TestEmptyListingIsNoMatches(t *testing.T) {
	s := newServices(t)
	ids := seedOntario(t, s)
	ctx := context.Background()

	empty, err := s.command.CreateProvince(ctx, ProvinceInput{Name: "Nunavut", CountryID: &ids.countryID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = s.query.ListCities(ctx, CityScope{Province: Scope{ID: empty.ID}}, 1, 10)
	expectCode(t, err, pkgerrors.NoMatches)

	_, err = s.query.SearchCountryNames(ctx, "zzz", 1, 10)
	expectCode(t, err, pkgerrors.NoMatches)
}

func TestGuardClauses(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.query.ListContinents(ctx, 0, 10)
	expectCode(t, err, pkgerrors.ValidationFailed)
	_, err = s.query.ListContinents(ctx, 1, 5000)
	expectCode(t, err, pkgerrors.ValidationFailed)
	_, err = s.query.GetCityByName(ctx, "   ")
	expectCode(t, err, pkgerrors.ValidationFailed)
	_, err = s.query.SearchCityNames(ctx, "", 1, 10)
	expectCode(t, err, pkgerrors.ValidationFailed)
	_, err = s.query.GetCity(ctx, 0, false)
	expectCode(t, err, pkgerrors.ValidationFailed)
	_, err = s.query.ListCities(ctx, CityScope{Province: Scope{ID: 1}, Country: Scope{Name: "Canada"}}, 1, 10)
	expectCode(t, err, pkgerrors.ValidationFailed)
	_, err = s.query.ListCountries(ctx, Scope{ID: 1, Name: "Europe"}, 1, 10)
	expectCode(t, err, pkgerrors.ValidationFailed)

	_, err = s.command.CreateContinent(ctx, "")
	expectCode(t, err, pkgerrors.ValidationFailed)
	if details := pkgerrors.GetError(err).Details; details["field"] != "name" {
		t.Fatalf("expected name field detail, got %v", details)
	}
}

func TestPagedNamesLike(t *testing.T) {
	s := newServices(t)
	ids := seedOntario(t, s)
	ctx := context.Background()
	for _, name := range []string{"Oakville", "Orillia", "Oshawa"} {
		if _, err := s.command.CreateCity(ctx, CityInput{Name: name, ProvinceID: &ids.provinceID}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	var names []string
	for page := 1; ; page++ {
		result, err := s.query.SearchCityNames(ctx, "o", page, 2)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if result.Total != 5 {
			t.Fatalf("expected total 5, got %d", result.Total)
		}
		names = append(names, result.Items...)
		if !result.HasMore {
			break
		}
	}
	want := []string{"Oakville", "Orillia", "Oshawa", "Ottawa", "Toronto"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestCommandParentMustExist(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	missing := int64(404)

	_, err := s.command.CreateCity(ctx, CityInput{Name: "Nowhere", ProvinceID: &missing})
	expectCode(t, err, pkgerrors.ParentNotFound)
	_, err = s.command.CreateCountry(ctx, CountryInput{Name: "Nowhere", ContinentID: &missing})
	expectCode(t, err, pkgerrors.ParentNotFound)
	if status := pkgerrors.GetCode(err).HTTPStatus(); status != 409 {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestUpdateAndDeleteUnknownIDs(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.command.UpdateCity(ctx, 77, CityInput{Name: "Ghost"})
	expectCode(t, err, pkgerrors.CityNotFound)
	_, err = s.command.UpdateContinent(ctx, 77, "Ghost")
	expectCode(t, err, pkgerrors.ContinentNotFound)

	err = s.command.Delete(ctx, domain.KindProvince, 77)
	expectCode(t, err, pkgerrors.ProvinceNotFound)
	err = s.command.Delete(ctx, domain.Kind(9), 1)
	expectCode(t, err, pkgerrors.ValidationFailed)
}

func TestMoveProvinceCarriesCities(t *testing.T) {
	s := newServices(t)
	ids := seedOntario(t, s)
	ctx := context.Background()

	usa, err := s.command.CreateCountry(ctx, CountryInput{Name: "United States", ContinentID: &ids.continentID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	moved, err := s.command.UpdateProvince(ctx, ids.provinceID, ProvinceInput{Name: "Ontario", CountryID: &usa.ID})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if *moved.CountryID != usa.ID {
		t.Fatalf("province not moved: %+v", moved)
	}

	result, err := s.query.ListCities(ctx, CityScope{Country: Scope{Name: "United States"}}, 1, 10)
	if err != nil || result.Total != 2 {
		t.Fatalf("expected both cities in the United States, got %+v (%v)", result, err)
	}
	_, err = s.query.ListCities(ctx, CityScope{Country: Scope{ID: ids.countryID}}, 1, 10)
	expectCode(t, err, pkgerrors.NoMatches)
}

func TestUpdateCityDetachesFromProvince(t *testing.T) {
	s := newServices(t)
	ids := seedOntario(t, s)

	city, err := s.command.UpdateCity(context.Background(), ids.ottawaID, CityInput{Name: "Bytown"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if city.Name != "Bytown" || city.ProvinceID != nil || city.CountryID != nil {
		t.Fatalf("expected detached city, got %+v", city)
	}
}

func TestDeleteCountryCascades(t *testing.T) {
	s := newServices(t)
	ids := seedOntario(t, s)
	ctx := context.Background()

	if err := s.command.Delete(ctx, domain.KindCountry, ids.countryID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err := s.query.GetCity(ctx, ids.torontoID, false)
	expectCode(t, err, pkgerrors.CityNotFound)
	_, err = s.query.ListProvinces(ctx, Scope{}, 1, 10)
	expectCode(t, err, pkgerrors.NoMatches)

	continent, err := s.query.GetContinent(ctx, ids.continentID, true)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if continent.Countries == nil || len(continent.Countries) != 0 {
		t.Fatalf("expected loaded, empty countries, got %v", continent.Countries)
	}
}

func TestDuplicateNamesAreAmbiguous(t *testing.T) {
	s := newServices(t)
	ids := seedOntario(t, s)
	ctx := context.Background()
	if _, err := s.command.CreateCity(ctx, CityInput{Name: "Toronto", ProvinceID: &ids.provinceID}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := s.query.GetCityByName(ctx, "Toronto")
	expectCode(t, err, pkgerrors.AmbiguousName)
}

func TestCancelledRequests(t *testing.T) {
	s := newServices(t)
	seedOntario(t, s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.query.ListCities(ctx, CityScope{}, 1, 10)
	expectCode(t, err, pkgerrors.RequestCanceled)
	_, err = s.command.CreateContinent(ctx, "Europe")
	expectCode(t, err, pkgerrors.RequestCanceled)

	if _, err := s.query.GetContinentByName(context.Background(), "Europe"); pkgerrors.GetCode(err) != pkgerrors.ContinentNotFound {
		t.Fatalf("cancelled create must not be stored, got %v", err)
	}
}

func TestSeedAppliesTreeAtomically(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	europe, _ := domain.NewContinent(0, "Europe")
	france, _ := domain.NewCountry(0, "France")
	france.SetContinent(europe)
	idf, _ := domain.NewProvince(0, "Ile-de-France")
	idf.SetCountry(france)
	paris, _ := domain.NewCity(0, "Paris")
	paris.SetCountryAndProvince(idf)

	if err := s.command.Seed(ctx, []domain.Entity{europe, france, idf, paris}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	city, err := s.query.GetCityByName(ctx, "Paris")
	if err != nil || city.CountryID == nil || *city.CountryID != france.ID() {
		t.Fatalf("expected Paris in France, got %+v (%v)", city, err)
	}

	orphan, _ := domain.NewProvince(0, "Bavaria")
	germany, _ := domain.NewCountry(0, "Germany")
	orphan.SetCountry(germany)
	err = s.command.Seed(ctx, []domain.Entity{orphan})
	expectCode(t, err, pkgerrors.ValidationFailed)

	spain, _ := domain.NewCountry(0, "Spain")
	ghost := int64(999)
	lost := domain.RestoreCity(0, "Lost", &ghost, nil)
	err = s.command.Seed(ctx, []domain.Entity{spain, lost})
	expectCode(t, err, pkgerrors.SeedFailed)
	if _, err := s.query.GetCountryByName(ctx, "Spain"); pkgerrors.GetCode(err) != pkgerrors.CountryNotFound {
		t.Fatalf("failed seed must not leave rows, got %v", err)
	}
}
