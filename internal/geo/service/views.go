package service

import "geoatlas/internal/geo/domain"

// ContinentView is the read model of a continent.
type ContinentView struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Countries []domain.NamedRef `json:"countries,omitempty"`
}

// CountryView is the read model of a country.
type CountryView struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	ContinentID *int64            `json:"continent_id"`
	Provinces   []domain.NamedRef `json:"provinces,omitempty"`
}

// ProvinceView is the read model of a province.
type ProvinceView struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	CountryID *int64            `json:"country_id"`
	Cities    []domain.NamedRef `json:"cities,omitempty"`
}

// CityView is the read model of a city. Province is set only when it was
// loaded with the city.
type CityView struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	ProvinceID *int64           `json:"province_id"`
	CountryID  *int64           `json:"country_id"`
	Province   *domain.NamedRef `json:"province,omitempty"`
}

func newContinentView(c *domain.Continent) *ContinentView {
	view := &ContinentView{ID: c.ID(), Name: c.Name()}
	if countries, loaded := c.Countries(); loaded {
		view.Countries = make([]domain.NamedRef, 0, len(countries))
		for _, country := range countries {
			view.Countries = append(view.Countries, country.Ref())
		}
	}
	return view
}

func newCountryView(c *domain.Country) *CountryView {
	view := &CountryView{ID: c.ID(), Name: c.Name(), ContinentID: c.ContinentID()}
	if provinces, loaded := c.Provinces(); loaded {
		view.Provinces = make([]domain.NamedRef, 0, len(provinces))
		for _, province := range provinces {
			view.Provinces = append(view.Provinces, province.Ref())
		}
	}
	return view
}

func newProvinceView(p *domain.Province) *ProvinceView {
	view := &ProvinceView{ID: p.ID(), Name: p.Name(), CountryID: p.CountryID()}
	if cities, loaded := p.Cities(); loaded {
		view.Cities = make([]domain.NamedRef, 0, len(cities))
		for _, city := range cities {
			view.Cities = append(view.Cities, city.Ref())
		}
	}
	return view
}

func newCityView(c *domain.City) *CityView {
	view := &CityView{ID: c.ID(), Name: c.Name(), ProvinceID: c.ProvinceID(), CountryID: c.CountryID()}
	if p := c.Province(); p != nil {
		ref := p.Ref()
		view.Province = &ref
	}
	return view
}
