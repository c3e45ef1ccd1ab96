package domain

// Province belongs to at most one country.
type Province struct {
	identity

	countryID *int64
	country   *Country

	cities       []*City
	citiesLoaded bool
}

func NewProvince(id int64, name string) (*Province, error) {
	ident, err := newIdentity(id, name)
	if err != nil {
		return nil, err
	}
	return &Province{identity: ident}, nil
}

// RestoreProvince rebuilds a province from storage without validation.
func RestoreProvince(id int64, name string, countryID *int64) *Province {
	return &Province{identity: identity{id: id, name: name}, countryID: copyID(countryID)}
}

func (p *Province) Kind() Kind {
	return KindProvince
}

// CountryID returns the country foreign key.
func (p *Province) CountryID() *int64 {
	if p.country != nil {
		return resolveID(p.country.ID(), true, nil)
	}
	return resolveID(0, false, p.countryID)
}

func (p *Province) Country() *Country {
	return p.country
}

// SetCountry moves the province. Cities are re-synchronized by the store on update.
func (p *Province) SetCountry(country *Country) {
	p.country = country
	if country == nil {
		p.countryID = nil
	}
}

func (p *Province) Cities() (cities []*City, loaded bool) {
	return append([]*City(nil), p.cities...), p.citiesLoaded
}

func (p *Province) AttachCities(cities []*City) {
	p.cities = append([]*City(nil), cities...)
	p.citiesLoaded = true
}

func (p *Province) Equal(other *Province) bool {
	return sameEntity(p, other, (*Province).ID)
}
