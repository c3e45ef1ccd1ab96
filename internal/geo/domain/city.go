package domain

// City belongs to at most one province and carries a redundant country
// reference that must match its province's country once the province is known.
type City struct {
	identity

	provinceID *int64
	province   *Province

	countryID *int64
	country   *Country
}

func NewCity(id int64, name string) (*City, error) {
	ident, err := newIdentity(id, name)
	if err != nil {
		return nil, err
	}
	return &City{identity: ident}, nil
}

// RestoreCity rebuilds a city from storage without validation. The country
// reference is taken as stored and may be stale until SetCountryAndProvince runs.
func RestoreCity(id int64, name string, provinceID, countryID *int64) *City {
	return &City{
		identity:   identity{id: id, name: name},
		provinceID: copyID(provinceID),
		countryID:  copyID(countryID),
	}
}

func (c *City) Kind() Kind {
	return KindCity
}

func (c *City) ProvinceID() *int64 {
	if c.province != nil {
		return resolveID(c.province.ID(), true, nil)
	}
	return resolveID(0, false, c.provinceID)
}

func (c *City) Province() *Province {
	return c.province
}

// CountryID returns the denormalized country foreign key.
func (c *City) CountryID() *int64 {
	if c.country != nil {
		return resolveID(c.country.ID(), true, nil)
	}
	return resolveID(0, false, c.countryID)
}

func (c *City) Country() *Country {
	return c.country
}

// SetProvince replaces the province only; the country is left as is.
func (c *City) SetProvince(province *Province) {
	c.province = province
	if province == nil {
		c.provinceID = nil
	}
}

// SetCountry replaces the country only.
func (c *City) SetCountry(country *Country) {
	c.country = country
	if country == nil {
		c.countryID = nil
	}
}

// SetCountryAndProvince sets the province and copies its country, keeping
// the denormalized reference in sync. A nil province clears both.
func (c *City) SetCountryAndProvince(province *Province) {
	c.province = province
	c.provinceID = nil
	c.country = nil
	c.countryID = nil
	if province == nil {
		return
	}
	if country := province.Country(); country != nil {
		c.country = country
		return
	}
	c.countryID = province.CountryID()
}

func (c *City) Equal(other *City) bool {
	return sameEntity(c, other, (*City).ID)
}
