package domain

// Country belongs to at most one continent.
type Country struct {
	identity

	continentID *int64
	continent   *Continent

	provinces       []*Province
	provincesLoaded bool
}

func NewCountry(id int64, name string) (*Country, error) {
	ident, err := newIdentity(id, name)
	if err != nil {
		return nil, err
	}
	return &Country{identity: ident}, nil
}

// RestoreCountry rebuilds a country from storage without validation.
func RestoreCountry(id int64, name string, continentID *int64) *Country {
	return &Country{identity: identity{id: id, name: name}, continentID: copyID(continentID)}
}

func (c *Country) Kind() Kind {
	return KindCountry
}

// ContinentID returns the continent foreign key, nil when orphaned or when the
// continent has not been stored yet.
func (c *Country) ContinentID() *int64 {
	if c.continent != nil {
		return resolveID(c.continent.ID(), true, nil)
	}
	return resolveID(0, false, c.continentID)
}

// Continent returns the continent when it was set or joined.
func (c *Country) Continent() *Continent {
	return c.continent
}

// SetContinent moves the country. nil orphans it.
func (c *Country) SetContinent(continent *Continent) {
	c.continent = continent
	if continent == nil {
		c.continentID = nil
	}
}

func (c *Country) Provinces() (provinces []*Province, loaded bool) {
	return append([]*Province(nil), c.provinces...), c.provincesLoaded
}

func (c *Country) AttachProvinces(provinces []*Province) {
	c.provinces = append([]*Province(nil), provinces...)
	c.provincesLoaded = true
}

func (c *Country) Equal(other *Country) bool {
	return sameEntity(c, other, (*Country).ID)
}
