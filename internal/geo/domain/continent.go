package domain

// Continent is the root of the hierarchy.
type Continent struct {
	identity

	countries       []*Country
	countriesLoaded bool
}

// NewContinent builds a validated continent. Pass id 0 for a new one.
func NewContinent(id int64, name string) (*Continent, error) {
	ident, err := newIdentity(id, name)
	if err != nil {
		return nil, err
	}
	return &Continent{identity: ident}, nil
}

// RestoreContinent rebuilds a continent from storage without validation.
func RestoreContinent(id int64, name string) *Continent {
	return &Continent{identity: identity{id: id, name: name}}
}

func (c *Continent) Kind() Kind {
	return KindContinent
}

// Countries returns the loaded countries. loaded is false when the
// collection was never requested, which says nothing about whether it is empty.
func (c *Continent) Countries() (countries []*Country, loaded bool) {
	return append([]*Country(nil), c.countries...), c.countriesLoaded
}

// AttachCountries marks the collection as loaded with the given members.
func (c *Continent) AttachCountries(countries []*Country) {
	c.countries = append([]*Country(nil), countries...)
	c.countriesLoaded = true
}

func (c *Continent) Equal(other *Continent) bool {
	return sameEntity(c, other, (*Continent).ID)
}
