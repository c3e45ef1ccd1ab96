// Package domain holds the geographic entity graph:
// continents own countries, countries own provinces, provinces own cities.
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxNameLength bounds every entity name, in characters.
const MaxNameLength = 100

// Kind identifies an entity type.
type Kind int

const (
	KindContinent Kind = iota + 1
	KindCountry
	KindProvince
	KindCity
)

func (k Kind) String() string {
	switch k {
	case KindContinent:
		return "continent"
	case KindCountry:
		return "country"
	case KindProvince:
		return "province"
	case KindCity:
		return "city"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entity is implemented by all four entity types.
type Entity interface {
	ID() int64
	Name() string
	Kind() Kind
}

// NamedRef is the (id, name) pair returned by listings.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError names the field that broke an entity rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = validator.New()

type nameRule struct {
	Name string `validate:"required,max=100"`
}

// ValidateName trims name and checks it against the entity name rules.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := validate.Struct(nameRule{Name: trimmed}); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			switch fieldErrs[0].Tag() {
			case "required":
				return "", &ValidationError{Field: "name", Reason: "must not be empty"}
			case "max":
				return "", &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", MaxNameLength)}
			}
		}
		return "", &ValidationError{Field: "name", Reason: err.Error()}
	}
	return trimmed, nil
}

func validateID(id int64) error {
	if id < 0 {
		return &ValidationError{Field: "id", Reason: "must not be negative"}
	}
	return nil
}

// identity is the shared id/name state of every entity.
type identity struct {
	id   int64
	name string
}

func newIdentity(id int64, name string) (identity, error) {
	if err := validateID(id); err != nil {
		return identity{}, err
	}
	trimmed, err := ValidateName(name)
	if err != nil {
		return identity{}, err
	}
	return identity{id: id, name: trimmed}, nil
}

func (i *identity) ID() int64 {
	return i.id
}

func (i *identity) Name() string {
	return i.name
}

// IsTransient reports whether the entity has not been stored yet.
func (i *identity) IsTransient() bool {
	return i.id == 0
}

// Rename validates and replaces the name.
func (i *identity) Rename(name string) error {
	trimmed, err := ValidateName(name)
	if err != nil {
		return err
	}
	i.name = trimmed
	return nil
}

// AssignID records the store-assigned identity. It may be called once.
func (i *identity) AssignID(id int64) error {
	if i.id != 0 {
		return fmt.Errorf("identity already assigned: %d", i.id)
	}
	if id <= 0 {
		return &ValidationError{Field: "id", Reason: "must be positive"}
	}
	i.id = id
	return nil
}

// ReleaseID returns the entity to the transient state when it still holds id.
// A rolled-back transaction uses it to take back identities it handed out.
func (i *identity) ReleaseID(id int64) {
	if i.id == id {
		i.id = 0
	}
}

// Ref returns the (id, name) pair.
func (i *identity) Ref() NamedRef {
	return NamedRef{ID: i.id, Name: i.name}
}

// sameEntity compares stored entities by id and transient ones by pointer.
func sameEntity[T any](a, b *T, idOf func(*T) int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if idOf(a) == 0 || idOf(b) == 0 {
		return a == b
	}
	return idOf(a) == idOf(b)
}

// resolveID returns the id of parent when it is set and stored, otherwise
// the remembered foreign key. A transient parent resolves to nil until it is stored.
func resolveID(parentID int64, hasParent bool, stored *int64) *int64 {
	if hasParent {
		if parentID == 0 {
			return nil
		}
		id := parentID
		return &id
	}
	if stored == nil {
		return nil
	}
	id := *stored
	return &id
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
