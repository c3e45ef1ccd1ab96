package repository

import (
	"fmt"
	"strings"

	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
	pkgrepo "geoatlas/pkg/repository"
)

// Filter selects rows for listings and counts. It is a closed set:
// FilterAll, FilterNameLike, FilterAncestorID and FilterAncestorName.
type Filter interface {
	isFilter()
}

// FilterAll matches every row.
type FilterAll struct{}

// FilterNameLike matches names containing Text, case-insensitively.
// Wildcard characters in Text are matched literally.
type FilterNameLike struct {
	Text string
}

// FilterAncestorID matches rows whose ancestor of the given kind has ID.
type FilterAncestorID struct {
	Ancestor domain.Kind
	ID       int64
}

// FilterAncestorName matches rows whose ancestor of the given kind is named Name.
type FilterAncestorName struct {
	Ancestor domain.Kind
	Name     string
}

func (FilterAll) isFilter()          {}
func (FilterNameLike) isFilter()     {}
func (FilterAncestorID) isFilter()   {}
func (FilterAncestorName) isFilter() {}

const likeEscape = '!'

// escapeLike quotes LIKE wildcards so the input is matched as plain text.
func escapeLike(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case likeEscape, '%', '_':
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// clause is the FROM/WHERE fragment produced for one filter.
type clause struct {
	join  string
	where string
}

func (c clause) sql() string {
	var b strings.Builder
	if c.join != "" {
		b.WriteString(" ")
		b.WriteString(c.join)
	}
	if c.where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(c.where)
	}
	return b.String()
}

// translate turns a filter into SQL for table t, appending bind values to args.
func (t table) translate(filter Filter, args *db.Args) (clause, error) {
	switch f := filter.(type) {
	case nil, FilterAll:
		return clause{}, nil
	case FilterNameLike:
		pattern := "%" + escapeLike(f.Text) + "%"
		return clause{where: fmt.Sprintf("LOWER(t.name) LIKE LOWER(%s) ESCAPE '%c'", args.Add(pattern), likeEscape)}, nil
	case FilterAncestorID:
		link, err := t.ancestor(f.Ancestor)
		if err != nil {
			return clause{}, err
		}
		return clause{where: fmt.Sprintf("t.%s = %s", link.column, args.Add(f.ID))}, nil
	case FilterAncestorName:
		link, err := t.ancestor(f.Ancestor)
		if err != nil {
			return clause{}, err
		}
		return clause{
			join:  fmt.Sprintf("JOIN %s a ON a.id = t.%s", link.table, link.column),
			where: fmt.Sprintf("a.name = %s", args.Add(f.Name)),
		}, nil
	default:
		return clause{}, &pkgrepo.ArgumentError{Param: "filter", Reason: fmt.Sprintf("unsupported filter %T", filter)}
	}
}
