package repository

import (
	"context"
	"fmt"

	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
	pkgrepo "geoatlas/pkg/repository"
)

const orderByName = " ORDER BY t.name ASC, t.id ASC"

// session is a querier together with the dialect it speaks.
type session struct {
	q       db.Querier
	dialect db.Dialect
}

func (t table) fetchByID(ctx context.Context, s session, id int64) (*entityRecord, error) {
	args := db.NewArgs(s.dialect)
	query := fmt.Sprintf("SELECT %s FROM %s t WHERE t.id = %s", t.columns(), t.name, args.Add(id))
	rec, err := scanRecord(s.q.QueryRow(ctx, query, args.Values()...))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s by id failed: %w", t.kind, err)
	}
	return rec, nil
}

// fetchByName returns the single row with the exact name. Names are indexed
// but not unique, so a second match is reported as ErrAmbiguousName.
func (t table) fetchByName(ctx context.Context, s session, name string) (*entityRecord, error) {
	args := db.NewArgs(s.dialect)
	query := fmt.Sprintf("SELECT %s FROM %s t WHERE t.name = %s ORDER BY t.id ASC LIMIT 2", t.columns(), t.name, args.Add(name))
	records, err := t.query(ctx, s, query, args)
	if err != nil {
		return nil, fmt.Errorf("get %s by name failed: %w", t.kind, err)
	}
	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return records[0], nil
	default:
		return nil, fmt.Errorf("%w: %s %q", pkgrepo.ErrAmbiguousName, t.kind, name)
	}
}

// list returns matching rows ordered by name then id. A nil page returns every row.
func (t table) list(ctx context.Context, s session, filter Filter, page *pkgrepo.Page) ([]*entityRecord, error) {
	args := db.NewArgs(s.dialect)
	c, err := t.translate(filter, args)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s t%s%s", t.columns(), t.name, c.sql(), orderByName)
	if page != nil {
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", args.Add(page.Limit()), args.Add(page.Offset()))
	}
	records, err := t.query(ctx, s, query, args)
	if err != nil {
		return nil, fmt.Errorf("list %s failed: %w", t.kind, err)
	}
	return records, nil
}

func (t table) count(ctx context.Context, s session, filter Filter) (int64, error) {
	args := db.NewArgs(s.dialect)
	c, err := t.translate(filter, args)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s t%s", t.name, c.sql())
	var total int64
	if err := s.q.QueryRow(ctx, query, args.Values()...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s failed: %w", t.kind, err)
	}
	return total, nil
}

func (t table) query(ctx context.Context, s session, query string, args *db.Args) ([]*entityRecord, error) {
	rows, err := s.q.Query(ctx, query, args.Values()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*entityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// queryCore implements the lookups every query repository shares.
type queryCore struct {
	provider db.Provider
	table    table
	cache    *recordCache
}

func newQueryCore(provider db.Provider, t table, cache *recordCache) queryCore {
	return queryCore{provider: provider, table: t, cache: cache}
}

func (q *queryCore) session() (session, error) {
	database, err := db.CurrentDatabase(q.provider)
	if err != nil {
		return session{}, err
	}
	return session{q: database, dialect: database.Dialect()}, nil
}

func (q *queryCore) getByID(ctx context.Context, id int64) (*entityRecord, error) {
	s, err := q.session()
	if err != nil {
		return nil, err
	}
	return q.cache.get(ctx, q.table.kind, id, func(ctx context.Context) (*entityRecord, error) {
		return q.table.fetchByID(ctx, s, id)
	})
}

func (q *queryCore) getByName(ctx context.Context, name string) (*entityRecord, error) {
	s, err := q.session()
	if err != nil {
		return nil, err
	}
	return q.table.fetchByName(ctx, s, name)
}

func (q *queryCore) listRefs(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]domain.NamedRef, error) {
	records, err := q.listPage(ctx, filter, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.NamedRef, 0, len(records))
	for _, rec := range records {
		refs = append(refs, domain.NamedRef{ID: rec.ID, Name: rec.Name})
	}
	return refs, nil
}

func (q *queryCore) listNames(ctx context.Context, name string, pageNumber, pageSize int) ([]string, error) {
	records, err := q.listPage(ctx, FilterNameLike{Text: name}, pageNumber, pageSize)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	return names, nil
}

func (q *queryCore) listPage(ctx context.Context, filter Filter, pageNumber, pageSize int) ([]*entityRecord, error) {
	page, err := pkgrepo.NewPage(pageNumber, pageSize)
	if err != nil {
		return nil, err
	}
	s, err := q.session()
	if err != nil {
		return nil, err
	}
	return q.table.list(ctx, s, filter, &page)
}

// children returns every row under the given ancestor, unpaged.
func (q *queryCore) children(ctx context.Context, ancestor domain.Kind, id int64) ([]*entityRecord, error) {
	s, err := q.session()
	if err != nil {
		return nil, err
	}
	return q.table.list(ctx, s, FilterAncestorID{Ancestor: ancestor, ID: id}, nil)
}

func (q *queryCore) count(ctx context.Context, filter Filter) (int64, error) {
	s, err := q.session()
	if err != nil {
		return 0, err
	}
	return q.table.count(ctx, s, filter)
}
