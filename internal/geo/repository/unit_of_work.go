package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
	pkgrepo "geoatlas/pkg/repository"
	"geoatlas/pkg/utils/logger"

	"go.uber.org/zap"
)

// UnitOfWorkState is the lifecycle position of a unit of work.
type UnitOfWorkState int

const (
	// StateOpen accepts staged operations and lookups.
	StateOpen UnitOfWorkState = iota
	// StateCommitted is terminal: every staged operation was applied.
	StateCommitted
	// StateRolledBack is terminal: Commit failed and nothing was applied.
	StateRolledBack
	// StateDisposed is terminal: Close ran before Commit and nothing was applied.
	StateDisposed
)

func (s UnitOfWorkState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type opKind int

const (
	opAdd opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opAdd:
		return "add"
	case opUpdate:
		return "update"
	default:
		return "delete"
	}
}

type stagedOp struct {
	op     opKind
	entity domain.Entity
	kind   domain.Kind
	id     int64
}

// storable is implemented by all four entity pointers.
type storable interface {
	domain.Entity
	IsTransient() bool
	AssignID(id int64) error
	ReleaseID(id int64)
}

type assignedID struct {
	entity storable
	id     int64
}

// UnitOfWorkFactory begins units of work against the current database.
type UnitOfWorkFactory struct {
	provider db.Provider
	cache    *recordCache
	log      *logger.Logger
}

// NewUnitOfWorkFactory creates a factory. cacheClient may be nil; when set,
// keys of every entity a committed unit of work touched are invalidated.
func NewUnitOfWorkFactory(provider db.Provider, cacheClient cache.Cache, log *logger.Logger) *UnitOfWorkFactory {
	if log == nil {
		log = logger.NewNop()
	}
	return &UnitOfWorkFactory{
		provider: provider,
		cache:    newRecordCache(cacheClient, CacheTTL{}),
		log:      log,
	}
}

// Begin opens a transaction at repeatable read (or the dialect's equivalent).
// The transaction lives until Commit or Close; callers must defer Close.
func (f *UnitOfWorkFactory) Begin(ctx context.Context) (*UnitOfWork, error) {
	database, err := db.CurrentDatabase(f.provider)
	if err != nil {
		return nil, err
	}
	dialect := database.Dialect()
	tx, err := database.BeginTx(ctx, &db.TxOptions{Isolation: dialect.RepeatableRead()})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgrepo.ErrTransactionFailed, err)
	}
	return &UnitOfWork{
		tx:    tx,
		s:     session{q: tx, dialect: dialect},
		cache: f.cache,
		log:   f.log,
		state: StateOpen,
	}, nil
}

// UnitOfWork stages inserts, updates and deletes and applies them in one
// transaction on Commit. It is owned by a single caller.
type UnitOfWork struct {
	mu sync.Mutex

	tx    db.Transaction
	s     session
	cache *recordCache
	log   *logger.Logger

	state    UnitOfWorkState
	ops      []stagedOp
	touched  []string
	assigned []assignedID
}

// State returns the current lifecycle state.
func (u *UnitOfWork) State() UnitOfWorkState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Pending returns the number of staged operations.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.ops)
}

// Add stages an insert. The store-assigned id is written into a transient
// entity during Commit; a non-zero id is inserted as given.
func (u *UnitOfWork) Add(entity domain.Entity) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateOpen {
		return pkgrepo.ErrUnitOfWorkClosed
	}
	if err := checkEntity(entity); err != nil {
		return err
	}
	u.ops = append(u.ops, stagedOp{op: opAdd, entity: entity, kind: entity.Kind(), id: entity.ID()})
	return nil
}

// Update stages an update by identity. An unknown identity fails at Commit.
func (u *UnitOfWork) Update(entity domain.Entity) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateOpen {
		return pkgrepo.ErrUnitOfWorkClosed
	}
	if err := checkEntity(entity); err != nil {
		return err
	}
	if entity.ID() <= 0 {
		return &domain.ValidationError{Field: "id", Reason: "must be positive to update"}
	}
	u.ops = append(u.ops, stagedOp{op: opUpdate, entity: entity, kind: entity.Kind(), id: entity.ID()})
	return nil
}

// Delete stages a delete by identity. Children go with it through the
// schema's cascading foreign keys. An unknown identity fails at Commit.
func (u *UnitOfWork) Delete(kind domain.Kind, id int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateOpen {
		return pkgrepo.ErrUnitOfWorkClosed
	}
	if _, err := tableFor(kind); err != nil {
		return err
	}
	if id <= 0 {
		return &domain.ValidationError{Field: "id", Reason: "must be positive to delete"}
	}
	u.ops = append(u.ops, stagedOp{op: opDelete, kind: kind, id: id})
	return nil
}

// ContinentByID reads a continent inside the transaction.
func (u *UnitOfWork) ContinentByID(ctx context.Context, id int64) (*domain.Continent, error) {
	rec, err := u.lookup(ctx, continentTable, id)
	return toContinent(rec), err
}

// CountryByID reads a country inside the transaction.
func (u *UnitOfWork) CountryByID(ctx context.Context, id int64) (*domain.Country, error) {
	rec, err := u.lookup(ctx, countryTable, id)
	return toCountry(rec), err
}

// ProvinceByID reads a province inside the transaction.
func (u *UnitOfWork) ProvinceByID(ctx context.Context, id int64) (*domain.Province, error) {
	rec, err := u.lookup(ctx, provinceTable, id)
	return toProvince(rec), err
}

// CityByID reads a city inside the transaction; its country is taken from the row.
func (u *UnitOfWork) CityByID(ctx context.Context, id int64) (*domain.City, error) {
	rec, err := u.lookup(ctx, cityTable, id)
	return toCity(rec), err
}

// lookup reads through the transaction; staged operations are not visible
// until Commit applies them.
func (u *UnitOfWork) lookup(ctx context.Context, t table, id int64) (*entityRecord, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateOpen {
		return nil, pkgrepo.ErrUnitOfWorkClosed
	}
	return t.fetchByID(ctx, u.s, id)
}

// Commit applies the staged operations in order and commits. Any failure,
// including cancellation of ctx, rolls everything back and returns an error
// matching both ErrTransactionFailed and the cause.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateOpen {
		return pkgrepo.ErrUnitOfWorkClosed
	}

	applied := len(u.ops)
	for i, op := range u.ops {
		if err := ctx.Err(); err != nil {
			return u.abort(ctx, err)
		}
		if err := u.apply(ctx, op); err != nil {
			return u.abort(ctx, fmt.Errorf("%s %s #%d: %w", op.op, op.kind, i+1, err))
		}
	}
	if err := ctx.Err(); err != nil {
		return u.abort(ctx, err)
	}
	if err := u.tx.Commit(); err != nil {
		u.state = StateRolledBack
		u.ops = nil
		u.touched = nil
		u.releaseIDs()
		return fmt.Errorf("%w: %w", pkgrepo.ErrTransactionFailed, err)
	}

	u.state = StateCommitted
	u.ops = nil
	u.assigned = nil
	u.log.Debug(ctx, "unit of work committed", zap.Int("operations", applied))
	u.invalidate(context.WithoutCancel(ctx))
	return nil
}

// Close disposes the unit of work, rolling back when it is still open.
// It is safe to call more than once and after Commit.
func (u *UnitOfWork) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateOpen {
		return nil
	}
	u.state = StateDisposed
	discarded := len(u.ops)
	u.ops = nil
	u.touched = nil
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("dispose unit of work: %w", err)
	}
	u.log.Debug(context.Background(), "unit of work disposed", zap.Int("discarded", discarded))
	return nil
}

func (u *UnitOfWork) abort(ctx context.Context, cause error) error {
	u.state = StateRolledBack
	u.ops = nil
	u.touched = nil
	u.releaseIDs()
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.log.Warn(ctx, "rollback failed", zap.Error(err))
	}
	u.log.Debug(ctx, "unit of work rolled back", zap.Error(cause))
	return fmt.Errorf("%w: %w", pkgrepo.ErrTransactionFailed, cause)
}

// releaseIDs makes entities inserted by a rolled-back commit transient again.
func (u *UnitOfWork) releaseIDs() {
	for i := len(u.assigned) - 1; i >= 0; i-- {
		u.assigned[i].entity.ReleaseID(u.assigned[i].id)
	}
	u.assigned = nil
}

func (u *UnitOfWork) invalidate(ctx context.Context) {
	keys := u.touched
	u.touched = nil
	if u.cache == nil || len(keys) == 0 {
		return
	}
	if err := u.cache.invalidate(ctx, keys); err != nil {
		u.log.Warn(ctx, "cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (u *UnitOfWork) touch(kind domain.Kind, ids ...int64) {
	if u.cache == nil {
		return
	}
	for _, id := range ids {
		u.touched = append(u.touched, entityKey(kind, id))
	}
}

func (u *UnitOfWork) apply(ctx context.Context, op stagedOp) error {
	switch op.op {
	case opAdd:
		return u.insert(ctx, op.entity)
	case opUpdate:
		return u.update(ctx, op.entity)
	default:
		return u.remove(ctx, op.kind, op.id)
	}
}

func (u *UnitOfWork) insert(ctx context.Context, entity domain.Entity) error {
	t, parentID, countryID, err := u.foreignKeys(ctx, entity)
	if err != nil {
		return err
	}

	explicitID := entity.ID()
	args := db.NewArgs(u.s.dialect)
	var columns, values []string
	if explicitID != 0 {
		columns = append(columns, "id")
		values = append(values, args.Add(explicitID))
	}
	columns = append(columns, "name")
	values = append(values, args.Add(entity.Name()))
	if t.parentColumn != "" {
		columns = append(columns, t.parentColumn)
		values = append(values, args.Add(nullID(parentID)))
	}
	if t.countryColumn != "" {
		columns = append(columns, t.countryColumn)
		values = append(values, args.Add(nullID(countryID)))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(columns, ", "), strings.Join(values, ", "))

	id, err := u.execInsert(ctx, query, args)
	if err != nil {
		return err
	}
	if explicitID == 0 {
		target := entity.(storable)
		if err := target.AssignID(id); err != nil {
			return err
		}
		u.assigned = append(u.assigned, assignedID{entity: target, id: id})
	} else {
		id = explicitID
	}
	u.touch(t.kind, id)
	return nil
}

func (u *UnitOfWork) execInsert(ctx context.Context, query string, args *db.Args) (int64, error) {
	if u.s.dialect.ReturningID() {
		var id int64
		if err := u.s.q.QueryRow(ctx, query+" RETURNING id", args.Values()...).Scan(&id); err != nil {
			return 0, storeError(err)
		}
		return id, nil
	}
	result, err := u.s.q.Exec(ctx, query, args.Values()...)
	if err != nil {
		return 0, storeError(err)
	}
	return result.LastInsertId()
}

func (u *UnitOfWork) update(ctx context.Context, entity domain.Entity) error {
	t, parentID, countryID, err := u.foreignKeys(ctx, entity)
	if err != nil {
		return err
	}

	args := db.NewArgs(u.s.dialect)
	sets := []string{"name = " + args.Add(entity.Name())}
	if t.parentColumn != "" {
		sets = append(sets, t.parentColumn+" = "+args.Add(nullID(parentID)))
	}
	if t.countryColumn != "" {
		sets = append(sets, t.countryColumn+" = "+args.Add(nullID(countryID)))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", t.name, strings.Join(sets, ", "), args.Add(entity.ID()))
	if err := u.execAffecting(ctx, t, entity.ID(), query, args); err != nil {
		return err
	}
	u.touch(t.kind, entity.ID())

	if t.kind == domain.KindProvince {
		return u.resyncCities(ctx, entity.ID(), parentID)
	}
	return nil
}

// resyncCities copies a province's country onto its cities.
func (u *UnitOfWork) resyncCities(ctx context.Context, provinceID int64, countryID *int64) error {
	if u.cache != nil {
		ids, err := u.selectIDs(ctx, cityTable, "province_id", []int64{provinceID})
		if err != nil {
			return err
		}
		u.touch(domain.KindCity, ids...)
	}
	args := db.NewArgs(u.s.dialect)
	query := fmt.Sprintf("UPDATE cities SET country_id = %s WHERE province_id = %s", args.Add(nullID(countryID)), args.Add(provinceID))
	if _, err := u.s.q.Exec(ctx, query, args.Values()...); err != nil {
		return storeError(err)
	}
	return nil
}

func (u *UnitOfWork) remove(ctx context.Context, kind domain.Kind, id int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if u.cache != nil {
		if err := u.touchCascade(ctx, kind, id); err != nil {
			return err
		}
	}
	args := db.NewArgs(u.s.dialect)
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", t.name, args.Add(id))
	return u.execAffecting(ctx, t, id, query, args)
}

func (u *UnitOfWork) execAffecting(ctx context.Context, t table, id int64, query string, args *db.Args) error {
	result, err := u.s.q.Exec(ctx, query, args.Values()...)
	if err != nil {
		return storeError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %d", pkgrepo.ErrNotFound, t.kind, id)
	}
	return nil
}

// touchCascade records cache keys of the entity and every descendant the
// schema will delete with it.
func (u *UnitOfWork) touchCascade(ctx context.Context, kind domain.Kind, id int64) error {
	ids := map[domain.Kind][]int64{kind: {id}}
	var err error
	if kind == domain.KindContinent {
		if ids[domain.KindCountry], err = u.selectIDs(ctx, countryTable, "continent_id", ids[domain.KindContinent]); err != nil {
			return err
		}
	}
	if kind <= domain.KindCountry {
		if ids[domain.KindProvince], err = u.selectIDs(ctx, provinceTable, "country_id", ids[domain.KindCountry]); err != nil {
			return err
		}
	}
	if kind <= domain.KindProvince {
		cities, err := u.selectIDs(ctx, cityTable, "province_id", ids[domain.KindProvince])
		if err != nil {
			return err
		}
		if kind <= domain.KindCountry {
			direct, err := u.selectIDs(ctx, cityTable, "country_id", ids[domain.KindCountry])
			if err != nil {
				return err
			}
			cities = append(cities, direct...)
		}
		ids[domain.KindCity] = cities
	}
	for k, list := range ids {
		u.touch(k, list...)
	}
	return nil
}

func (u *UnitOfWork) selectIDs(ctx context.Context, t table, column string, parents []int64) ([]int64, error) {
	if len(parents) == 0 {
		return nil, nil
	}
	args := db.NewArgs(u.s.dialect)
	placeholders := make([]string, 0, len(parents))
	for _, id := range parents {
		placeholders = append(placeholders, args.Add(id))
	}
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s IN (%s)", t.name, column, strings.Join(placeholders, ", "))
	rows, err := u.s.q.Query(ctx, query, args.Values()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// foreignKeys returns the table and the foreign keys to store for entity.
// For cities the province is read inside the transaction and its country
// copied onto the city.
func (u *UnitOfWork) foreignKeys(ctx context.Context, entity domain.Entity) (table, *int64, *int64, error) {
	switch e := entity.(type) {
	case *domain.Continent:
		return continentTable, nil, nil, nil
	case *domain.Country:
		if p := e.Continent(); p != nil && p.IsTransient() {
			return table{}, nil, nil, unstoredParent(e, p)
		}
		return countryTable, e.ContinentID(), nil, nil
	case *domain.Province:
		if p := e.Country(); p != nil && p.IsTransient() {
			return table{}, nil, nil, unstoredParent(e, p)
		}
		return provinceTable, e.CountryID(), nil, nil
	case *domain.City:
		if err := u.syncCityCountry(ctx, e); err != nil {
			return table{}, nil, nil, err
		}
		return cityTable, e.ProvinceID(), e.CountryID(), nil
	default:
		return table{}, nil, nil, &pkgrepo.ArgumentError{Param: "entity", Reason: fmt.Sprintf("unsupported entity %T", entity)}
	}
}

func (u *UnitOfWork) syncCityCountry(ctx context.Context, city *domain.City) error {
	if p := city.Province(); p != nil && p.IsTransient() {
		return unstoredParent(city, p)
	}
	provinceID := city.ProvinceID()
	if provinceID == nil {
		if c := city.Country(); c != nil && c.IsTransient() {
			return unstoredParent(city, c)
		}
		return nil
	}
	rec, err := provinceTable.fetchByID(ctx, u.s, *provinceID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: province %d does not exist", pkgrepo.ErrConflict, *provinceID)
	}
	city.SetCountryAndProvince(toProvince(rec))
	return nil
}

func unstoredParent(child, parent domain.Entity) error {
	return &pkgrepo.ArgumentError{
		Param:  "entity",
		Reason: fmt.Sprintf("%s %q references %s %q that is not stored; add it earlier in the same unit of work", child.Kind(), child.Name(), parent.Kind(), parent.Name()),
	}
}

// checkEntity rejects nil entities and names that break the domain rules.
func checkEntity(entity domain.Entity) error {
	switch e := entity.(type) {
	case *domain.Continent:
		if e == nil {
			return &pkgrepo.ArgumentError{Param: "entity", Reason: "nil continent"}
		}
	case *domain.Country:
		if e == nil {
			return &pkgrepo.ArgumentError{Param: "entity", Reason: "nil country"}
		}
	case *domain.Province:
		if e == nil {
			return &pkgrepo.ArgumentError{Param: "entity", Reason: "nil province"}
		}
	case *domain.City:
		if e == nil {
			return &pkgrepo.ArgumentError{Param: "entity", Reason: "nil city"}
		}
	default:
		return &pkgrepo.ArgumentError{Param: "entity", Reason: fmt.Sprintf("unsupported entity %T", entity)}
	}
	if entity.ID() < 0 {
		return &domain.ValidationError{Field: "id", Reason: "must not be negative"}
	}
	_, err := domain.ValidateName(entity.Name())
	return err
}

// storeError marks constraint violations as ErrConflict and passes the rest through.
func storeError(err error) error {
	if db.IsConstraintViolation(err) {
		return fmt.Errorf("%w: %w", pkgrepo.ErrConflict, err)
	}
	return err
}
