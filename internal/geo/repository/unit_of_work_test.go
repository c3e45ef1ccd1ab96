package repository

import (
	"context"
	"errors"
	"testing"

	"geoatlas/internal/geo/domain"
	pkgrepo "geoatlas/pkg/repository"
)

func TestSeedAssignsIDsAndDenormalizes(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)

	for _, e := range []domain.Entity{tree.northAmerica, tree.canada, tree.ontario, tree.toronto, tree.ottawa} {
		if e.ID() <= 0 {
			t.Fatalf("%s %s has no id after commit", e.Kind(), e.Name())
		}
	}
	city, err := f.cities.GetByID(context.Background(), tree.toronto.ID())
	if err != nil || city == nil {
		t.Fatalf("get failed: %v", err)
	}
	if *city.ProvinceID() != tree.ontario.ID() || *city.CountryID() != tree.canada.ID() {
		t.Fatalf("stored references wrong: province %v country %v", city.ProvinceID(), city.CountryID())
	}
}

func TestCascadeDeleteProvince(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	f.commit(t, func(u *UnitOfWork) {
		if err := u.Delete(domain.KindProvince, tree.ontario.ID()); err != nil {
			t.Fatalf("stage delete failed: %v", err)
		}
	})

	n, err := f.cities.GetTotalCountOfCitiesByProvinceID(ctx, tree.ontario.ID())
	if err != nil || n != 0 {
		t.Fatalf("expected no cities left, got %d (%v)", n, err)
	}
	if city, _ := f.cities.GetByID(ctx, tree.toronto.ID()); city != nil {
		t.Fatalf("city should be gone")
	}
}

func TestCascadeDeleteContinent(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	f.commit(t, func(u *UnitOfWork) {
		if err := u.Delete(domain.KindContinent, tree.northAmerica.ID()); err != nil {
			t.Fatalf("stage delete failed: %v", err)
		}
	})
	for name, count := range map[string]func(context.Context) (int64, error){
		"countries": f.countries.GetTotalCount,
		"provinces": f.provinces.GetTotalCount,
		"cities":    f.cities.GetTotalCount,
	} {
		n, err := count(ctx)
		if err != nil || n != 0 {
			t.Fatalf("expected no %s, got %d (%v)", name, n, err)
		}
	}
}

func TestCommitIsAtomic(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()

	added := mustCity(t, "Hamilton")
	added.SetCountryAndProvince(tree.ontario)
	if err := u.Add(added); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	ghost := domain.RestoreCity(987654, "Ghost", nil, nil)
	if err := u.Update(ghost); err != nil {
		t.Fatalf("stage update failed: %v", err)
	}

	err = u.Commit(ctx)
	if !errors.Is(err, pkgrepo.ErrTransactionFailed) || !errors.Is(err, pkgrepo.ErrNotFound) {
		t.Fatalf("expected transaction failure caused by not found, got %v", err)
	}
	if u.State() != StateRolledBack {
		t.Fatalf("expected rolled back state, got %s", u.State())
	}

	found, err := f.cities.GetByName(ctx, "Hamilton")
	if err != nil || found != nil {
		t.Fatalf("add must not survive a failed commit, got %v (%v)", found, err)
	}
	if err := u.Commit(ctx); !errors.Is(err, pkgrepo.ErrUnitOfWorkClosed) {
		t.Fatalf("commit after failure should report closed, got %v", err)
	}
}

func TestFailedCommitReleasesAssignedIDs(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	atlantis := mustContinent(t, "Atlantis")
	lemuria := mustCountry(t, "Lemuria")
	lemuria.SetContinent(atlantis)

	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()
	if err := u.Add(atlantis); err != nil {
		t.Fatalf("add continent failed: %v", err)
	}
	if err := u.Add(lemuria); err != nil {
		t.Fatalf("add country failed: %v", err)
	}
	if err := u.Update(domain.RestoreContinent(999, "Mu")); err != nil {
		t.Fatalf("stage update failed: %v", err)
	}

	err = u.Commit(ctx)
	if !errors.Is(err, pkgrepo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !atlantis.IsTransient() || !lemuria.IsTransient() {
		t.Fatalf("expected transient entities after rollback, got %d/%d", atlantis.ID(), lemuria.ID())
	}

	// the same entities commit cleanly in a fresh unit of work
	f.commit(t, func(u *UnitOfWork) {
		if err := u.Add(atlantis); err != nil {
			t.Fatalf("re-add continent failed: %v", err)
		}
		if err := u.Add(lemuria); err != nil {
			t.Fatalf("re-add country failed: %v", err)
		}
	})
	if atlantis.IsTransient() || lemuria.ContinentID() == nil || *lemuria.ContinentID() != atlantis.ID() {
		t.Fatalf("expected stored ids after retry, got %d/%v", atlantis.ID(), lemuria.ContinentID())
	}
	stored, err := f.continents.GetByID(ctx, atlantis.ID())
	if err != nil || stored == nil || stored.Name() != "Atlantis" {
		t.Fatalf("expected Atlantis stored, got %v (%v)", stored, err)
	}
}

func TestDisposeWithoutCommitRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := u.Delete(domain.KindCity, tree.toronto.ID()); err != nil {
		t.Fatalf("stage delete failed: %v", err)
	}
	if err := u.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := u.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if u.State() != StateDisposed {
		t.Fatalf("expected disposed, got %s", u.State())
	}

	city, err := f.cities.GetByID(ctx, tree.toronto.ID())
	if err != nil || city == nil || city.Name() != "Toronto" {
		t.Fatalf("city should be unchanged, got %v (%v)", city, err)
	}
}

func TestUseAfterCommit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()
	if err := u.Add(mustContinent(t, "Europe")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := u.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if u.State() != StateCommitted {
		t.Fatalf("expected committed, got %s", u.State())
	}

	if err := u.Add(mustContinent(t, "Asia")); !errors.Is(err, pkgrepo.ErrUnitOfWorkClosed) {
		t.Fatalf("add after commit should fail, got %v", err)
	}
	if err := u.Delete(domain.KindContinent, 1); !errors.Is(err, pkgrepo.ErrUnitOfWorkClosed) {
		t.Fatalf("delete after commit should fail, got %v", err)
	}
	if _, err := u.ContinentByID(ctx, 1); !errors.Is(err, pkgrepo.ErrUnitOfWorkClosed) {
		t.Fatalf("lookup after commit should fail, got %v", err)
	}
	if err := u.Commit(ctx); !errors.Is(err, pkgrepo.ErrUnitOfWorkClosed) {
		t.Fatalf("second commit should fail, got %v", err)
	}
	if err := u.Close(); err != nil {
		t.Fatalf("close after commit should be a no-op: %v", err)
	}
}

func TestStagingValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()

	if err := u.Update(mustCity(t, "Transient")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("update of transient entity should fail validation, got %v", err)
	}
	if err := u.Add(domain.RestoreCity(0, "", nil, nil)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty name should fail validation, got %v", err)
	}
	var nilCity *domain.City
	if err := u.Add(nilCity); !errors.Is(err, pkgrepo.ErrInvalidArgument) {
		t.Fatalf("nil entity should be rejected, got %v", err)
	}
	if err := u.Delete(domain.KindCity, 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("delete of id 0 should fail validation, got %v", err)
	}
	if err := u.Delete(domain.Kind(42), 1); !errors.Is(err, pkgrepo.ErrInvalidArgument) {
		t.Fatalf("unknown kind should be rejected, got %v", err)
	}
	if u.Pending() != 0 {
		t.Fatalf("rejected operations must not be staged, got %d", u.Pending())
	}
}

func TestCancelledCommitRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	u, err := f.uow.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()
	if err := u.Add(mustContinent(t, "Europe")); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = u.Commit(ctx)
	if !errors.Is(err, context.Canceled) || !errors.Is(err, pkgrepo.ErrTransactionFailed) {
		t.Fatalf("expected cancelled transaction failure, got %v", err)
	}
	n, err := f.continents.GetTotalCount(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("cancelled commit must not write, got %d (%v)", n, err)
	}
}

func TestUpdateMovesProvinceAndResyncsCities(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	usa := mustCountry(t, "United States")
	f.commit(t, func(u *UnitOfWork) {
		if err := u.Add(usa); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	})

	f.commit(t, func(u *UnitOfWork) {
		province, err := u.ProvinceByID(ctx, tree.ontario.ID())
		if err != nil || province == nil {
			t.Fatalf("lookup failed: %v", err)
		}
		country, err := u.CountryByID(ctx, usa.ID())
		if err != nil || country == nil {
			t.Fatalf("lookup failed: %v", err)
		}
		province.SetCountry(country)
		if err := u.Update(province); err != nil {
			t.Fatalf("stage update failed: %v", err)
		}
	})

	n, err := f.cities.GetTotalCountOfCitiesByCountryID(ctx, usa.ID())
	if err != nil || n != 2 {
		t.Fatalf("cities should follow their province, got %d (%v)", n, err)
	}
	n, err = f.cities.GetTotalCountOfCitiesByCountryName(ctx, "Canada")
	if err != nil || n != 0 {
		t.Fatalf("no city should remain in Canada, got %d (%v)", n, err)
	}
}

func TestUpdateCityResolvesProvinceCountry(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	f.commit(t, func(u *UnitOfWork) {
		city, err := u.CityByID(ctx, tree.toronto.ID())
		if err != nil || city == nil {
			t.Fatalf("lookup failed: %v", err)
		}
		// Province set without its country: the store fills it in.
		city.SetProvince(domain.RestoreProvince(tree.ontario.ID(), "Ontario", nil))
		city.SetCountry(nil)
		if err := city.Rename("Toronto City"); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
		if err := u.Update(city); err != nil {
			t.Fatalf("stage update failed: %v", err)
		}
	})

	city, err := f.cities.GetByID(ctx, tree.toronto.ID())
	if err != nil || city == nil {
		t.Fatalf("get failed: %v", err)
	}
	if city.Name() != "Toronto City" || city.CountryID() == nil || *city.CountryID() != tree.canada.ID() {
		t.Fatalf("unexpected city %s country %v", city.Name(), city.CountryID())
	}
}

func TestLastStagedUpdateWins(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	f.commit(t, func(u *UnitOfWork) {
		first := domain.RestoreContinent(tree.northAmerica.ID(), "First")
		second := domain.RestoreContinent(tree.northAmerica.ID(), "Second")
		if err := u.Update(first); err != nil {
			t.Fatalf("stage failed: %v", err)
		}
		if err := u.Update(second); err != nil {
			t.Fatalf("stage failed: %v", err)
		}
	})
	continent, err := f.continents.GetByID(ctx, tree.northAmerica.ID())
	if err != nil || continent.Name() != "Second" {
		t.Fatalf("expected last write to win, got %v (%v)", continent, err)
	}
}

func TestConstraintViolationsAreConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()
	missingContinent := int64(999)
	if err := u.Add(domain.RestoreCountry(0, "Nowhere", &missingContinent)); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	err = u.Commit(ctx)
	if !errors.Is(err, pkgrepo.ErrConflict) || !errors.Is(err, pkgrepo.ErrTransactionFailed) {
		t.Fatalf("expected conflict, got %v", err)
	}

	u2, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u2.Close()
	missingProvince := int64(555)
	if err := u2.Add(domain.RestoreCity(0, "Lost", &missingProvince, nil)); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	if err := u2.Commit(ctx); !errors.Is(err, pkgrepo.ErrConflict) {
		t.Fatalf("expected conflict for missing province, got %v", err)
	}
}

func TestAddWithUnstoredParentFails(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()

	country := mustCountry(t, "Canada")
	province := mustProvince(t, "Ontario")
	province.SetCountry(country)
	// The country is never added, so the province cannot be stored.
	if err := u.Add(province); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	if err := u.Commit(ctx); !errors.Is(err, pkgrepo.ErrInvalidArgument) {
		t.Fatalf("expected unstored parent error, got %v", err)
	}
}

func TestLookupsSeeCommittedState(t *testing.T) {
	f := newFixture(t, nil)
	tree := seedCanada(t, f)
	ctx := context.Background()

	u, err := f.uow.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer u.Close()

	if err := u.Delete(domain.KindCity, tree.ottawa.ID()); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	city, err := u.CityByID(ctx, tree.ottawa.ID())
	if err != nil || city == nil {
		t.Fatalf("staged delete is not applied before commit, got %v (%v)", city, err)
	}
	missing, err := u.ContinentByID(ctx, 31337)
	if err != nil || missing != nil {
		t.Fatalf("expected absent continent, got %v (%v)", missing, err)
	}
}

func TestExplicitIDInsert(t *testing.T) {
	f := newFixture(t, nil)
	europe, err := domain.NewContinent(77, "Europe")
	if err != nil {
		t.Fatalf("new continent failed: %v", err)
	}
	f.commit(t, func(u *UnitOfWork) {
		if err := u.Add(europe); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	})
	got, err := f.continents.GetByID(context.Background(), 77)
	if err != nil || got == nil || got.Name() != "Europe" {
		t.Fatalf("expected Europe at id 77, got %v (%v)", got, err)
	}
}
