package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/core/observability"
)

const companiesTable = "companies"

type pgCompany struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Slug   string `db:"slug"`
	Volume string `db:"production_volume"`
}

type pgCompanyValue struct {
	CompanyID int64  `db:"company_id"`
	Value     string `db:"value"`
}

type pgFacility struct {
	ID        int64    `db:"id"`
	CompanyID int64    `db:"company_id"`
	State     string   `db:"state"`
	Lng       *float64 `db:"lng"`
	Lat       *float64 `db:"lat"`
}

type pgFacetRow struct {
	Value string `db:"value"`
	N     int    `db:"n"`
}

func (s *Store) SearchCompanies(ctx context.Context, f model.FilterState, key *model.SortKey, dir model.PageDirection, limit int) ([]model.Company, error) {
	start := time.Now()
	out, err := s.searchCompanies(ctx, f, key, dir, limit)
	observability.ObserveStoreOp("search_companies", err, time.Since(start).Seconds())
	return out, err
}

func (s *Store) searchCompanies(ctx context.Context, f model.FilterState, key *model.SortKey, dir model.PageDirection, limit int) ([]model.Company, error) {
	ds := s.builder.From(goqu.T(companiesTable).As("c")).
		Select(
			goqu.I("c.id").As("id"),
			goqu.I("c.name").As("name"),
			goqu.I("c.slug").As("slug"),
			goqu.COALESCE(goqu.I("c.production_volume"), "").As("production_volume"),
		).
		Where(s.wherePredicates(f)...)

	// keyset pagination over (lower(name), id); the row comparison keeps the
	// order total even when names collide
	if key != nil {
		if dir == model.PagePrev {
			ds = ds.Where(goqu.L("(LOWER(c.name), c.id) < (?, ?)", key.Name, key.ID))
		} else {
			ds = ds.Where(goqu.L("(LOWER(c.name), c.id) > (?, ?)", key.Name, key.ID))
		}
	}
	if dir == model.PagePrev {
		ds = ds.Order(goqu.L("LOWER(c.name)").Desc(), goqu.I("c.id").Desc())
	} else {
		ds = ds.Order(goqu.L("LOWER(c.name)").Asc(), goqu.I("c.id").Asc())
	}
	if limit < 0 {
		limit = 0
	}
	ds = ds.Limit(uint(limit))

	var rows []pgCompany
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not query companies: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(rows))
	companies := make([]model.Company, len(rows))
	byID := make(map[int64]*model.Company, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		companies[i] = model.Company{
			ID:     r.ID,
			Name:   r.Name,
			Slug:   r.Slug,
			Volume: model.VolumeTier(r.Volume),
		}
		byID[r.ID] = &companies[i]
	}

	if err := s.attachRelated(ctx, ids, byID); err != nil {
		return nil, err
	}
	return companies, nil
}

func (s *Store) attachRelated(ctx context.Context, ids []int64, byID map[int64]*model.Company) error {
	var caps []pgCompanyValue
	err := s.builder.From("company_capabilities").
		Select(goqu.I("company_id"), goqu.I("capability").As("value")).
		Where(goqu.I("company_id").In(ids)).
		Order(goqu.I("company_id").Asc(), goqu.I("capability").Asc()).
		Executor().ScanStructsContext(ctx, &caps)
	if err != nil {
		return fmt.Errorf("could not query capabilities: %w", err)
	}
	for _, r := range caps {
		if c := byID[r.CompanyID]; c != nil {
			c.Capabilities = append(c.Capabilities, model.CapabilitySlug(r.Value))
		}
	}

	var certs []pgCompanyValue
	err = s.builder.From("company_certifications").
		Select(goqu.I("company_id"), goqu.I("certification").As("value")).
		Where(goqu.I("company_id").In(ids)).
		Order(goqu.I("company_id").Asc(), goqu.I("certification").Asc()).
		Executor().ScanStructsContext(ctx, &certs)
	if err != nil {
		return fmt.Errorf("could not query certifications: %w", err)
	}
	for _, r := range certs {
		if c := byID[r.CompanyID]; c != nil {
			c.Certifications = append(c.Certifications, model.CertSlug(r.Value))
		}
	}

	var facs []pgFacility
	err = s.builder.From("facilities").
		Select(goqu.I("id"), goqu.I("company_id"), goqu.I("state"), goqu.I("lng"), goqu.I("lat")).
		Where(goqu.I("company_id").In(ids)).
		Order(goqu.I("company_id").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &facs)
	if err != nil {
		return fmt.Errorf("could not query facilities: %w", err)
	}
	for _, r := range facs {
		if c := byID[r.CompanyID]; c != nil {
			c.Facilities = append(c.Facilities, model.Facility{
				ID:    r.ID,
				State: model.StateCode(r.State),
				Lng:   r.Lng,
				Lat:   r.Lat,
			})
		}
	}
	return nil
}

func (s *Store) CountCompanies(ctx context.Context, f model.FilterState) (int, error) {
	start := time.Now()
	var n int64
	_, err := s.builder.From(goqu.T(companiesTable).As("c")).
		Select(goqu.COUNT(goqu.Star())).
		Where(s.wherePredicates(f)...).
		Executor().ScanValContext(ctx, &n)
	observability.ObserveStoreOp("count_companies", err, time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("could not count companies: %w", err)
	}
	return int(n), nil
}

func (s *Store) FacetCounts(ctx context.Context, f model.FilterState, axis model.FacetAxis) (map[string]int, error) {
	start := time.Now()
	out, err := s.facetCounts(ctx, f, axis)
	observability.ObserveStoreOp("facet_counts", err, time.Since(start).Seconds())
	return out, err
}

func (s *Store) facetCounts(ctx context.Context, f model.FilterState, axis model.FacetAxis) (map[string]int, error) {
	var ds *goqu.SelectDataset
	switch axis {
	case model.AxisState:
		ds = s.builder.From(goqu.T("facilities").As("fac")).
			Join(goqu.T(companiesTable).As("c"), goqu.On(goqu.I("fac.company_id").Eq(goqu.I("c.id")))).
			Select(goqu.I("fac.state").As("value"), goqu.L("COUNT(DISTINCT c.id)").As("n")).
			Where(s.wherePredicates(f)...).
			Where(goqu.I("fac.state").Neq("")).
			GroupBy(goqu.I("fac.state"))
	case model.AxisCapability:
		ds = s.builder.From(goqu.T("company_capabilities").As("cap")).
			Join(goqu.T(companiesTable).As("c"), goqu.On(goqu.I("cap.company_id").Eq(goqu.I("c.id")))).
			Select(goqu.I("cap.capability").As("value"), goqu.L("COUNT(DISTINCT c.id)").As("n")).
			Where(s.wherePredicates(f)...).
			GroupBy(goqu.I("cap.capability"))
	case model.AxisVolume:
		ds = s.builder.From(goqu.T(companiesTable).As("c")).
			Select(goqu.I("c.production_volume").As("value"), goqu.COUNT(goqu.Star()).As("n")).
			Where(s.wherePredicates(f)...).
			Where(goqu.I("c.production_volume").IsNotNull()).
			GroupBy(goqu.I("c.production_volume"))
	default:
		return nil, fmt.Errorf("unknown facet axis %q", axis)
	}

	var rows []pgFacetRow
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not count facet axis %s: %w", axis, err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Value] = r.N
	}
	return out, nil
}
