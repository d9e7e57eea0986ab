package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/core/observability"
)

type pgMapRow struct {
	FacilityID  int64   `db:"facility_id"`
	CompanyID   int64   `db:"company_id"`
	CompanyName string  `db:"company_name"`
	CompanySlug string  `db:"company_slug"`
	State       string  `db:"state"`
	Lng         float64 `db:"lng"`
	Lat         float64 `db:"lat"`
}

func (s *Store) MapFacilities(ctx context.Context, f model.FilterState, bbox model.BBox, limit int) ([]model.MapFacility, int, error) {
	start := time.Now()
	rows, total, err := s.mapFacilities(ctx, f, bbox, limit)
	observability.ObserveStoreOp("map_facilities", err, time.Since(start).Seconds())
	return rows, total, err
}

func (s *Store) mapFacilities(ctx context.Context, f model.FilterState, bbox model.BBox, limit int) ([]model.MapFacility, int, error) {
	base := s.builder.From(goqu.T("facilities").As("fac")).
		Join(goqu.T(companiesTable).As("c"), goqu.On(goqu.I("fac.company_id").Eq(goqu.I("c.id")))).
		Where(s.wherePredicates(f)...).
		// rows without geometry or identity never reach the map
		Where(
			goqu.I("fac.lng").IsNotNull(),
			goqu.I("fac.lat").IsNotNull(),
			goqu.I("c.name").Neq(""),
			goqu.I("fac.lng").Gte(bbox.MinLng),
			goqu.I("fac.lng").Lte(bbox.MaxLng),
			goqu.I("fac.lat").Gte(bbox.MinLat),
			goqu.I("fac.lat").Lte(bbox.MaxLat),
		)

	var total int64
	_, err := base.Select(goqu.COUNT(goqu.Star())).Executor().ScanValContext(ctx, &total)
	if err != nil {
		return nil, 0, fmt.Errorf("could not count map facilities: %w", err)
	}

	if limit < 0 {
		limit = 0
	}
	var rows []pgMapRow
	err = base.Select(
		goqu.I("fac.id").As("facility_id"),
		goqu.I("fac.company_id").As("company_id"),
		goqu.I("c.name").As("company_name"),
		goqu.I("c.slug").As("company_slug"),
		goqu.I("fac.state").As("state"),
		goqu.I("fac.lng").As("lng"),
		goqu.I("fac.lat").As("lat"),
	).
		// same (name, id) order as listings, so the cap truncates
		// deterministically
		Order(goqu.L("LOWER(c.name)").Asc(), goqu.I("c.id").Asc(), goqu.I("fac.id").Asc()).
		Limit(uint(limit)).
		Executor().ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, 0, fmt.Errorf("could not query map facilities: %w", err)
	}

	out := make([]model.MapFacility, len(rows))
	for i, r := range rows {
		out[i] = model.MapFacility{
			FacilityID:  r.FacilityID,
			CompanyID:   r.CompanyID,
			CompanyName: r.CompanyName,
			CompanySlug: r.CompanySlug,
			State:       model.StateCode(r.State),
			Lng:         r.Lng,
			Lat:         r.Lat,
		}
	}
	return out, int(total), nil
}
