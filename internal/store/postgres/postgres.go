// Package postgres implements the corpus store over PostgreSQL using goqu for
// query building and pgx for connectivity. The schema (companies, facilities,
// company_capabilities, company_certifications) is owned elsewhere; this is a
// pure read path.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/mklincoln/factorymap/internal/core/model"
)

// Options defines the PostgreSQL connection parameters.
type Options struct {
	Username           string
	Password           string
	Host               string
	Port               int
	Database           string
	SslMode            string
	ConnMaxLifetime    time.Duration
	MaxOpenConnections int
}

type Store struct {
	db      *sql.DB
	builder *goqu.Database
	pool    *pgxpool.Pool
}

func New(ctx context.Context, opts Options) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		opts.Username, opts.Password, opts.Host, opts.Port, opts.Database, opts.SslMode)

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if opts.MaxOpenConnections > 0 {
		cfg.MaxConns = int32(opts.MaxOpenConnections)
	}
	if opts.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = opts.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := db.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{
		db:      db,
		builder: goqu.Dialect("postgres").DB(db),
		pool:    pool,
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// wherePredicates renders a FilterState as SQL predicates against the
// companies table aliased "c". Empty axes contribute nothing, matching the
// "empty set means unconstrained" invariant.
func (s *Store) wherePredicates(f model.FilterState) []goqu.Expression {
	var w []goqu.Expression
	if f.Volume != "" {
		w = append(w, goqu.I("c.production_volume").Eq(string(f.Volume)))
	}
	if f.CertDefault != "" {
		sub := s.builder.From(goqu.T("company_certifications").As("cert")).
			Select(goqu.L("1")).
			Where(
				goqu.I("cert.company_id").Eq(goqu.I("c.id")),
				goqu.I("cert.certification").Eq(string(f.CertDefault)),
			)
		w = append(w, goqu.L("EXISTS ?", sub))
	}
	if len(f.Capabilities) > 0 {
		caps := make([]string, len(f.Capabilities))
		for i, c := range f.Capabilities {
			caps[i] = string(c)
		}
		sub := s.builder.From(goqu.T("company_capabilities").As("cap")).
			Select(goqu.L("1")).
			Where(
				goqu.I("cap.company_id").Eq(goqu.I("c.id")),
				goqu.I("cap.capability").In(caps),
			)
		w = append(w, goqu.L("EXISTS ?", sub))
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		sub := s.builder.From(goqu.T("facilities").As("fs")).
			Select(goqu.L("1")).
			Where(
				goqu.I("fs.company_id").Eq(goqu.I("c.id")),
				goqu.I("fs.state").In(states),
			)
		w = append(w, goqu.L("EXISTS ?", sub))
	}
	return w
}
