// Package search executes cursor-paginated company listings over the corpus
// store.
package search

import (
	"context"
	"fmt"

	"github.com/mklincoln/factorymap/internal/core/model"
	"github.com/mklincoln/factorymap/internal/store"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Searcher struct {
	store store.Store
}

func New(st store.Store) *Searcher {
	return &Searcher{store: st}
}

// Search returns one page of matches in ascending (name, id) order. The page
// is anchored by the cursor token when one is supplied and still valid for
// this filter state; a stale or foreign cursor is ignored and the listing
// restarts from the first page.
func (s *Searcher) Search(ctx context.Context, f model.FilterState, cursorTok string, pageSize int) (model.ResultPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	fh := filterHash(f)
	dir := model.PageNext
	var key *model.SortKey
	if cursorTok != "" {
		if c, ok := decodeCursor(cursorTok); ok && c.Filter == fh {
			key = &model.SortKey{Name: c.Name, ID: c.ID}
			dir = c.Dir
		}
	}

	// one extra row past the page answers has-more in the travel direction
	// without a second scan
	rows, err := s.store.SearchCompanies(ctx, f, key, dir, pageSize+1)
	if err != nil {
		return model.ResultPage{}, fmt.Errorf("search companies: %w", err)
	}
	total, err := s.store.CountCompanies(ctx, f)
	if err != nil {
		return model.ResultPage{}, fmt.Errorf("count companies: %w", err)
	}

	page := model.ResultPage{TotalCount: total}
	switch dir {
	case model.PagePrev:
		page.HasPrev = len(rows) > pageSize
		if page.HasPrev {
			rows = rows[:pageSize]
		}
		reverse(rows)
		// the anchor record itself sits just past the page
		page.HasNext = key != nil
	default:
		page.HasNext = len(rows) > pageSize
		if page.HasNext {
			rows = rows[:pageSize]
		}
		page.HasPrev = key != nil
	}
	page.Records = rows

	if len(rows) > 0 {
		if page.HasNext {
			last := model.KeyOf(rows[len(rows)-1])
			page.NextCursor = encodeCursor(cursor{Name: last.Name, ID: last.ID, Filter: fh, Dir: model.PageNext})
		}
		if page.HasPrev {
			first := model.KeyOf(rows[0])
			page.PrevCursor = encodeCursor(cursor{Name: first.Name, ID: first.ID, Filter: fh, Dir: model.PagePrev})
		}
	}
	return page, nil
}

func reverse(cs []model.Company) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}
