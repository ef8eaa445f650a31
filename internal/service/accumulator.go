package service

import (
	"sort"

	"pdf-extract-api/internal/domain"
)

// ResultAccumulator merges per-group and per-page results into a running,
// page-number-sorted result set. Re-ingesting a page number replaces the
// earlier entry, so duplicate or out-of-order delivery is idempotent. The
// set grows monotonically and never shrinks.
type ResultAccumulator struct {
	byPage map[int]domain.ResultPage
}

// NewResultAccumulator creates an empty accumulator
func NewResultAccumulator() *ResultAccumulator {
	return &ResultAccumulator{
		byPage: make(map[int]domain.ResultPage),
	}
}

// Ingest merges newPages into the running set and returns a snapshot of the
// whole accumulated result, sorted ascending by page number.
func (a *ResultAccumulator) Ingest(newPages []domain.ResultPage) domain.AccumulatedResult {
	for _, p := range newPages {
		a.byPage[p.PageNumber] = p
	}
	return a.Snapshot()
}

// Snapshot returns the current accumulated result, sorted ascending by page
// number, without modifying the set.
func (a *ResultAccumulator) Snapshot() domain.AccumulatedResult {
	pages := make([]domain.ResultPage, 0, len(a.byPage))
	for _, p := range a.byPage {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].PageNumber < pages[j].PageNumber
	})
	return domain.AccumulatedResult{Pages: pages}
}

// Len reports the number of distinct pages accumulated so far.
func (a *ResultAccumulator) Len() int {
	return len(a.byPage)
}
