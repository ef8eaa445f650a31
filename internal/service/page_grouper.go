package service

import (
	"fmt"

	"pdf-extract-api/internal/domain"
)

// DefaultGroupSize is the number of pages processed per inference call in
// field mode. The final group of a document may be shorter.
const DefaultGroupSize = 10

// PageGrouper computes the ordered sequence of page groups for a document.
// It is pure logic: no side effects, same inputs always produce the same
// output.
type PageGrouper struct{}

// NewPageGrouper creates a new page grouper
func NewPageGrouper() *PageGrouper {
	return &PageGrouper{}
}

// Plan returns the ordered groups covering pages 1..totalPages with no gaps
// or overlaps. Groups are groupSize pages each except possibly the last.
func (p *PageGrouper) Plan(totalPages, groupSize int) ([]domain.PageGroup, error) {
	if totalPages < 1 {
		return nil, fmt.Errorf("%w: totalPages must be >= 1, got %d", domain.ErrInvalidGrouping, totalPages)
	}
	if groupSize < 1 {
		return nil, fmt.Errorf("%w: groupSize must be >= 1, got %d", domain.ErrInvalidGrouping, groupSize)
	}

	groupCount := (totalPages + groupSize - 1) / groupSize
	groups := make([]domain.PageGroup, 0, groupCount)
	for i := 0; i < groupCount; i++ {
		start := i*groupSize + 1
		end := start + groupSize - 1
		if end > totalPages {
			end = totalPages
		}
		groups = append(groups, domain.PageGroup{
			GroupIndex:  i,
			StartPage:   start,
			EndPage:     end,
			TotalPages:  totalPages,
			IsLastGroup: end == totalPages,
		})
	}
	return groups, nil
}

// GroupForPage returns the unique group whose range contains pageNumber.
// It agrees with Plan for every page in 1..totalPages.
func (p *PageGrouper) GroupForPage(pageNumber, totalPages, groupSize int) (domain.PageGroup, error) {
	if pageNumber < 1 || pageNumber > totalPages {
		return domain.PageGroup{}, fmt.Errorf("%w: page %d outside 1..%d", domain.ErrInvalidGrouping, pageNumber, totalPages)
	}
	if groupSize < 1 {
		return domain.PageGroup{}, fmt.Errorf("%w: groupSize must be >= 1, got %d", domain.ErrInvalidGrouping, groupSize)
	}

	index := (pageNumber - 1) / groupSize
	start := index*groupSize + 1
	end := start + groupSize - 1
	if end > totalPages {
		end = totalPages
	}
	return domain.PageGroup{
		GroupIndex:  index,
		StartPage:   start,
		EndPage:     end,
		TotalPages:  totalPages,
		IsLastGroup: end == totalPages,
	}, nil
}
