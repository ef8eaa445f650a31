package service

import (
	"errors"
	"testing"

	"pdf-extract-api/internal/domain"
)

func TestPageGrouper_Plan_CoversAllPages(t *testing.T) {
	grouper := NewPageGrouper()

	cases := []struct {
		totalPages int
		groupSize  int
	}{
		{1, 10},
		{9, 10},
		{10, 10},
		{11, 10},
		{25, 10},
		{100, 7},
		{3, 1},
	}

	for _, tc := range cases {
		groups, err := grouper.Plan(tc.totalPages, tc.groupSize)
		if err != nil {
			t.Fatalf("Plan(%d, %d) returned error: %v", tc.totalPages, tc.groupSize, err)
		}

		expectedCount := (tc.totalPages + tc.groupSize - 1) / tc.groupSize
		if len(groups) != expectedCount {
			t.Errorf("Plan(%d, %d): expected %d groups, got %d", tc.totalPages, tc.groupSize, expectedCount, len(groups))
		}

		nextPage := 1
		for i, g := range groups {
			if g.GroupIndex != i {
				t.Errorf("expected group index %d, got %d", i, g.GroupIndex)
			}
			if g.StartPage != nextPage {
				t.Errorf("group %d: expected start page %d, got %d", i, nextPage, g.StartPage)
			}
			if g.EndPage < g.StartPage {
				t.Errorf("group %d: end page %d before start page %d", i, g.EndPage, g.StartPage)
			}
			if g.TotalPages != tc.totalPages {
				t.Errorf("group %d: expected total pages %d, got %d", i, tc.totalPages, g.TotalPages)
			}
			isLast := i == len(groups)-1
			if g.IsLastGroup != isLast {
				t.Errorf("group %d: expected isLastGroup=%v, got %v", i, isLast, g.IsLastGroup)
			}
			nextPage = g.EndPage + 1
		}
		if nextPage != tc.totalPages+1 {
			t.Errorf("Plan(%d, %d): groups end at page %d, expected %d", tc.totalPages, tc.groupSize, nextPage-1, tc.totalPages)
		}
	}
}

func TestPageGrouper_Plan_TwentyFivePages(t *testing.T) {
	grouper := NewPageGrouper()

	groups, err := grouper.Plan(25, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	expected := []domain.PageGroup{
		{GroupIndex: 0, StartPage: 1, EndPage: 10, TotalPages: 25, IsLastGroup: false},
		{GroupIndex: 1, StartPage: 11, EndPage: 20, TotalPages: 25, IsLastGroup: false},
		{GroupIndex: 2, StartPage: 21, EndPage: 25, TotalPages: 25, IsLastGroup: true},
	}
	for i, want := range expected {
		if groups[i] != want {
			t.Errorf("group %d: expected %+v, got %+v", i, want, groups[i])
		}
	}
}

func TestPageGrouper_Plan_InvalidArguments(t *testing.T) {
	grouper := NewPageGrouper()

	if _, err := grouper.Plan(0, 10); !errors.Is(err, domain.ErrInvalidGrouping) {
		t.Errorf("expected ErrInvalidGrouping for totalPages=0, got %v", err)
	}
	if _, err := grouper.Plan(10, 0); !errors.Is(err, domain.ErrInvalidGrouping) {
		t.Errorf("expected ErrInvalidGrouping for groupSize=0, got %v", err)
	}
	if _, err := grouper.Plan(-5, 10); !errors.Is(err, domain.ErrInvalidGrouping) {
		t.Errorf("expected ErrInvalidGrouping for negative totalPages, got %v", err)
	}
}

func TestPageGrouper_GroupForPage_AgreesWithPlan(t *testing.T) {
	grouper := NewPageGrouper()

	for _, tc := range []struct{ totalPages, groupSize int }{{25, 10}, {1, 10}, {30, 10}, {17, 5}} {
		groups, err := grouper.Plan(tc.totalPages, tc.groupSize)
		if err != nil {
			t.Fatalf("Plan returned error: %v", err)
		}
		for page := 1; page <= tc.totalPages; page++ {
			got, err := grouper.GroupForPage(page, tc.totalPages, tc.groupSize)
			if err != nil {
				t.Fatalf("GroupForPage(%d) returned error: %v", page, err)
			}
			var want domain.PageGroup
			for _, g := range groups {
				if page >= g.StartPage && page <= g.EndPage {
					want = g
					break
				}
			}
			if got != want {
				t.Errorf("GroupForPage(%d, %d, %d): expected %+v, got %+v", page, tc.totalPages, tc.groupSize, want, got)
			}
		}
	}
}

func TestPageGrouper_GroupForPage_OutOfRange(t *testing.T) {
	grouper := NewPageGrouper()

	if _, err := grouper.GroupForPage(0, 10, 10); !errors.Is(err, domain.ErrInvalidGrouping) {
		t.Errorf("expected ErrInvalidGrouping for page 0, got %v", err)
	}
	if _, err := grouper.GroupForPage(11, 10, 10); !errors.Is(err, domain.ErrInvalidGrouping) {
		t.Errorf("expected ErrInvalidGrouping for page past end, got %v", err)
	}
}
