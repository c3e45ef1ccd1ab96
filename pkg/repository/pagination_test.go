package repository

import (
	"errors"
	"math"
	"testing"
)

func TestNewPageRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		number, size int
		param        string
	}{
		{0, 10, "pageNumber"},
		{-3, 10, "pageNumber"},
		{1, 0, "pageSize"},
		{1, MaxPageSize + 1, "pageSize"},
		{math.MaxInt, MaxPageSize, "pageNumber"},
		{math.MaxInt/MaxPageSize + 2, MaxPageSize, "pageNumber"},
	}
	for _, tc := range cases {
		_, err := NewPage(tc.number, tc.size)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("NewPage(%d, %d): expected ErrInvalidArgument, got %v", tc.number, tc.size, err)
		}
		var argErr *ArgumentError
		if !errors.As(err, &argErr) || argErr.Param != tc.param {
			t.Fatalf("NewPage(%d, %d): expected param %s, got %v", tc.number, tc.size, tc.param, err)
		}
	}
}

func TestPageOffset(t *testing.T) {
	page, err := NewPage(3, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Offset() != 50 || page.Limit() != 25 {
		t.Fatalf("unexpected offset/limit: %d/%d", page.Offset(), page.Limit())
	}
}

func TestPageOffsetAtUpperBound(t *testing.T) {
	page, err := NewPage(math.MaxInt/MaxPageSize+1, MaxPageSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Offset() < 0 || page.Offset() != MaxPageSize*(math.MaxInt/MaxPageSize) {
		t.Fatalf("unexpected offset: %d", page.Offset())
	}
}

func TestNewPaginationResult(t *testing.T) {
	page, _ := NewPage(2, 2)
	result := NewPaginationResult([]string{"c", "d"}, 5, page)
	if result.TotalPages != 3 || !result.HasMore || result.Page != 2 || result.PageSize != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	last, _ := NewPage(3, 2)
	result = NewPaginationResult([]string{"e"}, 5, last)
	if result.HasMore {
		t.Fatalf("last page should not report more")
	}

	empty := NewPaginationResult[string](nil, 0, page)
	if empty.Items == nil || len(empty.Items) != 0 || empty.TotalPages != 0 {
		t.Fatalf("unexpected empty result: %+v", empty)
	}
}
