package blog

import (
	"strings"
	"testing"

	"backend-bloghub/internal/shared/apperror"
)

func TestNormalizeDefaults(t *testing.T) {
	q, err := ListQuery{}.normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if q.Page != 1 || q.Limit != 10 || q.Category != "all" || q.Sort != "newest" {
		t.Fatalf("unexpected defaults: %+v", q)
	}
}

func TestNormalizeClampsLimit(t *testing.T) {
	q, _ := ListQuery{Page: -4, Limit: 500}.normalize()
	if q.Page != 1 || q.Limit != 100 {
		t.Fatalf("expected clamped values, got %+v", q)
	}
}

func TestNormalizeRejectsUnknownCategory(t *testing.T) {
	_, err := ListQuery{Category: "sports"}.normalize()
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormalizeRejectsUnknownSort(t *testing.T) {
	_, err := ListQuery{Sort: "random"}.normalize()
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildPublishedOnly(t *testing.T) {
	q, _ := ListQuery{}.normalize()
	where, args, orderBy, skip := q.build()
	if where != "WHERE status = 'published'" {
		t.Fatalf("unexpected where: %s", where)
	}
	if len(args) != 0 || skip != 0 {
		t.Fatalf("unexpected args/skip: %v %d", args, skip)
	}
	if !strings.Contains(orderBy, "published_at DESC") {
		t.Fatalf("unexpected order: %s", orderBy)
	}
}

func TestBuildCategoryAndSearch(t *testing.T) {
	q, _ := ListQuery{Category: "travel", Search: "alps"}.normalize()
	where, args, _, _ := q.build()
	if !strings.Contains(where, "category = $1") {
		t.Fatalf("missing category clause: %s", where)
	}
	if !strings.Contains(where, "ILIKE $2") || !strings.Contains(where, "unnest(tags)") {
		t.Fatalf("missing search clause: %s", where)
	}
	if len(args) != 2 || args[0] != "travel" || args[1] != "%alps%" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildSortOrders(t *testing.T) {
	for _, sort := range []string{"popular", "trending"} {
		q, _ := ListQuery{Sort: sort}.normalize()
		_, _, orderBy, _ := q.build()
		if !strings.Contains(orderBy, "views DESC") {
			t.Fatalf("%s should sort by views: %s", sort, orderBy)
		}
	}

	q, _ := ListQuery{Sort: "oldest"}.normalize()
	_, _, orderBy, _ := q.build()
	if !strings.Contains(orderBy, "published_at ASC") {
		t.Fatalf("oldest ordering wrong: %s", orderBy)
	}
}

func TestBuildSkip(t *testing.T) {
	q, _ := ListQuery{Page: 3, Limit: 10}.normalize()
	_, _, _, skip := q.build()
	if skip != 20 {
		t.Fatalf("skip %d, want 20", skip)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{25, 10, 3},
		{100, 10, 10},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.limit); got != tc.pages {
			t.Fatalf("totalPages(%d,%d) = %d, want %d", tc.total, tc.limit, got, tc.pages)
		}
	}
}

func TestBuildDeterministicTiebreak(t *testing.T) {
	for _, sort := range []string{"newest", "oldest", "popular", "trending"} {
		q, _ := ListQuery{Sort: sort}.normalize()
		_, _, orderBy, _ := q.build()
		if !strings.Contains(orderBy, "p.id ASC") {
			t.Fatalf("%s lacks stable tiebreak: %s", sort, orderBy)
		}
	}
}
