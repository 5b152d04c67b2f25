package blog

import (
	"fmt"
	"strings"

	"backend-bloghub/internal/shared/apperror"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ListQuery holds the raw listing parameters as they arrive on the request.
type ListQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Sort     string
}

// normalize applies defaults and bounds. Unknown categories and sort keys are
// rejected rather than silently ignored.
func (q ListQuery) normalize() (ListQuery, error) {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Category == "" {
		q.Category = "all"
	}
	if q.Category != "all" && !validCategory(q.Category) {
		return ListQuery{}, apperror.Validation("unknown category: " + q.Category)
	}
	switch q.Sort {
	case "":
		q.Sort = "newest"
	case "newest", "oldest", "popular", "trending":
	default:
		return ListQuery{}, apperror.Validation("sort must be newest, oldest, popular or trending")
	}
	return q, nil
}

// build produces the WHERE clause, its arguments, the ORDER BY clause and the
// skip offset for a public listing. Listings are restricted to published
// posts; the secondary order on id keeps pages deterministic when the primary
// sort key ties.
func (q ListQuery) build() (where string, args []any, orderBy string, skip int) {
	clauses := []string{"status = 'published'"}

	if q.Category != "all" {
		args = append(args, q.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(title ILIKE $%d OR excerpt ILIKE $%d OR content ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $%d))",
			n, n, n, n))
	}

	switch q.Sort {
	case "oldest":
		orderBy = "ORDER BY p.published_at ASC, p.id ASC"
	case "popular", "trending":
		// trending currently resolves to the same ordering as popular
		orderBy = "ORDER BY p.views DESC, p.id ASC"
	default:
		orderBy = "ORDER BY p.published_at DESC, p.id ASC"
	}

	return "WHERE " + strings.Join(clauses, " AND "), args, orderBy, (q.Page - 1) * q.Limit
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
