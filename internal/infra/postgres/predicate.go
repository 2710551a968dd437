package postgres

import (
	"github.com/uptrace/bun"

	"quiz-progress-service/internal/domain"
)

// predicate narrows a select. Optional filters become a list of predicates applied in order,
// each binding its value as a query argument.
type predicate func(*bun.SelectQuery) *bun.SelectQuery

func where(expr string, value any) predicate {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(expr, value)
	}
}

func apply(q *bun.SelectQuery, preds []predicate) *bun.SelectQuery {
	for _, p := range preds {
		q = p(q)
	}
	return q
}

func sessionPredicates(f domain.SessionFilter) []predicate {
	var preds []predicate
	if f.UserID != nil {
		preds = append(preds, where("qs.user_id = ?", *f.UserID))
	}
	if f.Level != nil {
		preds = append(preds, where("qs.level = ?", string(*f.Level)))
	}
	if f.Status != nil {
		preds = append(preds, where("qs.status = ?", string(*f.Status)))
	}
	return preds
}

func progressPredicates(f domain.ProgressFilter) []predicate {
	var preds []predicate
	if f.UserID != nil {
		preds = append(preds, where("ulp.user_id = ?", *f.UserID))
	}
	if f.Level != nil {
		preds = append(preds, where("ulp.level = ?", string(*f.Level)))
	}
	if f.OnlyPlayed {
		preds = append(preds, where("ulp.total_sessions > ?", 0))
	}
	return preds
}
