package store

import (
	"cmp"
	"slices"

	"github.com/janisto/fitsocial/internal/domain"
)

func clampLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sortActivities orders newest first with the id as a stable tie-breaker.
func sortActivities(activities []domain.SharedActivity) {
	slices.SortFunc(activities, func(a, b domain.SharedActivity) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func sortRelationships(edges []domain.Relationship) {
	slices.SortFunc(edges, func(a, b domain.Relationship) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
