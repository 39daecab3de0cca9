// Package memory is an in-process backend used by tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"
)

func New() *repositories.Store {
	return &repositories.Store{
		Users:     NewUserRepository(),
		Templates: NewTemplateRepository(),
		Forms:     NewFormRepository(),
		Comments:  NewCommentRepository(),
		Close:     func(context.Context) error { return nil },
	}
}

func touch(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// page sorts items with less-functions keyed by sort field and applies skip/limit.
func page[T any](items []T, opts models.ListOptions, fields map[string]func(a, b T) int) []T {
	opts = opts.Normalize()
	sort.SliceStable(items, func(i, j int) bool {
		for _, s := range opts.Sort {
			cmp, ok := fields[s.Field]
			if !ok {
				continue
			}
			c := cmp(items[i], items[j])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	skip := opts.Skip()
	if skip >= len(items) {
		return []T{}
	}
	end := skip + opts.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func compareTime(a, b time.Time) int { return a.Compare(b) }

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
