// Package postgres is the gorm backed store, used for both STORE_DRIVER=postgres and mysql.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"gorm.io/gorm"
)

func New(db *gorm.DB) *repositories.Store {
	return &repositories.Store{
		Users:     NewUserRepository(db),
		Templates: NewTemplateRepository(db),
		Forms:     NewFormRepository(db),
		Comments:  NewCommentRepository(db),
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	default:
		return err
	}
}

// paginate applies sorting and paging. Only columns present in columns can be sorted on.
func paginate(q *gorm.DB, opts models.ListOptions, columns map[string]string) *gorm.DB {
	opts = opts.Normalize()
	for _, s := range opts.Sort {
		col, ok := columns[s.Field]
		if !ok {
			continue
		}
		if s.Desc {
			col += " DESC"
		}
		q = q.Order(col)
	}
	return q.Offset(opts.Skip()).Limit(opts.Limit)
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}
