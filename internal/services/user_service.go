package services

import (
	"context"
	"fmt"

	"forms-service/internal/models"
	"forms-service/internal/repositories"
	"forms-service/pkg/apperror"

	"github.com/samber/lo"
)

// OnlineDirectory lists users holding at least one realtime connection.
type OnlineDirectory interface {
	GetOnlineUsers(ctx context.Context) ([]string, error)
}

// UserService backs the admin user management endpoints.
type UserService struct {
	users  repositories.UserRepository
	online OnlineDirectory
}

// NewUserService creates the service. online may be nil, in which case nobody is reported online.
func NewUserService(users repositories.UserRepository, online OnlineDirectory) *UserService {
	return &UserService{users: users, online: online}
}

func (s *UserService) List(ctx context.Context, opts models.ListOptions) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, opts)
	if err != nil {
		return nil, 0, storeError(err, nil, "list users")
	}
	return users, total, nil
}

func (s *UserService) ByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	ids, err := cleanIDs(ids)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err, nil, "find users")
	}
	return users, nil
}

// Online returns the users currently connected to the realtime endpoint.
func (s *UserService) Online(ctx context.Context) ([]models.User, error) {
	if s.online == nil {
		return []models.User{}, nil
	}
	ids, err := s.online.GetOnlineUsers(ctx)
	if err != nil {
		return nil, apperror.Persistence(fmt.Errorf("failed to read online users: %w", err))
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err, nil, "find online users")
	}
	return users, nil
}

func (s *UserService) Block(ctx context.Context, ids []string) (string, error) {
	return s.apply(ctx, ids, "Blocked %d user(s).", func(ids []string) (int64, error) {
		return s.users.UpdateStatus(ctx, ids, models.StatusBlocked)
	})
}

func (s *UserService) Unblock(ctx context.Context, ids []string) (string, error) {
	return s.apply(ctx, ids, "Unblocked %d user(s).", func(ids []string) (int64, error) {
		return s.users.UpdateStatus(ctx, ids, models.StatusActive)
	})
}

func (s *UserService) MakeAdmin(ctx context.Context, ids []string) (string, error) {
	return s.apply(ctx, ids, "Changed to Admin %d user(s).", func(ids []string) (int64, error) {
		return s.users.UpdateRole(ctx, ids, models.RoleAdmin)
	})
}

func (s *UserService) MakeUser(ctx context.Context, ids []string) (string, error) {
	return s.apply(ctx, ids, "Changed to User %d user(s).", func(ids []string) (int64, error) {
		return s.users.UpdateRole(ctx, ids, models.RoleUser)
	})
}

func (s *UserService) Delete(ctx context.Context, ids []string) (string, error) {
	return s.apply(ctx, ids, "Deleted %d user(s).", func(ids []string) (int64, error) {
		return s.users.DeleteMany(ctx, ids)
	})
}

func (s *UserService) apply(ctx context.Context, ids []string, format string, fn func([]string) (int64, error)) (string, error) {
	ids, err := cleanIDs(ids)
	if err != nil {
		return "", err
	}
	n, err := fn(ids)
	if err != nil {
		return "", storeError(err, nil, "bulk user update")
	}
	return fmt.Sprintf(format, n), nil
}

func cleanIDs(ids []string) ([]string, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return nil, ErrNoUserIDs
	}
	return ids, nil
}
