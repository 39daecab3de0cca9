package memory

import (
	"context"
	"strings"
	"sync"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/samber/lo"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]models.User)}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	if _, ok := r.users[user.ID]; ok {
		return repositories.ErrDuplicate
	}
	touch(&user.CreatedAt, &user.UpdatedAt)
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range lo.Uniq(ids) {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) FindIdentity(ctx context.Context, id string) (*models.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Photo:  u.Photo,
		Status: u.Status,
		Role:   u.Role,
	}, nil
}

func (r *UserRepository) List(_ context.Context, opts models.ListOptions) ([]models.User, int64, error) {
	r.mu.RLock()
	all := lo.Values(r.users)
	r.mu.RUnlock()

	return page(all, opts, userSortFields), int64(len(all)), nil
}

func (r *UserRepository) Search(_ context.Context, query string, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Filter(lo.Values(r.users), func(u models.User, _ int) bool {
		return containsFold(u.Name, query) || containsFold(u.Email, query)
	})
	return page(out, models.ListOptions{Limit: limit, Sort: []models.SortField{{Field: "name"}}}, userSortFields), nil
}

func (r *UserRepository) UpdateStatus(_ context.Context, ids []string, status models.UserStatus) (int64, error) {
	return r.updateEach(ids, func(u *models.User) { u.Status = status }), nil
}

func (r *UserRepository) UpdateRole(_ context.Context, ids []string, role models.Role) (int64, error) {
	return r.updateEach(ids, func(u *models.User) { u.Role = role }), nil
}

func (r *UserRepository) updateEach(ids []string, fn func(*models.User)) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range lo.Uniq(ids) {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		fn(&u)
		touch(&u.CreatedAt, &u.UpdatedAt)
		r.users[id] = u
		n++
	}
	return n
}

func (r *UserRepository) DeleteMany(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range lo.Uniq(ids) {
		if _, ok := r.users[id]; ok {
			delete(r.users, id)
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) Count(_ context.Context, role models.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if role == "" {
		return int64(len(r.users)), nil
	}
	return int64(lo.CountBy(lo.Values(r.users), func(u models.User) bool { return u.Role == role })), nil
}

var userSortFields = map[string]func(a, b models.User) int{
	"createdAt": func(a, b models.User) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"updatedAt": func(a, b models.User) int { return compareTime(a.UpdatedAt, b.UpdatedAt) },
	"name":      func(a, b models.User) int { return strings.Compare(a.Name, b.Name) },
	"email":     func(a, b models.User) int { return strings.Compare(a.Email, b.Email) },
	"role":      func(a, b models.User) int { return strings.Compare(string(a.Role), string(b.Role)) },
	"status":    func(a, b models.User) int { return strings.Compare(string(a.Status), string(b.Status)) },
}
