package services

import (
	"context"
	"sort"
	"strings"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"golang.org/x/sync/errgroup"
)

const maxTagSuggestions = 3

type SearchResult struct {
	Templates []models.Template `json:"templates"`
	Comments  []models.Comment  `json:"comments"`
}

type SearchService struct {
	store *repositories.Store
}

func NewSearchService(store *repositories.Store) *SearchService {
	return &SearchService{store: store}
}

// Global matches public templates by title or tag and comments by text.
func (s *SearchService) Global(ctx context.Context, query string, opts models.ListOptions) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}
	opts = opts.Normalize()

	result := &SearchResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		templates, _, err := s.store.Templates.Find(gctx, repositories.TemplateFilter{Search: query, PublicOnly: true}, opts)
		result.Templates = templates
		return err
	})
	g.Go(func() error {
		comments, err := s.store.Comments.Search(gctx, query, opts.Limit)
		result.Comments = comments
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(err, nil, "global search")
	}
	return result, nil
}

// Tags suggests up to three tags containing query, closest match first.
func (s *SearchService) Tags(ctx context.Context, query string) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, ErrMissingQuery
	}
	counts, err := s.store.Templates.TagCounts(ctx)
	if err != nil {
		return nil, storeError(err, nil, "search tags")
	}

	var tags []string
	for _, c := range counts {
		if strings.Contains(strings.ToLower(c.Tag), query) {
			tags = append(tags, c.Tag)
		}
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return strings.Index(strings.ToLower(tags[i]), query) < strings.Index(strings.ToLower(tags[j]), query)
	})
	if len(tags) > maxTagSuggestions {
		tags = tags[:maxTagSuggestions]
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (s *SearchService) Users(ctx context.Context, query string, opts models.ListOptions) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}
	users, err := s.store.Users.Search(ctx, query, opts.Normalize().Limit)
	if err != nil {
		return nil, storeError(err, nil, "search users")
	}
	return users, nil
}

// Templates searches all templates by title or tag, for signed in users.
func (s *SearchService) Templates(ctx context.Context, viewer *models.User, query string, opts models.ListOptions) ([]models.Template, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrMissingQuery
	}
	filter := repositories.TemplateFilter{Search: query, PublicOnly: !viewer.IsAdmin()}
	templates, _, err := s.store.Templates.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError(err, nil, "search templates")
	}
	return templates, nil
}

func (s *SearchService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalTemplates, err = s.store.Templates.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.store.Users.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.TotalAdmins, err = s.store.Users.Count(gctx, models.RoleAdmin)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSubmissions, err = s.store.Forms.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(err, nil, "dashboard stats")
	}
	return stats, nil
}
