package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"forms-service/internal/config"
	"forms-service/internal/database"
	"forms-service/internal/models"
	"forms-service/internal/repositories"
	"forms-service/internal/services"
	"forms-service/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "password1"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	slog.SetDefault(logger.New(cfg.Log.Level, cfg.Log.Format))

	slog.Info("Starting database seeding...", "store", cfg.Store.Driver)

	ctx := context.Background()
	store, err := database.OpenStore(ctx, cfg.Store, true)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}

	// Seed initial users
	slog.Info("Creating initial users...")
	admin := seedUser(ctx, store, "Admin", "admin@forms.local", models.RoleAdmin)
	alice := seedUser(ctx, store, "Alice", "alice@forms.local", models.RoleUser)
	bob := seedUser(ctx, store, "Bob", "bob@forms.local", models.RoleUser)
	if admin == nil || alice == nil || bob == nil {
		log.Fatal("Seed users are missing, giving up")
	}

	// Seed templates
	slog.Info("Creating sample templates...")
	templateService := services.NewTemplateService(store, nil)
	templates := []*models.CreateTemplateRequest{
		{
			Title:       "Team lunch",
			Description: "Where should we eat on Friday?",
			Topic:       "Other",
			Tags:        []string{"food", "team"},
			Access:      models.AccessPublic,
			Questions: []models.Question{
				{Type: models.QuestionSingleLine, Text: "Your name", Required: true, Visible: true},
				{Type: models.QuestionCheckbox, Text: "Cuisine", Visible: true, Multiple: true, Options: []models.CheckboxOption{
					{Text: "Thai"}, {Text: "Italian"}, {Text: "Mexican"},
				}},
			},
		},
		{
			Title:        "Quarterly review",
			Description:  "Only for the review board",
			Topic:        "Education",
			Tags:         []string{"review"},
			Access:       models.AccessRestricted,
			AllowedUsers: []string{bob.ID},
			Questions: []models.Question{
				{Type: models.QuestionMultiLine, Text: "What went well?", Required: true, Visible: true},
				{Type: models.QuestionNumberInput, Text: "Score out of 10", Visible: true},
			},
		},
	}

	var created []*models.Template
	for _, req := range templates {
		template, err := templateService.Create(ctx, alice, req)
		if err != nil {
			slog.Warn("Failed to create template", "title", req.Title, "error", err)
			continue
		}
		created = append(created, template)
		slog.Info("Created template", "title", template.Title, "id", template.ID)
	}
	if len(created) == 0 {
		slog.Info("Database seeding completed without templates")
		return
	}

	// Seed comments and likes on the public template
	slog.Info("Creating sample comments and likes...")
	commentService := services.NewCommentService(store, services.NoopActivityPublisher{})
	likeService := services.NewLikeService(store, services.NoopActivityPublisher{})
	public := created[0]

	comments := []struct {
		author *models.User
		text   string
	}{
		{bob, "Thai again please!"},
		{admin, "Remember to fill in your name."},
	}
	for _, c := range comments {
		if _, err := commentService.Create(ctx, c.author.Session(), public.ID, c.text); err != nil {
			slog.Warn("Failed to create comment", "error", err)
		}
	}

	for _, u := range []*models.User{admin, bob} {
		if _, err := likeService.Like(ctx, u.ID, public.ID); err != nil {
			slog.Warn("Failed to like template", "userID", u.ID, "error", err)
		}
	}

	slog.Info("Database seeding completed successfully!")
}

// seedUser returns the existing account for email or creates it.
func seedUser(ctx context.Context, store *repositories.Store, name, email string, role models.Role) *models.User {
	if existing, err := store.Users.FindByEmail(ctx, email); err == nil {
		slog.Info("User already exists", "email", email, "id", existing.ID)
		return existing
	} else if !errors.Is(err, repositories.ErrNotFound) {
		slog.Warn("Failed to look up user", "email", email, "error", err)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Warn("Failed to hash password", "error", err)
		return nil
	}
	user := &models.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Photo:      models.DefaultPhoto,
		Password:   string(hashedPassword),
		Provider:   models.ProviderLocal,
		Status:     models.StatusActive,
		Role:       role,
		IsVerified: true,
	}
	if err := store.Users.Create(ctx, user); err != nil {
		slog.Warn("User might already exist", "email", email, "error", err)
		return nil
	}
	slog.Info("Created user", "email", email, "id", user.ID)
	return user
}
