package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"google.golang.org/api/idtoken"
)

var ErrOAuthRejected = errors.New("oauth credential rejected")

// OAuthProfile is what a provider tells us about the person behind a credential.
type OAuthProfile struct {
	ProviderID string
	Email      string
	Name       string
	Photo      string
}

// OAuthProvider turns a client supplied credential (id token or authorization code) into a profile.
type OAuthProvider interface {
	Profile(ctx context.Context, credential string) (*OAuthProfile, error)
}

// IDTokenValidator checks an id token's signature, expiry and audience.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleProvider accepts Google id tokens minted for this app's client id.
type GoogleProvider struct {
	clientID string
	validate IDTokenValidator
}

func NewGoogleProvider(clientID string) *GoogleProvider {
	return &GoogleProvider{clientID: clientID, validate: idtoken.Validate}
}

func (p *GoogleProvider) Profile(ctx context.Context, idToken string) (*OAuthProfile, error) {
	if p.clientID == "" {
		return nil, fmt.Errorf("%w: google login is not configured", ErrOAuthRejected)
	}
	payload, err := p.validate(ctx, idToken, p.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthRejected, err)
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return nil, fmt.Errorf("%w: google e-mail not verified", ErrOAuthRejected)
	}

	name, _ := payload.Claims["name"].(string)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	picture, _ := payload.Claims["picture"].(string)
	return &OAuthProfile{ProviderID: payload.Subject, Email: email, Name: name, Photo: picture}, nil
}

// GitHubProvider exchanges an authorization code and reads the user's profile and primary e-mail.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: "https://api.github.com",
	}
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *GitHubProvider) Profile(ctx context.Context, code string) (*OAuthProfile, error) {
	if p.config.ClientID == "" {
		return nil, fmt.Errorf("%w: github login is not configured", ErrOAuthRejected)
	}
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthRejected, err)
	}
	client := p.config.Client(ctx, token)

	var user githubUser
	if err := getJSON(ctx, client, p.apiBase+"/user", &user); err != nil {
		return nil, err
	}
	var emails []githubEmail
	if err := getJSON(ctx, client, p.apiBase+"/user/emails", &emails); err != nil {
		return nil, err
	}

	var email string
	for _, e := range emails {
		if e.Primary && e.Verified {
			email = e.Email
			break
		}
	}
	if email == "" {
		return nil, fmt.Errorf("%w: no verified primary e-mail on github account", ErrOAuthRejected)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return &OAuthProfile{
		ProviderID: fmt.Sprint(user.ID),
		Email:      email,
		Name:       name,
		Photo:      user.AvatarURL,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrOAuthRejected, endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
