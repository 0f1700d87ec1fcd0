package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// ExternalProfile is the identity returned by an OAuth provider
type ExternalProfile struct {
	Provider  string
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// OAuthProvider couples an oauth2 config with the call that reads the
// authenticated profile
type OAuthProvider struct {
	Name    string
	Config  *oauth2.Config
	Profile func(ctx context.Context, client *http.Client) (*ExternalProfile, error)
}

var oauthProviders = map[string]*OAuthProvider{}

// RegisterOAuthProvider enables a provider. Providers without credentials are
// skipped.
func RegisterOAuthProvider(p *OAuthProvider) {
	if p == nil || p.Config == nil || p.Config.ClientID == "" {
		return
	}
	oauthProviders[p.Name] = p
}

// GetOAuthProvider looks up an enabled provider by name
func GetOAuthProvider(name string) (*OAuthProvider, bool) {
	p, ok := oauthProviders[name]
	return p, ok
}

// GoogleProvider builds the Google login provider
func GoogleProvider(clientID, clientSecret, publicURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  publicURL + "/login/oauth2/code/google",
			Scopes:       []string{"openid", "email", "profile"},
		},
		Profile: func(ctx context.Context, client *http.Client) (*ExternalProfile, error) {
			var info struct {
				Sub     string `json:"sub"`
				Email   string `json:"email"`
				Name    string `json:"name"`
				Picture string `json:"picture"`
			}
			if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v3/userinfo", &info); err != nil {
				return nil, err
			}
			return &ExternalProfile{Provider: "google", Subject: info.Sub, Email: info.Email, Name: info.Name, AvatarURL: info.Picture}, nil
		},
	}
}

// GithubProvider builds the GitHub login provider
func GithubProvider(clientID, clientSecret, publicURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "github",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  publicURL + "/login/oauth2/code/github",
			Scopes:       []string{"read:user", "user:email"},
		},
		Profile: func(ctx context.Context, client *http.Client) (*ExternalProfile, error) {
			var info struct {
				ID        int64  `json:"id"`
				Login     string `json:"login"`
				Name      string `json:"name"`
				Email     string `json:"email"`
				AvatarURL string `json:"avatar_url"`
			}
			if err := getJSON(ctx, client, "https://api.github.com/user", &info); err != nil {
				return nil, err
			}
			name := info.Name
			if name == "" {
				name = info.Login
			}
			email := info.Email
			if email == "" {
				email = fmt.Sprintf("%s@users.noreply.github.com", info.Login)
			}
			return &ExternalProfile{Provider: "github", Subject: strconv.FormatInt(info.ID, 10), Email: email, Name: name, AvatarURL: info.AvatarURL}, nil
		},
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "fetch profile")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return errors.Errorf("profile request failed with status %d: %s", res.StatusCode, body)
	}
	return errors.Wrap(json.NewDecoder(res.Body).Decode(out), "decode profile")
}
