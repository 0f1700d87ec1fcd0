package api

import (
	"context"
	"net/http"

	"github.com/theleywin/SkillShare/src/models"
)

// CurrentUser asks the backend who the held credentials belong to.
func (c *Client) CurrentUser(ctx context.Context) (*models.UserDto, error) {
	return execute[*models.UserDto](ctx, c, "current user", c.newRequest(ctx), http.MethodGet, "/api/users/current")
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.UserDto, error) {
	body := models.LoginRequest{Email: email, Password: password}
	if err := Validate(body); err != nil {
		return nil, err
	}
	user, err := execute[*models.UserDto](ctx, c, "login", c.newRequest(ctx).SetBody(body), http.MethodPost, "/api/auth/login")
	return user, asAuthentication(err)
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*models.UserDto, error) {
	body := models.RegisterRequest{Name: name, Email: email, Password: password}
	if err := Validate(body); err != nil {
		return nil, err
	}
	user, err := execute[*models.UserDto](ctx, c, "register", c.newRequest(ctx).SetBody(body), http.MethodPost, "/api/auth/register")
	return user, asAuthentication(err)
}

func (c *Client) Logout(ctx context.Context) error {
	return send(ctx, c, "logout", c.newRequest(ctx), http.MethodPost, "/api/auth/logout")
}

// ProviderLoginURL is where a browser starts a login with an external
// identity provider such as "google" or "github".
func (c *Client) ProviderLoginURL(provider string) string {
	return c.BaseURL() + "/oauth2/authorization/" + escape(provider)
}

// asAuthentication reports rejected credentials as authentication failures
// whatever status the backend chose for them.
func asAuthentication(err error) error {
	if server, ok := err.(*ServerError); ok && server.Status == http.StatusBadRequest {
		return &AuthenticationError{Message: server.Message}
	}
	return err
}
