package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/api/apitest"
	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/session"
)

type fixture struct {
	backend *apitest.Backend
	client  *api.Client
	persist *session.BadgerStore
	store   *session.Store
	ada     models.UserDto
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()
	b := apitest.New()
	client, err := api.New(apitest.BaseURL, api.WithTransport(b.Transport()), api.WithTimeout(5*time.Second))
	require.NoError(t, err)
	persist, err := session.OpenBadger("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { persist.Close() })

	return &fixture{
		backend: b,
		client:  client,
		persist: persist,
		store:   session.New(client, persist, opts...),
		ada:     b.AddUser("Ada", "ada@example.com", "secret1"),
	}
}

func (f *fixture) persisted(t *testing.T) *session.Session {
	t.Helper()
	stored, err := f.persist.Load()
	require.NoError(t, err)
	return stored
}

func TestLoginWritesThrough(t *testing.T) {
	f := newFixture(t)

	got, err := f.store.LoginWithCredentials(context.Background(), " ada@example.com ", "secret1")
	require.NoError(t, err)

	want := session.Session{UserID: f.ada.ID, Name: "Ada", Email: "ada@example.com"}
	assert.Equal(t, want, got)
	current, ok := f.store.Current()
	assert.True(t, ok)
	assert.Equal(t, want, current)
	assert.Equal(t, &want, f.persisted(t))
}

func TestFailedLoginClearsPreviousSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.LoginWithCredentials(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = f.store.LoginWithCredentials(ctx, "ada@example.com", "wrong-password")
	require.Error(t, err)
	assert.True(t, api.IsAuthentication(err))
	assert.Equal(t, "Invalid email or password", api.Message(err))
	assert.False(t, f.store.Authenticated())
	assert.Nil(t, f.persisted(t))
}

func TestLoginValidatesBeforeDispatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.LoginWithCredentials(context.Background(), "", "secret1")
	assert.True(t, api.IsValidation(err))
	assert.Zero(t, f.backend.Calls(http.MethodPost, "/api/auth/login"))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	got, err := f.store.Register(context.Background(), "Grace", "grace@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, got.UserID, f.store.UserID())

	_, err = f.store.Register(context.Background(), "Ada Again", "ada@example.com", "secret1")
	assert.True(t, api.IsAuthentication(err))
	assert.False(t, f.store.Authenticated())
}

func TestRestoreFromStorageSkipsBackend(t *testing.T) {
	f := newFixture(t)
	stored := session.Session{UserID: f.ada.ID, Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, f.persist.Save(stored))

	f.store.Restore(context.Background())

	current, ok := f.store.Current()
	assert.True(t, ok)
	assert.Equal(t, stored, current)
	assert.Zero(t, f.backend.Calls(http.MethodGet, "/api/users/current"))
}

func TestRestoreFromCookies(t *testing.T) {
	f := newFixture(t)
	f.client.SetCookies([]*http.Cookie{f.backend.SessionCookie(f.ada.ID)})

	f.store.Restore(context.Background())

	assert.Equal(t, f.ada.ID, f.store.UserID())
	assert.Equal(t, f.ada.ID, f.persisted(t).UserID)
}

func TestRestoreFailsSilently(t *testing.T) {
	f := newFixture(t)
	f.backend.SetOffline(true)

	f.store.Restore(context.Background())

	assert.False(t, f.store.Authenticated())
	assert.Nil(t, f.persisted(t))
}

func TestLogoutWithFailingBackendStillClears(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.LoginWithCredentials(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, f.client.Cookies())

	f.backend.FailNext(http.MethodPost, "/api/auth/logout", http.StatusInternalServerError, "down")
	err = f.store.Logout(ctx)

	assert.Error(t, err)
	assert.False(t, f.store.Authenticated())
	assert.Nil(t, f.persisted(t))
	assert.Empty(t, f.client.Cookies())
}

func TestExternalLoginOnlyRedirects(t *testing.T) {
	var visited []string
	f := newFixture(t, session.WithRedirector(func(url string) error {
		visited = append(visited, url)
		return nil
	}))

	require.NoError(t, f.store.LoginWithExternalProvider("GitHub"))
	assert.Equal(t, []string{apitest.BaseURL + "/oauth2/authorization/github"}, visited)
	assert.False(t, f.store.Authenticated())

	assert.True(t, api.IsValidation(f.store.LoginWithExternalProvider(" ")))
}

func TestExternalLoginWithoutRedirector(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.store.LoginWithExternalProvider("google"), session.ErrNoRedirector)
}

func TestOnChange(t *testing.T) {
	f := newFixture(t)
	var seen []string
	f.store.OnChange(func(s *session.Session) {
		if s == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, s.UserID)
	})
	ctx := context.Background()

	_, err := f.store.LoginWithCredentials(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.store.Logout(ctx))

	assert.Equal(t, []string{f.ada.ID, ""}, seen)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bio := "Gopher"

	_, err := f.store.UpdateProfile(ctx, models.ProfileRequest{Bio: &bio})
	assert.True(t, api.IsAuthentication(err))

	_, err = f.store.LoginWithCredentials(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	got, err := f.store.UpdateProfile(ctx, models.ProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Gopher", got.Bio)
	assert.Equal(t, "Gopher", f.persisted(t).Bio)
}

func TestInvalidate(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.LoginWithCredentials(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	f.store.Invalidate()

	assert.False(t, f.store.Authenticated())
	assert.Nil(t, f.persisted(t))
	assert.Empty(t, f.client.Cookies())
	assert.Equal(t, 1, f.backend.Sessions())
}
