package reconcile_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/api/apitest"
	"github.com/theleywin/SkillShare/src/models"
)

type viewerID string

func (v viewerID) UserID() string { return string(v) }

type env struct {
	backend *apitest.Backend
	client  *api.Client
	ada     models.UserDto
	grace   models.UserDto
	viewer  viewerID
}

// newEnv returns a backend with two users and a client logged in as Ada.
func newEnv(t *testing.T) *env {
	t.Helper()
	b := apitest.New()
	client, err := api.New(apitest.BaseURL, api.WithTransport(b.Transport()), api.WithTimeout(5*time.Second))
	require.NoError(t, err)

	ada := b.AddUser("Ada", "ada@example.com", "secret1")
	grace := b.AddUser("Grace", "grace@example.com", "secret1")
	client.SetCookies([]*http.Cookie{b.SessionCookie(ada.ID)})

	return &env{backend: b, client: client, ada: ada, grace: grace, viewer: viewerID(ada.ID)}
}

// settle gives goroutines that are about to join an outstanding request time
// to do so.
func settle() {
	time.Sleep(50 * time.Millisecond)
}
