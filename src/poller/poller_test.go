package poller_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/api/apitest"
	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/poller"
	"github.com/theleywin/SkillShare/src/session"
)

type countingSource struct {
	calls  atomic.Int32
	unread int
}

func (s *countingSource) Notifications(context.Context) ([]models.NotificationDto, error) {
	s.calls.Add(1)
	return make([]models.NotificationDto, s.unread), nil
}

func TestStartTwiceRunsOneTimer(t *testing.T) {
	source := &countingSource{unread: 2}
	p := poller.New(source, 20*time.Millisecond)

	p.Start(context.Background())
	p.Start(context.Background())
	assert.True(t, p.Running())
	time.Sleep(110 * time.Millisecond)
	p.Stop()

	calls := source.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(3))
	assert.LessOrEqual(t, calls, int32(7))
	assert.Equal(t, 2, p.Unread())
	assert.False(t, p.Running())
}

func TestStopHaltsPolling(t *testing.T) {
	source := &countingSource{}
	p := poller.New(source, 10*time.Millisecond)

	p.Start(context.Background())
	assert.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	p.Stop()
	p.Stop()

	stopped := source.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, source.calls.Load())
}

func TestDefaultInterval(t *testing.T) {
	source := &countingSource{unread: 1}
	p := poller.New(source, 0)

	p.Start(context.Background())
	assert.Eventually(t, func() bool { return p.Unread() == 1 }, time.Second, 5*time.Millisecond)
	p.Stop()
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestSessionDrivesPoller(t *testing.T) {
	b := apitest.New()
	ada := b.AddUser("Ada", "ada@example.com", "secret1")
	grace := b.AddUser("Grace", "grace@example.com", "secret1")
	b.AddNotification(ada.ID, grace.ID, models.NotificationTypeFollow)
	b.AddNotification(ada.ID, grace.ID, models.NotificationTypeLike)

	client, err := api.New(apitest.BaseURL, api.WithTransport(b.Transport()))
	require.NoError(t, err)
	store := session.New(client, &session.MemoryPersister{})
	p := poller.New(client, time.Hour)
	var published atomic.Int32
	p.Subscribe(func(unread int) { published.Store(int32(unread)) })
	ctx := context.Background()

	p.Follow(ctx, store)
	assert.False(t, p.Running())

	_, err = store.LoginWithCredentials(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, p.Running())
	assert.Eventually(t, func() bool { return published.Load() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, store.Logout(ctx))
	assert.False(t, p.Running())
	assert.Zero(t, p.Unread())
	assert.Equal(t, 1, b.Calls(http.MethodGet, "/api/notifications"))
}

func TestRejectedSessionStopsPolling(t *testing.T) {
	b := apitest.New()
	b.AddUser("Ada", "ada@example.com", "secret1")

	client, err := api.New(apitest.BaseURL, api.WithTransport(b.Transport()))
	require.NoError(t, err)
	store := session.New(client, &session.MemoryPersister{})
	p := poller.New(client, 10*time.Millisecond)
	var rejected atomic.Int32
	p.OnUnauthorized(func(err error) {
		assert.True(t, api.IsAuthentication(err))
		rejected.Add(1)
	})
	ctx := context.Background()
	p.Follow(ctx, store)

	b.FailNext(http.MethodGet, "/api/notifications", http.StatusUnauthorized, "Unauthorized - Invalid Token")
	_, err = store.LoginWithCredentials(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return !store.Authenticated() }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), rejected.Load())

	calls := b.Calls(http.MethodGet, "/api/notifications")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.Equal(t, calls, b.Calls(http.MethodGet, "/api/notifications"))
}

func TestTransientErrorsKeepPolling(t *testing.T) {
	b := apitest.New()
	b.AddUser("Ada", "ada@example.com", "secret1")

	client, err := api.New(apitest.BaseURL, api.WithTransport(b.Transport()))
	require.NoError(t, err)
	store := session.New(client, &session.MemoryPersister{})
	p := poller.New(client, 10*time.Millisecond)
	ctx := context.Background()
	p.Follow(ctx, store)

	b.FailNext(http.MethodGet, "/api/notifications", http.StatusInternalServerError, "Server error")
	_, err = store.LoginWithCredentials(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return b.Calls(http.MethodGet, "/api/notifications") >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, store.Authenticated())
	assert.True(t, p.Running())
	p.Stop()
}
