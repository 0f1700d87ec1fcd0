// Package poller refreshes the unread notification count in the background
// for as long as a session is live.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/theleywin/SkillShare/src/api"
	"github.com/theleywin/SkillShare/src/logging"
	"github.com/theleywin/SkillShare/src/models"
	"github.com/theleywin/SkillShare/src/session"
	"github.com/theleywin/SkillShare/src/tracker"
)

const DefaultInterval = 60 * time.Second

// Source lists the notifications of the session user. *api.Client
// implements it.
type Source interface {
	Notifications(ctx context.Context) ([]models.NotificationDto, error)
}

// Poller runs one ticker at most. It is safe for concurrent use.
type Poller struct {
	source   Source
	interval time.Duration
	log      *logrus.Entry

	mu          sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
	unread      int
	subscribers []func(int)
	rejected    []func(error)
}

func New(source Source, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		interval: interval,
		log:      logging.For("poller"),
	}
}

// Subscribe calls fn with the unread count after every successful poll.
func (p *Poller) Subscribe(fn func(unread int)) {
	p.mu.Lock()
	p.subscribers = append(p.subscribers, fn)
	p.mu.Unlock()
}

// OnUnauthorized calls fn when the server stops accepting the session
// during a poll. Polling has already ended when fn runs.
func (p *Poller) OnUnauthorized(fn func(err error)) {
	p.mu.Lock()
	p.rejected = append(p.rejected, fn)
	p.mu.Unlock()
}

// Unread is the count from the last successful poll.
func (p *Poller) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Start polls once right away and then on every tick until Stop or until
// ctx ends. Starting a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go p.loop(ctx, done)
	p.log.WithField("interval", p.interval).Debug("Notification polling started")
}

// Stop cancels the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Debug("Notification polling stopped")
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	err := p.run(ctx)

	p.mu.Lock()
	if err != nil && p.done == done {
		p.cancel()
		p.cancel, p.done = nil, nil
	}
	rejected := append([]func(error){}, p.rejected...)
	p.mu.Unlock()
	close(done)

	if err == nil {
		return
	}
	p.log.WithError(err).Warn("Session rejected, notification polling stopped")
	for _, fn := range rejected {
		fn(err)
	}
}

// run polls until ctx ends or the session is rejected.
func (p *Poller) run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.poll(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// poll returns the errors that end polling and logs the rest.
func (p *Poller) poll(ctx context.Context) error {
	_, err := p.PollNow(ctx)
	if err == nil || ctx.Err() != nil {
		return nil
	}
	if api.IsAuthentication(err) {
		return err
	}
	p.log.WithError(err).Warn("Failed to poll notifications")
	return nil
}

// PollNow fetches the notifications once and publishes the unread count.
func (p *Poller) PollNow(ctx context.Context) (int, error) {
	notifications, err := p.source.Notifications(ctx)
	if err != nil {
		return 0, err
	}
	unread := tracker.UnreadCount(notifications)

	p.mu.Lock()
	p.unread = unread
	subscribers := append([]func(int){}, p.subscribers...)
	p.mu.Unlock()

	for _, fn := range subscribers {
		fn(unread)
	}
	return unread, nil
}

// Follow ties the poller to a session store: it runs while a session is
// live and stops on logout. A session the server rejects is invalidated.
func (p *Poller) Follow(ctx context.Context, store *session.Store) {
	p.OnUnauthorized(func(error) { store.Invalidate() })
	store.OnChange(func(s *session.Session) {
		if s == nil {
			p.Stop()
			p.mu.Lock()
			p.unread = 0
			p.mu.Unlock()
			return
		}
		p.Start(ctx)
	})
	if store.Authenticated() {
		p.Start(ctx)
	}
}
