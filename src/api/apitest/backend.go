// Package apitest provides an in-memory SkillShare backend for client tests.
// It serves the same REST surface as the real API from a fiber app and is
// reached through an in-process http.RoundTripper.
package apitest

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/theleywin/SkillShare/src/models"
)

// BaseURL is the address clients should use with Transport.
const BaseURL = "http://skillshare.test"

const sessionCookie = "jwt-skillshare"

var epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type user struct {
	dto       models.UserDto
	password  string
	following []string
	followers []string
}

type post struct {
	dto     models.PostDto
	author  string
	likedBy map[string]bool
}

type comment struct {
	dto    models.CommentDto
	author string
}

type share struct {
	id      string
	postID  string
	sharer  string
	comment string
	at      time.Time
}

type plan struct {
	dto   models.LearningPlanDto
	tasks []models.Task
	owner string
}

type progress struct {
	dto    models.ProgressUpdateDto
	author string
}

type notification struct {
	dto       models.NotificationDto
	recipient string
}

type failure struct {
	method  string
	path    string
	status  int
	message string
}

type hold struct {
	method  string
	path    string
	release chan struct{}
	entered chan struct{}
}

// Backend is the in-memory server. All exported methods are safe for
// concurrent use.
type Backend struct {
	app *fiber.App

	mu            sync.Mutex
	seq           int
	users         map[string]*user
	sessions      map[string]string
	posts         []*post
	comments      []*comment
	shares        []*share
	plans         []*plan
	progress      []*progress
	notifications []*notification
	failures      []failure
	holds         []*hold
	calls         map[string]int
	offline       bool
}

func New() *Backend {
	b := &Backend{
		users:    map[string]*user{},
		sessions: map[string]string{},
		calls:    map[string]int{},
	}
	b.app = fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})
	b.app.Use(b.intercept)
	b.routes()
	return b
}

// App exposes the fiber app serving the fake API.
func (b *Backend) App() *fiber.App {
	return b.app
}

// Transport routes requests into the fake backend without a network.
func (b *Backend) Transport() http.RoundTripper {
	return roundTripper{b}
}

type roundTripper struct {
	b *Backend
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.b.mu.Lock()
	offline := rt.b.offline
	rt.b.mu.Unlock()
	if offline {
		return nil, errors.New("dial tcp: connection refused")
	}

	req = req.Clone(req.Context())
	type result struct {
		res *http.Response
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := rt.b.app.Test(req, -1)
		done <- result{res, err}
	}()

	select {
	case r := <-done:
		if r.res != nil {
			r.res.Request = req
		}
		return r.res, r.err
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
}

// SetOffline makes every request fail at the transport level.
func (b *Backend) SetOffline(offline bool) {
	b.mu.Lock()
	b.offline = offline
	b.mu.Unlock()
}

// FailNext makes the next request with this method and path answer with
// status and message instead of reaching the handler.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	b.failures = append(b.failures, failure{method: method, path: path, status: status, message: message})
	b.mu.Unlock()
}

// Hold blocks the next request with this method and path until release is
// called. entered is closed once the request has arrived.
func (b *Backend) Hold(method, path string) (entered <-chan struct{}, release func()) {
	h := &hold{method: method, path: path, release: make(chan struct{}), entered: make(chan struct{})}
	b.mu.Lock()
	b.holds = append(b.holds, h)
	b.mu.Unlock()

	var once sync.Once
	return h.entered, func() { once.Do(func() { close(h.release) }) }
}

// Calls counts the requests received for method and path.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

func (b *Backend) intercept(c *fiber.Ctx) error {
	method, path := c.Method(), strings.TrimRight(c.Path(), "/")

	b.mu.Lock()
	b.calls[method+" "+path]++

	var held *hold
	for i, h := range b.holds {
		if h.method == method && h.path == path {
			held = h
			b.holds = append(b.holds[:i], b.holds[i+1:]...)
			break
		}
	}
	var failed *failure
	for i, f := range b.failures {
		if f.method == method && f.path == path {
			failed = &f
			b.failures = append(b.failures[:i], b.failures[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	if held != nil {
		close(held.entered)
		<-held.release
	}
	if failed != nil {
		return c.Status(failed.status).JSON(fiber.Map{"message": failed.message})
	}
	return c.Next()
}

// nextID returns a fresh id and a timestamp that grows with every call, so
// ordering by creation time is deterministic. Callers hold b.mu.
func (b *Backend) nextID() (string, time.Time) {
	b.seq++
	return strconv.Itoa(b.seq), epoch.Add(time.Duration(b.seq) * time.Minute)
}
