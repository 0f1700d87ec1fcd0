package api

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/theleywin/SkillShare/src/logging"
)

const defaultTimeout = 15 * time.Second

// Client talks to the SkillShare REST API. Credentials travel in the session
// cookie kept by the client's jar. A Client is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	rest    *resty.Client
	jar     *resettableJar
	log     *logrus.Entry
}

type settings struct {
	transport http.RoundTripper
	timeout   time.Duration
	logger    *logrus.Entry
}

type Option func(*settings)

// WithTransport replaces the network transport, for example with an
// in-process handler in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) { s.timeout = timeout }
}

func WithLogger(entry *logrus.Entry) Option {
	return func(s *settings) { s.logger = entry }
}

func defaultTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse api url")
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("api url %q must be absolute", baseURL)
	}

	s := settings{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.transport == nil {
		s.transport = defaultTransport()
	}
	if s.logger == nil {
		s.logger = logging.For("api")
	}

	jar := newResettableJar()
	rest := resty.NewWithClient(&http.Client{
		Transport: s.transport,
		Jar:       jar,
		Timeout:   s.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	})
	rest.SetBaseURL(parsed.String())
	rest.SetHeader("Accept", "application/json")

	return &Client{
		baseURL: parsed,
		rest:    rest,
		jar:     jar,
		log:     s.logger,
	}, nil
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the credentials currently held for the API host.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies installs previously saved credentials.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
}

// ClearCookies drops every credential held by the client.
func (c *Client) ClearCookies() {
	c.jar.Reset()
}

type apiMessage struct {
	Message string `json:"message"`
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx).SetError(&apiMessage{})
}

// execute sends req and decodes a 2xx JSON body into R. Failures are mapped
// onto the error taxonomy of this package.
func execute[R any](ctx context.Context, c *Client, op string, req *resty.Request, method, path string) (R, error) {
	var result R
	req.SetResult(&result)

	res, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, errors.Wrap(ctxErr, op)
		}
		c.log.WithError(err).WithField("op", op).Warn("Request failed")
		return result, &NetworkError{Op: op, Err: err}
	}

	if res.IsError() {
		return result, c.statusError(op, res)
	}
	return result, nil
}

// send is execute for calls whose response body is not needed.
func send(ctx context.Context, c *Client, op string, req *resty.Request, method, path string) error {
	_, err := execute[struct{}](ctx, c, op, req, method, path)
	return err
}

func (c *Client) statusError(op string, res *resty.Response) error {
	message := ""
	if body, ok := res.Error().(*apiMessage); ok && body != nil {
		message = body.Message
	}
	if message == "" {
		message = strings.TrimSpace(res.String())
	}

	c.log.WithFields(logrus.Fields{
		"op":     op,
		"status": res.StatusCode(),
		"body":   message,
	}).Debug("Non 2xx response")

	switch res.StatusCode() {
	case http.StatusUnauthorized:
		return &AuthenticationError{Message: message}
	case http.StatusForbidden:
		return &AuthorizationError{Message: message}
	}
	return &ServerError{Op: op, Status: res.StatusCode(), Message: message}
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
