// Package authapi is the REST client for the auth backend. Every call runs
// through the retry executor and fails only with apperr.ClassifiedError values
// or the caller's context error.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/classify"
	"github.com/vietddude/authkit/internal/core/cooldown"
	"github.com/vietddude/authkit/internal/core/domain"
	"github.com/vietddude/authkit/internal/core/errlog"
	"github.com/vietddude/authkit/internal/core/retry"
	"github.com/vietddude/authkit/internal/infra/storage"
	"github.com/vietddude/authkit/internal/infra/storage/memory"
	"github.com/vietddude/authkit/internal/metrics"
)

const maxResponseBytes = 1 << 20

// Config holds auth backend settings.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Subject string        `yaml:"subject"`
}

// Client talks to the auth backend.
type Client struct {
	baseURL    string
	subject    string
	httpClient *http.Client
	classifier *classify.Classifier
	executor   *retry.Executor
	gate       cooldown.Gate
	sessions   storage.SessionRepository
	logger     errlog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithClassifier(cl *classify.Classifier) Option {
	return func(c *Client) { c.classifier = cl }
}

func WithExecutor(e *retry.Executor) Option {
	return func(c *Client) { c.executor = e }
}

func WithGate(g cooldown.Gate) Option {
	return func(c *Client) { c.gate = g }
}

func WithSessions(s storage.SessionRepository) Option {
	return func(c *Client) { c.sessions = s }
}

func WithLogger(l errlog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client. Unset collaborators default to the default retry
// policy, an in-memory cooldown gate and an in-memory session store.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	subject := cfg.Subject
	if subject == "" {
		subject = domain.DefaultSubject
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		subject: subject,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = errlog.OrNop(c.logger)
	if c.classifier == nil {
		c.classifier = classify.Default
	}
	if c.executor == nil {
		c.executor = retry.NewExecutor(retry.DefaultPolicy(), c.classifier, c.logger)
	}
	if c.gate == nil {
		c.gate = cooldown.NewMemoryGate()
	}
	if c.sessions == nil {
		c.sessions = memory.NewSessionRepo()
	}
	return c
}

// request describes one backend call.
type request struct {
	endpoint string // metrics label and cooldown key
	method   string
	path     string
	in       any
	out      any
	auth     bool
}

// do runs r under the retry executor and records the outcome.
func (c *Client) do(ctx context.Context, r request) error {
	if r.auth {
		if err := c.ensureFresh(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		return c.send(ctx, r)
	})
	metrics.APILatency.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.APIRequests.WithLabelValues(r.endpoint, "ok").Inc()
		return nil
	}
	if ce, ok := apperr.As(err); ok {
		metrics.APIRequests.WithLabelValues(r.endpoint, ce.Kind().String()).Inc()
		c.logger.LogContextualError(ce, r.endpoint)
		return err
	}
	metrics.APIRequests.WithLabelValues(r.endpoint, "canceled").Inc()
	return err
}

// send performs a single attempt.
func (c *Client) send(ctx context.Context, r request) error {
	if left := c.cooldownRemaining(ctx, r.endpoint); left > 0 {
		metrics.CooldownRejections.WithLabelValues(r.endpoint).Inc()
		return apperr.RateLimitedError{
			Base:       apperr.NewBase("Too many requests. Please wait before trying again", map[string]any{"endpoint": r.endpoint}),
			RetryAfter: &left,
		}
	}

	var body io.Reader
	if r.in != nil {
		data, err := json.Marshal(r.in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth {
		token, err := c.accessToken(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", r.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classify.ConnectivityFailure{Type: "socket", Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		hr := classify.HTTPResponse{
			StatusCode: resp.StatusCode,
			Body:       data,
			Header:     resp.Header,
			Endpoint:   r.path,
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			c.recordCooldown(ctx, r.endpoint, hr)
		}
		return hr
	}

	if r.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		return classify.MalformedPayload{Err: err}
	}
	return nil
}

func (c *Client) cooldownRemaining(ctx context.Context, key string) time.Duration {
	left, err := c.gate.Remaining(ctx, key)
	if err != nil {
		slog.Warn("Cooldown gate unavailable", "endpoint", key, "error", err)
		return 0
	}
	return left
}

func (c *Client) recordCooldown(ctx context.Context, key string, hr classify.HTTPResponse) {
	rl, ok := c.classifier.Classify(hr).(apperr.RateLimitedError)
	if !ok || rl.RetryAfter == nil || *rl.RetryAfter <= 0 {
		return
	}
	if err := c.gate.Block(ctx, key, c.now().Add(*rl.RetryAfter)); err != nil {
		slog.Warn("Failed to record cooldown", "endpoint", key, "error", err)
	}
}

func (c *Client) session(ctx context.Context) (*domain.Session, error) {
	s, err := c.sessions.Get(ctx, c.subject)
	if err != nil {
		return nil, c.classifier.Classify(classify.StorageFailure{Operation: "session read", Err: err})
	}
	return s, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	s, err := c.session(ctx)
	if err != nil || s == nil {
		return "", err
	}
	return s.AccessToken, nil
}

// ensureFresh refreshes an expired access token when a refresh token is stored.
func (c *Client) ensureFresh(ctx context.Context) error {
	s, err := c.session(ctx)
	if err != nil {
		return err
	}
	if s == nil || s.RefreshToken == "" || !s.Expired(c.now()) {
		return nil
	}
	_, err = c.Refresh(ctx)
	return err
}

// persist stores the tokens of a successful exchange under the client's subject.
func (c *Client) persist(ctx context.Context, user *domain.User, tokens domain.TokenPair) error {
	s := &domain.Session{
		Subject:      c.subject,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if user != nil {
		s.UserID = user.ID
	}
	if tokens.ExpiresIn > 0 {
		s.ExpiresAt = c.now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}
	if err := c.sessions.Save(ctx, s); err != nil {
		ce := c.classifier.Classify(classify.StorageFailure{Operation: "session write", Err: err})
		c.logger.LogContextualError(ce, "persist session")
		return ce
	}
	return nil
}
