package authapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/classify"
	"github.com/vietddude/authkit/internal/core/domain"
)

// Login exchanges credentials for tokens. When the account has a second factor
// the result carries a challenge token and nothing is persisted.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, request{
		endpoint: "login",
		method:   http.MethodPost,
		path:     "/auth/login",
		in:       map[string]string{"email": email, "password": password},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return c.complete(ctx, &out)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var out domain.User
	err := c.do(ctx, request{
		endpoint: "register",
		method:   http.MethodPost,
		path:     "/auth/register",
		in:       reg,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades the stored refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context) (*domain.TokenPair, error) {
	s, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil || s.RefreshToken == "" {
		return nil, apperr.AuthenticationError{
			Base:   apperr.NewBase("Your session has ended. Please sign in again", nil),
			Reason: "no_session",
		}
	}

	var out domain.TokenPair
	err = c.do(ctx, request{
		endpoint: "refresh",
		method:   http.MethodPost,
		path:     "/auth/refresh",
		in:       map[string]string{"refresh_token": s.RefreshToken},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	if out.RefreshToken == "" {
		out.RefreshToken = s.RefreshToken
	}
	if err := c.persist(ctx, &domain.User{ID: s.UserID}, out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the session on the backend and forgets it locally. A session
// the backend no longer recognizes still counts as logged out.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, request{
		endpoint: "logout",
		method:   http.MethodPost,
		path:     "/auth/logout",
		auth:     true,
	})
	if err != nil && !apperr.IsKind(err, apperr.KindAuthentication) {
		return err
	}

	if derr := c.sessions.Delete(ctx, c.subject); derr != nil {
		ce := c.classifier.Classify(classify.StorageFailure{Operation: "session delete", Err: derr})
		c.logger.LogContextualError(ce, "logout")
		return ce
	}
	return nil
}

// SendMagicLink asks the backend to email a sign-in link.
func (c *Client) SendMagicLink(ctx context.Context, email string) error {
	return c.do(ctx, request{
		endpoint: "magic_link",
		method:   http.MethodPost,
		path:     "/auth/magic-link",
		in:       map[string]string{"email": email},
	})
}

// VerifyMagicLink completes a magic-link sign-in.
func (c *Client) VerifyMagicLink(ctx context.Context, token string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, request{
		endpoint: "magic_link_verify",
		method:   http.MethodPost,
		path:     "/auth/magic-link/verify",
		in:       map[string]string{"token": token},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return c.complete(ctx, &out)
}

// VerifyTwoFactor answers the challenge returned by Login.
func (c *Client) VerifyTwoFactor(ctx context.Context, challengeToken, code string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, request{
		endpoint: "two_factor",
		method:   http.MethodPost,
		path:     "/auth/2fa/verify",
		in:       map[string]string{"challenge_token": challengeToken, "code": code},
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	if out.TwoFactorRequired {
		return nil, c.classifier.Classify(classify.MalformedPayload{Err: errors.New("second factor requested again")})
	}
	return c.complete(ctx, &out)
}

// CurrentUser returns the signed-in account.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out domain.User
	err := c.do(ctx, request{
		endpoint: "me",
		method:   http.MethodGet,
		path:     "/auth/me",
		out:      &out,
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns one page of accounts. Requires an admin session.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) (*domain.UserPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if perPage > 0 {
		q.Set("per_page", fmt.Sprint(perPage))
	}
	path := "/admin/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out domain.UserPage
	err := c.do(ctx, request{
		endpoint: "admin_users",
		method:   http.MethodGet,
		path:     path,
		out:      &out,
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health queries the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (*domain.HealthReport, error) {
	var out domain.HealthReport
	err := c.do(ctx, request{
		endpoint: "health",
		method:   http.MethodGet,
		path:     "/health",
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) complete(ctx context.Context, res *domain.AuthResult) (*domain.AuthResult, error) {
	if res.TwoFactorRequired {
		return res, nil
	}
	if res.Tokens.AccessToken == "" {
		return nil, c.classifier.Classify(classify.MalformedPayload{Err: errors.New("response has no access token")})
	}
	if err := c.persist(ctx, res.User, res.Tokens); err != nil {
		return nil, err
	}
	return res, nil
}
