package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/storefront/internal/domain"
)

const (
	signinPath = "/api/auth/signin"
	signupPath = "/api/auth/signup"
)

// SignIn authenticates and returns the session token. The token is read
// from the x-auth-token response header, falling back to a "token" field
// in the JSON body.
func (c *Client) SignIn(ctx context.Context, creds domain.Credentials) (string, error) {
	resp, err := c.publicRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(signinRequestDTO{Username: creds.Username, Password: creds.Password}).
		Post(signinPath)
	if err := c.check(resp, err, http.MethodPost, signinPath); err != nil {
		return "", err
	}

	if token := strings.TrimSpace(resp.Header().Get(AuthHeader)); token != "" {
		return token, nil
	}

	var body signinResponseDTO
	if len(resp.Body()) > 0 && json.Unmarshal(resp.Body(), &body) == nil && body.Token != "" {
		return body.Token, nil
	}

	c.logger.Error("sign-in response carried no token", "status", resp.StatusCode())
	return "", fmt.Errorf("%w: server returned no session token", domain.ErrUnauthenticated)
}

// SignUp creates a new account
func (c *Client) SignUp(ctx context.Context, req domain.SignupRequest) error {
	resp, err := c.publicRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(signupRequestDTO(req)).
		Post(signupPath)
	return c.check(resp, err, http.MethodPost, signupPath)
}
