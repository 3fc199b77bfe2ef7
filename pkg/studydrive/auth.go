package studydrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"studysnatcher/pkg/errors"
)

// Login performs the full authentication handshake: warm-up request,
// seed fetch, client-secret derivation, and the credential exchange.
// On success the bearer token is installed on the session for all
// subsequent requests. Any failure is fatal; rate-limit retry does not
// apply to login.
func (c *Client) Login(ctx context.Context, email, password string) error {
	// Warm-up establishes session-level cookies; the response body is
	// discarded.
	warmup, err := c.do(ctx, c.httpClient, http.MethodGet, c.warmupURL, nil, nil)
	if err != nil {
		return authError(fmt.Sprintf("warm-up request failed: %v", err), 0)
	}
	io.Copy(io.Discard, warmup.Body)
	warmup.Body.Close()

	seed, err := c.fetchSeed(ctx)
	if err != nil {
		return err
	}

	c.SetHeader("Sd-Client-Secret", clientSecret(seed))

	c.logger.DebugWithFields("logging in", map[string]interface{}{
		"email": email,
	})

	resp, err := c.postForm(ctx, LoginURL(c.baseURL), url.Values{
		"email":    {email},
		"password": {password},
	})
	if err != nil {
		return authError(fmt.Sprintf("login request failed: %v", err), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return authError(fmt.Sprintf("login rejected with status %d", resp.StatusCode), resp.StatusCode)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return authError(fmt.Sprintf("malformed login response: %v", err), resp.StatusCode)
	}
	if login.AccessToken == "" {
		return authError("login response carried no access token", resp.StatusCode)
	}

	c.SetHeader("Authorization", "Bearer "+login.AccessToken)

	c.logger.Info("authenticated against studydrive gateway")
	return nil
}

// fetchSeed retrieves the one-time seed the client secret derives from
func (c *Client) fetchSeed(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, c.httpClient, http.MethodGet, SeedURL(c.baseURL), nil, nil)
	if err != nil {
		return "", authError(fmt.Sprintf("seed request failed: %v", err), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", authError(fmt.Sprintf("seed endpoint returned status %d", resp.StatusCode), resp.StatusCode)
	}

	var seed seedResponse
	if err := json.NewDecoder(resp.Body).Decode(&seed); err != nil {
		return "", authError(fmt.Sprintf("malformed seed response: %v", err), resp.StatusCode)
	}
	if seed.Seed == "" {
		return "", authError("seed response carried no seed", resp.StatusCode)
	}

	return seed.Seed, nil
}

func authError(msg string, code int) error {
	return &errors.Error{
		Type:    errors.ErrorTypeAuth,
		Message: msg,
		Code:    code,
	}
}
