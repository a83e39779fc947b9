package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPProvider talks to the hosted identity provider's REST API. The admin
// endpoints require the service key; user-facing endpoints use the anon
// surface of the same API.
type HTTPProvider struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewHTTPProvider(baseURL, serviceKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result SignInResult
	status, err := p.do(ctx, http.MethodPost, "/token?grant_type=password", body, &result)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", status)
	}
	return &result, nil
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data": Metadata{
			FullName: fullName,
			Role:     RolePending,
		},
	}
	var user User
	status, err := p.do(ctx, http.MethodPost, "/signup", body, &user)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("identity provider returned status %d", status)
	}
	return &user, nil
}

func (p *HTTPProvider) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *HTTPProvider) AdminListUsers(ctx context.Context) ([]*User, error) {
	var result struct {
		Users []*User `json:"users"`
	}
	status, err := p.do(ctx, http.MethodGet, "/admin/users", nil, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", status)
	}
	return result.Users, nil
}

func (p *HTTPProvider) AdminUpdateUserRole(ctx context.Context, userID string, role Role) (*User, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"user_metadata": map[string]string{"role": string(role)},
	}
	var user User
	status, err := p.do(ctx, http.MethodPut, "/admin/users/"+userID, body, &user)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", status)
	}
	return &user, nil
}

// do issues a JSON request against the provider and decodes the response
// into out when the status indicates a body worth decoding.
func (p *HTTPProvider) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.serviceKey)
		req.Header.Set("apikey", p.serviceKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode, nil
}
