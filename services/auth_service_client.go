// services/auth_service_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AuthServiceClient is the capability boundary to the external
// authentication collaborator: sign-up, password sign-in, session
// retrieval and sign-out. It hands back an opaque user id and email.
type AuthServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// AuthUser is what the auth service knows about an account.
type AuthUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthSession pairs an account with its session token.
type AuthSession struct {
	User        AuthUser `json:"user"`
	AccessToken string   `json:"access_token"`
}

func NewAuthServiceClient(baseURL, token string) *AuthServiceClient {
	return &AuthServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *AuthServiceClient) post(path string, payload map[string]interface{}, out interface{}) error {
	url := fmt.Sprintf("%s%s", c.BaseURL, path)

	jsonData, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthService %s returned %d: %s", path, resp.StatusCode, string(body))
		return fmt.Errorf("auth service %s failed: %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// SignUp registers a new account and opens a session for it.
func (c *AuthServiceClient) SignUp(email, password string) (*AuthSession, error) {
	var out AuthSession
	if err := c.post("/auth/signup", map[string]interface{}{
		"email":    email,
		"password": password,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn exchanges credentials for a session.
func (c *AuthServiceClient) SignIn(email, password string) (*AuthSession, error) {
	var out AuthSession
	if err := c.post("/auth/signin", map[string]interface{}{
		"email":    email,
		"password": password,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession resolves an access token back to its account.
func (c *AuthServiceClient) GetSession(accessToken string) (*AuthUser, error) {
	var out AuthUser
	if err := c.post("/auth/session", map[string]interface{}{
		"access_token": accessToken,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut invalidates a session token upstream.
func (c *AuthServiceClient) SignOut(accessToken string) error {
	return c.post("/auth/signout", map[string]interface{}{
		"access_token": accessToken,
	}, nil)
}
