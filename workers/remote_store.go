package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RemoteRow is one (user_id, key, value) row on the hosted sync service.
type RemoteRow struct {
	UserID string `json:"user_id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// RemoteStore is the upstream mirror capability: select all rows for a
// user, upsert one row. The HTTP client below is the production
// implementation; tests substitute their own.
type RemoteStore interface {
	FetchAll(ctx context.Context, userID string) ([]RemoteRow, error)
	Upsert(ctx context.Context, row RemoteRow) error
}

// RemoteStoreClient talks to the sync service's state endpoints,
// authenticated with the dedicated service token.
type RemoteStoreClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewRemoteStoreClient(baseURL, token string) *RemoteStoreClient {
	return &RemoteStoreClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchAll returns every stored row for a user. A user with no rows
// yields an empty slice, not an error.
func (c *RemoteStoreClient) FetchAll(ctx context.Context, userID string) ([]RemoteRow, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/state", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid sync service URL %q: %w", c.BaseURL, err)
	}
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sync service: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Rows []RemoteRow `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sync service response: %w", err)
	}
	return response.Rows, nil
}

// Upsert writes one row keyed by (user_id, key), replacing any previous
// value wholesale.
func (c *RemoteStoreClient) Upsert(ctx context.Context, row RemoteRow) error {
	payload, _ := json.Marshal(row)

	req, err := http.NewRequestWithContext(ctx, "PUT",
		fmt.Sprintf("%s/api/v1/state", c.BaseURL), bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call sync service: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
