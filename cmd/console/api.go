package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/internal/handlers"
	"github.com/jwebster45206/manga-engine/pkg/game"
)

// apiClient talks to the manga-engine API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) healthy() bool {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends a request and decodes a successful JSON response into out.
func (c *apiClient) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *apiClient) createSession(playerName string) (*handlers.SessionResponse, error) {
	var resp handlers.SessionResponse
	err := c.do(http.MethodPost, "/v1/sessions", handlers.CreateSessionRequest{PlayerName: playerName}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) getSession(id uuid.UUID) (*handlers.SessionResponse, error) {
	var resp handlers.SessionResponse
	if err := c.do(http.MethodGet, "/v1/sessions/"+id.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) act(id uuid.UUID, req handlers.ActionRequest) (*handlers.SessionResponse, error) {
	var resp handlers.SessionResponse
	if err := c.do(http.MethodPost, "/v1/sessions/"+id.String()+"/actions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) journal(id uuid.UUID) ([]game.Entry, error) {
	var entries []game.Entry
	if err := c.do(http.MethodGet, "/v1/sessions/"+id.String()+"/journal", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
