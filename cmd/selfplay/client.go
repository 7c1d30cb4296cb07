package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/atomic-chess/game/engine"
	"github.com/wricardo/atomic-chess/game/service"
)

// Client drives one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) do(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// CreateSession starts a new session from a setup ("" for the default)
func (c *Client) CreateSession(configID string) (*engine.GameState, error) {
	var session service.SessionInfo
	if err := c.do(http.MethodPost, "/api/sessions", map[string]string{"config_id": configID}, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume attaches to an existing session
func (c *Client) Resume(sessionID string) (*engine.GameState, error) {
	c.sessionID = sessionID
	return c.GetState()
}

func (c *Client) GetState() (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(http.MethodGet, "/api/sessions/"+c.sessionID+"/state", nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Reset() (*engine.GameState, error) {
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(http.MethodPost, "/api/sessions/"+c.sessionID+"/reset", nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// Move plays one move; a rejected move returns the unchanged state and an error
func (c *Client) Move(from, to engine.Square) (*service.MoveResult, error) {
	var result service.MoveResult
	req := map[string]string{"from": from.String(), "to": to.String()}
	if err := c.do(http.MethodPost, "/api/sessions/"+c.sessionID+"/move", req, &result); err != nil {
		return nil, fmt.Errorf("execute move: %w", err)
	}
	if !result.Success {
		return &result, fmt.Errorf("move %s-%s rejected: %s", from, to, result.Reason)
	}
	return &result, nil
}
