package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

// CreateSession starts a new session on puzzleID, or the server default
// when empty, and makes it the client's session
func (c *Client) CreateSession(ctx context.Context, puzzleID string) (*engine.GameState, error) {
	var req any
	if puzzleID != "" {
		req = map[string]string{"puzzle_id": puzzleID}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume makes id the client's session and returns its current state
func (c *Client) Resume(ctx context.Context, id string) (*engine.GameState, error) {
	c.sessionID = id
	state, err := c.GetState(ctx)
	if err != nil {
		c.sessionID = ""
		return nil, err
	}
	return state, nil
}

// GetState fetches the current board
func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

// Move slides one vehicle one cell
func (c *Client) Move(ctx context.Context, move engine.Move) (*service.MoveResult, error) {
	req := map[string]string{"vehicle": move.Vehicle, "direction": string(move.Direction)}

	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/move"), req, &result); err != nil {
		return nil, fmt.Errorf("move %s: %w", move, err)
	}
	return &result, nil
}

// BulkMove applies moves in order, stopping at the first blocked one
func (c *Client) BulkMove(ctx context.Context, moves []engine.Move) (*service.BulkMoveResult, error) {
	req := struct {
		Moves []engine.Move `json:"moves"`
	}{Moves: moves}

	var result service.BulkMoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/bulk-move"), req, &result); err != nil {
		return nil, fmt.Errorf("bulk move: %w", err)
	}
	return &result, nil
}

// Reset restores the session's initial placement
func (c *Client) Reset(ctx context.Context) (*engine.GameState, error) {
	var resetResp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &resetResp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resetResp.State, nil
}

// Hint asks for the next move of a shortest solution
func (c *Client) Hint(ctx context.Context) (*service.HintResult, error) {
	var hint service.HintResult
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/hint"), nil, &hint); err != nil {
		return nil, fmt.Errorf("hint: %w", err)
	}
	return &hint, nil
}

// Solve asks for a full shortest solution from the current board
func (c *Client) Solve(ctx context.Context, maxNodes int, timeout time.Duration) (*service.SolveResult, error) {
	req := map[string]int64{}
	if maxNodes > 0 {
		req["max_nodes"] = int64(maxNodes)
	}
	if timeout > 0 {
		req["timeout_ms"] = timeout.Milliseconds()
	}

	var result service.SolveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/solve"), req, &result); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// do sends body as JSON and decodes a 2xx response into result. Other
// statuses become errors carrying the server's error message.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
