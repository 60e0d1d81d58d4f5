package mcp

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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/rush-hour-solver/game/engine"
	"github.com/wricardo/rush-hour-solver/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Solves may take up to the server's solve timeout
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Rush Hour Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rush Hour Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PUZZLE OBJECTIVE:
Slide vehicles along their own axis until the target car (usually "r")
reaches its goal, normally the right edge of its row.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage play sessions
- board: show the current board
- move: slide one vehicle by one cell (vehicle + Up/Down/Left/Right)
- bulk_move: several slides at once
- reset_puzzle: restore the initial placement
- move_history: past moves
- hint: next move of a shortest solution
- solve_session: shortest solution from the current board
- solve_puzzle: solve an ad-hoc puzzle given as layout rows
- list_puzzles: puzzles in the library
- puzzle_instructions: rules and notation`),
	)

	c.registerTools()
}

func sessionProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func moveProperties() map[string]any {
	return map[string]any{
		"vehicle": map[string]any{
			"type":        "string",
			"description": "Vehicle name as shown on the board",
		},
		"direction": map[string]any{
			"type":        "string",
			"enum":        []string{"Up", "Down", "Left", "Right"},
			"description": "Direction to slide one cell",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new play session for a library puzzle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"puzzle_id": map[string]any{
					"type":        "string",
					"description": "Library puzzle to play (optional, defaults to the library default)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active play sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the current board of a session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleBoard)

	moveProps := moveProperties()
	moveProps["session_id"] = sessionProperty()
	moveProps["intent"] = map[string]any{
		"type":        "string",
		"description": "Brief explanation of why this move helps",
	}
	moveProps["reset"] = map[string]any{
		"type":        "boolean",
		"description": "Reset before moving",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide one vehicle by one cell",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: moveProps,
			Required:   []string{"session_id", "vehicle", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute several slides in sequence; stops at the first blocked move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"moves": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":        "string",
						"description": "Move written as vehicle-Direction, e.g. r-Right",
					},
					"description": "Moves in order",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the plan behind this sequence",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_puzzle",
		Description: "Reset the session to the puzzle's initial placement",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProperty(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Solving
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Suggest the next move of a shortest solution from the current board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleHint)

	budgetProps := map[string]any{
		"max_nodes": map[string]any{
			"type":        "integer",
			"description": "Maximum states to expand (optional)",
		},
		"timeout_ms": map[string]any{
			"type":        "integer",
			"description": "Search time budget in milliseconds (optional)",
		},
	}

	sessionSolveProps := map[string]any{"session_id": sessionProperty()}
	for k, v := range budgetProps {
		sessionSolveProps[k] = v
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_session",
		Description: "Find a shortest solution from a session's current board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: sessionSolveProps,
			Required:   []string{"session_id"},
		},
	}, c.handleSolveSession)

	puzzleSolveProps := map[string]any{
		"layout": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Board rows, one character per cell, '.' for empty, e.g. [\"..a...\", \"rra...\"]",
		},
		"target": map[string]any{
			"type":        "string",
			"description": "Target vehicle (default r)",
		},
	}
	for k, v := range budgetProps {
		puzzleSolveProps[k] = v
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_puzzle",
		Description: "Find a shortest solution for a puzzle given as layout rows",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: puzzleSolveProps,
			Required:   []string{"layout"},
		},
	}, c.handleSolvePuzzle)

	// Library
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_puzzles",
		Description: "List puzzles available in the library",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListPuzzles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_instructions",
		Description: "Get the rules of Rush Hour and the board notation",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func budget(args map[string]any) map[string]any {
	body := map[string]any{}
	if n, ok := intArg(args, "max_nodes"); ok && n > 0 {
		body["max_nodes"] = n
	}
	if ms, ok := intArg(args, "timeout_ms"); ok && ms > 0 {
		body["timeout_ms"] = ms
	}
	return body
}

// parseMoveArg splits "r-Right" or "r Right" into its parts
func parseMoveArg(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexAny(s, "- ")
	if i <= 0 || i == len(s)-1 {
		return nil, fmt.Errorf("move %q must look like vehicle-Direction", s)
	}
	dir, err := engine.ParseDirection(s[i+1:])
	if err != nil {
		return nil, fmt.Errorf("move %q: %w", s, err)
	}
	return map[string]string{"vehicle": strings.TrimSpace(s[:i]), "direction": string(dir)}, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if puzzleID := stringArg(args, "puzzle_id"); puzzleID != "" {
		body["puzzle_id"] = puzzleID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPuzzle: %s\n\n%s", session.ID, session.PuzzleID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.Solved {
			status = "solved"
		}
		fmt.Fprintf(&b, "- %s (Puzzle: %s, %s, Created: %s)\n",
			s.ID, s.PuzzleID, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	reset, _ := args["reset"].(bool)

	// intent is for the caller's own reasoning and is not sent on

	body := map[string]any{
		"vehicle":   stringArg(args, "vehicle"),
		"direction": stringArg(args, "direction"),
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	movesRaw, _ := args["moves"].([]any)
	reset, _ := args["reset"].(bool)

	moves := make([]map[string]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		s, ok := m.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("move %v is not a string", m)), nil
		}
		move, err := parseMoveArg(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		moves = append(moves, move)
	}

	body := map[string]any{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHint(&hint)), nil
}

func (c *Client) handleSolveSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/solve"), budget(args), &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleSolvePuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	rowsRaw, _ := args["layout"].([]any)
	rows := make([]string, 0, len(rowsRaw))
	for _, r := range rowsRaw {
		row, ok := r.(string)
		if !ok {
			return mcp.NewToolResultError("layout rows must be strings"), nil
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError("layout is required"), nil
	}

	body := budget(args)
	body["puzzle"] = engine.PuzzleConfig{
		Name:   "ad-hoc",
		Target: stringArg(args, "target"),
		Layout: rows,
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/solve", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleListPuzzles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var puzzles []service.PuzzleInfo
	if err := c.apiCall(ctx, "GET", "/api/puzzles", nil, &puzzles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Puzzles:\n\n")
	for _, p := range puzzles {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Board: %dx%d, Vehicles: %d, Format: %s\n\n",
			p.PuzzleID, p.Name, p.Description, p.Size, p.Size, p.Vehicles, p.Format)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Rush Hour - Instructions

OBJECTIVE:
Get the target car (usually "r") to its goal. Unless the puzzle names a goal
cell, the goal is the far edge of the board along the target's axis; for a
horizontal car that is the right edge of its row.

RULES:
• Every vehicle is 2 or 3 cells long and lies either horizontally or vertically
• Horizontal vehicles slide Left/Right, vertical vehicles slide Up/Down
• One move slides one vehicle by exactly one cell into an empty cell
• Vehicles never leave the board, overlap or change orientation

BOARD NOTATION:
• Rows are printed top to bottom, row 0 first
• Each cell shows the first letter of the vehicle covering it
• '.' is an empty cell
• Positions are (row, col), zero-indexed from the top-left corner

MOVE NOTATION:
• vehicle-Direction, e.g. "b-Down" or "r-Right"
• bulk_move takes a list of these and stops at the first blocked move

STRATEGY:
• Use hint to get the next move of a shortest solution
• Use solve_session to see the full shortest sequence from the current board
• "unsolvable" means no sequence of moves reaches the goal
• "budget_exceeded" or "cancelled" means the search stopped early; it says
  nothing about whether a solution exists`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nPuzzle: %s\nCreated: %s\nLast accessed: %s\n\n",
		session.ID, session.PuzzleID,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	b.WriteString(formatGameState(session.GameState))
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No board available\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Puzzle: %s (%dx%d)\n", state.PuzzleName, state.Size, state.Size)
	b.WriteString(formatBoard(state))
	fmt.Fprintf(&b, "Goal: %s at (%d,%d)\n", state.Goal.Name, state.Goal.Row, state.Goal.Col)
	fmt.Fprintf(&b, "Moves this attempt: %d (total %d)\n", state.CurrentMovesCount, state.TotalMoves)

	if state.Solved {
		b.WriteString("Status: SOLVED\n")
	} else {
		b.WriteString("Status: in progress\n")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	b.WriteString("\nVehicles:\n")
	for _, v := range state.Vehicles {
		fmt.Fprintf(&b, "  %s at (%d,%d) length %d %s\n", v.Name, v.Row, v.Col, v.Length, v.Orientation)
	}
	return b.String()
}

// formatBoard renders the board rows with column and row indices
func formatBoard(state *engine.GameState) string {
	var b strings.Builder
	b.WriteString("   ")
	for col := 0; col < state.Size; col++ {
		fmt.Fprintf(&b, "%d", col%10)
	}
	b.WriteString("\n")
	for row, line := range state.Board {
		fmt.Fprintf(&b, "%2d %s", row, line)
		if row == state.Goal.Row && state.Goal.Orientation == engine.Horizontal {
			b.WriteString(" <- exit")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatMoves(moves []engine.Move) string {
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	if result.Success {
		b.WriteString("Move succeeded\n")
	} else {
		b.WriteString("Move blocked\n")
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "%s-%s: (%d,%d) -> (%d,%d)\n", s.Vehicle, s.Direction, s.From.Row, s.From.Col, s.To.Row, s.To.Col)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", formatMoves(result.PossibleMoves))
	}
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session %s: executed %d of %d moves\n", sessionID, result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d (%s): %s\n", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			status := "ok"
			if !s.Success {
				status = "blocked"
			}
			fmt.Fprintf(&b, "  %d. %s-%s %s\n", s.Idx, s.Vehicle, s.Direction, status)
		}
	}

	if result.Solved {
		b.WriteString("\nPUZZLE SOLVED!\n")
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))

	if !result.Solved && len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", formatMoves(result.PossibleMoves))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d of %d, %d total):\n\n", history.Page, history.TotalPages, history.TotalMoves)

	for _, m := range history.Moves {
		status := "ok"
		if !m.Success {
			status = "blocked"
		}
		fmt.Fprintf(&b, "#%d %s-%s (%d,%d) -> (%d,%d) %s\n",
			m.MoveNumber, m.Vehicle, m.Direction,
			m.FromPosition.Row, m.FromPosition.Col, m.ToPosition.Row, m.ToPosition.Col, status)
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\nMore moves on page %d\n", history.Page+1)
	}
	return b.String()
}

func formatHint(hint *service.HintResult) string {
	var b strings.Builder
	if hint.Move != nil {
		fmt.Fprintf(&b, "Next move: %s\n", hint.Move)
		fmt.Fprintf(&b, "Moves remaining in a shortest solution: %d\n", hint.Remaining)
	} else {
		fmt.Fprintf(&b, "%s\n", hint.Message)
	}
	if len(hint.Blocking) > 0 {
		fmt.Fprintf(&b, "Vehicles between the target and its goal: %s\n", strings.Join(hint.Blocking, ", "))
	}
	return b.String()
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s\n", result.Outcome)
	fmt.Fprintf(&b, "Finding a solution took %.2f ms (%d states expanded)\n", result.DurationMS, result.Expanded)

	if result.Outcome != engine.Solved {
		return b.String()
	}

	fmt.Fprintf(&b, "Total number of steps: %d\n", result.Steps)
	if len(result.MoveLog) > 0 {
		b.WriteString("\n")
		for i, m := range result.MoveLog {
			fmt.Fprintf(&b, "%d. %s\n", i+1, m)
		}
	}
	return b.String()
}
