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

	"github.com/wricardo/atomic-chess/game/engine"
	"github.com/wricardo/atomic-chess/game/service"
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
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Atomic Chess",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(`Atomic Chess - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Destroy the enemy king. Every capture detonates: the captured piece, the
capturing piece and every non-pawn piece on the eight surrounding squares
are removed.

AVAILABLE TOOLS:
- create_session: Create a new game from a named setup
- list_sessions / get_session: Inspect sessions
- game_state: Board, side to move, status and FEN
- move: Single move given as two squares (e.g. from "e2" to "e4") - requires intent explanation
- bulk_move: Several moves in sequence, stops at the first rejected move - requires intent explanation
- reset_game: Restore the starting setup
- move_history: View applied moves with casualties
- list_configs: List the starting setups
- game_instructions: Full rules of atomic chess as played here
- describe_square: What sits on a square and what a capture there would destroy

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	sessionIDProp := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}

	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session from a starting setup",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Setup to start from, as returned by list_configs (optional, defaults to standard)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List game sessions, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of sessions to return",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, side to move, status and FEN",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move a piece of the side to move. Squares are algebraic, file a-h then rank 1-8.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"from": map[string]interface{}{
					"type":        "string",
					"description": "Start square, e.g. e2",
				},
				"to": map[string]interface{}{
					"type":        "string",
					"description": "Destination square, e.g. e4",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "from", "to"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, alternating sides. Stops at the first rejected move or when the game ends.", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"from": map[string]interface{}{"type": "string"},
							"to":   map[string]interface{}{"type": "string"},
						},
						"required": []string{"from", "to"},
					},
					"description": "Moves to play, e.g. [{\"from\":\"e2\",\"to\":\"e4\"},{\"from\":\"e7\",\"to\":\"e5\"}]",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its starting setup",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the applied moves of a session, with casualties",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "asc for oldest first, desc for newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available starting setups",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of atomic chess as implemented by this server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_square",
		Description: "Describe a square: its occupant, the blast area around it and which pieces a capture there would destroy. Useful before capturing near a king.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"square": map[string]interface{}{
					"type":        "string",
					"description": "Square to describe, e.g. f7",
				},
			},
			Required: []string{"session_id", "square"},
		},
	}, c.handleDescribeSquare)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves the tools over streamable HTTP
func (c *Client) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(c.mcpServer, server.WithStateLess(true))
}

// ServeStdio serves the tools on stdin/stdout until EOF
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
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

func sessionPath(sessionID string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID, _ := args["config_id"].(string)
	if configID == "" {
		configID, _ = args["config_name"].(string)
	}

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/sessions"
	if limit, ok := request.GetArguments()["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response struct {
		Count    int                   `json:"count"`
		Total    int                   `json:"total"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions (%d of %d):\n\n", response.Count, response.Total)
	for _, s := range response.Sessions {
		status := "?"
		if s.GameState != nil {
			status = fmt.Sprintf("%s, %d moves", s.GameState.Status, s.GameState.TotalMoves)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, %s, Last used: %s)\n",
			s.ID, s.ConfigName, status, s.LastAccessedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	from, _ := args["from"].(string)
	to, _ := args["to"].(string)
	reset, _ := args["reset"].(bool)

	body := map[string]interface{}{
		"from":  strings.ToLower(strings.TrimSpace(from)),
		"to":    strings.ToLower(strings.TrimSpace(to)),
		"reset": reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	moves, err := parseMoveSpecs(movesRaw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

// parseMoveSpecs accepts {"from","to"} objects as well as "e2e4" or "e2-e4" strings
func parseMoveSpecs(raw []interface{}) ([]service.MoveSpec, error) {
	moves := make([]service.MoveSpec, 0, len(raw))
	for i, m := range raw {
		switch v := m.(type) {
		case map[string]interface{}:
			from, _ := v["from"].(string)
			to, _ := v["to"].(string)
			moves = append(moves, service.MoveSpec{From: strings.ToLower(from), To: strings.ToLower(to)})
		case string:
			s := strings.ToLower(strings.NewReplacer("-", "", " ", "").Replace(v))
			if len(s) != 4 {
				return nil, fmt.Errorf("move %d: %q is not of the form e2e4", i+1, v)
			}
			moves = append(moves, service.MoveSpec{From: s[:2], To: s[2:]})
		default:
			return nil, fmt.Errorf("move %d: expected an object with from and to", i+1)
		}
	}
	return moves, nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

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
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch current segment from live state
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultText(formatHistory(&history)), nil
	}

	result := formatHistory(&history) + "\n" + formatCurrentSegment(session.GameState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Setups:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  FEN: %s\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.FEN)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Atomic Chess - Complete Instructions

GAME OBJECTIVE:
Destroy the enemy king. There is no check and no checkmate: a king is lost
only when it is removed from the board by an explosion.

BOARD:
• Squares are named file a-h, rank 1-8 (a1 is White's lower left corner)
• Uppercase letters are White pieces, lowercase are Black: K Q R B N P
• "." marks an empty square
• White moves first, then the sides alternate

PIECE MOVEMENT:
• King: one square in any direction
• Queen: any distance along a rank, file or diagonal
• Rook: any distance along a rank or file
• Bishop: any distance along a diagonal
• Knight: an L shape, jumping over anything in between
• Pawn: one square forward onto an empty square, two from its starting rank
  when both squares are empty, captures one square diagonally forward
• Sliding pieces (queen, rook, bishop) cannot pass through occupied squares
• You may never land on your own piece

NOT SUPPORTED:
• Castling, en passant and promotion do not exist here
• Nothing stops a king from moving next to danger; there is no check rule

EXPLOSIONS:
Every capture detonates on the destination square. Removed are:
• the captured piece
• the capturing piece itself
• every piece other than a pawn on the eight surrounding squares, of either side
Pawns next to the blast survive. A pawn that captures, or is captured, is removed.

WINNING:
• After each move both kings are checked, White first
• If the White king is gone, Black wins, even when the Black king is gone too
• Otherwise if the Black king is gone, White wins
• Once a side has won, every further move is rejected

REJECTION CODES:
• game_over: the game already ended
• invalid_square: a square name is not a1-h8
• no_piece: the start square is empty
• wrong_side: the piece belongs to the side not on move
• own_piece: the destination holds one of your pieces
• path_blocked: a sliding or pawn move passes through a piece
• illegal_move: the piece cannot move that way
A rejected move changes nothing and does not pass the turn.

STRATEGY HINTS:
• Use describe_square before capturing: kings_hit tells you whose king a
  capture on that square would destroy
• Capturing next to your own king destroys it
• When the kings touch, a capture next to both destroys both and Black wins
• Pieces crowded around a king are detonation targets for the opponent

API USAGE:
• move takes from/to squares, bulk_move a list of {from, to} objects
• bulk_move alternates sides as moves are applied and stops at the first rejection
• reset=true restores the starting setup before moving
• move_history lists applied moves only; rejected moves are never recorded

Good luck, and mind the blast radius!`

func (c *Client) handleDescribeSquare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	square, _ := args["square"].(string)
	square = strings.ToLower(strings.TrimSpace(square))

	var report service.SquareReport
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/squares/"+url.PathEscape(square)), nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSquareReport(&report)), nil
}

// Formatting helpers

func formatSquareReport(report *service.SquareReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Square %s:\n━━━━━━━━━━━━━━━━━━━━━━━━\n", report.Square)
	if report.Piece != nil {
		fmt.Fprintf(&b, "Occupant: %s (%c)\n", report.Piece, report.Piece.Letter())
	} else {
		b.WriteString("Occupant: empty\n")
	}

	neighbours := make([]string, 0, len(report.Blast))
	for _, info := range report.Blast {
		neighbours = append(neighbours, fmt.Sprintf("%s=%c", info.Square, info.Piece.Letter()))
	}
	fmt.Fprintf(&b, "Blast area: %s\n", strings.Join(neighbours, " "))

	if len(report.Doomed) == 0 {
		b.WriteString("A capture here destroys no piece besides the capturer\n")
	} else {
		doomed := make([]string, 0, len(report.Doomed))
		for _, info := range report.Doomed {
			doomed = append(doomed, fmt.Sprintf("%s on %s", info.Piece, info.Square))
		}
		fmt.Fprintf(&b, "A capture here destroys: %s\n", strings.Join(doomed, ", "))
	}

	for _, side := range report.KingsHit {
		fmt.Fprintf(&b, "⚠️ A capture here destroys the %s king!\n", side)
	}
	return b.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "%s to move | Status: %s | Moves: %d\n\n",
		titleSide(state.SideToMove), state.Status, state.TotalMoves)

	result.WriteString(formatBoard(&state.Board))

	fmt.Fprintf(&result, "\nFEN: %s\n", state.Board.Encode(state.SideToMove))
	fmt.Fprintf(&result, "Material: White %d, Black %d\n",
		engine.Material(&state.Board, engine.White), engine.Material(&state.Board, engine.Black))
	if state.Status == engine.InProgress {
		fmt.Fprintf(&result, "King safety (%s): %s\n", state.SideToMove,
			engine.AnalyzeKingSafety(state, state.SideToMove))
	}

	switch state.Status {
	case engine.WhiteWon:
		result.WriteString("\n🏆 WHITE WON")
	case engine.BlackWon:
		result.WriteString("\n🏆 BLACK WON")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

// formatBoard renders the board with rank and file labels, rank 8 first
func formatBoard(board *engine.Board) string {
	var b strings.Builder
	for i, row := range board.Rows() {
		fmt.Fprintf(&b, "%d ", engine.Ranks-i)
		for j := 0; j < len(row); j++ {
			b.WriteByte(' ')
			b.WriteByte(row[j])
		}
		b.WriteByte('\n')
	}
	b.WriteString("   a b c d e f g h\n")
	return b.String()
}

func titleSide(side engine.Side) string {
	s := side.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move rejected\n")
		if result.ReasonCode != "" {
			fmt.Fprintf(&b, "Reason: %s (%s)\n", result.ReasonCode, result.Reason)
		}
	}

	if result.Step != nil {
		b.WriteString("Step: " + formatStep(*result.Step))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)
	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s [%s]\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s", s.Idx, formatStep(s))
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	fmt.Fprintf(&b, "\nMaterial diff (White-Black): %+d\n", result.MaterialDiff)
	if result.KingSafety != "" {
		fmt.Fprintf(&b, "King safety: %s\n", result.KingSafety)
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

// formatStep renders one compact step line
func formatStep(s service.StepInfo) string {
	line := fmt.Sprintf("%s %c %s-%s", s.Side, s.Piece.Letter(), s.From, s.To)
	if s.Capture {
		line += " x" + formatCasualties(s.Casualties)
	}
	return line + fmt.Sprintf(" → %s\n", s.StatusAfter)
}

func formatCasualties(casualties []engine.Casualty) string {
	parts := make([]string, 0, len(casualties))
	for _, c := range casualties {
		parts = append(parts, fmt.Sprintf("%c%s", c.Piece.Letter(), c.Square))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func formatHistoryEntry(num int, move engine.MoveHistoryEntry) string {
	line := fmt.Sprintf("%d. %s %c %s-%s", num, move.Side, move.Piece.Letter(), move.From, move.To)
	if move.Detonation != nil {
		line += " 💥" + formatCasualties(move.Detonation.Casualties)
	}
	if move.StatusAfter != engine.InProgress {
		line += " " + string(move.StatusAfter)
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		b.WriteString(formatHistoryEntry(move.MoveNumber, move))
	}

	return b.String()
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Move Segment - Moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves since the last reset)"
	}

	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		b.WriteString(formatHistoryEntry(i+1, move))
	}
	return b.String()
}
