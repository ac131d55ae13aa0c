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

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
)

// Client is a thin MCP server that proxies every tool to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// computer turns are paced server side
			Timeout: 2 * time.Minute,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Ludo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ludo - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Bring all four of your pieces around the board and into your home stretch.

TURN FLOW:
1. roll_dice for the current player.
2. If a piece can move, move_piece with one of the movable piece IDs (e.g. "red-0").
   With no legal move the turn passes on its own.
3. A 6 grants another roll. When a computer player is up, call play_ai.

AVAILABLE TOOLS:
- create_session, list_sessions: start or find a game
- game_state: board, whose turn it is and which pieces can move
- roll_dice, move_piece, end_turn: play a human turn
- play_ai: let computer players take their turns
- move_history: past rolls, moves and captures
- save_game, load_game, list_saves, delete_save: save slots
- list_configs: roster presets
- game_rules: full rules`),
	)

	c.registerTools()
}

func sessionProp() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func slotProp() map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": "Save slot number (1-based)",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Start a new game from a roster preset or an explicit list of seats",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Roster preset to use (see list_configs). Optional.",
				},
				"seats": map[string]any{
					"type":        "string",
					"description": `Explicit roster in turn order, e.g. "red:human,yellow:ai". Overrides config_id.`,
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, the current player, the last roll and which pieces can move",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the die for the current player. A computer player moves immediately.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleRollDice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_piece",
		Description: "Move one of the current player's pieces by the last roll",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"piece_id": map[string]any{
					"type":        "string",
					"description": `Piece to move, "<color>-<n>" with n from 0 to 3 (e.g. "red-2")`,
				},
			},
			Required: []string{"session_id", "piece_id"},
		},
	}, c.handleMovePiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "Pass the turn without moving",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleEndTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_ai",
		Description: "Let computer players take turns until a human is up or the game ends",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"delay_ms": map[string]any{
					"type":        "integer",
					"description": "Pause between computer turns in milliseconds (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlayAI)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "View past rolls, moves, captures and turn changes",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Events per page (default 20, max 100)",
				},
				"order": map[string]any{
					"type":        "string",
					"description": `"desc" (newest first, default) or "asc"`,
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Save slots
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Save the game into a slot, replacing what was there",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp(), "slot": slotProp()},
			Required:   []string{"session_id", "slot"},
		},
	}, c.handleSaveGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "load_game",
		Description: "Replace the session's game with the one saved in a slot",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp(), "slot": slotProp()},
			Required:   []string{"session_id", "slot"},
		},
	}, c.handleLoadGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_saves",
		Description: "List occupied save slots",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSaves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_save",
		Description: "Empty a save slot",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"slot": slotProp()},
			Required:   []string{"slot"},
		},
	}, c.handleDeleteSave)

	// Configuration and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List roster presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the full rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs one REST request and decodes the JSON answer into result
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

// parseSeats reads "red:human,yellow:ai"; a bare color means human
func parseSeats(s string) ([]engine.Seat, error) {
	var seats []engine.Seat
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		color, kind, found := strings.Cut(part, ":")
		seat := engine.Seat{
			Color: engine.Color(strings.ToLower(strings.TrimSpace(color))),
			Kind:  engine.KindHuman,
		}
		if found {
			seat.Kind = engine.PlayerKind(strings.ToLower(strings.TrimSpace(kind)))
		}
		seats = append(seats, seat)
	}
	if len(seats) == 0 {
		return nil, fmt.Errorf("no seats in %q", s)
	}
	return seats, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := service.CreateSessionRequest{ConfigID: request.GetString("config_id", "")}
	if raw := request.GetString("seats", ""); raw != "" {
		seats, err := parseSeats(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		req.Seats = seats
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameView != nil {
			status = formatStatusLine(s.GameView)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s) %s\n", s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.GameView
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleRollDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.turnCall(ctx, request, "/roll", nil)
}

func (c *Client) handleMovePiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pieceID, err := request.RequireString("piece_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return c.turnCall(ctx, request, "/move", map[string]string{"piece_id": strings.ToLower(pieceID)})
}

func (c *Client) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.turnCall(ctx, request, "/end-turn", nil)
}

// turnCall posts to a turn endpoint and formats the TurnResult
func (c *Client) turnCall(ctx context.Context, request mcp.CallToolRequest, suffix string, body any) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.TurnResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, suffix), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTurnResult(&result)), nil
}

func (c *Client) handlePlayAI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{}
	if _, ok := request.GetArguments()["delay_ms"]; ok {
		body["delay_ms"] = request.GetInt("delay_ms", 0)
	}

	var result service.AIPlayResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/ai"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAIPlayResult(&result)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slot, err := request.RequireInt("slot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SlotInfo
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, fmt.Sprintf("/save/%d", slot)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved session %s to slot %d (turn %d).", sessionID, info.Slot, info.Turn)), nil
}

func (c *Client) handleLoadGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slot, err := request.RequireInt("slot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view service.GameView
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, fmt.Sprintf("/load/%d", slot)), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Loaded slot %d.\n\n%s", slot, formatGameView(&view))), nil
}

func (c *Client) handleListSaves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var slots []service.SlotInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/saves", nil, &slots); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSlots(slots)), nil
}

func (c *Client) handleDeleteSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, err := request.RequireInt("slot")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.apiCall(ctx, http.MethodDelete, fmt.Sprintf("/api/saves/%d", slot), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !resp.Deleted {
		return mcp.NewToolResultText(fmt.Sprintf("Slot %d was already empty.", slot)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Slot %d deleted.", slot)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Seats: %s\n\n", cfg.Name, cfg.ConfigID, cfg.Description, formatSeats(cfg.Seats))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Rules string            `json:"rules"`
		Board service.BoardInfo `json:"board"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/rules", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resp.Rules), nil
}
