package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tenorio-sousa/Ludo-MC322/game/config"
	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
	"github.com/tenorio-sousa/Ludo-MC322/game/service"
	"github.com/tenorio-sousa/Ludo-MC322/game/session"
	"github.com/tenorio-sousa/Ludo-MC322/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	RollDiceFunc    func(ctx context.Context, sessionID string) (*service.TurnResult, error)
	MovePieceFunc   func(ctx context.Context, sessionID, pieceID string) (*service.TurnResult, error)
	EndTurnFunc     func(ctx context.Context, sessionID string) (*service.TurnResult, error)
	PlayAITurnsFunc func(ctx context.Context, sessionID string, delay time.Duration, onStep func(*service.TurnResult)) (*service.AIPlayResult, error)

	GetGameStateFunc func(ctx context.Context, sessionID string) (*service.GameView, error)
	GetHistoryFunc   func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	SaveGameFunc   func(ctx context.Context, sessionID string, slot int) (*service.SlotInfo, error)
	LoadGameFunc   func(ctx context.Context, sessionID string, slot int) (*service.GameView, error)
	DeleteSaveFunc func(ctx context.Context, slot int) (bool, error)
	ListSavesFunc  func(ctx context.Context) ([]*service.SlotInfo, error)

	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: req.ConfigID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "test-config", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) RollDice(ctx context.Context, sessionID string) (*service.TurnResult, error) {
	if m.RollDiceFunc != nil {
		return m.RollDiceFunc(ctx, sessionID)
	}
	return &service.TurnResult{Roll: 3, GameView: &service.GameView{SessionID: sessionID}}, nil
}

func (m *MockGameService) MovePiece(ctx context.Context, sessionID, pieceID string) (*service.TurnResult, error) {
	if m.MovePieceFunc != nil {
		return m.MovePieceFunc(ctx, sessionID, pieceID)
	}
	return &service.TurnResult{Moved: pieceID, GameView: &service.GameView{SessionID: sessionID}}, nil
}

func (m *MockGameService) EndTurn(ctx context.Context, sessionID string) (*service.TurnResult, error) {
	if m.EndTurnFunc != nil {
		return m.EndTurnFunc(ctx, sessionID)
	}
	return &service.TurnResult{GameView: &service.GameView{SessionID: sessionID}}, nil
}

func (m *MockGameService) PlayAITurns(ctx context.Context, sessionID string, delay time.Duration, onStep func(*service.TurnResult)) (*service.AIPlayResult, error) {
	if m.PlayAITurnsFunc != nil {
		return m.PlayAITurnsFunc(ctx, sessionID, delay, onStep)
	}
	return &service.AIPlayResult{StoppedReason: service.StopHumanTurn}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*service.GameView, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &service.GameView{SessionID: sessionID, State: engine.InProgress}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Events: []engine.Event{}, Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockGameService) SaveGame(ctx context.Context, sessionID string, slot int) (*service.SlotInfo, error) {
	if m.SaveGameFunc != nil {
		return m.SaveGameFunc(ctx, sessionID, slot)
	}
	return &service.SlotInfo{Slot: slot}, nil
}

func (m *MockGameService) LoadGame(ctx context.Context, sessionID string, slot int) (*service.GameView, error) {
	if m.LoadGameFunc != nil {
		return m.LoadGameFunc(ctx, sessionID, slot)
	}
	return &service.GameView{SessionID: sessionID}, nil
}

func (m *MockGameService) DeleteSave(ctx context.Context, slot int) (bool, error) {
	if m.DeleteSaveFunc != nil {
		return m.DeleteSaveFunc(ctx, slot)
	}
	return true, nil
}

func (m *MockGameService) ListSaves(ctx context.Context) ([]*service.SlotInfo, error) {
	if m.ListSavesFunc != nil {
		return m.ListSavesFunc(ctx)
	}
	return []*service.SlotInfo{}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return engine.DefaultGameConfig(), nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("session not found: %w", session.ErrSessionNotFound), http.StatusNotFound},
		{config.ErrConfigNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: slot 2 is empty", engine.ErrSlotUnavailable), http.StatusNotFound},
		{engine.ErrUnknownPiece, http.StatusNotFound},
		{fmt.Errorf("%w: cell blocked", engine.ErrIllegalMove), http.StatusUnprocessableEntity},
		{engine.ErrInvalidRoster, http.StatusUnprocessableEntity},
		{config.ErrInvalidConfig, http.StatusUnprocessableEntity},
		{engine.ErrNotInProgress, http.StatusConflict},
		{service.ErrInvalidSlot, http.StatusBadRequest},
		{service.ErrSavesDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "preset",
			body: map[string]string{"config_id": "duel"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if req.ConfigID != "duel" {
						t.Errorf("Expected config_id duel, got %q", req.ConfigID)
					}
					return &service.SessionInfo{ID: "abcd", ConfigName: req.ConfigID}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "explicit seats",
			body: map[string]any{"seats": []map[string]string{{"color": "red", "kind": "human"}, {"color": "blue", "kind": "ai"}}},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					if len(req.Seats) != 2 || req.Seats[1].Kind != engine.KindAI {
						t.Errorf("Unexpected seats %+v", req.Seats)
					}
					return &service.SessionInfo{ID: "abcd"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty body uses default",
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid roster",
			body: map[string]any{"seats": []map[string]string{{"color": "red", "kind": "human"}}},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: need 2 to 4 seats", engine.ErrInvalidRoster)
				}
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown preset",
			body: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config 'nope': %w", config.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			server := NewServer(mockService, nil)

			rec := doRequest(t, server, http.MethodPost, "/api/sessions", tt.body)
			if rec.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		server := NewServer(&MockGameService{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader([]byte("{bad")))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now.Add(-30 * time.Minute)},
			}, nil
		},
	}
	server := NewServer(mockService, nil)

	type listResponse struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}

	rec := doRequest(t, server, http.MethodGet, "/api/sessions", nil)
	resp := decode[listResponse](t, rec)
	if resp.Sessions[0].ID != "new" || resp.Sessions[2].ID != "old" {
		t.Errorf("Expected most recently accessed first, got %s..%s", resp.Sessions[0].ID, resp.Sessions[2].ID)
	}

	rec = doRequest(t, server, http.MethodGet, "/api/sessions?sort=created&order=asc&limit=2", nil)
	resp = decode[listResponse](t, rec)
	if resp.Count != 2 || resp.Total != 3 {
		t.Errorf("Expected count 2 of 3, got %d of %d", resp.Count, resp.Total)
	}
	if resp.Sessions[0].ID != "old" || resp.Sessions[1].ID != "mid" {
		t.Errorf("Expected [old mid], got [%s %s]", resp.Sessions[0].ID, resp.Sessions[1].ID)
	}
}

func TestSessionNotFound(t *testing.T) {
	notFound := fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
	mockService := &MockGameService{
		GetSessionFunc:    func(context.Context, string) (*service.SessionInfo, error) { return nil, notFound },
		DeleteSessionFunc: func(context.Context, string) error { return notFound },
		GetGameStateFunc:  func(context.Context, string) (*service.GameView, error) { return nil, notFound },
		RollDiceFunc:      func(context.Context, string) (*service.TurnResult, error) { return nil, notFound },
	}
	server := NewServer(mockService, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/sessions/zzzz"},
		{http.MethodDelete, "/api/sessions/zzzz"},
		{http.MethodGet, "/api/sessions/zzzz/state"},
		{http.MethodPost, "/api/sessions/zzzz/roll"},
	} {
		rec := doRequest(t, server, tc.method, tc.path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRollAndMove(t *testing.T) {
	var movedPiece string
	mockService := &MockGameService{
		RollDiceFunc: func(ctx context.Context, sessionID string) (*service.TurnResult, error) {
			return &service.TurnResult{Roll: 6, GameView: &service.GameView{SessionID: sessionID, AwaitingMove: true}}, nil
		},
		MovePieceFunc: func(ctx context.Context, sessionID, pieceID string) (*service.TurnResult, error) {
			movedPiece = pieceID
			if pieceID == "blue-9" {
				return nil, engine.ErrUnknownPiece
			}
			if pieceID == "blue-0" {
				return nil, fmt.Errorf("%w: not your piece", engine.ErrIllegalMove)
			}
			return &service.TurnResult{Moved: pieceID, GameView: &service.GameView{SessionID: sessionID}}, nil
		},
	}
	server := NewServer(mockService, nil)

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/abcd/roll", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := decode[service.TurnResult](t, rec); got.Roll != 6 || !got.GameView.AwaitingMove {
		t.Errorf("Unexpected roll result %+v", got)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/sessions/abcd/move", map[string]string{"piece_id": "red-0"})
	if rec.Code != http.StatusOK || movedPiece != "red-0" {
		t.Errorf("Expected red-0 moved, got %d %q", rec.Code, movedPiece)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/sessions/abcd/move", map[string]string{"piece_id": "blue-0"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for illegal move, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/sessions/abcd/move", map[string]string{"piece_id": "blue-9"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown piece, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/sessions/abcd/move", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without piece_id, got %d", rec.Code)
	}
}

func TestPlayAIDelay(t *testing.T) {
	var gotDelay time.Duration
	mockService := &MockGameService{
		PlayAITurnsFunc: func(ctx context.Context, sessionID string, delay time.Duration, onStep func(*service.TurnResult)) (*service.AIPlayResult, error) {
			gotDelay = delay
			onStep(&service.TurnResult{Roll: 2, GameView: &service.GameView{SessionID: sessionID}})
			return &service.AIPlayResult{StoppedReason: service.StopHumanTurn}, nil
		},
	}

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	server := NewServer(mockService, hub, WithAIDelay(250*time.Millisecond))

	rec := doRequest(t, server, http.MethodPost, "/api/sessions/abcd/ai", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if gotDelay != 250*time.Millisecond {
		t.Errorf("Expected server default delay, got %v", gotDelay)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/sessions/abcd/ai", map[string]int{"delay_ms": 0})
	if rec.Code != http.StatusOK || gotDelay != 0 {
		t.Errorf("Expected explicit zero delay, got %d %v", rec.Code, gotDelay)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/sessions/abcd/ai", map[string]int{"delay_ms": -5})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative delay, got %d", rec.Code)
	}
}

func TestHistoryQuery(t *testing.T) {
	var got service.HistoryOptions
	mockService := &MockGameService{
		GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			got = opts
			return &service.HistoryResponse{Events: []engine.Event{}}, nil
		},
	}
	server := NewServer(mockService, nil)

	doRequest(t, server, http.MethodGet, "/api/sessions/abcd/history", nil)
	if got.Page != 1 || got.Limit != 20 || got.Order != "desc" {
		t.Errorf("Unexpected defaults %+v", got)
	}

	doRequest(t, server, http.MethodGet, "/api/sessions/abcd/history?page=3&limit=5&order=asc", nil)
	if got.Page != 3 || got.Limit != 5 || got.Order != "asc" {
		t.Errorf("Unexpected options %+v", got)
	}
}

func TestSaveSlots(t *testing.T) {
	mockService := &MockGameService{
		LoadGameFunc: func(ctx context.Context, sessionID string, slot int) (*service.GameView, error) {
			if slot == 3 {
				return nil, fmt.Errorf("%w: slot 3 is empty", engine.ErrSlotUnavailable)
			}
			return &service.GameView{SessionID: sessionID}, nil
		},
		SaveGameFunc: func(ctx context.Context, sessionID string, slot int) (*service.SlotInfo, error) {
			if slot > 4 {
				return nil, fmt.Errorf("%w: %d", service.ErrInvalidSlot, slot)
			}
			return &service.SlotInfo{Slot: slot}, nil
		},
	}
	server := NewServer(mockService, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodPost, "/api/sessions/abcd/save/2", http.StatusOK},
		{http.MethodPost, "/api/sessions/abcd/save/9", http.StatusBadRequest},
		{http.MethodPost, "/api/sessions/abcd/save/two", http.StatusBadRequest},
		{http.MethodPost, "/api/sessions/abcd/load/2", http.StatusOK},
		{http.MethodPost, "/api/sessions/abcd/load/3", http.StatusNotFound},
		{http.MethodGet, "/api/saves", http.StatusOK},
		{http.MethodDelete, "/api/saves/2", http.StatusOK},
	}
	for _, tt := range tests {
		rec := doRequest(t, server, tt.method, tt.path, nil)
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, rec.Code, rec.Body.String())
		}
	}
}

func TestConfigs(t *testing.T) {
	var savedID string
	mockService := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, name string) (*engine.GameConfig, error) {
			if name != "classic" {
				return nil, config.ErrConfigNotFound
			}
			return engine.DefaultGameConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, name string, cfg *engine.GameConfig) error {
			savedID = name
			return engine.ValidateGameConfig(cfg)
		},
	}
	server := NewServer(mockService, nil)

	if rec := doRequest(t, server, http.MethodGet, "/api/configs/classic.json", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec := doRequest(t, server, http.MethodGet, "/api/configs/other", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	preset := engine.DefaultGameConfig()
	body := map[string]any{
		"config_id":   "mine",
		"name":        preset.Name,
		"description": preset.Description,
		"seats":       preset.Seats,
	}
	rec := doRequest(t, server, http.MethodPost, "/api/configs", body)
	if rec.Code != http.StatusCreated || savedID != "mine" {
		t.Errorf("Expected preset saved as mine, got %d %q: %s", rec.Code, savedID, rec.Body.String())
	}
}

func TestHealthAndIndex(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)

	if rec := doRequest(t, server, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", rec.Code)
	}

	rec := doRequest(t, server, http.MethodGet, "/api", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /api, got %d", rec.Code)
	}
	index := decode[struct {
		Routes []string `json:"routes"`
	}](t, rec)
	found := false
	for _, r := range index.Routes {
		if r == "POST /api/sessions/{id}/roll" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected roll route in index, got %v", index.Routes)
	}
}

func TestRules(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)

	rec := doRequest(t, server, http.MethodGet, "/api/rules", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /api/rules, got %d", rec.Code)
	}
	resp := decode[struct {
		Rules string            `json:"rules"`
		Board service.BoardInfo `json:"board"`
	}](t, rec)

	if !strings.Contains(resp.Rules, "LUDO RULES") {
		t.Errorf("Expected rules text, got %q", resp.Rules)
	}
	if resp.Board.CircuitLength != engine.CircuitLength || resp.Board.EntryIndex[engine.Green] != 14 {
		t.Errorf("Unexpected board info: %+v", resp.Board)
	}
	if len(resp.Board.StarIndices) != 4 {
		t.Errorf("Expected 4 star cells, got %v", resp.Board.StarIndices)
	}
}

func TestWebSocketRequiresSession(t *testing.T) {
	server := NewServer(&MockGameService{
		GetSessionFunc: func(context.Context, string) (*service.SessionInfo, error) {
			return nil, session.ErrSessionNotFound
		},
	}, websocket.NewHub())

	if rec := doRequest(t, server, http.MethodGet, "/ws", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without session, got %d", rec.Code)
	}
	if rec := doRequest(t, server, http.MethodGet, "/ws?session=zzzz", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", rec.Code)
	}
}
