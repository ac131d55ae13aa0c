package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tenorio-sousa/Ludo-MC322/game/engine"
)

var (
	ErrInvalidSlot   = errors.New("invalid save slot")
	ErrSavesDisabled = errors.New("save slots are not configured")
)

const (
	DefaultSaveSlots = 4
	maxAISteps       = 500
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	saves    SaveStore
	slots    int
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithSaveStore enables save slots 1..slots backed by store
func WithSaveStore(store SaveStore, slots int) Option {
	return func(s *gameServiceImpl) {
		s.saves = store
		if slots > 0 {
			s.slots = slots
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		slots:    DefaultSaveSlots,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession starts a new game from an explicit roster or a named preset
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	switch {
	case len(req.Seats) > 0:
		if err := engine.ValidateRoster(req.Seats); err != nil {
			return nil, err
		}
		config = customConfig(s.configs.GetDefault(), req.Seats)
	case req.ConfigID != "":
		loaded, err := s.configs.LoadConfig(req.ConfigID)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("config '%s' (available: %v): %w", req.ConfigID, configIDs, err)
			}
			return nil, fmt.Errorf("config '%s': %w", req.ConfigID, err)
		}
		config = loaded
	default:
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.WithFields(log.Fields{"session": session.ID, "config": config.Name, "players": len(config.Seats)}).Info("Session created")

	info := s.sessionInfo(session)
	if req.ConfigID != "" && len(req.Seats) == 0 {
		info.ConfigName = req.ConfigID
	}
	info.GameView.Message = config.Messages.Welcome
	return info, nil
}

// customConfig copies base with an explicit roster
func customConfig(base *engine.GameConfig, seats []engine.Seat) *engine.GameConfig {
	config := *base
	config.Name = "custom"
	config.Description = "Custom roster"
	config.Seats = append([]engine.Seat(nil), seats...)
	return &config
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// touching the session writes LastAccessedAt
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameView:       buildView(sess),
		GameConfig:     sess.Config,
	}
}

// RollDice rolls for the current player. A roll without legal moves is a
// normal result with NoLegalMove set, not an error.
func (s *gameServiceImpl) RollDice(ctx context.Context, sessionID string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result, err := s.roll(sess)
	if err != nil {
		return nil, err
	}
	s.persist(sessionID)
	return result, nil
}

func (s *gameServiceImpl) roll(sess *Session) (*TurnResult, error) {
	since := sess.Engine.LastSeq()
	roll, err := sess.Engine.RollDice()
	noLegalMove := errors.Is(err, engine.ErrNoLegalMove)
	if err != nil && !noLegalMove {
		return nil, err
	}

	result := turnResult(sess, since)
	result.Roll = roll
	result.NoLegalMove = noLegalMove
	if noLegalMove && result.Message == "" {
		result.Message = sess.Config.Messages.NoLegalMove
	}

	log.WithFields(log.Fields{
		"session":       sess.ID,
		"roll":          roll,
		"no_legal_move": noLegalMove,
		"moved":         result.Moved,
	}).Debug("Dice rolled")
	return result, nil
}

// MovePiece moves the named piece by the last roll
func (s *gameServiceImpl) MovePiece(ctx context.Context, sessionID, pieceID string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	piece, err := sess.Engine.PieceByID(pieceID)
	if err != nil {
		return nil, err
	}

	since := sess.Engine.LastSeq()
	if err := sess.Engine.AttemptMove(piece); err != nil {
		return nil, err
	}

	result := turnResult(sess, since)
	log.WithFields(log.Fields{"session": sessionID, "piece": pieceID, "captured": result.Captured}).Info("Piece moved")

	s.persist(sessionID)
	return result, nil
}

// EndTurn passes the turn for the current player
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	since := sess.Engine.LastSeq()
	if err := sess.Engine.EndTurn(); err != nil {
		return nil, err
	}

	s.persist(sessionID)
	return turnResult(sess, since), nil
}

// PlayAITurns rolls for consecutive computer players, pausing delay between
// steps. A negative delay uses the preset's delay. It stops at a human's
// turn, at the end of the game or when ctx is done.
func (s *gameServiceImpl) PlayAITurns(ctx context.Context, sessionID string, delay time.Duration, onStep func(*TurnResult)) (*AIPlayResult, error) {
	result := &AIPlayResult{Steps: []*TurnResult{}}

	if delay < 0 {
		s.mu.RLock()
		sess, err := s.sessions.Get(sessionID)
		if err == nil {
			delay = sess.Config.AIDelay()
		}
		s.mu.RUnlock()
		if err != nil {
			return nil, fmt.Errorf("session not found: %w", err)
		}
	}

	for step := 0; result.StoppedReason == ""; step++ {
		if step >= maxAISteps {
			result.StoppedReason = StopStepLimit
			break
		}
		if step > 0 && delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			result.StoppedReason = StopCancelled
			break
		}

		turn, reason, err := s.aiStep(sessionID)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			result.StoppedReason = reason
			break
		}

		result.Steps = append(result.Steps, turn)
		if onStep != nil {
			onStep(turn)
		}
	}

	view, err := s.GetGameState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result.GameView = view
	return result, nil
}

// aiStep performs one computer roll under the service lock
func (s *gameServiceImpl) aiStep(sessionID string) (*TurnResult, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("session not found: %w", err)
	}
	if sess.Engine.GetState() != engine.InProgress {
		return nil, StopGameOver, nil
	}
	current := sess.Engine.GetCurrentPlayer()
	if current == nil || !current.IsAI() {
		return nil, StopHumanTurn, nil
	}

	result, err := s.roll(sess)
	if err != nil {
		return nil, "", err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	s.persist(sessionID)
	return result, "", nil
}

// GetGameState returns the current view of a session's game
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameView, error) {
	// touching the session writes LastAccessedAt
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return buildView(sess), nil
}

// GetHistory returns paginated game events
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var events []engine.Event
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			events = append(events, history[i])
		}
	} else if start < total {
		events = history[start:end]
	}

	if events == nil {
		events = []engine.Event{}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

func (s *gameServiceImpl) checkSlot(slot int) error {
	if s.saves == nil {
		return ErrSavesDisabled
	}
	if slot < 1 || slot > s.slots {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidSlot, slot, s.slots)
	}
	return nil
}

// SaveGame stores the session's game in a slot, replacing what was there
func (s *gameServiceImpl) SaveGame(ctx context.Context, sessionID string, slot int) (*SlotInfo, error) {
	if err := s.checkSlot(slot); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	snap := sess.Engine.Snapshot()
	if err := s.saves.Save(ctx, slot, snap); err != nil {
		return nil, fmt.Errorf("failed to save slot %d: %w", slot, err)
	}

	log.WithFields(log.Fields{"session": sessionID, "slot": slot}).Info("Game saved")
	info := NewSlotInfo(slot, time.Now(), snap)
	return &info, nil
}

// LoadGame replaces the session's game with the one in slot. Any failure
// leaves the current game untouched and reports engine.ErrSlotUnavailable.
func (s *gameServiceImpl) LoadGame(ctx context.Context, sessionID string, slot int) (*GameView, error) {
	if err := s.checkSlot(slot); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	snap, err := s.saves.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	if len(snap.Players) == 0 {
		return nil, fmt.Errorf("%w: slot %d holds no players", engine.ErrSlotUnavailable, slot)
	}
	if err := sess.Engine.Restore(snap); err != nil {
		return nil, fmt.Errorf("%w: slot %d: %v", engine.ErrSlotUnavailable, slot, err)
	}

	config := *sess.Config
	config.Seats = snap.Seats()
	sess.Config = &config

	log.WithFields(log.Fields{"session": sessionID, "slot": slot}).Info("Game loaded")
	s.persist(sessionID)
	return buildView(sess), nil
}

// DeleteSave empties a slot and reports whether anything was there
func (s *gameServiceImpl) DeleteSave(ctx context.Context, slot int) (bool, error) {
	if err := s.checkSlot(slot); err != nil {
		return false, err
	}
	return s.saves.Delete(ctx, slot)
}

// ListSaves returns the occupied slots in slot order
func (s *gameServiceImpl) ListSaves(ctx context.Context) ([]*SlotInfo, error) {
	if s.saves == nil {
		return nil, ErrSavesDisabled
	}

	infos, err := s.saves.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*SlotInfo, 0, len(infos))
	for i := range infos {
		if infos[i].Slot >= 1 && infos[i].Slot <= s.slots {
			result = append(result, &infos[i])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slot < result[j].Slot })
	return result, nil
}

// ListConfigs returns available roster presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific roster preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a roster preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// persist auto-saves a session after a state change
func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.WithField("session", sessionID).WithError(err).Warn("Failed to persist session")
	}
}
