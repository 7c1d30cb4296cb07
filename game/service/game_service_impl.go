package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/atomic-chess/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidSquare   = errors.New("invalid square")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
	}
}

// getConfigID returns the config_id for a given setup name, used for consistent API responses
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

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	state := sess.Engine.GetState().Clone()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      state,
		GameConfig:     sess.Config,
		FEN:            state.Board.Encode(state.SideToMove),
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", zap.String("session_id", sess.ID), zap.String("config", configID))
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, from, to string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	_, moveErr := sess.Engine.Move(from, to)
	state := sess.Engine.GetState().Clone()

	result := &MoveResult{
		Success:   moveErr == nil,
		GameState: state,
		Message:   state.Message,
		Events:    events,
		FEN:       state.Board.Encode(state.SideToMove),
	}

	if moveErr != nil {
		result.ReasonCode = engine.ReasonCode(moveErr)
		result.Reason = moveErr.Error()
		result.Message = fmt.Sprintf("Illegal move %s-%s: %s", from, to, moveErr)
		s.logger.Debug("move rejected",
			zap.String("session_id", sessionID),
			zap.String("from", from),
			zap.String("to", to),
			zap.String("reason", result.ReasonCode))
	} else {
		last := sess.Engine.GetLastMove()
		result.Events = append(result.Events, moveEvents(last)...)
		step := stepFromEntry(1, last)
		result.Step = &step
	}

	if moveErr == nil || reset {
		s.persist(sessionID, "move")
	}
	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []MoveSpec, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, m := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game is over"
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		if _, err := sess.Engine.Move(m.From, m.To); err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d rejected: %s-%s: %v", i+1, m.From, m.To, err)
			result.StopReasonCode = engine.ReasonCode(err)
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		last := sess.Engine.GetLastMove()
		result.Events = append(result.Events, moveEvents(last)...)
		result.Steps = append(result.Steps, stepFromEntry(i+1, last))
	}

	state := sess.Engine.GetState().Clone()
	result.GameState = state
	result.GameOver = sess.Engine.IsGameOver()
	result.Status = state.Status
	result.Message = state.Message
	result.FEN = state.Board.Encode(state.SideToMove)
	result.MaterialDiff = engine.Material(&state.Board, engine.White) - engine.Material(&state.Board, engine.Black)
	if !result.GameOver {
		result.KingSafety = engine.AnalyzeKingSafety(state, state.SideToMove)
	}

	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = strings.ToLower(string(state.Status))
	}

	s.persist(sessionID, "bulk move")
	return result, nil
}

// Reset resets a game session to its starting position
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.Reset().Clone()
	s.persist(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

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

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeSquare reports the occupant of a square and what a capture there would destroy
func (s *gameServiceImpl) DescribeSquare(ctx context.Context, sessionID, square string) (*SquareReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	center, ok := engine.ParseSquare(square)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSquare, square)
	}

	report := &SquareReport{
		Square: square,
		Blast:  sess.Engine.BlastRadius(square),
		Doomed: []engine.SquareInfo{},
	}
	if pc, ok := sess.Engine.PieceAt(square); ok {
		report.Piece = &pc
		// the captured piece goes regardless of kind
		report.Doomed = append(report.Doomed, engine.SquareInfo{Square: center, Piece: pc})
		if pc.Kind == engine.King {
			report.KingsHit = append(report.KingsHit, pc.Side)
		}
	}
	for _, info := range report.Blast {
		if info.Piece.IsEmpty() || info.Piece.Kind == engine.Pawn {
			continue
		}
		report.Doomed = append(report.Doomed, info)
		if info.Piece.Kind == engine.King {
			report.KingsHit = append(report.KingsHit, info.Piece.Side)
		}
	}
	return report, nil
}

// ListConfigs returns available setups
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific setup
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a setup to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session",
			zap.String("session_id", sessionID),
			zap.String("after", after),
			zap.Error(err))
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to the starting position",
		Timestamp: time.Now(),
	}
}

// moveEvents generates events from an applied move
func moveEvents(entry *engine.MoveHistoryEntry) []GameEvent {
	if entry == nil {
		return nil
	}
	now := time.Now()
	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("%s %s-%s", entry.Piece, entry.From, entry.To),
		Timestamp: now,
		Square:    entry.To.String(),
	}}

	if det := entry.Detonation; det != nil {
		captured := det.Casualties[0].Piece
		events = append(events, GameEvent{
			Type:      "capture",
			Message:   fmt.Sprintf("%s captured %s on %s", entry.Piece, captured, det.Center),
			Timestamp: now,
			Square:    det.Center.String(),
		})
		events = append(events, GameEvent{
			Type:      "explosion",
			Message:   fmt.Sprintf("Explosion on %s destroyed %d pieces", det.Center, len(det.Casualties)),
			Timestamp: now,
			Square:    det.Center.String(),
		})
		for _, c := range det.Casualties {
			if c.Piece.Kind == engine.King {
				events = append(events, GameEvent{
					Type:      "king_destroyed",
					Message:   fmt.Sprintf("The %s king on %s was destroyed", c.Piece.Side, c.Square),
					Timestamp: now,
					Square:    c.Square.String(),
				})
			}
		}
	}

	switch entry.StatusAfter {
	case engine.WhiteWon:
		events = append(events, GameEvent{Type: "victory", Message: "White wins", Timestamp: now})
	case engine.BlackWon:
		events = append(events, GameEvent{Type: "victory", Message: "Black wins", Timestamp: now})
	}
	return events
}

func stepFromEntry(idx int, entry *engine.MoveHistoryEntry) StepInfo {
	step := StepInfo{
		Idx:         idx,
		From:        entry.From.String(),
		To:          entry.To.String(),
		Side:        entry.Side,
		Piece:       entry.Piece,
		StatusAfter: entry.StatusAfter,
	}
	if entry.Detonation != nil {
		step.Capture = true
		step.Casualties = entry.Detonation.Casualties
	}
	return step
}
