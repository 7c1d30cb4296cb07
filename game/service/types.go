package service

import (
	"time"

	"github.com/wricardo/atomic-chess/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
	FEN            string             `json:"fen"`
}

// MoveSpec is one requested move given as two square identifiers
type MoveSpec struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success    bool              `json:"success"`
	GameState  *engine.GameState `json:"game_state"`
	Message    string            `json:"message"`
	Events     []GameEvent       `json:"events,omitempty"`
	Step       *StepInfo         `json:"step,omitempty"`
	ReasonCode string            `json:"reason_code,omitempty"` // set when the move was rejected
	Reason     string            `json:"reason,omitempty"`
	FEN        string            `json:"fen"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // game_over|white_won|black_won or a move rejection code
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver     bool          `json:"game_over"`
	Status       engine.Status `json:"status"`
	Message      string        `json:"message,omitempty"`
	FEN          string        `json:"fen"`
	MaterialDiff int           `json:"material_diff"` // White minus Black
	KingSafety   string        `json:"king_safety,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int               `json:"idx"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Side        engine.Side       `json:"side"`
	Piece       engine.Piece      `json:"piece"`
	Capture     bool              `json:"capture,omitempty"`
	Casualties  []engine.Casualty `json:"casualties,omitempty"`
	StatusAfter engine.Status     `json:"status_after"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "move", "capture", "explosion", "king_destroyed", "victory", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Square    string    `json:"square,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a starting setup
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	FEN         string `json:"fen"`
}
