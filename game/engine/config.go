package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidConfig marks a setup file that cannot be parsed or fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultGameConfig returns the standard setup used when no config is supplied
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "Standard",
		Description: "Standard chess starting position played with atomic captures",
		FEN:         StandardFEN,
	}
	config.Messages.Welcome = "Atomic chess: every capture explodes. White to move."
	config.Messages.WhiteWon = "White wins: the black king was destroyed"
	config.Messages.BlackWon = "Black wins: the white king was destroyed"
	return config
}

// ValidateGameConfig validates a setup for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if config.FEN == "" {
		return fmt.Errorf("config validation: fen is required")
	}

	board, _, err := BoardFromFEN(config.FEN)
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	for _, side := range []Side{White, Black} {
		if n := len(board.Kings(side)); n != 1 {
			return fmt.Errorf("config validation: %s must have exactly one king, got %d", side, n)
		}
	}
	return nil
}

// LoadGameConfig reads and validates a setup file. A missing file yields an
// error matching fs.ErrNotExist; parse and validation failures match ErrInvalidConfig.
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// InitGameStateFromConfig creates a fresh game state for config, or for the
// standard setup when config is nil
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	board, side, err := BoardFromFEN(config.FEN)
	if err != nil {
		// configs are validated before they get here
		board, side = NewStandardBoard(), White
	}

	return &GameState{
		Board:             board,
		SideToMove:        side,
		Status:            InProgress,
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		TotalMoves:        0,
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
}
