package session

import (
	"fmt"
	"time"

	"github.com/wricardo/atomic-chess/game/engine"
	"github.com/wricardo/atomic-chess/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Config         *engine.GameConfig `json:"config,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
}

func snapshot(sess *service.Session, configs service.ConfigManager) (*PersistedSessionData, error) {
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	return &PersistedSessionData{
		ID:             sess.ID,
		ConfigName:     configIDFromName(configs, sess.Config.Name),
		Config:         sess.Config,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
	}, nil
}

// restore rebuilds a live session. The named setup wins over the embedded copy when it still loads.
func restore(data *PersistedSessionData, configs service.ConfigManager) (*service.Session, error) {
	if data.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", data.ID)
	}

	gameConfig := data.Config
	if configs != nil && data.ConfigName != "" {
		if loaded, err := configs.LoadConfig(data.ConfigName); err == nil {
			gameConfig = loaded
		} else if gameConfig == nil {
			return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
		}
	}
	if gameConfig == nil {
		return nil, fmt.Errorf("session %s has no setup", data.ID)
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := gameEngine.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// configIDFromName maps a setup display name to its file id, or returns the name unchanged
func configIDFromName(configs service.ConfigManager, displayName string) string {
	if configs == nil {
		return displayName
	}
	list, err := configs.ListConfigs()
	if err != nil {
		return displayName
	}
	for _, info := range list {
		if info.Name == displayName {
			return info.ConfigID
		}
	}
	return displayName
}
