package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/wricardo/atomic-chess/game/service"
)

// sessionRecord is one row of the sessions table. Data holds the JSON snapshot.
type sessionRecord struct {
	ID             string `gorm:"primary_key"`
	ConfigName     string
	Status         string
	Data           string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastAccessedAt time.Time
}

func (sessionRecord) TableName() string {
	return "sessions"
}

// SQLPersistence stores sessions in a SQL database through gorm
type SQLPersistence struct {
	db            *gorm.DB
	configManager service.ConfigManager
}

// NewSQLPersistence opens the database and migrates the sessions table.
// dialect is a gorm dialect name such as "sqlite3".
func NewSQLPersistence(dialect, dsn string, configManager service.ConfigManager) (*SQLPersistence, error) {
	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if err := db.AutoMigrate(&sessionRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate session table: %w", err)
	}

	return &SQLPersistence{db: db, configManager: configManager}, nil
}

// Save inserts or updates the session row
func (sp *SQLPersistence) Save(session *service.Session) error {
	data, err := snapshot(session, sp.configManager)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	rec := sessionRecord{
		ID:             data.ID,
		ConfigName:     data.ConfigName,
		Status:         string(data.GameState.Status),
		Data:           string(payload),
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}
	if err := sp.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads and restores a session row
func (sp *SQLPersistence) Load(id string) (*service.Session, error) {
	var rec sessionRecord
	if err := sp.db.Where("id = ?", id).First(&rec).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal([]byte(rec.Data), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return restore(&data, sp.configManager)
}

// Delete removes a session row
func (sp *SQLPersistence) Delete(id string) error {
	res := sp.db.Where("id = ?", id).Delete(&sessionRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all stored session IDs in id order
func (sp *SQLPersistence) ListAll() ([]string, error) {
	var ids []string
	if err := sp.db.Model(&sessionRecord{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session row exists
func (sp *SQLPersistence) Exists(id string) bool {
	var count int
	if err := sp.db.Model(&sessionRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// Close releases the database handle
func (sp *SQLPersistence) Close() error {
	return sp.db.Close()
}
