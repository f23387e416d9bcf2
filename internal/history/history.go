// Package history records export runs in a local sqlite database.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type HistoryManager struct {
	db          *gorm.DB
	versionPath string
}

// ExportRun is one successful export.
type ExportRun struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	RunID   string `gorm:"uniqueIndex"`
	Command string
	Root    string `gorm:"index"`
	Output  string
	Files   int
	Bytes   int64
	Skipped int
}

const (
	historySchemaVersion = 1
)

// NewHistoryManager opens (creating when needed) the database at dbFilePath.
// A schema version marker is kept next to the database file.
func NewHistoryManager(dbFilePath string) (*HistoryManager, error) {
	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking history db: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbFilePath), 0755); err != nil {
		return nil, fmt.Errorf("error creating history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening history db: %w", err)
	}

	manager := &HistoryManager{
		db:          db,
		versionPath: filepath.Join(filepath.Dir(dbFilePath), "history_schema_version"),
	}

	if manager.needsMigration(dbFileExists) {
		if err := db.AutoMigrate(&ExportRun{}); err != nil {
			return nil, fmt.Errorf("error migrating history schema: %w", err)
		}
		if err := os.WriteFile(manager.versionPath, []byte(strconv.Itoa(historySchemaVersion)), 0644); err != nil {
			return nil, fmt.Errorf("error writing history schema version: %w", err)
		}
	}

	return manager, nil
}

func (m *HistoryManager) needsMigration(dbFileExists bool) bool {
	if !dbFileExists {
		return true
	}

	data, err := os.ReadFile(m.versionPath)
	if err != nil {
		return true
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || version != historySchemaVersion {
		return true
	}

	// A marker without a table means the database was replaced.
	return !m.db.Migrator().HasTable(&ExportRun{})
}

// Close releases the underlying database handle.
func (m *HistoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordRun stores run, assigning a run id when it has none.
func (m *HistoryManager) RecordRun(run ExportRun) (*ExportRun, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	result := m.db.Create(&run)
	if result.Error != nil {
		return nil, result.Error
	}
	return &run, nil
}

// GetRecentRuns returns up to limit runs, most recent first. An empty root
// returns runs for every root.
func (m *HistoryManager) GetRecentRuns(root string, limit int) ([]ExportRun, error) {
	var runs []ExportRun
	db := m.db
	if root != "" {
		db = db.Where("root = ?", root)
	}
	result := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}
	return runs, nil
}

// GetRun looks a run up by its run id.
func (m *HistoryManager) GetRun(runID string) (*ExportRun, error) {
	var run ExportRun
	result := m.db.Where("run_id = ?", runID).First(&run)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no export run found with id %s", runID)
		}
		return nil, result.Error
	}
	return &run, nil
}

func (m *HistoryManager) ResetHistory() error {
	result := m.db.Exec("DELETE FROM export_runs")
	if result.Error != nil {
		return result.Error
	}
	return nil
}
