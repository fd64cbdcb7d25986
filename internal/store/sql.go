package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DocumentEntry is one top-level key of a document.
type DocumentEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Collection string    `gorm:"size:128;not null;uniqueIndex:idx_document_key" json:"collection"`
	Document   string    `gorm:"size:128;not null;uniqueIndex:idx_document_key" json:"document"`
	Key        string    `gorm:"size:128;not null;uniqueIndex:idx_document_key" json:"key"`
	Value      string    `gorm:"type:longtext" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (DocumentEntry) TableName() string {
	return "document_entries"
}

// SQLStore keeps documents as rows of (collection, document, key) with a
// JSON value.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLStore connects to sqlite (glebarez, pure Go) or mysql and migrates
// the schema.
func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		if dsn == "" {
			return nil, errors.New("mysql dsn is required")
		}
		dialector = mysql.Open(dsn)
	default:
		if dsn == "" {
			dsn = "libgenui.db"
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return NewSQLStore(db)
}

func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&DocumentEntry{}); err != nil {
		return nil, fmt.Errorf("migrate document entries: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Save(ctx context.Context, collection, document string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	entries := make([]DocumentEntry, 0, len(patch))
	for k, v := range patch {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		entries = append(entries, DocumentEntry{Collection: collection, Document: document, Key: k, Value: string(raw)})
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "document"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entries).Error
}

func (s *SQLStore) Load(ctx context.Context, collection, document string) (map[string]any, error) {
	var entries []DocumentEntry
	err := s.db.WithContext(ctx).
		Where("collection = ? AND document = ?", collection, document).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", collection, document, err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		var v any
		if err := json.Unmarshal([]byte(e.Value), &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Key, err)
		}
		out[e.Key] = v
	}
	return out, nil
}

func (s *SQLStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
