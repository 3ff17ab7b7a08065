// Package profile persists user profiles assembled from extracted documents.
package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/a3tai/mcp-docintel/internal/intelligence"
)

var (
	// ErrEmptyKey is returned when the profile key is blank
	ErrEmptyKey = errors.New("profile key cannot be empty")
	// ErrNotFound is returned when no profile exists for a key
	ErrNotFound = errors.New("profile not found")
)

// Profile is the merged view of everything known about one user
type Profile struct {
	ID        string            `gorm:"primaryKey" json:"key"`
	Fields    map[string]string `gorm:"serializer:json" json:"profile"`
	Documents []Document        `json:"documents"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Document records one analysed document attached to a profile
type Document struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	ProfileID   string            `gorm:"index" json:"-"`
	Position    int               `json:"-"`
	Type        string            `json:"type"`
	Fields      map[string]string `gorm:"serializer:json" json:"data"`
	Fingerprint string            `gorm:"index" json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Options configures the store
type Options struct {
	Path     string // sqlite file; ":memory:" for a private in-memory database
	LogLevel string // silent, error, warn, info
}

// Store is a sqlite backed profile store
type Store struct {
	db *gorm.DB
}

// NormalizeKey trims and lowercases a user identifier
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Open opens (creating if needed) the database at opts.Path and migrates
// the schema.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if opts.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
	}

	var level gormlogger.LogLevel
	switch strings.ToLower(opts.LogLevel) {
	case "error":
		level = gormlogger.Error
	case "warn":
		level = gormlogger.Warn
	case "info":
		level = gormlogger.Info
	default:
		level = gormlogger.Silent
	}

	db, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", opts.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps ":memory:" shared
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		return nil, fmt.Errorf("failed to exec pragma: %w", err)
	}
	if err := db.AutoMigrate(&Profile{}, &Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Update merges the non-empty extracted fields of result into the profile
// for key and attaches a document record, unless an identical record is
// already attached. The profile is created on first use.
func (s *Store) Update(ctx context.Context, key string, result intelligence.ExtractionResult) (*Profile, error) {
	id := NormalizeKey(key)
	if id == "" {
		return nil, ErrEmptyKey
	}

	docType := string(result.DocumentType)
	if docType == "" {
		docType = string(intelligence.DocumentTypeUnknown)
	}
	fields := make(map[string]string, len(result.Fields))
	for k, v := range result.Fields {
		if v != "" {
			fields[k] = v
		}
	}
	fingerprint, err := fingerprintOf(docType, fields)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Profile
		err := tx.First(&p, "id = ?", id).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = Profile{ID: id, Fields: map[string]string{}}
			if err := tx.Omit(clause.Associations).Create(&p).Error; err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load profile: %w", err)
		}

		if p.Fields == nil {
			p.Fields = map[string]string{}
		}
		for k, v := range fields {
			p.Fields[k] = v
		}
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		var duplicates int64
		if err := tx.Model(&Document{}).
			Where("profile_id = ? AND fingerprint = ?", id, fingerprint).
			Count(&duplicates).Error; err != nil {
			return fmt.Errorf("failed to check documents: %w", err)
		}
		if duplicates > 0 {
			return nil
		}

		var position int64
		if err := tx.Model(&Document{}).Where("profile_id = ?", id).Count(&position).Error; err != nil {
			return fmt.Errorf("failed to count documents: %w", err)
		}

		doc := Document{
			ID:          uuid.NewString(),
			ProfileID:   id,
			Position:    int(position),
			Type:        docType,
			Fields:      fields,
			Fingerprint: fingerprint,
		}
		if err := tx.Create(&doc).Error; err != nil {
			return fmt.Errorf("failed to add document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Get returns the profile for key with its documents in insertion order.
func (s *Store) Get(ctx context.Context, key string) (*Profile, error) {
	id := NormalizeKey(key)
	if id == "" {
		return nil, ErrEmptyKey
	}

	var p Profile
	err := s.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if p.Fields == nil {
		p.Fields = map[string]string{}
	}
	if p.Documents == nil {
		p.Documents = []Document{}
	}
	for i := range p.Documents {
		if p.Documents[i].Fields == nil {
			p.Documents[i].Fields = map[string]string{}
		}
	}
	return &p, nil
}

// fingerprintOf identifies a document by its type and field values.
// encoding/json sorts map keys, so equal maps hash equally.
func fingerprintOf(docType string, fields map[string]string) (string, error) {
	data, err := json.Marshal(struct {
		Type   string            `json:"type"`
		Fields map[string]string `json:"fields"`
	}{docType, fields})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint document: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
