package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// credentialRow is the single-row table backing the sqlite store. There is
// exactly one calendar account per deployment, so the row ID is fixed.
type credentialRow struct {
	ID           uint `gorm:"primaryKey"`
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (credentialRow) TableName() string { return "credentials" }

// SQLiteStore keeps the credential in a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open credential db: %w", err)
	}
	if err := db.AutoMigrate(&credentialRow{}); err != nil {
		return nil, fmt.Errorf("migrate credential db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (*Credential, error) {
	var row credentialRow
	if err := s.db.First(&row, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return &Credential{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		Expiry:       row.Expiry,
	}, nil
}

func (s *SQLiteStore) Save(cred *Credential) error {
	row := credentialRow{
		ID:           1,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	}
	// Upsert: the credential is superseded in place, never duplicated.
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}
