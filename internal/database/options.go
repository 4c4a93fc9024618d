package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vwmedia/siteutil/internal/models"
)

// VaultKeyOption holds the generated settings encryption key when none is
// configured.
const VaultKeyOption = "siteutil_vault_key"

// ErrOptionNotFound is returned by GetOption for unknown names.
var ErrOptionNotFound = errors.New("options: not found")

// GetOption retrieves the raw JSON value stored under name.
func GetOption(ctx context.Context, db *gorm.DB, name string) (datatypes.JSON, error) {
	if db == nil {
		return nil, fmt.Errorf("options: db is nil")
	}

	var option models.Option
	err := db.WithContext(ctx).Take(&option, "name = ?", name).Error
	if err == nil {
		return option.Value, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOptionNotFound
	}
	return nil, fmt.Errorf("options: get %q: %w", name, err)
}

// UpsertOption stores value under name, replacing any previous value.
func UpsertOption(ctx context.Context, db *gorm.DB, name string, value []byte) error {
	if db == nil {
		return fmt.Errorf("options: db is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("options: name is required")
	}

	record := models.Option{
		Name:     name,
		Value:    datatypes.JSON(value),
		Autoload: true,
	}

	if err := db.WithContext(ctx).
		Where("name = ?", name).
		Assign(map[string]any{"value": datatypes.JSON(value)}).
		FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("options: upsert %q: %w", name, err)
	}

	return nil
}

// AddOption stores value under name only when the name is unused. It reports
// whether a row was written.
func AddOption(ctx context.Context, db *gorm.DB, name string, value []byte) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("options: db is nil")
	}

	record := models.Option{Name: name, Value: datatypes.JSON(value), Autoload: true}
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return false, fmt.Errorf("options: add %q: %w", name, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// EnsureVaultKey returns the stored settings encryption key, persisting
// candidate when none exists yet.
func EnsureVaultKey(ctx context.Context, db *gorm.DB, candidate string) (string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", fmt.Errorf("options: vault key is empty")
	}

	value, err := GetOption(ctx, db, VaultKeyOption)
	switch {
	case err == nil:
		var stored string
		if err := json.Unmarshal(value, &stored); err != nil {
			return "", fmt.Errorf("options: decode vault key: %w", err)
		}
		return stored, nil
	case !errors.Is(err, ErrOptionNotFound):
		return "", err
	}

	encoded, err := json.Marshal(candidate)
	if err != nil {
		return "", fmt.Errorf("options: encode vault key: %w", err)
	}
	if err := UpsertOption(ctx, db, VaultKeyOption, encoded); err != nil {
		return "", err
	}
	return candidate, nil
}
