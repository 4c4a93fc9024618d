package models

import (
	"time"

	"gorm.io/datatypes"
)

// Option stores one named, JSON encoded configuration blob.
type Option struct {
	Name      string         `gorm:"primaryKey;size:191" json:"name"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	Autoload  bool           `gorm:"not null;default:true" json:"autoload"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
