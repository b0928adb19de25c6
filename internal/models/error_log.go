package models

import (
	"time"

	"gorm.io/gorm"
)

// ErrorLog records an environment query failure. Consecutive failures of the
// same component are stored once; Repeats is filled in when the run ends.
type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Component string         `gorm:"not null;index" json:"component"` // "sampler" or "geometry"
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	Repeats   int64          `gorm:"not null;default:0" json:"repeats"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
