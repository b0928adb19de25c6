package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"screenbalance/internal/models"
)

// Repository handles all database operations for the error log
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	if errorLog.Timestamp.IsZero() {
		errorLog.Timestamp = time.Now()
	}
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// SetRepeats records how many further consecutive failures followed an entry
func (r *Repository) SetRepeats(id uint, repeats int64) error {
	result := r.db.Model(&models.ErrorLog{}).Where("id = ?", id).Update("repeats", repeats)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update error log repeats")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(gorm.ErrRecordNotFound, "error log %d", id)
	}
	return nil
}

// GetRecentErrors returns up to limit entries, newest first
func (r *Repository) GetRecentErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// CountErrorsSince counts entries recorded at or after since
func (r *Repository) CountErrorsSince(since time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&models.ErrorLog{}).Where("timestamp >= ?", since).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count error logs")
	}
	return count, nil
}

// DeleteErrorsBefore removes entries older than before (soft delete)
func (r *Repository) DeleteErrorsBefore(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all error logs from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM error_logs")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
