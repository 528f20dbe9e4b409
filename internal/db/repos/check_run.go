// Package repos provides database repository implementations
package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/celestiaorg/pitests/internal/db/models"
)

// ErrNotFound is returned when a check run does not exist
var ErrNotFound = errors.New("check run not found")

// CheckRunRepository handles database operations for check runs
type CheckRunRepository struct {
	db *gorm.DB
}

// NewCheckRunRepository creates a new instance of CheckRunRepository
func NewCheckRunRepository(db *gorm.DB) *CheckRunRepository {
	return &CheckRunRepository{
		db: db,
	}
}

// Create stores a check run and its results in one transaction
func (r *CheckRunRepository) Create(ctx context.Context, run *models.CheckRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid check run: %w", err)
	}
	run.Tally()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
}

// Get retrieves a check run with its results by ID
func (r *CheckRunRepository) Get(ctx context.Context, id uint) (*models.CheckRun, error) {
	var run models.CheckRun
	err := r.db.WithContext(ctx).Preload("Results", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&run, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List retrieves the most recent check runs, newest first, without their results
func (r *CheckRunRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.CheckRun, error) {
	if opts == nil {
		opts = &models.ListOptions{}
	}
	opts.Normalize()

	query := r.db.WithContext(ctx).Order("started_at DESC").Order("id DESC")
	if opts.Host != "" {
		query = query.Where(models.CheckRun{Host: opts.Host})
	}

	var runs []models.CheckRun
	err := query.Limit(opts.Limit).Offset(opts.Offset).Find(&runs).Error
	return runs, err
}

// Latest retrieves the most recent run against a host with its results
func (r *CheckRunRepository) Latest(ctx context.Context, host string) (*models.CheckRun, error) {
	var run models.CheckRun
	err := r.db.WithContext(ctx).Where(models.CheckRun{Host: host}).
		Order("started_at DESC").Order("id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w for host %s", ErrNotFound, host)
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, run.ID)
}

// Delete removes a check run and its results
func (r *CheckRunRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.CheckResult{CheckRunID: id}).Delete(&models.CheckResult{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CheckRun{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil
	})
}
