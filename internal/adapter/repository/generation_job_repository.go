package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
	"github.com/johnquangdev/acta-generator/internal/domain/repositories"
)

// GenerationJobRepository handles acta audit rows
type GenerationJobRepository struct {
	db *gorm.DB
}

var _ repositories.GenerationJobRepository = (*GenerationJobRepository)(nil)

// NewGenerationJobRepository creates a new generation job repository
func NewGenerationJobRepository(db *gorm.DB) *GenerationJobRepository {
	return &GenerationJobRepository{db: db}
}

// Create inserts a new job
func (r *GenerationJobRepository) Create(ctx context.Context, job *entities.GenerationJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create generation job: %w", err)
	}
	return nil
}

// Update saves the outcome of a job
func (r *GenerationJobRepository) Update(ctx context.Context, job *entities.GenerationJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}

	result := r.db.WithContext(ctx).
		Model(&entities.GenerationJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":           job.Status,
			"attendee_count":   job.AttendeeCount,
			"topic_count":      job.TopicCount,
			"commitment_count": job.CommitmentCount,
			"duration_ms":      job.DurationMs,
			"error_kind":       job.ErrorKind,
			"last_error":       job.LastError,
			"object_key":       job.ObjectKey,
			"completed_at":     job.CompletedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update generation job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrRunNotFound
	}
	return nil
}

// FindByID retrieves a job by ID
func (r *GenerationJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.GenerationJob, error) {
	var job entities.GenerationJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get generation job: %w", err)
	}
	return &job, nil
}

// ListRecent returns the newest jobs first
func (r *GenerationJobRepository) ListRecent(ctx context.Context, limit int) ([]*entities.GenerationJob, error) {
	var jobs []*entities.GenerationJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list generation jobs: %w", err)
	}
	return jobs, nil
}
