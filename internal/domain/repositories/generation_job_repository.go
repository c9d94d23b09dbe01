package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
)

// GenerationJobRepository defines the interface for acta generation audit rows
type GenerationJobRepository interface {
	// Create inserts a new job
	Create(ctx context.Context, job *entities.GenerationJob) error

	// Update saves the final state of a job
	Update(ctx context.Context, job *entities.GenerationJob) error

	// FindByID finds a job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.GenerationJob, error)

	// ListRecent returns the newest jobs first
	ListRecent(ctx context.Context, limit int) ([]*entities.GenerationJob, error)
}
