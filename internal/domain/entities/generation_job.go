package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GenerationJobStatus represents the status of an acta generation run
type GenerationJobStatus string

const (
	GenerationJobStatusProcessing GenerationJobStatus = "processing" // Waiting for the model or the renderer
	GenerationJobStatusCompleted  GenerationJobStatus = "completed"  // Document produced
	GenerationJobStatusFailed     GenerationJobStatus = "failed"     // Aborted, see ErrorKind
)

// Failure kinds stored on failed jobs
const (
	ErrorKindService    = "service"
	ErrorKindExtraction = "extraction"
	ErrorKindRender     = "render"
	ErrorKindTemplate   = "template"
	ErrorKindInternal   = "internal"
)

// GenerationJob is the audit row of one acta generation. It never holds the
// transcript; of the record only the author name (ELABORADO_POR) and the list
// sizes are kept.
type GenerationJob struct {
	ID           uuid.UUID           `json:"id" gorm:"type:uuid;primary_key"`
	TemplateName string              `json:"template_name" gorm:"type:varchar(255);not null;index"`
	Provider     string              `json:"provider" gorm:"type:varchar(50);not null"`
	Model        string              `json:"model" gorm:"type:varchar(100);not null"`
	Status       GenerationJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'processing'"`
	AuthorName   string              `json:"author_name,omitempty" gorm:"type:varchar(255)"`

	// Processing details
	TranscriptChars int        `json:"transcript_chars" gorm:"type:integer;default:0"`
	AttendeeCount   int        `json:"attendee_count" gorm:"type:integer;default:0"`
	TopicCount      int        `json:"topic_count" gorm:"type:integer;default:0"`
	CommitmentCount int        `json:"commitment_count" gorm:"type:integer;default:0"`
	DurationMs      int64      `json:"duration_ms" gorm:"type:bigint;default:0"`
	ErrorKind       *string    `json:"error_kind,omitempty" gorm:"type:varchar(50)"`
	LastError       *string    `json:"last_error,omitempty" gorm:"type:text"`
	ObjectKey       *string    `json:"object_key,omitempty" gorm:"type:text"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewGenerationJob creates a job in processing state
func NewGenerationJob(id uuid.UUID, templateName, provider, model string) *GenerationJob {
	now := time.Now()
	return &GenerationJob{
		ID:           id,
		TemplateName: templateName,
		Provider:     provider,
		Model:        model,
		Status:       GenerationJobStatusProcessing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkAsCompleted records the shape of the produced acta
func (j *GenerationJob) MarkAsCompleted(record *MeetingRecord, elapsed time.Duration) {
	j.Status = GenerationJobStatusCompleted
	if record != nil {
		j.AttendeeCount = len(record.Attendees)
		j.TopicCount = len(record.Topics)
		j.CommitmentCount = len(record.Commitments)
	}
	j.finish(elapsed)
}

// MarkAsFailed marks job as failed with error kind and message
func (j *GenerationJob) MarkAsFailed(kind, errMsg string, elapsed time.Duration) {
	j.Status = GenerationJobStatusFailed
	j.ErrorKind = &kind
	j.LastError = &errMsg
	j.finish(elapsed)
}

// SetObjectKey stores where the rendered document was archived
func (j *GenerationJob) SetObjectKey(key string) {
	j.ObjectKey = &key
	j.UpdatedAt = time.Now()
}

func (j *GenerationJob) finish(elapsed time.Duration) {
	now := time.Now()
	j.DurationMs = elapsed.Milliseconds()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (GenerationJob) TableName() string {
	return "generation_jobs"
}
