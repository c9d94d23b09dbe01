package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var jobColumns = []string{
	"id", "template_name", "provider", "model", "status", "author_name",
	"transcript_chars", "attendee_count", "topic_count", "commitment_count", "duration_ms",
	"error_kind", "last_error", "object_key", "completed_at", "metadata", "created_at", "updated_at",
}

func TestGenerationJobRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGenerationJobRepository(db)

	job := entities.NewGenerationJob(uuid.New(), "CLINICA_LA_ERMITA.docx", "gemini", "gemini-2.0-flash")
	mock.ExpectExec(`INSERT INTO "generation_jobs"`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), job))
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, repo.Create(context.Background(), nil))
}

func TestGenerationJobRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGenerationJobRepository(db)

	job := entities.NewGenerationJob(uuid.New(), "CLINICA_LA_ERMITA.docx", "gemini", "gemini-2.0-flash")
	job.MarkAsFailed(entities.ErrorKindExtraction, "no JSON object", time.Second)

	mock.ExpectExec(`UPDATE "generation_jobs" SET .* WHERE id = \$\d+`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), job))

	mock.ExpectExec(`UPDATE "generation_jobs"`).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), job)
	assert.ErrorIs(t, err, entities.ErrRunNotFound)

	mock.ExpectExec(`UPDATE "generation_jobs"`).WillReturnError(errors.New("connection reset"))
	err = repo.Update(context.Background(), job)
	require.Error(t, err)
	assert.NotErrorIs(t, err, entities.ErrRunNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGenerationJobRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	key := "actas/2024/05/10/" + id.String() + ".docx"

	mock.ExpectQuery(`SELECT \* FROM "generation_jobs" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(jobColumns).AddRow(
			id.String(), "CLINICA_LA_ERMITA.docx", "groq", "llama-3.3-70b-versatile", "completed", "Laura",
			1200, 2, 1, 0, 3400,
			nil, nil, key, now, []byte(`{"operation":"generate"}`), now, now,
		))

	job, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, entities.GenerationJobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.AttendeeCount)
	require.NotNil(t, job.ObjectKey)
	assert.Equal(t, key, *job.ObjectKey)
	assert.Nil(t, job.ErrorKind)

	mock.ExpectQuery(`SELECT \* FROM "generation_jobs" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(jobColumns))
	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrRunNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepository_ListRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGenerationJobRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(jobColumns)
	for i := 0; i < 2; i++ {
		rows.AddRow(
			uuid.NewString(), "CLINICA_LA_ERMITA.docx", "gemini", "gemini-2.0-flash", "completed", "",
			100, 1, 1, 1, 1000,
			nil, nil, nil, now, nil, now.Add(-time.Duration(i)*time.Minute), now,
		)
	}
	mock.ExpectQuery(`SELECT \* FROM "generation_jobs" ORDER BY created_at DESC LIMIT`).
		WillReturnRows(rows)

	jobs, err := repo.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
