package acta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
	domainrepo "github.com/johnquangdev/acta-generator/internal/domain/repositories"
	pkgai "github.com/johnquangdev/acta-generator/pkg/ai"
	"github.com/johnquangdev/acta-generator/pkg/config"
	"github.com/johnquangdev/acta-generator/pkg/metrics"
	"github.com/johnquangdev/acta-generator/pkg/runcontext"
)

const (
	OperationExtract  = "extract"
	OperationGenerate = "generate"
)

// TemplateStore resolves template names to .docx bytes
type TemplateStore interface {
	Open(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// Renderer substitutes a placeholder mapping into a template.
// Failures are *entities.RenderError.
type Renderer interface {
	Render(name string, tmpl []byte, data map[string]interface{}) ([]byte, error)
}

// Archive keeps a copy of every rendered document
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// downloadURLExpiry bounds how long an archived acta link stays valid
const downloadURLExpiry = 15 * time.Minute

// Service defines acta generation methods
type Service interface {
	// Extract runs prompt, model call and normalization and returns the record
	Extract(ctx context.Context, req entities.ExtractionRequest) (*entities.MeetingRecord, error)

	// Generate extracts the record and renders it into the named template.
	// An empty name selects the default template.
	Generate(ctx context.Context, req entities.ExtractionRequest, templateName string) (*entities.Document, error)

	// Templates lists the available template names
	Templates(ctx context.Context) ([]string, error)

	// RecentRuns lists the newest audit rows
	RecentRuns(ctx context.Context, limit int) ([]*entities.GenerationJob, error)

	// GetRun returns one audit row
	GetRun(ctx context.Context, id uuid.UUID) (*entities.GenerationJob, error)

	// DownloadURL returns a temporary link to the archived document of a run
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
}

type actaService struct {
	completer pkgai.Completer
	templates TemplateStore
	renderer  Renderer
	archive   Archive                            // optional
	jobRepo   domainrepo.GenerationJobRepository // optional
	prompts   *PromptBuilder
	parser    *Parser
	cfg       *config.Config
	logger    *zap.Logger
}

// NewService constructs the acta service. archive and jobRepo may be nil.
func NewService(
	completer pkgai.Completer,
	templates TemplateStore,
	renderer Renderer,
	archive Archive,
	jobRepo domainrepo.GenerationJobRepository,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &actaService{
		completer: completer,
		templates: templates,
		renderer:  renderer,
		archive:   archive,
		jobRepo:   jobRepo,
		prompts:   NewPromptBuilder(cfg.Acta.Organization),
		parser:    NewParser(),
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *actaService) Extract(ctx context.Context, req entities.ExtractionRequest) (*entities.MeetingRecord, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, entities.ErrEmptyTranscript
	}

	ctx, cancel := runcontext.RunBegin(ctx, OperationExtract, "", s.cfg.Acta.RequestTimeout)
	defer cancel()

	job := s.beginJob(ctx, req)

	record, err := s.extract(ctx, req)
	if err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	s.completeJob(ctx, job, record)
	return record, nil
}

func (s *actaService) Generate(ctx context.Context, req entities.ExtractionRequest, templateName string) (*entities.Document, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, entities.ErrEmptyTranscript
	}
	if templateName == "" {
		templateName = s.cfg.Acta.DefaultTemplate
	}

	ctx, cancel := runcontext.RunBegin(ctx, OperationGenerate, templateName, s.cfg.Acta.RequestTimeout)
	defer cancel()

	job := s.beginJob(ctx, req)

	// Resolve the template before spending a model call on it
	tmpl, err := s.templates.Open(ctx, templateName)
	if err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	record, err := s.extract(ctx, req)
	if err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	start := time.Now()
	data, err := s.renderer.Render(templateName, tmpl, record.TemplateContext())
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var renderErr *entities.RenderError
		if !errors.As(err, &renderErr) {
			err = &entities.RenderError{Template: templateName, Err: err}
		}
		s.failJob(ctx, job, err)
		return nil, err
	}

	runID, _ := runcontext.GetRunID(ctx)
	doc := &entities.Document{
		RunID:       runID.String(),
		FileName:    s.cfg.Acta.DownloadName,
		ContentType: entities.DocxContentType,
		Data:        data,
		Record:      record,
	}

	s.archiveDocument(ctx, job, doc)
	s.completeJob(ctx, job, record)

	return doc, nil
}

func (s *actaService) Templates(ctx context.Context) ([]string, error) {
	return s.templates.List(ctx)
}

func (s *actaService) RecentRuns(ctx context.Context, limit int) ([]*entities.GenerationJob, error) {
	if s.jobRepo == nil {
		return nil, entities.ErrAuditDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.jobRepo.ListRecent(ctx, limit)
}

func (s *actaService) GetRun(ctx context.Context, id uuid.UUID) (*entities.GenerationJob, error) {
	if s.jobRepo == nil {
		return nil, entities.ErrAuditDisabled
	}
	return s.jobRepo.FindByID(ctx, id)
}

func (s *actaService) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	job, err := s.GetRun(ctx, id)
	if err != nil {
		return "", err
	}
	if s.archive == nil || job.ObjectKey == nil {
		return "", entities.ErrNotArchived
	}
	return s.archive.PresignedURL(ctx, *job.ObjectKey, downloadURLExpiry)
}

// extract is the pipeline shared by both operations: prompt, model call, normalization
func (s *actaService) extract(ctx context.Context, req entities.ExtractionRequest) (*entities.MeetingRecord, error) {
	prompt := s.prompts.BuildPrompt(req.Transcript)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		var se *pkgai.ServiceError
		if !errors.As(err, &se) {
			err = &pkgai.ServiceError{Provider: s.completer.Name(), Err: err}
		}
		return nil, err
	}

	record, err := s.parser.Normalize(raw, req)
	if err != nil {
		if s.logger != nil {
			var exErr *entities.ExtractionError
			if errors.As(err, &exErr) {
				s.logger.Warn("model reply could not be parsed",
					append(runcontext.LogFields(ctx), zap.String("snippet", exErr.Snippet))...,
				)
			}
		}
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("record extracted",
			append(runcontext.LogFields(ctx),
				zap.Int("attendees", len(record.Attendees)),
				zap.Int("topics", len(record.Topics)),
				zap.Int("commitments", len(record.Commitments)),
			)...,
		)
	}
	return record, nil
}

func (s *actaService) archiveDocument(ctx context.Context, job *entities.GenerationJob, doc *entities.Document) {
	if s.archive == nil {
		return
	}

	key := ArchiveKey(time.Now(), doc.RunID)
	if err := s.archive.Put(ctx, key, doc.Data, doc.ContentType); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to archive acta", append(runcontext.LogFields(ctx), zap.String("key", key), zap.Error(err))...)
		}
		return
	}
	if job != nil {
		job.SetObjectKey(key)
	}
}

// ArchiveKey returns the object key of an archived acta: actas/YYYY/MM/DD/<runID>.docx
func ArchiveKey(t time.Time, runID string) string {
	return fmt.Sprintf("actas/%s/%s.docx", t.UTC().Format("2006/01/02"), runID)
}

func (s *actaService) beginJob(ctx context.Context, req entities.ExtractionRequest) *entities.GenerationJob {
	md := runcontext.GetRunMetadata(ctx)

	job := entities.NewGenerationJob(md.RunID, md.TemplateName, s.completer.Name(), s.cfg.LLM.Model)
	job.AuthorName = req.AuthorName
	job.TranscriptChars = len([]rune(req.Transcript))
	if meta, err := json.Marshal(map[string]string{"operation": md.Operation}); err == nil {
		job.Metadata = datatypes.JSON(meta)
	}

	if s.logger != nil {
		s.logger.Info("acta run started", append(runcontext.LogFields(ctx), zap.Int("transcript_chars", job.TranscriptChars))...)
	}

	if s.jobRepo == nil {
		return job
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to create audit row", append(runcontext.LogFields(ctx), zap.Error(err))...)
		}
		return nil
	}
	return job
}

func (s *actaService) completeJob(ctx context.Context, job *entities.GenerationJob, record *entities.MeetingRecord) {
	elapsed := runcontext.Elapsed(ctx)
	metrics.GenerationsTotal.WithLabelValues(runcontext.GetOperation(ctx), "ok").Inc()

	if s.logger != nil {
		s.logger.Info("acta run completed", append(runcontext.LogFields(ctx), zap.Duration("elapsed", elapsed))...)
	}

	if job == nil {
		return
	}
	job.MarkAsCompleted(record, elapsed)
	s.saveJob(ctx, job)
}

func (s *actaService) failJob(ctx context.Context, job *entities.GenerationJob, err error) {
	elapsed := runcontext.Elapsed(ctx)
	kind := ErrorKind(err)
	metrics.GenerationsTotal.WithLabelValues(runcontext.GetOperation(ctx), kind).Inc()

	if s.logger != nil {
		s.logger.Error("acta run failed",
			append(runcontext.LogFields(ctx), zap.String("error_kind", kind), zap.Duration("elapsed", elapsed), zap.Error(err))...,
		)
	}

	if job == nil {
		return
	}
	job.MarkAsFailed(kind, err.Error(), elapsed)
	s.saveJob(ctx, job)
}

func (s *actaService) saveJob(ctx context.Context, job *entities.GenerationJob) {
	if s.jobRepo == nil {
		return
	}
	// The run context may already be expired; the audit write must still land.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.jobRepo.Update(saveCtx, job); err != nil && s.logger != nil {
		s.logger.Warn("failed to update audit row", append(runcontext.LogFields(ctx), zap.Error(err))...)
	}
}

// ErrorKind classifies a pipeline failure for the audit log and metrics
func ErrorKind(err error) string {
	var (
		se        *pkgai.ServiceError
		exErr     *entities.ExtractionError
		renderErr *entities.RenderError
	)
	switch {
	case errors.As(err, &se):
		return entities.ErrorKindService
	case errors.As(err, &exErr):
		return entities.ErrorKindExtraction
	case errors.As(err, &renderErr):
		return entities.ErrorKindRender
	case errors.Is(err, entities.ErrTemplateNotFound), errors.Is(err, entities.ErrInvalidTemplate):
		return entities.ErrorKindTemplate
	default:
		return entities.ErrorKindInternal
	}
}
