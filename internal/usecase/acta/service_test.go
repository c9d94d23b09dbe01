package acta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
	pkgai "github.com/johnquangdev/acta-generator/pkg/ai"
	"github.com/johnquangdev/acta-generator/pkg/config"
)

const scenarioReply = "```json\n" + `{
	"FECHA": "10/05/2024",
	"CIUDAD": "City X",
	"ASISTENTES_REUNION": [
		{"nombreasistentereu": "Dr. A", "cargoasistentereunion": "Doctor"},
		{"nombreasistentereu": "Nurse B"}
	],
	"TEMAS_TRATADOS": [{"tema": "Budget", "desarrollo": "Reviewed"}],
	"ELABORADO_POR": "Someone Else"
}` + "\n```"

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeStore struct {
	templates map[string][]byte
}

func (f *fakeStore) Open(ctx context.Context, name string) ([]byte, error) {
	b, ok := f.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrTemplateNotFound, name)
	}
	return b, nil
}

func (f *fakeStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.templates))
	for n := range f.templates {
		names = append(names, n)
	}
	return names, nil
}

type fakeRenderer struct {
	mu   sync.Mutex
	err  error
	data []map[string]interface{}
}

func (f *fakeRenderer) Render(name string, tmpl []byte, data map[string]interface{}) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append(f.data, data)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("docx:" + name), nil
}

type fakeArchive struct {
	mu   sync.Mutex
	err  error
	keys []string
}

func (f *fakeArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeArchive) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://minio.local/actas/" + key + "?expires=" + expiry.String(), nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entities.GenerationJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*entities.GenerationJob)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *entities.GenerationJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) Update(ctx context.Context, job *entities.GenerationJob) error {
	return f.Create(ctx, job)
}

func (f *fakeJobRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, entities.ErrRunNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) ListRecent(ctx context.Context, limit int) ([]*entities.GenerationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entities.GenerationJob, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeJobRepo) only(t *testing.T) *entities.GenerationJob {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.jobs, 1)
	for _, j := range f.jobs {
		return j
	}
	return nil
}

type fixture struct {
	completer *fakeCompleter
	store     *fakeStore
	renderer  *fakeRenderer
	archive   *fakeArchive
	jobs      *fakeJobRepo
	svc       Service
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{Provider: config.ProviderGemini, Model: "gemini-test"},
		Acta: config.ActaConfig{
			Organization:    "Clínica La Ermita",
			DefaultTemplate: "CLINICA_LA_ERMITA.docx",
			DownloadName:    "Acta_Ermita.docx",
			RequestTimeout:  5 * time.Second,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		completer: &fakeCompleter{reply: scenarioReply},
		store:     &fakeStore{templates: map[string][]byte{"CLINICA_LA_ERMITA.docx": []byte("tmpl"), "OTRA.docx": []byte("otra")}},
		renderer:  &fakeRenderer{},
		archive:   &fakeArchive{},
		jobs:      newFakeJobRepo(),
	}
	f.svc = NewService(f.completer, f.store, f.renderer, f.archive, f.jobs, testConfig(), zaptest.NewLogger(t))
	return f
}

var scenarioRequest = entities.ExtractionRequest{
	Transcript: "Met on 10/05/2024 in City X with Dr. A and Nurse B to discuss budget.",
	AuthorName: "Laura Gómez",
	AuthorRole: "Secretaria",
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.Generate(context.Background(), scenarioRequest, "")
	require.NoError(t, err)

	assert.Equal(t, "Acta_Ermita.docx", doc.FileName)
	assert.Equal(t, entities.DocxContentType, doc.ContentType)
	assert.Equal(t, []byte("docx:CLINICA_LA_ERMITA.docx"), doc.Data)
	_, err = uuid.Parse(doc.RunID)
	require.NoError(t, err)

	// the renderer gets the normalized record with caller authorship
	require.Len(t, f.renderer.data, 1)
	data := f.renderer.data[0]
	assert.Equal(t, "Laura Gómez", data[entities.KeyAuthorName])
	assert.Equal(t, "10/05/2024", data[entities.KeyDate])
	attendees := data[entities.KeyAttendees].([]map[string]interface{})
	require.Len(t, attendees, 2)
	assert.Equal(t, entities.NotAvailable, attendees[1][entities.KeyAttendeeRole])
	assert.Empty(t, data[entities.KeyCommitments])

	// author metadata is never sent to the model
	require.Equal(t, 1, f.completer.calls())
	assert.Contains(t, f.completer.prompts[0], scenarioRequest.Transcript)
	assert.NotContains(t, f.completer.prompts[0], "Laura")

	require.Len(t, f.archive.keys, 1)
	assert.True(t, strings.HasPrefix(f.archive.keys[0], "actas/"))
	assert.True(t, strings.HasSuffix(f.archive.keys[0], doc.RunID+".docx"))

	job := f.jobs.only(t)
	assert.Equal(t, doc.RunID, job.ID.String())
	assert.Equal(t, entities.GenerationJobStatusCompleted, job.Status)
	assert.Equal(t, "CLINICA_LA_ERMITA.docx", job.TemplateName)
	assert.Equal(t, "fake", job.Provider)
	assert.Equal(t, "gemini-test", job.Model)
	assert.Equal(t, 2, job.AttendeeCount)
	assert.Equal(t, 1, job.TopicCount)
	require.NotNil(t, job.ObjectKey)
	assert.Equal(t, f.archive.keys[0], *job.ObjectKey)
	assert.Nil(t, job.ErrorKind)
}

func TestGenerate_AuditRowHoldsOnlyAuthorAndCounts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), scenarioRequest, "")
	require.NoError(t, err)

	row, err := json.Marshal(f.jobs.only(t))
	require.NoError(t, err)

	assert.Contains(t, string(row), `"author_name":"Laura Gómez"`)
	for _, content := range []string{scenarioRequest.Transcript, "City X", "Dr. A", "Nurse B", "Budget", "Reviewed", "Secretaria", "Someone Else"} {
		assert.NotContains(t, string(row), content)
	}
}

func TestDownloadURL(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.Generate(context.Background(), scenarioRequest, "")
	require.NoError(t, err)

	url, err := f.svc.DownloadURL(context.Background(), uuid.MustParse(doc.RunID))
	require.NoError(t, err)
	assert.Contains(t, url, doc.RunID+".docx")

	// extract-only runs have nothing archived
	_, err = f.svc.Extract(context.Background(), scenarioRequest)
	require.NoError(t, err)
	for id, job := range f.jobs.jobs {
		if job.ObjectKey == nil {
			_, err = f.svc.DownloadURL(context.Background(), id)
			assert.ErrorIs(t, err, entities.ErrNotArchived)
		}
	}

	_, err = f.svc.DownloadURL(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrRunNotFound)
}

func TestGenerate_NamedTemplate(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.Generate(context.Background(), scenarioRequest, "OTRA.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("docx:OTRA.docx"), doc.Data)
}

func TestGenerate_EmptyTranscript(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), entities.ExtractionRequest{Transcript: " \n\t "}, "")
	assert.ErrorIs(t, err, entities.ErrEmptyTranscript)
	assert.Equal(t, 0, f.completer.calls())
	assert.Empty(t, f.jobs.jobs)
}

func TestGenerate_TemplateNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), scenarioRequest, "NOPE.docx")
	assert.ErrorIs(t, err, entities.ErrTemplateNotFound)
	assert.Equal(t, 0, f.completer.calls(), "no model call for a missing template")

	job := f.jobs.only(t)
	assert.Equal(t, entities.GenerationJobStatusFailed, job.Status)
	require.NotNil(t, job.ErrorKind)
	assert.Equal(t, entities.ErrorKindTemplate, *job.ErrorKind)
}

func TestGenerate_ExtractionError(t *testing.T) {
	f := newFixture(t)
	f.completer.reply = "Lo siento, no encontré información."

	doc, err := f.svc.Generate(context.Background(), scenarioRequest, "")
	assert.Nil(t, doc)

	var exErr *entities.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Empty(t, f.renderer.data)
	assert.Empty(t, f.archive.keys)
	assert.Equal(t, entities.ErrorKindExtraction, *f.jobs.only(t).ErrorKind)
}

func TestGenerate_ServiceError(t *testing.T) {
	f := newFixture(t)
	f.completer.err = &pkgai.ServiceError{Provider: "fake", StatusCode: 429, Err: errors.New("quota")}

	_, err := f.svc.Generate(context.Background(), scenarioRequest, "")

	var se *pkgai.ServiceError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.QuotaExceeded())
	assert.Equal(t, entities.ErrorKindService, *f.jobs.only(t).ErrorKind)
}

func TestGenerate_PlainCompleterErrorIsServiceError(t *testing.T) {
	f := newFixture(t)
	f.completer.err = errors.New("boom")

	_, err := f.svc.Generate(context.Background(), scenarioRequest, "")

	var se *pkgai.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "fake", se.Provider)
}

func TestGenerate_RenderError(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = errors.New(`map has no entry for key "FIRMA"`)

	_, err := f.svc.Generate(context.Background(), scenarioRequest, "")

	var renderErr *entities.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "CLINICA_LA_ERMITA.docx", renderErr.Template)
	assert.Empty(t, f.archive.keys)
	assert.Equal(t, entities.ErrorKindRender, *f.jobs.only(t).ErrorKind)
}

func TestGenerate_ArchiveFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.archive.err = errors.New("bucket unavailable")

	doc, err := f.svc.Generate(context.Background(), scenarioRequest, "")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Data)

	job := f.jobs.only(t)
	assert.Equal(t, entities.GenerationJobStatusCompleted, job.Status)
	assert.Nil(t, job.ObjectKey)
}

func TestGenerate_WithoutOptionalCollaborators(t *testing.T) {
	completer := &fakeCompleter{reply: scenarioReply}
	store := &fakeStore{templates: map[string][]byte{"CLINICA_LA_ERMITA.docx": []byte("tmpl")}}
	svc := NewService(completer, store, &fakeRenderer{}, nil, nil, testConfig(), nil)

	doc, err := svc.Generate(context.Background(), scenarioRequest, "")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Data)

	_, err = svc.RecentRuns(context.Background(), 10)
	assert.ErrorIs(t, err, entities.ErrAuditDisabled)
	_, err = svc.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrAuditDisabled)
}

func TestGenerate_ConcurrentRunsAreIndependent(t *testing.T) {
	f := newFixture(t)

	const n = 8
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := f.svc.Generate(context.Background(), scenarioRequest, "")
			if assert.NoError(t, err) {
				ids <- doc.RunID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate run id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Len(t, f.archive.keys, n)
}

func TestExtract(t *testing.T) {
	f := newFixture(t)

	record, err := f.svc.Extract(context.Background(), scenarioRequest)
	require.NoError(t, err)

	assert.Equal(t, "City X", record.City)
	assert.Equal(t, "Laura Gómez", record.AuthorName)
	assert.Empty(t, f.renderer.data)
	assert.Empty(t, f.archive.keys)

	job := f.jobs.only(t)
	assert.Equal(t, entities.GenerationJobStatusCompleted, job.Status)
	assert.Equal(t, "", job.TemplateName)
	assert.JSONEq(t, `{"operation":"extract"}`, string(job.Metadata))

	runs, err := f.svc.RecentRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	got, err := f.svc.GetRun(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)

	names, err := f.svc.Templates(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CLINICA_LA_ERMITA.docx", "OTRA.docx"}, names)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, entities.ErrorKindService, ErrorKind(fmt.Errorf("wrap: %w", &pkgai.ServiceError{Provider: "x", Err: errors.New("y")})))
	assert.Equal(t, entities.ErrorKindExtraction, ErrorKind(&entities.ExtractionError{Reason: "r"}))
	assert.Equal(t, entities.ErrorKindRender, ErrorKind(&entities.RenderError{Template: "t", Err: errors.New("e")}))
	assert.Equal(t, entities.ErrorKindTemplate, ErrorKind(entities.ErrInvalidTemplate))
	assert.Equal(t, entities.ErrorKindInternal, ErrorKind(errors.New("other")))
}

func TestArchiveKey(t *testing.T) {
	ts := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "actas/2024/05/10/abc.docx", ArchiveKey(ts, "abc"))
}
