package handler

import (
	stdErrors "errors"
	"mime"
	"net/http"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/acta-generator/errors"
	actadto "github.com/johnquangdev/acta-generator/internal/adapter/dto/acta"
	"github.com/johnquangdev/acta-generator/internal/adapter/presenter"
	"github.com/johnquangdev/acta-generator/internal/domain/entities"
	actaUsecase "github.com/johnquangdev/acta-generator/internal/usecase/acta"
)

// HeaderRunID carries the run ID of a generated acta
const HeaderRunID = "X-Acta-Run-ID"

// Acta handles acta generation HTTP requests
type Acta struct {
	svc             actaUsecase.Service
	defaultTemplate string
	logger          *zap.Logger
}

// NewActaHandler creates a new acta handler
func NewActaHandler(svc actaUsecase.Service, defaultTemplate string, logger *zap.Logger) *Acta {
	return &Acta{svc: svc, defaultTemplate: defaultTemplate, logger: logger}
}

// Extract handles POST /actas/extract
// @Summary      Extract a meeting record
// @Description  Runs the extraction model over a transcript and returns the normalized record
// @Tags         Actas
// @Accept       json
// @Produce      json
// @Param        request  body      acta.ExtractRequest  true  "Transcript and author"
// @Success      200      {object}  entities.MeetingRecord
// @Failure      400      {object}  map[string]interface{}  "Transcript missing"
// @Failure      422      {object}  map[string]interface{}  "Model reply unreadable"
// @Failure      503      {object}  map[string]interface{}  "Model unavailable"
// @Router       /actas/extract [post]
func (h *Acta) Extract(c echo.Context) error {
	var req actadto.ExtractRequest
	if err := h.bind(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	record, err := h.svc.Extract(c.Request().Context(), entities.ExtractionRequest{
		Transcript: req.Transcript,
		AuthorName: req.AuthorName,
		AuthorRole: req.AuthorRole,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, record)
}

// Generate handles POST /actas
// @Summary      Generate an acta
// @Description  Extracts the meeting record and renders it into a Word template
// @Tags         Actas
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Param        request  body      acta.GenerateRequest  true  "Transcript, author and template"
// @Success      200      {file}    binary
// @Failure      400      {object}  map[string]interface{}  "Transcript missing"
// @Failure      404      {object}  map[string]interface{}  "Template not found"
// @Failure      422      {object}  map[string]interface{}  "Extraction or render failed"
// @Failure      503      {object}  map[string]interface{}  "Model unavailable"
// @Router       /actas [post]
func (h *Acta) Generate(c echo.Context) error {
	var req actadto.GenerateRequest
	if err := h.bind(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	templateName := req.Template
	if templateName == "" {
		templateName = h.defaultTemplate
	}

	doc, err := h.svc.Generate(c.Request().Context(), entities.ExtractionRequest{
		Transcript: req.Transcript,
		AuthorName: req.AuthorName,
		AuthorRole: req.AuthorRole,
	}, templateName)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, templateName))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Response().Header().Set(HeaderRunID, doc.RunID)
	return c.Blob(http.StatusOK, doc.ContentType, doc.Data)
}

// Templates handles GET /templates
// @Summary      List templates
// @Tags         Actas
// @Produce      json
// @Success      200  {object}  acta.TemplatesResponse
// @Router       /templates [get]
func (h *Acta) Templates(c echo.Context) error {
	names, err := h.svc.Templates(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("list templates", err))
	}
	if names == nil {
		names = []string{}
	}
	return HandleSuccess(h.logger, c, &actadto.TemplatesResponse{
		Templates: names,
		Default:   h.defaultTemplate,
	})
}

// ListRuns handles GET /actas/runs
// @Summary      List recent runs
// @Tags         Runs
// @Produce      json
// @Param        limit  query     int  false  "Page size (1-100)"
// @Success      200    {object}  acta.ListRunsResponse
// @Failure      401    {object}  map[string]interface{}  "Missing or invalid operator token"
// @Failure      404    {object}  map[string]interface{}  "Audit log disabled"
// @Security     OperatorToken
// @Router       /actas/runs [get]
func (h *Acta) ListRuns(c echo.Context) error {
	var req actadto.ListRunsRequest
	if err := h.bind(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	jobs, err := h.svc.RecentRuns(c.Request().Context(), req.Limit)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	runs := presenter.ToRunResponses(jobs)
	return HandleSuccess(h.logger, c, &actadto.ListRunsResponse{Runs: runs, Count: len(runs)})
}

// GetRun handles GET /actas/runs/:id
// @Summary      Get one run
// @Tags         Runs
// @Produce      json
// @Param        id   path      string  true  "Run ID (UUID)"
// @Success      200  {object}  acta.RunResponse
// @Failure      400  {object}  map[string]interface{}  "Invalid run ID"
// @Failure      401  {object}  map[string]interface{}  "Missing or invalid operator token"
// @Failure      404  {object}  map[string]interface{}  "Run not found"
// @Security     OperatorToken
// @Router       /actas/runs/{id} [get]
func (h *Acta) GetRun(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid run ID"))
	}

	job, err := h.svc.GetRun(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	return HandleSuccess(h.logger, c, presenter.ToRunResponse(job))
}

// DownloadRun handles GET /actas/runs/:id/download
// @Summary      Download an archived acta
// @Description  Redirects to a short lived link of the archived document
// @Tags         Runs
// @Param        id   path      string  true  "Run ID (UUID)"
// @Success      302
// @Failure      401  {object}  map[string]interface{}  "Missing or invalid operator token"
// @Failure      404  {object}  map[string]interface{}  "Run not found or not archived"
// @Security     OperatorToken
// @Router       /actas/runs/{id}/download [get]
func (h *Acta) DownloadRun(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid run ID"))
	}

	url, err := h.svc.DownloadURL(c.Request().Context(), id)
	if err != nil {
		if isLookupError(err) {
			return HandleError(h.logger, c, toAppError(err, ""))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("presign", err))
	}

	return c.Redirect(http.StatusFound, url)
}

func isLookupError(err error) bool {
	return stdErrors.Is(err, entities.ErrRunNotFound) ||
		stdErrors.Is(err, entities.ErrAuditDisabled) ||
		stdErrors.Is(err, entities.ErrNotArchived)
}

// bind decodes and validates a request, mapping failures to AppErrors
func (h *Acta) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload()
	}

	if err := c.Validate(req); err != nil {
		var verrs govalidator.ValidationErrors
		if !stdErrors.As(err, &verrs) || len(verrs) == 0 {
			return errors.ErrInvalidArgument(err.Error())
		}
		fe := verrs[0]
		if fe.Field() == "Transcript" {
			return errors.ErrTranscriptRequired()
		}
		msg := fe.Field() + " failed on " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return errors.ErrInvalidArgument(msg).WithDetail("field", fe.Field())
	}
	return nil
}
