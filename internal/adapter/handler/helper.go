package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/acta-generator/errors"
	"github.com/johnquangdev/acta-generator/internal/domain/entities"
	pkgai "github.com/johnquangdev/acta-generator/pkg/ai"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    errors.ErrorCode_HTTP_OK,
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Debug("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			log := logger.Warn
			if appErr.HTTPCode >= http.StatusInternalServerError {
				log = logger.Error
			}
			log("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Stringer("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// ErrorHandler routes errors returned by handlers and middleware through HandleError
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if stdErrors.As(err, &he) {
			err = fromHTTPError(he)
		}

		if c.Request().Method == http.MethodHead {
			var appErr errors.AppError
			code := http.StatusInternalServerError
			if stdErrors.As(err, &appErr) {
				code = appErr.HTTPCode
			}
			_ = c.NoContent(code)
			return
		}
		_ = HandleError(logger, c, err)
	}
}

func fromHTTPError(he *echo.HTTPError) error {
	msg, _ := he.Message.(string)
	if msg == "" {
		msg = http.StatusText(he.Code)
	}

	switch he.Code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		e := errors.ErrNotFound("route")
		e.HTTPCode = he.Code
		e.Message = msg
		return e
	case http.StatusRequestEntityTooLarge:
		e := errors.ErrInvalidPayload()
		e.HTTPCode = he.Code
		e.Message = "Transcript is too large"
		return e
	}
	if he.Code < http.StatusInternalServerError {
		e := errors.ErrInvalidArgument(msg)
		e.HTTPCode = he.Code
		return e
	}
	return errors.ErrInternal(he)
}

// toAppError maps pipeline failures to client facing errors
func toAppError(err error, templateName string) error {
	var (
		appErr    errors.AppError
		se        *pkgai.ServiceError
		exErr     *entities.ExtractionError
		renderErr *entities.RenderError
	)

	switch {
	case stdErrors.As(err, &appErr):
		return appErr
	case stdErrors.As(err, &se):
		if se.QuotaExceeded() {
			return errors.ErrAIQuotaExceeded(se.Provider, err)
		}
		return errors.ErrAIServiceUnavailable(se.Provider, err)
	case stdErrors.As(err, &exErr):
		return errors.ErrExtractionFailed(err)
	case stdErrors.As(err, &renderErr):
		return errors.ErrRenderFailed(renderErr.Template, err)
	case stdErrors.Is(err, entities.ErrEmptyTranscript):
		return errors.ErrTranscriptRequired()
	case stdErrors.Is(err, entities.ErrTemplateNotFound):
		return errors.ErrTemplateNotFound(templateName)
	case stdErrors.Is(err, entities.ErrInvalidTemplate):
		return errors.ErrInvalidArgument("Invalid template name").WithDetail("template", templateName)
	case stdErrors.Is(err, entities.ErrRunNotFound):
		return errors.ErrNotFound("Run")
	case stdErrors.Is(err, entities.ErrAuditDisabled):
		return errors.ErrNotFound("Run history")
	case stdErrors.Is(err, entities.ErrNotArchived):
		return errors.ErrNotFound("Archived acta")
	default:
		return errors.ErrInternal(err)
	}
}
