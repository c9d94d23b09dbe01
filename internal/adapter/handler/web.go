package handler

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

//go:embed web/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type indexPage struct {
	Organization string
	Templates    []string
	Default      string
}

// Index handles GET /, a minimal form that posts to the generation endpoint
func (h *Acta) Index(organization string) echo.HandlerFunc {
	return func(c echo.Context) error {
		names, err := h.svc.Templates(c.Request().Context())
		if err != nil && h.logger != nil {
			h.logger.Warn("failed to list templates for form", zap.Error(err))
		}

		var buf bytes.Buffer
		if err := indexTmpl.Execute(&buf, indexPage{
			Organization: organization,
			Templates:    names,
			Default:      h.defaultTemplate,
		}); err != nil {
			return HandleError(h.logger, c, err)
		}
		return c.HTMLBlob(http.StatusOK, buf.Bytes())
	}
}
