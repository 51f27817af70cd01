package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modulekit/internal/domain/view"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/modulekit/internal/shared/utils"
)

// PageData is the data a page template executes with.
type PageData struct {
	Page  string
	Query map[string]string
}

// RenderPage renders a page template, expanding its module directives
func (h *Handlers) RenderPage(c *gin.Context) {
	page := strings.TrimPrefix(c.Param("page"), "/")

	// Validate page name
	if err := utils.ValidatePage(page); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	query := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	ctx, finish := h.span(c.Request.Context(), "render page", map[string]string{"page": page})
	var buf bytes.Buffer
	err := h.engine.Render(ctx, &buf, page, PageData{Page: page, Query: query})
	finish(err)

	switch {
	case errors.Is(err, view.ErrPageNotFound):
		errorJSON(c, http.StatusNotFound, err)
		return
	case err != nil:
		h.logger.Error("Failed to render page", append(tracing.Fields(ctx),
			zap.String("page", page),
			zap.Error(err),
		)...)
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("ETag", h.hasher.ETag(buf.String()))
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}
